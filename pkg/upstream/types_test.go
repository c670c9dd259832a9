package upstream

import "testing"

func TestEncodingDescriptor_AudioTraits(t *testing.T) {
	tests := []struct {
		name      string
		desc      EncodingDescriptor
		hasAudio  bool
		audioOnly bool
	}{
		{
			name:      "opus audio track",
			desc:      EncodingDescriptor{MIMEType: `audio/webm; codecs="opus"`, AudioQuality: "AUDIO_QUALITY_MEDIUM"},
			hasAudio:  true,
			audioOnly: true,
		},
		{
			name:      "audio track without quality tag",
			desc:      EncodingDescriptor{MIMEType: `audio/mp4; codecs="mp4a.40.2"`},
			hasAudio:  true,
			audioOnly: true,
		},
		{
			name:      "muxed video",
			desc:      EncodingDescriptor{MIMEType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, AudioQuality: "AUDIO_QUALITY_LOW"},
			hasAudio:  true,
			audioOnly: false,
		},
		{
			name:      "video only",
			desc:      EncodingDescriptor{MIMEType: `video/mp4; codecs="avc1.4d401f"`, QualityLabel: "720p"},
			hasAudio:  false,
			audioOnly: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.desc.HasAudio(); got != tt.hasAudio {
				t.Errorf("HasAudio: expected %v, got %v", tt.hasAudio, got)
			}
			if got := tt.desc.IsAudioOnly(); got != tt.audioOnly {
				t.Errorf("IsAudioOnly: expected %v, got %v", tt.audioOnly, got)
			}
		})
	}
}

func TestEncodingDescriptor_Container(t *testing.T) {
	tests := []struct {
		name string
		mime string
		want string
	}{
		{name: "webm with codecs", mime: `audio/webm; codecs="opus"`, want: "webm"},
		{name: "mp4 without codecs", mime: "video/mp4", want: "mp4"},
		{name: "empty", mime: "", want: ""},
		{name: "malformed", mime: "audio", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EncodingDescriptor{MIMEType: tt.mime}
			if got := d.Container(); got != tt.want {
				t.Errorf("expected container %q, got %q", tt.want, got)
			}
		})
	}
}

package upstream

import (
	"context"
	"strconv"

	"wavecast-hq/tunegate/pkg/proxypool"
)

const playerPath = "/youtubei/v1/player"

type innertubeContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	UserAgent         string `json:"userAgent,omitempty"`
	AndroidSDKVersion int    `json:"androidSdkVersion,omitempty"`
	HL                string `json:"hl"`
	GL                string `json:"gl"`
}

type playerRequest struct {
	VideoID        string           `json:"videoId"`
	Context        innertubeContext `json:"context"`
	ContentCheckOK bool             `json:"contentCheckOk"`
	RacyCheckOK    bool             `json:"racyCheckOk"`
}

type thumbnailList struct {
	Thumbnails []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"thumbnails"`
}

// best returns the largest variant. The provider lists thumbnails in
// ascending size.
func (t thumbnailList) best() string {
	if len(t.Thumbnails) == 0 {
		return ""
	}
	return t.Thumbnails[len(t.Thumbnails)-1].URL
}

type wireFormat struct {
	Itag            int    `json:"itag"`
	URL             string `json:"url"`
	MimeType        string `json:"mimeType"`
	Bitrate         int64  `json:"bitrate"`
	AverageBitrate  int64  `json:"averageBitrate"`
	ContentLength   string `json:"contentLength"`
	AudioQuality    string `json:"audioQuality"`
	QualityLabel    string `json:"qualityLabel"`
	AudioSampleRate string `json:"audioSampleRate"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		VideoID          string        `json:"videoId"`
		Title            string        `json:"title"`
		Author           string        `json:"author"`
		LengthSeconds    string        `json:"lengthSeconds"`
		ShortDescription string        `json:"shortDescription"`
		ViewCount        string        `json:"viewCount"`
		Thumbnail        thumbnailList `json:"thumbnail"`
	} `json:"videoDetails"`
	StreamingData struct {
		Formats         []wireFormat `json:"formats"`
		AdaptiveFormats []wireFormat `json:"adaptiveFormats"`
	} `json:"streamingData"`
}

// buildContext assembles the device profile sent with every API call.
func (c *Client) buildContext() innertubeContext {
	ic := innertubeClient{
		ClientName:    c.config.ClientName,
		ClientVersion: c.config.ClientVersion,
		UserAgent:     c.config.UserAgent,
		HL:            "en",
		GL:            "US",
	}
	if ic.ClientName == "ANDROID" {
		// The Android player endpoint rejects payloads without an SDK
		// level.
		ic.AndroidSDKVersion = 34
	}
	return innertubeContext{Client: ic}
}

// Resolve fetches metadata and the advertised encodings for a media id.
// The id is validated before any network activity. A non-nil via pins
// the call to that proxy endpoint.
func (c *Client) Resolve(ctx context.Context, mediaID string, via *proxypool.Endpoint) (*Metadata, []EncodingDescriptor, error) {
	if !mediaIDPattern.MatchString(mediaID) {
		return nil, nil, &ValidationError{Field: "media_id", Message: "malformed media id: " + mediaID}
	}

	payload := playerRequest{
		VideoID:        mediaID,
		Context:        c.buildContext(),
		ContentCheckOK: true,
		RacyCheckOK:    true,
	}
	var resp playerResponse
	if err := c.postJSON(ctx, "player", playerPath, payload, &resp, via); err != nil {
		return nil, nil, err
	}

	switch resp.PlayabilityStatus.Status {
	case "OK":
	case "ERROR":
		return nil, nil, &NotFoundError{MediaID: mediaID, Reason: resp.PlayabilityStatus.Reason}
	default:
		reason := resp.PlayabilityStatus.Reason
		if reason == "" {
			reason = "media not playable (" + resp.PlayabilityStatus.Status + ")"
		}
		return nil, nil, &UpstreamError{Operation: "player", Message: reason}
	}

	details := resp.VideoDetails
	meta := &Metadata{
		ID:              details.VideoID,
		Title:           details.Title,
		Author:          details.Author,
		DurationSeconds: parseInt64(details.LengthSeconds),
		Description:     details.ShortDescription,
		Thumbnail:       details.Thumbnail.best(),
		Views:           parseInt64(details.ViewCount),
	}
	if meta.ID == "" {
		meta.ID = mediaID
	}

	wire := make([]wireFormat, 0, len(resp.StreamingData.Formats)+len(resp.StreamingData.AdaptiveFormats))
	wire = append(wire, resp.StreamingData.Formats...)
	wire = append(wire, resp.StreamingData.AdaptiveFormats...)
	descriptors := make([]EncodingDescriptor, 0, len(wire))
	for _, f := range wire {
		if f.URL == "" {
			// Cipher-protected entries carry no direct URL and cannot
			// be relayed.
			continue
		}
		descriptors = append(descriptors, f.descriptor())
	}

	c.logger.Debug("resolved media",
		"media_id", meta.ID,
		"title", meta.Title,
		"formats", len(descriptors),
	)
	return meta, descriptors, nil
}

func (f wireFormat) descriptor() EncodingDescriptor {
	bitrate := f.AverageBitrate
	if bitrate == 0 {
		bitrate = f.Bitrate
	}
	return EncodingDescriptor{
		Itag:          f.Itag,
		URL:           f.URL,
		MIMEType:      f.MimeType,
		Bitrate:       bitrate,
		AudioQuality:  f.AudioQuality,
		QualityLabel:  f.QualityLabel,
		ContentLength: parseInt64(f.ContentLength),
	}
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

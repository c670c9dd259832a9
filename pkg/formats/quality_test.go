package formats

import (
	"errors"
	"testing"
)

func TestParseQuality(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Quality
		wantErr bool
	}{
		{name: "empty defaults to highest", raw: "", want: HighestAudio},
		{name: "highest with space", raw: "highest audio", want: HighestAudio},
		{name: "highest joined", raw: "highestaudio", want: HighestAudio},
		{name: "mixed case", raw: "Highest Audio", want: HighestAudio},
		{name: "extra whitespace", raw: "  highest   audio  ", want: HighestAudio},
		{name: "lowest with space", raw: "lowest audio", want: LowestAudio},
		{name: "lowest joined", raw: "lowestaudio", want: LowestAudio},
		{name: "unknown", raw: "4k video", wantErr: true},
		{name: "partial match", raw: "highest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuality(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				var qerr *UnknownQualityError
				if !errors.As(err, &qerr) {
					t.Fatalf("expected UnknownQualityError, got %T: %v", err, err)
				}
				if qerr.Quality != tt.raw {
					t.Errorf("expected original input in error, got %q", qerr.Quality)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseQuality(%q) failed: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestQuality_String(t *testing.T) {
	if HighestAudio.String() != "highest audio" {
		t.Errorf("unexpected string: %q", HighestAudio.String())
	}
	if LowestAudio.String() != "lowest audio" {
		t.Errorf("unexpected string: %q", LowestAudio.String())
	}
}

package ytdlp

import "testing"

func TestTranslateError(t *testing.T) {
	tests := []struct {
		stderr string
		kind   FailureKind
		days   int
		text   string
	}{
		{"ERROR: [youtube] x: Premieres in 3 days", FailurePremiere, 3, "premiere pending (in 3 days)"},
		{"ERROR: [youtube] x: Premieres in 20 minutes", FailurePremiere, 0, "premiere pending"},
		{"ERROR: [youtube] x: Private video. Sign in", FailurePrivate, 0, "private video"},
		{"ERROR: [youtube] x: Video unavailable", FailureRemoved, 0, "video removed"},
		{"ERROR: This video has been removed by the uploader", FailureRemoved, 0, "video removed"},
		{"ERROR: This video is not available", FailureUnavailable, 0, "video not available"},
		{"ERROR: [youtube] x: The uploader has not made this video available in your country", FailureGeoBlocked, 0, "geo-blocked"},
		{"WARNING: retrying\nERROR: HTTP Error 403: Forbidden\n", FailureOther, 0, "HTTP Error 403: Forbidden"},
		{"", FailureOther, 0, "yt-dlp failed"},
	}
	for _, tt := range tests {
		got := TranslateError(tt.stderr)
		if got.Kind != tt.kind || got.Days != tt.days || got.String() != tt.text {
			t.Fatalf("TranslateError(%q) = %+v (%q), want kind=%s days=%d text=%q", tt.stderr, got, got.String(), tt.kind, tt.days, tt.text)
		}
	}
}

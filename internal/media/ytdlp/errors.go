package ytdlp

import (
	"regexp"
	"strconv"
	"strings"
)

// FailureKind classifies a yt-dlp failure.
type FailureKind string

const (
	FailurePremiere    FailureKind = "premiere_pending"
	FailurePrivate     FailureKind = "private"
	FailureRemoved     FailureKind = "removed"
	FailureUnavailable FailureKind = "unavailable"
	FailureGeoBlocked  FailureKind = "geo_blocked"
	FailureOther       FailureKind = "other"
)

// Failure is a human-readable reading of yt-dlp stderr.
type Failure struct {
	Kind FailureKind
	// Days until a premiere, when yt-dlp reports it.
	Days   int
	Detail string
}

var premiereDays = regexp.MustCompile(`in (\d+) days`)

// TranslateError maps yt-dlp stderr to a Failure.
func TranslateError(stderr string) Failure {
	detail := lastLine(stderr)
	switch {
	case strings.Contains(stderr, "Premieres in"):
		f := Failure{Kind: FailurePremiere, Detail: detail}
		if m := premiereDays.FindStringSubmatch(stderr); m != nil {
			f.Days, _ = strconv.Atoi(m[1])
		}
		return f
	case strings.Contains(stderr, "Private video"):
		return Failure{Kind: FailurePrivate, Detail: detail}
	case strings.Contains(stderr, "not made this video available in your country"),
		strings.Contains(stderr, "not available in your country"),
		strings.Contains(stderr, "geo restriction"):
		return Failure{Kind: FailureGeoBlocked, Detail: detail}
	case strings.Contains(stderr, "Video unavailable"), strings.Contains(stderr, "removed by the uploader"):
		return Failure{Kind: FailureRemoved, Detail: detail}
	case strings.Contains(stderr, "This video is not available"):
		return Failure{Kind: FailureUnavailable, Detail: detail}
	default:
		return Failure{Kind: FailureOther, Detail: detail}
	}
}

func (f Failure) String() string {
	switch f.Kind {
	case FailurePremiere:
		if f.Days > 0 {
			return "premiere pending (in " + strconv.Itoa(f.Days) + " days)"
		}
		return "premiere pending"
	case FailurePrivate:
		return "private video"
	case FailureRemoved:
		return "video removed"
	case FailureUnavailable:
		return "video not available"
	case FailureGeoBlocked:
		return "geo-blocked"
	default:
		if f.Detail == "" {
			return "yt-dlp failed"
		}
		return f.Detail
	}
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return strings.TrimPrefix(line, "ERROR: ")
		}
	}
	return ""
}

// Package filter decides whether a discovered item qualifies for download.
package filter

import (
	"strings"
	"time"
)

// Reason names why a candidate was rejected.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonMissingMetadata Reason = "missing_metadata"
	ReasonTooOld          Reason = "too_old"
	ReasonTooShort        Reason = "too_short"
	ReasonTooLong         Reason = "too_long"
)

// UploadDateLayout is the upload date format reported by yt-dlp.
const UploadDateLayout = "20060102"

// Candidate is the metadata subset the filter inspects.
type Candidate struct {
	Title      string
	UploadDate string
	Duration   int
}

// Window holds the recency and duration bounds of a channel. Duration bounds
// are inclusive.
type Window struct {
	LookBackDays int
	MinDuration  int
	MaxDuration  int
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Eligible bool
	Reason   Reason
	// Date is the parsed upload date when metadata was complete.
	Date time.Time
}

// Evaluate applies w to c. Dates are compared as calendar days in the
// location of today.
func Evaluate(c Candidate, w Window, today time.Time) Decision {
	if strings.TrimSpace(c.Title) == "" || c.Duration <= 0 {
		return Decision{Reason: ReasonMissingMetadata}
	}
	date, err := ParseUploadDate(c.UploadDate, today.Location())
	if err != nil {
		return Decision{Reason: ReasonMissingMetadata}
	}

	threshold := time.Date(today.Year(), today.Month(), today.Day()-w.LookBackDays, 0, 0, 0, 0, today.Location())
	if date.Before(threshold) {
		return Decision{Reason: ReasonTooOld, Date: date}
	}
	if c.Duration < w.MinDuration {
		return Decision{Reason: ReasonTooShort, Date: date}
	}
	if c.Duration > w.MaxDuration {
		return Decision{Reason: ReasonTooLong, Date: date}
	}
	return Decision{Eligible: true, Date: date}
}

// ParseUploadDate parses a YYYYMMDD upload date at midnight in loc.
func ParseUploadDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(UploadDateLayout, strings.TrimSpace(value), loc)
}

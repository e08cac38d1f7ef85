package filter_test

import (
	"testing"
	"time"

	"tubecast/internal/filter"
)

func TestEvaluate(t *testing.T) {
	today := time.Date(2026, 1, 10, 7, 30, 0, 0, time.UTC)
	window := filter.Window{LookBackDays: 4, MinDuration: 60, MaxDuration: 7200}

	tests := []struct {
		name     string
		cand     filter.Candidate
		eligible bool
		reason   filter.Reason
	}{
		{"eligible", filter.Candidate{Title: "t", UploadDate: "20260109", Duration: 1800}, true, filter.ReasonNone},
		{"threshold day included", filter.Candidate{Title: "t", UploadDate: "20260106", Duration: 1800}, true, filter.ReasonNone},
		{"too old", filter.Candidate{Title: "t", UploadDate: "20260105", Duration: 1800}, false, filter.ReasonTooOld},
		{"too old wins over duration", filter.Candidate{Title: "t", UploadDate: "20251201", Duration: 5}, false, filter.ReasonTooOld},
		{"too short", filter.Candidate{Title: "t", UploadDate: "20260109", Duration: 59}, false, filter.ReasonTooShort},
		{"min inclusive", filter.Candidate{Title: "t", UploadDate: "20260109", Duration: 60}, true, filter.ReasonNone},
		{"max inclusive", filter.Candidate{Title: "t", UploadDate: "20260109", Duration: 7200}, true, filter.ReasonNone},
		{"too long", filter.Candidate{Title: "t", UploadDate: "20260109", Duration: 7201}, false, filter.ReasonTooLong},
		{"missing title", filter.Candidate{Title: " ", UploadDate: "20260109", Duration: 100}, false, filter.ReasonMissingMetadata},
		{"missing date", filter.Candidate{Title: "t", Duration: 100}, false, filter.ReasonMissingMetadata},
		{"bad date", filter.Candidate{Title: "t", UploadDate: "2026-01-09", Duration: 100}, false, filter.ReasonMissingMetadata},
		{"zero duration", filter.Candidate{Title: "t", UploadDate: "20260109"}, false, filter.ReasonMissingMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.Evaluate(tt.cand, window, today)
			if got.Eligible != tt.eligible || got.Reason != tt.reason {
				t.Fatalf("Evaluate = %+v, want eligible=%v reason=%q", got, tt.eligible, tt.reason)
			}
		})
	}
}

func TestEvaluateAcrossYearBoundary(t *testing.T) {
	today := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	d := filter.Evaluate(filter.Candidate{Title: "t", UploadDate: "20251230", Duration: 100},
		filter.Window{LookBackDays: 4, MinDuration: 1, MaxDuration: 1000}, today)
	if !d.Eligible {
		t.Fatalf("expected eligible, got %+v", d)
	}
	if d.Date.Year() != 2025 || d.Date.Month() != time.December || d.Date.Day() != 30 {
		t.Fatalf("unexpected date %v", d.Date)
	}
}

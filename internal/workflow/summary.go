package workflow

import (
	"errors"
	"fmt"
	"time"

	"tubecast/internal/pipeline"
	"tubecast/internal/throttle"
)

// Summary aggregates the outcome of a run.
type Summary struct {
	Results  []pipeline.Result
	Throttle throttle.Stats
	Duration time.Duration
}

// FailedChannels returns the keys of channels that reported a channel-level
// error.
func (s Summary) FailedChannels() []string {
	var keys []string
	for _, r := range s.Results {
		if r.Err != nil {
			keys = append(keys, r.Channel)
		}
	}
	return keys
}

// Err joins every channel error, prefixed with the channel key. It is nil
// when all channels completed.
func (s Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Channel, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Totals sums the per-channel counters.
func (s Summary) Totals() pipeline.Result {
	var total pipeline.Result
	total.Channel = "total"
	for _, r := range s.Results {
		total.Discovered += r.Discovered
		total.Existing = append(total.Existing, r.Existing...)
		total.Downloaded = append(total.Downloaded, r.Downloaded...)
		total.Uploaded = append(total.Uploaded, r.Uploaded...)
		total.Failed = append(total.Failed, r.Failed...)
		total.LocalRemoved = append(total.LocalRemoved, r.LocalRemoved...)
		total.RemoteRemoved = append(total.RemoteRemoved, r.RemoteRemoved...)
		total.FeedItems += r.FeedItems
		for reason, n := range r.Rejected {
			if total.Rejected == nil {
				total.Rejected = make(map[string]int)
			}
			total.Rejected[reason] += n
		}
	}
	total.Duration = s.Duration
	return total
}

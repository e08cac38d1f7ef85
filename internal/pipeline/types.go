package pipeline

import (
	"context"
	"log/slog"
	"time"

	"tubecast/internal/config"
	"tubecast/internal/feed"
	"tubecast/internal/media/tagging"
	"tubecast/internal/media/ytdlp"
	"tubecast/internal/retention"
	"tubecast/internal/throttle"
)

// Lister returns the item identifiers of a source locator.
type Lister interface {
	ListItems(ctx context.Context, locator string, limit int) ([]string, error)
}

// MetadataFetcher resolves one item's metadata.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, id string) (ytdlp.Metadata, error)
}

// Extractor writes the audio of an item to outputPath.
type Extractor interface {
	Extract(ctx context.Context, id, outputPath string) error
}

// Prober reads the duration of a local audio file.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (int, error)
}

// ObjectStore publishes artifacts and feeds.
type ObjectStore interface {
	Put(ctx context.Context, localPath, key string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// Tagger writes ID3 frames into a freshly extracted artifact.
type Tagger interface {
	Tag(path string, tags tagging.Tags) error
}

// Channel is the immutable per-run view of a configured channel.
type Channel struct {
	Key    string
	Name   string
	Source string
	Dir    string
	Policy config.Policy
}

// Deps bundles the collaborators a Pipeline drives. Tagger is optional.
type Deps struct {
	Lister    Lister
	Fetcher   MetadataFetcher
	Extractor Extractor
	Prober    Prober
	Store     ObjectStore
	Tagger    Tagger

	Throttle  *throttle.Throttle
	Retention *retention.Manager
	Feed      feed.Builder
	Logger    *slog.Logger
	Now       func() time.Time

	// FallbackDuration is used for existing artifacts whose probe fails.
	FallbackDuration int
	// SkipDiscovery limits the run to retention and rendering.
	SkipDiscovery bool
}

// Result summarizes one channel run.
type Result struct {
	Channel string

	Discovered    int
	Existing      []string
	Downloaded    []string
	Uploaded      []string
	Rejected      map[string]int
	Failed        []string
	LocalRemoved  []string
	RemoteRemoved []string
	FeedItems     int

	// Err joins the channel-level failures: discovery, remote listing and feed
	// write or upload. Item failures are counted in Failed only.
	Err      error
	Duration time.Duration
}

// reject counts a filter rejection by reason.
func (r *Result) reject(reason string) {
	if r.Rejected == nil {
		r.Rejected = make(map[string]int)
	}
	r.Rejected[reason]++
}

// RejectedCount totals every rejection reason.
func (r Result) RejectedCount() int {
	total := 0
	for _, n := range r.Rejected {
		total += n
	}
	return total
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"tubecast/internal/artifact"
	"tubecast/internal/feed"
	"tubecast/internal/fileutil"
	"tubecast/internal/filter"
	"tubecast/internal/logging"
	"tubecast/internal/media/tagging"
	"tubecast/internal/retention"
	"tubecast/internal/services"
	"tubecast/internal/throttle"
)

// DefaultFallbackDuration is assumed for existing artifacts that cannot be
// probed.
const DefaultFallbackDuration = 3600

// Pipeline runs one channel.
type Pipeline struct {
	ch     Channel
	deps   Deps
	logger *slog.Logger
}

// New builds a Pipeline for ch. Missing optional collaborators get defaults:
// a single-slot throttle, a retention manager on the same clock, and the
// default fallback duration.
func New(ch Channel, deps Deps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	if deps.Throttle == nil {
		deps.Throttle = throttle.New(1)
	}
	if deps.Retention == nil {
		deps.Retention = retention.NewManager(deps.Logger, deps.Now)
	}
	if deps.FallbackDuration <= 0 {
		deps.FallbackDuration = DefaultFallbackDuration
	}
	return &Pipeline{
		ch:     ch,
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "pipeline"),
	}
}

// Channel returns the channel the pipeline runs.
func (p *Pipeline) Channel() Channel {
	return p.ch
}

// Run executes the channel state machine once. A discovery failure ends
// discovery only: retention and rendering always run against whatever
// artifacts exist.
func (p *Pipeline) Run(ctx context.Context) Result {
	started := time.Now()
	res := Result{Channel: p.ch.Key}
	ctx = services.WithChannel(ctx, p.ch.Key)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("channel run started",
		logging.String(logging.FieldEventType, "channel_start"),
		logging.String("source", p.ch.Source),
		logging.Bool("skip_discovery", p.deps.SkipDiscovery),
	)

	if err := os.MkdirAll(p.ch.Dir, 0o755); err != nil {
		res.Err = services.Wrap(services.ErrFilesystem, "prepare", "create channel dir", p.ch.Dir, err)
		res.Duration = time.Since(started)
		logging.ErrorWithContext(logger, "channel directory unavailable", "channel_dir_failed",
			logging.Error(res.Err),
			logging.String(logging.FieldErrorHint, "check data_dir permissions"),
		)
		return res
	}

	var errs []error
	var ids []string
	if !p.deps.SkipDiscovery {
		discovered, err := p.discover(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		ids = discovered
		res.Discovered = len(ids)
	}

	durations := p.probeExisting(ctx)

	for i, id := range ids {
		if ctx.Err() != nil {
			logger.Info("channel run interrupted; remaining items skipped",
				logging.Int("remaining", len(ids)-i),
			)
			break
		}
		p.processItem(ctx, id, durations, &res)
	}

	if err := p.retire(ctx, &res); err != nil {
		errs = append(errs, err)
	}
	if err := p.render(ctx, durations, &res); err != nil {
		errs = append(errs, err)
	}

	res.Err = errors.Join(errs...)
	res.Duration = time.Since(started)
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "channel_complete"),
		logging.Int("discovered", res.Discovered),
		logging.Int("downloaded", len(res.Downloaded)),
		logging.Int("existing", len(res.Existing)),
		logging.Int("rejected", res.RejectedCount()),
		logging.Int("failed", len(res.Failed)),
		logging.Int("feed_items", res.FeedItems),
		logging.Duration("duration", res.Duration),
	}
	if res.Err != nil {
		attrs = append(attrs, logging.Error(res.Err))
		logging.WarnWithContext(logger, "channel run finished with errors", "channel_complete", attrs...)
	} else {
		logger.Info("channel run finished", logging.Args(attrs...)...)
	}
	return res
}

func (p *Pipeline) discover(ctx context.Context) ([]string, error) {
	ctx = services.WithStage(ctx, "discover")
	logger := logging.WithContext(ctx, p.logger)
	ids, err := p.deps.Lister.ListItems(ctx, p.ch.Source, p.ch.Policy.MaxItems)
	if err != nil {
		logging.ErrorWithContext(logger, "discovery failed", "discovery_failed",
			logging.String("source", p.ch.Source),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the channel source URL and network access"),
		)
		return nil, fmt.Errorf("discover %s: %w", p.ch.Key, err)
	}
	logger.Info("discovery complete",
		logging.String(logging.FieldEventType, "discovery_complete"),
		logging.Int("items", len(ids)),
	)
	return ids, nil
}

// probeExisting maps every local artifact to its probed duration, or the
// fallback when the probe fails.
func (p *Pipeline) probeExisting(ctx context.Context) map[string]int {
	ctx = services.WithStage(ctx, "probe")
	logger := logging.WithContext(ctx, p.logger)
	durations := make(map[string]int)
	names, err := artifact.ScanLocal(p.ch.Dir)
	if err != nil {
		logging.WarnWithContext(logger, "local artifact scan failed", "scan_failed",
			logging.Error(services.Wrap(services.ErrFilesystem, "probe", "scan", p.ch.Dir, err)),
			logging.String(logging.FieldImpact, "existing artifacts use the fallback duration"),
		)
		return durations
	}
	for _, name := range names {
		durations[name] = p.deps.FallbackDuration
		if p.deps.Prober == nil || ctx.Err() != nil {
			continue
		}
		seconds, err := p.deps.Prober.ProbeDuration(ctx, filepath.Join(p.ch.Dir, name))
		if err != nil || seconds <= 0 {
			logger.Debug("duration probe failed; using fallback",
				logging.String("file", name),
				logging.Int("fallback_seconds", p.deps.FallbackDuration),
				logging.Error(err),
			)
			continue
		}
		durations[name] = seconds
	}
	return durations
}

func (p *Pipeline) processItem(ctx context.Context, id string, durations map[string]int, res *Result) {
	ctx = services.WithStage(ctx, "fetch")
	logger := logging.WithContext(ctx, p.logger).With(logging.String("item_id", id))

	meta, err := p.deps.Fetcher.FetchMetadata(ctx, id)
	if err != nil {
		res.Failed = append(res.Failed, id)
		logging.WarnWithContext(logger, "metadata fetch failed; item skipped", "metadata_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "item is retried on the next run"),
		)
		return
	}

	now := p.deps.Now()
	decision := filter.Evaluate(filter.Candidate{
		Title:      meta.Title,
		UploadDate: meta.UploadDate,
		Duration:   meta.Duration,
	}, filter.Window{
		LookBackDays: p.ch.Policy.LookBackDays,
		MinDuration:  p.ch.Policy.MinDuration,
		MaxDuration:  p.ch.Policy.MaxDuration,
	}, now)
	if decision.Eligible && strings.TrimSpace(artifact.SanitizeTitle(meta.Title)) == "" {
		decision = filter.Decision{Reason: filter.ReasonMissingMetadata, Date: decision.Date}
	}
	if !decision.Eligible {
		res.reject(string(decision.Reason))
		logger.Debug("item rejected",
			logging.String("reason", string(decision.Reason)),
			logging.String("title", meta.Title),
			logging.String("upload_date", meta.UploadDate),
			logging.Int("duration_seconds", meta.Duration),
		)
		return
	}

	name := artifact.Encode(decision.Date, meta.Title)
	target := filepath.Join(p.ch.Dir, name)
	logger = logger.With(logging.String("file", name))
	if _, err := os.Stat(target); err == nil {
		res.Existing = append(res.Existing, name)
		durations[name] = meta.Duration
		logger.Debug("artifact already present; download skipped")
		return
	}

	ctx = services.WithStage(ctx, "download")
	logger = logging.WithContext(ctx, logger)
	err = p.deps.Throttle.Do(ctx, func(ctx context.Context) error {
		return p.deps.Extractor.Extract(ctx, id, target)
	})
	if err != nil {
		res.Failed = append(res.Failed, id)
		logging.WarnWithContext(logger, "extraction failed; item skipped", "extract_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "item is retried on the next run"),
			logging.String(logging.FieldErrorHint, "run yt-dlp manually against the item for details"),
		)
		return
	}
	res.Downloaded = append(res.Downloaded, name)
	durations[name] = meta.Duration
	logger.Info("artifact downloaded",
		logging.String(logging.FieldEventType, "artifact_downloaded"),
		logging.String("title", meta.Title),
		logging.Int("duration_seconds", meta.Duration),
	)

	if p.deps.Tagger != nil {
		artist := p.ch.Name
		if artist == "" {
			artist = meta.Channel
		}
		tags := tagging.Tags{Title: meta.Title, Artist: artist, Album: artist, Date: decision.Date}
		if err := p.deps.Tagger.Tag(target, tags); err != nil {
			logging.WarnWithContext(logger, "id3 tagging failed", "tag_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "artifact is published without id3 frames"),
			)
		}
	}

	if p.deps.Store == nil {
		return
	}
	key := p.remoteKey(name)
	ctx = services.WithStage(ctx, "upload")
	if err := p.deps.Store.Put(ctx, target, key); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, logger), "artifact upload failed", "upload_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "artifact stays local only; the feed may reference a missing object"),
			logging.String(logging.FieldErrorHint, "check bucket credentials and connectivity"),
		)
		return
	}
	res.Uploaded = append(res.Uploaded, key)
}

func (p *Pipeline) retire(ctx context.Context, res *Result) error {
	var errs []error
	removed, err := p.deps.Retention.SweepLocal(ctx, p.ch.Dir, p.ch.Policy.LocalExpireDays)
	if err != nil {
		errs = append(errs, services.Wrap(services.ErrFilesystem, "retire-local", "scan", p.ch.Dir, err))
	}
	res.LocalRemoved = removed

	if p.deps.Store != nil {
		removed, err := p.deps.Retention.SweepRemote(ctx, p.deps.Store, p.remotePrefix(), p.ch.Policy.RemoteExpireDays)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(services.WithStage(ctx, "retire-remote"), p.logger),
				"remote listing failed; remote retention skipped", "remote_list_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "expired remote artifacts stay published until the next run"),
			)
			errs = append(errs, fmt.Errorf("remote retention %s: %w", p.ch.Key, err))
		}
		res.RemoteRemoved = removed
	}
	return errors.Join(errs...)
}

func (p *Pipeline) render(ctx context.Context, durations map[string]int, res *Result) error {
	ctx = services.WithStage(ctx, "render")
	logger := logging.WithContext(ctx, p.logger)

	names, err := artifact.ScanLocal(p.ch.Dir)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "render", "scan", p.ch.Dir, err)
	}
	now := p.deps.Now()
	doc := p.deps.Feed.Build(feed.Channel{
		Key:      p.ch.Key,
		Name:     p.ch.Name,
		MaxItems: p.ch.Policy.MaxRSSItems,
	}, p.ch.Dir, p.publishable(names, now), durations, now)
	res.FeedItems = len(doc.Items)

	feedPath := filepath.Join(p.ch.Dir, artifact.FeedFileName)
	if err := fileutil.WriteAtomic(feedPath, 0o644, doc.Encode); err != nil {
		return services.Wrap(services.ErrFilesystem, "render", "write feed", feedPath, err)
	}
	logger.Info("feed rendered",
		logging.String(logging.FieldEventType, "feed_rendered"),
		logging.Int("items", len(doc.Items)),
		logging.String("path", feedPath),
	)

	if p.deps.Store == nil {
		return nil
	}
	key := p.remoteKey(artifact.FeedFileName)
	if err := p.deps.Store.Put(ctx, feedPath, key); err != nil {
		logging.WarnWithContext(logger, "feed upload failed", "feed_upload_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "published feed is stale until the next run"),
		)
		return fmt.Errorf("upload feed %s: %w", p.ch.Key, err)
	}
	return nil
}

// publishable drops artifacts past the remote window. Their objects are gone
// from the bucket even when the local copy is kept longer.
func (p *Pipeline) publishable(names []string, now time.Time) []string {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		decoded, err := artifact.Decode(name)
		if err == nil && retention.Expired(decoded.Date(now), now, p.ch.Policy.RemoteExpireDays) {
			continue
		}
		kept = append(kept, name)
	}
	return kept
}

func (p *Pipeline) remotePrefix() string {
	return p.ch.Key + "/"
}

func (p *Pipeline) remoteKey(name string) string {
	return path.Join(p.ch.Key, name)
}

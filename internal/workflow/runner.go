package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"tubecast/internal/config"
	"tubecast/internal/feed"
	"tubecast/internal/logging"
	"tubecast/internal/pipeline"
	"tubecast/internal/retention"
	"tubecast/internal/services"
	"tubecast/internal/throttle"
)

// Options narrows a run.
type Options struct {
	// Channels restricts the run to these keys. Empty runs every channel.
	Channels []string
	// SkipDiscovery runs retention and rendering only.
	SkipDiscovery bool
}

// Runner drives the channel pipelines of one run.
type Runner struct {
	cfg      *config.Config
	collab   Collaborators
	base     *slog.Logger
	logger   *slog.Logger
	now      func() time.Time
	throttle *throttle.Throttle
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithClock overrides the wall clock used for filtering, retention and feed
// timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner builds a Runner. The throttle is created here, once, from the
// final configuration.
func NewRunner(cfg *config.Config, collab Collaborators, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:      cfg,
		collab:   collab,
		base:     logger,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		now:      time.Now,
		throttle: throttle.New(cfg.Pipeline.MaxYtDlpProcesses),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Throttle exposes the run-wide extraction throttle.
func (r *Runner) Throttle() *throttle.Throttle {
	return r.throttle
}

// Run executes the selected channels and returns their aggregated results.
// The returned error is non-nil only when the selection itself is invalid;
// channel failures are reported through Summary.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	channels, err := r.selectChannels(opts.Channels)
	if err != nil {
		return Summary{}, err
	}
	started := time.Now()
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("channels", len(channels)),
		logging.Int("max_workers", r.cfg.Pipeline.MaxWorkers),
		logging.Int("max_extractions", r.throttle.Limit()),
		logging.Bool("skip_discovery", opts.SkipDiscovery),
	)

	results := make([]pipeline.Result, len(channels))
	var group errgroup.Group
	group.SetLimit(max(1, r.cfg.Pipeline.MaxWorkers))
	for i, ch := range channels {
		i := i
		p := r.newPipeline(ch, opts)
		group.Go(func() error {
			results[i] = r.runChannel(ctx, p)
			return nil
		})
	}
	_ = group.Wait()

	summary := Summary{
		Results:  results,
		Throttle: r.throttle.Stats(),
		Duration: time.Since(started),
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("channels", len(results)),
		logging.Int("failed_channels", len(summary.FailedChannels())),
		logging.Int("extractions", summary.Throttle.Total),
		logging.Int("peak_extractions", summary.Throttle.Peak),
		logging.Duration("duration", summary.Duration),
	}
	if err := summary.Err(); err != nil {
		logging.ErrorWithContext(logger, "run finished with channel errors", "run_complete",
			append(attrs, logging.Error(err))...)
	} else {
		logger.Info("run finished", logging.Args(attrs...)...)
	}
	return summary, nil
}

// runChannel recovers a panicking pipeline into that channel's result.
func (r *Runner) runChannel(ctx context.Context, p *pipeline.Pipeline) (res pipeline.Result) {
	key := p.Channel().Key
	defer func() {
		if recovered := recover(); recovered != nil {
			res = pipeline.Result{
				Channel: key,
				Err:     fmt.Errorf("channel %s panicked: %v", key, recovered),
			}
			logging.ErrorWithContext(logging.WithContext(services.WithChannel(ctx, key), r.logger),
				"channel pipeline panicked", "channel_panic",
				logging.Error(res.Err),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "report the stack trace; other channels were not affected"),
			)
		}
	}()
	return p.Run(ctx)
}

func (r *Runner) newPipeline(ch config.Channel, opts Options) *pipeline.Pipeline {
	return pipeline.New(pipeline.Channel{
		Key:    ch.Key,
		Name:   ch.Name,
		Source: ch.Source,
		Dir:    r.cfg.ChannelDir(ch.Key),
		Policy: r.cfg.PolicyFor(ch),
	}, pipeline.Deps{
		Lister:    r.collab.Lister,
		Fetcher:   r.collab.Fetcher,
		Extractor: r.collab.Extractor,
		Prober:    r.collab.Prober,
		Store:     r.collab.Store,
		Tagger:    r.collab.Tagger,
		Throttle:  r.throttle,
		Retention: retention.NewManager(r.base, r.now),
		Feed: feed.Builder{
			BaseURL:             r.cfg.Storage.PublicBaseURL,
			Language:            r.cfg.Feed.Language,
			Category:            r.cfg.Feed.Category,
			DescriptionTemplate: r.cfg.Feed.DescriptionTemplate,
			Logger:              r.base,
		},
		Logger:           r.base,
		Now:              r.now,
		FallbackDuration: r.cfg.Pipeline.FallbackDuration,
		SkipDiscovery:    opts.SkipDiscovery,
	})
}

func (r *Runner) selectChannels(keys []string) ([]config.Channel, error) {
	if len(keys) == 0 {
		return append([]config.Channel(nil), r.cfg.Channels...), nil
	}
	selected := make([]config.Channel, 0, len(keys))
	for _, key := range keys {
		ch, ok := r.cfg.Channel(key)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "workflow", "select channel", key,
				fmt.Errorf("channel %q is not configured", key))
		}
		selected = append(selected, ch)
	}
	return selected, nil
}

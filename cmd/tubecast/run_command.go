package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tubecast/internal/config"
	"tubecast/internal/logging"
	"tubecast/internal/notifications"
	"tubecast/internal/pipeline"
	"tubecast/internal/publish"
	"tubecast/internal/services"
	"tubecast/internal/workflow"
)

// newCollaborators is swapped in tests to avoid real tools and buckets.
var newCollaborators = workflow.NewCollaborators

type runFlags struct {
	channels      []string
	skipPublish   bool
	skipDiscovery bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover, download and publish new items, then refresh every feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, flags)
		},
	}
	cmd.Flags().StringSliceVar(&flags.channels, "channel", nil, "Limit the run to these channel keys (repeatable)")
	cmd.Flags().BoolVar(&flags.skipPublish, "skip-publish", false, "Do not commit and push feeds even when publishing is enabled")
	return cmd
}

func newFeedCommand(ctx *commandContext) *cobra.Command {
	flags := runFlags{skipDiscovery: true}
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Apply retention and re-render feeds without discovering new items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, flags)
		},
	}
	cmd.Flags().StringSliceVar(&flags.channels, "channel", nil, "Limit to these channel keys (repeatable)")
	cmd.Flags().BoolVar(&flags.skipPublish, "skip-publish", false, "Do not commit and push feeds even when publishing is enabled")
	return cmd
}

func executeRun(cmd *cobra.Command, ctx *commandContext, flags runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	lock := flock.New(cfg.Paths.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		fmt.Fprintf(out, "Another tubecast run holds %s; exiting\n", cfg.Paths.LockPath)
		return nil
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = services.WithRequestID(runCtx, uuid.NewString())
	runLogger := logging.WithContext(runCtx, logger)

	if pruned := logging.CleanupOldLogs(runLogger, cfg.Logging.RetentionDays, logging.DailyLogTarget(cfg.Paths.LogDir, time.Now())); pruned > 0 {
		runLogger.Info("old log files pruned", logging.Int("count", pruned))
	}

	collab, err := newCollaborators(cfg)
	if err != nil {
		return err
	}
	summary, err := workflow.NewRunner(cfg, collab, runLogger).Run(runCtx, workflow.Options{
		Channels:      flags.channels,
		SkipDiscovery: flags.skipDiscovery,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderSummary(out, summary))

	notifier := notifications.NewService(cfg)
	var publishErr error
	if cfg.Publish.Enabled && !flags.skipPublish {
		if publishErr = publishFeeds(runCtx, cfg, runLogger, out); publishErr != nil {
			notify(runLogger, notifier.NotifyError(runCtx, publishErr, "publish"))
		}
	}
	totals := summary.Totals()
	notify(runLogger, notifier.NotifyRunCompleted(runCtx, notifications.RunReport{
		Channels:       len(summary.Results),
		Downloaded:     len(totals.Downloaded),
		FailedItems:    len(totals.Failed),
		FailedChannels: summary.FailedChannels(),
		Duration:       summary.Duration,
	}))

	if failed := summary.FailedChannels(); len(failed) > 0 {
		return fmt.Errorf("%d channel(s) failed (%s): %w", len(failed), strings.Join(failed, ", "), summary.Err())
	}
	return publishErr
}

func notify(logger *slog.Logger, err error) {
	if err == nil {
		return
	}
	logging.WarnWithContext(logger, "notification failed", "notification_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "run report was not delivered"),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
	)
}

func publishFeeds(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	committed, err := publish.New(cfg, publish.WithLogger(logger)).Publish(ctx)
	if err != nil {
		return fmt.Errorf("publish feeds: %w", err)
	}
	if committed {
		fmt.Fprintln(out, "Feeds committed and pushed")
	} else {
		fmt.Fprintln(out, "Feeds unchanged; nothing to publish")
	}
	logger.Info("publish step finished", logging.Bool("committed", committed))
	return nil
}

func renderSummary(w io.Writer, summary workflow.Summary) string {
	headers := []string{"Channel", "Found", "New", "Existing", "Rejected", "Failed", "Uploaded", "Expired", "Feed", "Status"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(summary.Results)+1)
	for _, r := range summary.Results {
		rows = append(rows, summaryRow(r, resultStatus(r)))
	}
	total := summary.Totals()
	rows = append(rows, summaryRow(total, fmt.Sprintf("%s, peak %d/%d extractions",
		summary.Duration.Round(time.Second), summary.Throttle.Peak, summary.Throttle.Limit)))
	return renderTable(w, headers, rows, aligns)
}

func summaryRow(r pipeline.Result, status string) []string {
	return []string{
		r.Channel,
		strconv.Itoa(r.Discovered),
		strconv.Itoa(len(r.Downloaded)),
		strconv.Itoa(len(r.Existing)),
		strconv.Itoa(r.RejectedCount()),
		strconv.Itoa(len(r.Failed)),
		strconv.Itoa(len(r.Uploaded)),
		fmt.Sprintf("%d/%d", len(r.LocalRemoved), len(r.RemoteRemoved)),
		strconv.Itoa(r.FeedItems),
		status,
	}
}

func resultStatus(r pipeline.Result) string {
	if r.Err == nil {
		return "ok"
	}
	return "error (" + services.Category(r.Err) + ")"
}

package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tubecast/internal/config"
)

const userAgent = "tubecast/1.0"

// RunReport is the outcome of one run as seen by notifications.
type RunReport struct {
	Channels       int
	Downloaded     int
	FailedItems    int
	FailedChannels []string
	Duration       time.Duration
}

// Service defines the notification surface exposed to the CLI.
type Service interface {
	NotifyRunCompleted(ctx context.Context, report RunReport) error
	NotifyError(ctx context.Context, err error, context string) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		notifySuccess: cfg.Notifications.NotifySuccess,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	notifySuccess bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, report RunReport) error {
	failed := len(report.FailedChannels)
	if failed == 0 && !n.notifySuccess {
		return nil
	}
	durationText := formatDuration(report.Duration)

	data := payload{
		title:   "tubecast - Run Complete",
		message: fmt.Sprintf("🎧 %d new episode(s) across %d channel(s) in %s", report.Downloaded, report.Channels, durationText),
		tags:    []string{"tubecast", "run", "completed"},
	}
	if report.FailedItems > 0 {
		data.message += fmt.Sprintf("\n%d item(s) skipped after errors", report.FailedItems)
	}
	if failed > 0 {
		data.title = "tubecast - Run Complete (with errors)"
		data.message += fmt.Sprintf("\nFailed channels: %s", strings.Join(report.FailedChannels, ", "))
		data.tags = []string{"tubecast", "run", "failed"}
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "tubecast - Error",
		message:  builder.String(),
		tags:     []string{"tubecast", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunReport) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error   { return nil }

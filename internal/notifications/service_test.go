package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tubecast/internal/config"
	"tubecast/internal/notifications"
)

type captured struct {
	calls    int
	title    string
	tags     string
	priority string
	body     string
}

func newServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		got.calls++
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		got.body = string(body)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, got
}

func newService(topic string, success bool) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.NotifySuccess = success
	return notifications.NewService(&cfg)
}

func TestNoopWhenTopicMissing(t *testing.T) {
	svc := newService("", true)
	if err := svc.NotifyRunCompleted(context.Background(), notifications.RunReport{FailedChannels: []string{"news"}}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestRunCompletedFormatsFailures(t *testing.T) {
	server, got := newServer(t, http.StatusOK)
	svc := newService(server.URL, false)

	err := svc.NotifyRunCompleted(context.Background(), notifications.RunReport{
		Channels:       3,
		Downloaded:     4,
		FailedItems:    1,
		FailedChannels: []string{"news", "talk"},
		Duration:       95 * time.Second,
	})
	if err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if got.title != "tubecast - Run Complete (with errors)" || got.priority != "high" || got.tags != "tubecast,run,failed" {
		t.Fatalf("unexpected headers %+v", got)
	}
	want := "🎧 4 new episode(s) across 3 channel(s) in 1m35s\n1 item(s) skipped after errors\nFailed channels: news, talk"
	if got.body != want {
		t.Fatalf("body = %q, want %q", got.body, want)
	}
}

func TestCleanRunSuppressedUnlessRequested(t *testing.T) {
	server, got := newServer(t, http.StatusOK)

	if err := newService(server.URL, false).NotifyRunCompleted(context.Background(), notifications.RunReport{Channels: 1}); err != nil {
		t.Fatal(err)
	}
	if got.calls != 0 {
		t.Fatalf("clean run should be silent, got %d calls", got.calls)
	}

	if err := newService(server.URL, true).NotifyRunCompleted(context.Background(), notifications.RunReport{Channels: 1, Downloaded: 2}); err != nil {
		t.Fatal(err)
	}
	if got.calls != 1 || got.title != "tubecast - Run Complete" || got.priority != "" {
		t.Fatalf("unexpected success notification %+v", got)
	}
}

func TestNotifyErrorAndStatusFailure(t *testing.T) {
	server, got := newServer(t, http.StatusForbidden)
	err := newService(server.URL, false).NotifyError(context.Background(), errors.New("bucket offline"), "publish")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
	if got.body != "❌ Error with publish: bucket offline" {
		t.Fatalf("body = %q", got.body)
	}
}

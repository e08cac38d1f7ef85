package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tubecast/internal/config"
	"tubecast/internal/logging"
	"tubecast/internal/services"
)

func TestNewFromConfigWritesDailyFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	path := logging.DailyLogPath(cfg.Paths.LogDir, time.Now())
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read daily log: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in daily log, got %q", content)
	}
}

func TestDailyLogPath(t *testing.T) {
	got := logging.DailyLogPath("/var/log/tubecast", time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC))
	if got != "/var/log/tubecast/tubecast_2026-01-03.log" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content := readFile(t, logPath)
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content := readFile(t, logPath)
	if !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-subject.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(services.WithChannel(context.Background(), "news"), "download")
	logger = logging.NewComponentLogger(logger, "pipeline")
	logging.WithContext(ctx, logger).Info("artifact saved", logging.String("file", "01-03：title.mp3"))

	content := readFile(t, logPath)
	for _, want := range []string{"INFO [pipeline] news · download – artifact saved", "file=01-03：title.mp3"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
	if strings.Contains(content, "channel=") {
		t.Fatalf("channel should render in the subject only, got %q", content)
	}
}

func TestJSONLoggerShape(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readFile(t, logPath))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record["level"] != "info" || record["msg"] != "json message" || record["k"] != "v" {
		t.Fatalf("unexpected record %#v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key in %#v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("visible")

	content := readFile(t, logPath)
	if strings.Contains(content, "hidden") || !strings.Contains(content, "visible") {
		t.Fatalf("expected info level filtering, got %q", content)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithChannel(ctx, "news")
	ctx = services.WithStage(ctx, "discover")
	ctx = services.WithRequestID(ctx, "req-xyz")

	fields := logging.ContextFields(ctx)
	got := map[string]string{}
	for _, f := range fields {
		got[f.Key] = f.Value.String()
	}
	want := map[string]string{
		logging.FieldChannel:       "news",
		logging.FieldStage:         "discover",
		logging.FieldCorrelationID: "req-xyz",
	}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("field %s = %q, want %q", key, got[key], value)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var records []slog.Record
	logger := slog.New(&captureHandler{records: &records})

	err := services.Wrap(services.ErrTransport, "discover", "list", "yt-dlp failed", errors.New("boom"))
	logging.WarnWithContext(logger, "listing failed", "discover_failed", logging.Error(err))

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	attrs := map[string]string{}
	records[0].Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = fmt.Sprint(a.Value.Any())
		return true
	})
	if attrs[logging.FieldEventType] != "discover_failed" {
		t.Fatalf("event_type = %q", attrs[logging.FieldEventType])
	}
	if attrs[logging.FieldErrorHint] == "" || attrs[logging.FieldImpact] == "" {
		t.Fatalf("expected default hint and impact, got %#v", attrs)
	}
	if attrs[logging.FieldErrorCategory] != "transport" {
		t.Fatalf("error_category = %q", attrs[logging.FieldErrorCategory])
	}
}

func TestFormatSubject(t *testing.T) {
	cases := map[string][2]string{
		"news · render": {"news", "render"},
		"news":          {"news", ""},
		"render":        {"", "render"},
		"":              {" ", ""},
	}
	for want, in := range cases {
		if got := logging.FormatSubject(in[0], in[1]); got != want {
			t.Fatalf("FormatSubject(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

type captureHandler struct {
	records *[]slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

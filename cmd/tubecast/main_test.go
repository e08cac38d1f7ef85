package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"tubecast/internal/config"
	"tubecast/internal/media/ytdlp"
	"tubecast/internal/testsupport"
	"tubecast/internal/workflow"
)

type stubTools struct {
	listErr error
}

func (s stubTools) ListItems(context.Context, string, int) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return []string{"abc123"}, nil
}

func (stubTools) FetchMetadata(_ context.Context, id string) (ytdlp.Metadata, error) {
	return ytdlp.Metadata{ID: id, Title: "Today's Episode", UploadDate: time.Now().Format("20060102"), Duration: 1500}, nil
}

func (stubTools) Extract(_ context.Context, _ string, outputPath string) error {
	return os.WriteFile(outputPath, []byte("audio"), 0o644)
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func setupCLI(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	t.Setenv("HOME", filepath.Join(testsupport.BaseDir(cfg), "home"))
	return cfg, writeTestConfig(t, cfg)
}

func injectCollaborators(t *testing.T, tools stubTools, store *testsupport.MemoryStore) {
	t.Helper()
	previous := newCollaborators
	newCollaborators = func(*config.Config) (workflow.Collaborators, error) {
		return workflow.Collaborators{Lister: tools, Fetcher: tools, Extractor: tools, Store: store}, nil
	}
	t.Cleanup(func() { newCollaborators = previous })
}

func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	_, configPath := setupCLI(t)

	out, err := runCLI(t, []string{"config", "validate"}, configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Channels: 1")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}

func TestChannelsCommand(t *testing.T) {
	_, configPath := setupCLI(t)
	out, err := runCLI(t, []string{"channels"}, configPath)
	if err != nil {
		t.Fatalf("channels: %v", err)
	}
	requireContains(t, out, "News Channel")
	requireContains(t, out, "https://cdn.example.com/news/feed.xml")
	requireContains(t, out, "28d")
}

func TestDepsCommand(t *testing.T) {
	cfg, _ := setupCLI(t, testsupport.WithStubbedBinaries())
	cfg.Tools.FFmpegLocation = filepath.Dir(testsupport.StubBinary(t, t.TempDir(), "ffmpeg", "#!/bin/sh\nexit 0\n"))
	configPath := writeTestConfig(t, cfg)

	out, err := runCLI(t, []string{"deps"}, configPath)
	if err != nil {
		t.Fatalf("deps: %v\n%s", err, out)
	}
	requireContains(t, out, "yt-dlp")

	cfg.Tools.YtDlp = filepath.Join(t.TempDir(), "missing-yt-dlp")
	configPath = writeTestConfig(t, cfg)
	if _, err := runCLI(t, []string{"deps"}, configPath); err == nil {
		t.Fatal("expected missing yt-dlp to fail")
	}
}

func TestRunCommandPublishesFeed(t *testing.T) {
	_, configPath := setupCLI(t)
	store := testsupport.NewMemoryStore()
	injectCollaborators(t, stubTools{}, store)

	out, err := runCLI(t, []string{"run"}, configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "news")
	requireContains(t, out, "ok")
	if !store.Has("news/feed.xml") {
		t.Fatalf("feed not uploaded, puts=%v", store.Puts)
	}
}

func TestRunCommandReportsChannelFailure(t *testing.T) {
	_, configPath := setupCLI(t)
	injectCollaborators(t, stubTools{listErr: errors.New("offline")}, testsupport.NewMemoryStore())

	out, err := runCLI(t, []string{"run"}, configPath)
	if err == nil || !strings.Contains(err.Error(), "1 channel(s) failed") {
		t.Fatalf("expected channel failure, got %v", err)
	}
	requireContains(t, out, "error")
}

func TestRunCommandExitsWhenLocked(t *testing.T) {
	cfg, configPath := setupCLI(t)
	injectCollaborators(t, stubTools{}, testsupport.NewMemoryStore())
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.LockPath), 0o755); err != nil {
		t.Fatal(err)
	}
	holder := flock.New(cfg.Paths.LockPath)
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("hold lock: locked=%v err=%v", locked, err)
	}
	t.Cleanup(func() { _ = holder.Unlock() })

	out, err := runCLI(t, []string{"run"}, configPath)
	if err != nil {
		t.Fatalf("locked run should exit cleanly: %v", err)
	}
	requireContains(t, out, "Another tubecast run holds")
}

func TestRunCommandUnknownChannel(t *testing.T) {
	_, configPath := setupCLI(t)
	injectCollaborators(t, stubTools{}, testsupport.NewMemoryStore())
	if _, err := runCLI(t, []string{"run", "--channel", "missing"}, configPath); err == nil {
		t.Fatal("expected unknown channel error")
	}
}

func TestRunCommandNotifiesFailures(t *testing.T) {
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
	}))
	t.Cleanup(server.Close)

	cfg, _ := setupCLI(t)
	cfg.Notifications.NtfyTopic = server.URL
	configPath := writeTestConfig(t, cfg)
	injectCollaborators(t, stubTools{listErr: errors.New("offline")}, testsupport.NewMemoryStore())

	if _, err := runCLI(t, []string{"run"}, configPath); err == nil {
		t.Fatal("expected channel failure")
	}
	if len(bodies) != 1 || !strings.Contains(bodies[0], "Failed channels: news") {
		t.Fatalf("unexpected notifications %q", bodies)
	}
}

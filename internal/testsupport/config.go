package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tubecast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a valid config seeded with unique temp directories per
// test and a single "news" channel. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LockPath = filepath.Join(base, "data", ".tubecast.lock")
	cfgVal.Storage.Endpoint = "https://account.r2.cloudflarestorage.com"
	cfgVal.Storage.Bucket = "podcasts"
	cfgVal.Storage.AccessKey = "test-access"
	cfgVal.Storage.SecretKey = "test-secret"
	cfgVal.Storage.PublicBaseURL = "https://cdn.example.com"
	cfgVal.Channels = []config.Channel{{Key: "news", Name: "News Channel", Source: "https://www.youtube.com/@news/videos"}}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithChannels replaces the configured channels.
func WithChannels(channels ...config.Channel) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Channels = append([]config.Channel(nil), channels...)
	}
}

// WithPublishRepo enables the git publish step against dir.
func WithPublishRepo(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Publish.Enabled = true
		b.cfg.Publish.RepoDir = dir
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// points the tool configuration at them. If names is empty, every external
// binary tubecast drives is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffprobe", "git"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			target := StubBinary(b.t, binDir, name, "#!/bin/sh\nexit 0\n")
			switch name {
			case "yt-dlp":
				b.cfg.Tools.YtDlp = target
			case "ffprobe":
				b.cfg.Tools.FFprobe = target
			case "git":
				b.cfg.Tools.Git = target
			}
		}
	}
}

// StubBinary writes an executable shell script named name into dir and
// returns its path.
func StubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

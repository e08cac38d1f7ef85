package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	LockPath string `toml:"lock_path"`
}

// Tools names the external executables tubecast drives.
type Tools struct {
	YtDlp          string `toml:"ytdlp"`
	FFprobe        string `toml:"ffprobe"`
	FFmpegLocation string `toml:"ffmpeg_location"`
	Git            string `toml:"git"`
}

// Storage contains the S3-compatible bucket used to publish artifacts.
type Storage struct {
	Endpoint      string `toml:"endpoint"`
	Region        string `toml:"region"`
	Bucket        string `toml:"bucket"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	PublicBaseURL string `toml:"public_base_url"`
	PublicRead    bool   `toml:"public_read"`
}

// Pipeline holds the run-wide defaults for every channel policy knob plus the
// concurrency limits of the run itself.
type Pipeline struct {
	MinDuration       int `toml:"min_duration"`
	MaxDuration       int `toml:"max_duration"`
	LookBackDays      int `toml:"look_back_days"`
	LocalExpireDays   int `toml:"local_expire_days"`
	RemoteExpireDays  int `toml:"remote_expire_days"`
	MaxItems          int `toml:"max_items"`
	MaxRSSItems       int `toml:"max_rss_items"`
	MaxWorkers        int `toml:"max_workers"`
	MaxYtDlpProcesses int `toml:"max_yt_dlp_processes"`
	FallbackDuration  int `toml:"fallback_duration"`
}

// Audio controls extraction output.
type Audio struct {
	Format    string `toml:"format"`
	Bitrate   string `toml:"bitrate"`
	WriteTags bool   `toml:"write_tags"`
}

// Feed contains podcast document settings shared by all channels.
type Feed struct {
	Language            string `toml:"language"`
	Category            string `toml:"category"`
	DescriptionTemplate string `toml:"description_template"`
}

// Publish configures the git step that commits regenerated feeds.
type Publish struct {
	Enabled       bool   `toml:"enabled"`
	RepoDir       string `toml:"repo_dir"`
	FeedGlob      string `toml:"feed_glob"`
	CommitMessage string `toml:"commit_message"`
	Remote        string `toml:"remote"`
	Branch        string `toml:"branch"`
}

// Notifications configures ntfy run reports. An empty topic disables them.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	NotifySuccess  bool   `toml:"notify_success"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Channel describes one configured source. Nil override fields inherit the
// [pipeline] defaults.
type Channel struct {
	Key    string `toml:"key"`
	Name   string `toml:"name"`
	Source string `toml:"source"`

	MinDuration      *int `toml:"min_duration,omitempty"`
	MaxDuration      *int `toml:"max_duration,omitempty"`
	LookBackDays     *int `toml:"look_back_days,omitempty"`
	LocalExpireDays  *int `toml:"local_expire_days,omitempty"`
	RemoteExpireDays *int `toml:"remote_expire_days,omitempty"`
	MaxItems         *int `toml:"max_items,omitempty"`
	MaxRSSItems      *int `toml:"max_rss_items,omitempty"`
}

// Policy is the resolved retention and discovery policy of a single channel.
type Policy struct {
	MinDuration      int
	MaxDuration      int
	LookBackDays     int
	LocalExpireDays  int
	RemoteExpireDays int
	MaxItems         int
	MaxRSSItems      int
}

// Config encapsulates all configuration values for tubecast.
//
// Configuration sections by subsystem:
//   - Paths: data, log and lock locations
//   - Tools: yt-dlp, ffprobe, ffmpeg and git executables
//   - Storage: S3-compatible bucket and public URL for published artifacts
//   - Pipeline: default channel policy and run concurrency limits
//   - Audio: extraction format, bitrate and ID3 tagging
//   - Feed: podcast document language, category and description
//   - Publish: git commit/push of regenerated feeds
//   - Notifications: ntfy run reports
//   - Logging: log format, level, and retention
//   - Channels: the configured sources
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Storage       Storage       `toml:"storage"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Audio         Audio         `toml:"audio"`
	Feed          Feed          `toml:"feed"`
	Publish       Publish       `toml:"publish"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Channels      []Channel     `toml:"channels"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := loadEnvFile(filepath.Join(filepath.Dir(resolvedPath), EnvFileName)); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// EnvFileName is read from the config directory before credentials are
// resolved. Variables already present in the environment take precedence.
const EnvFileName = ".env"

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tubecast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory, one folder per channel, and
// the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	for _, ch := range c.Channels {
		dirs = append(dirs, c.ChannelDir(ch.Key))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ChannelDir returns the local artifact directory for a channel key.
func (c *Config) ChannelDir(key string) string {
	return filepath.Join(c.Paths.DataDir, key)
}

// PolicyFor resolves a channel's overrides against the [pipeline] defaults.
func (c *Config) PolicyFor(ch Channel) Policy {
	p := c.Pipeline
	return Policy{
		MinDuration:      pick(ch.MinDuration, p.MinDuration),
		MaxDuration:      pick(ch.MaxDuration, p.MaxDuration),
		LookBackDays:     pick(ch.LookBackDays, p.LookBackDays),
		LocalExpireDays:  pick(ch.LocalExpireDays, p.LocalExpireDays),
		RemoteExpireDays: pick(ch.RemoteExpireDays, p.RemoteExpireDays),
		MaxItems:         pick(ch.MaxItems, p.MaxItems),
		MaxRSSItems:      pick(ch.MaxRSSItems, p.MaxRSSItems),
	}
}

// Channel returns the configured channel with the given key.
func (c *Config) Channel(key string) (Channel, bool) {
	for _, ch := range c.Channels {
		if ch.Key == key {
			return ch, true
		}
	}
	return Channel{}, false
}

// ChannelLink returns the public URL prefix under which a channel's artifacts
// and feed are served.
func (c *Config) ChannelLink(key string) string {
	return strings.TrimRight(c.Storage.PublicBaseURL, "/") + "/" + url.PathEscape(key) + "/"
}

func pick(override *int, fallback int) int {
	if override != nil {
		return *override
	}
	return fallback
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeStorage()
	c.normalizePipeline()
	c.normalizeAudio()
	c.normalizeFeed()
	if err := c.normalizePublish(); err != nil {
		return err
	}
	c.normalizeChannels()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = filepath.Join(c.Paths.DataDir, defaultLockName)
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.YtDlp = strings.TrimSpace(c.Tools.YtDlp)
	if c.Tools.YtDlp == "" {
		c.Tools.YtDlp = defaultYtDlp
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	c.Tools.Git = strings.TrimSpace(c.Tools.Git)
	if c.Tools.Git == "" {
		c.Tools.Git = defaultGit
	}
	c.Tools.FFmpegLocation = strings.TrimSpace(c.Tools.FFmpegLocation)
	if c.Tools.FFmpegLocation != "" {
		if expanded, err := expandPath(c.Tools.FFmpegLocation); err == nil {
			c.Tools.FFmpegLocation = expanded
		}
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = defaultStorageRegion
	}
	c.Storage.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicBaseURL), "/")
	c.Storage.AccessKey = strings.TrimSpace(c.Storage.AccessKey)
	if c.Storage.AccessKey == "" {
		c.Storage.AccessKey = firstEnv("R2_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	}
	c.Storage.SecretKey = strings.TrimSpace(c.Storage.SecretKey)
	if c.Storage.SecretKey == "" {
		c.Storage.SecretKey = firstEnv("R2_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.FallbackDuration <= 0 {
		c.Pipeline.FallbackDuration = defaultFallbackDuration
	}
	if c.Pipeline.MaxItems <= 0 {
		c.Pipeline.MaxItems = defaultMaxItems
	}
	if c.Pipeline.MaxRSSItems <= 0 {
		c.Pipeline.MaxRSSItems = defaultMaxRSSItems
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.Format = strings.ToLower(strings.TrimSpace(c.Audio.Format))
	if c.Audio.Format == "" {
		c.Audio.Format = defaultAudioFormat
	}
	c.Audio.Bitrate = strings.TrimSpace(c.Audio.Bitrate)
}

func (c *Config) normalizeFeed() {
	c.Feed.Language = strings.TrimSpace(c.Feed.Language)
	if c.Feed.Language == "" {
		c.Feed.Language = defaultFeedLanguage
	}
	c.Feed.Category = strings.TrimSpace(c.Feed.Category)
	if c.Feed.Category == "" {
		c.Feed.Category = defaultFeedCategory
	}
	if strings.TrimSpace(c.Feed.DescriptionTemplate) == "" {
		c.Feed.DescriptionTemplate = defaultDescriptionTemplate
	}
}

func (c *Config) normalizePublish() error {
	var err error
	c.Publish.RepoDir = strings.TrimSpace(c.Publish.RepoDir)
	if c.Publish.RepoDir != "" {
		if c.Publish.RepoDir, err = expandPath(c.Publish.RepoDir); err != nil {
			return fmt.Errorf("publish.repo_dir: %w", err)
		}
	}
	c.Publish.FeedGlob = strings.TrimSpace(c.Publish.FeedGlob)
	if c.Publish.FeedGlob == "" {
		c.Publish.FeedGlob = defaultFeedGlob
	}
	c.Publish.CommitMessage = strings.TrimSpace(c.Publish.CommitMessage)
	if c.Publish.CommitMessage == "" {
		c.Publish.CommitMessage = defaultCommitMessage
	}
	c.Publish.Remote = strings.TrimSpace(c.Publish.Remote)
	c.Publish.Branch = strings.TrimSpace(c.Publish.Branch)
	return nil
}

func (c *Config) normalizeChannels() {
	for i := range c.Channels {
		ch := &c.Channels[i]
		ch.Key = strings.TrimSpace(ch.Key)
		ch.Source = strings.TrimSpace(ch.Source)
		ch.Name = strings.TrimSpace(ch.Name)
		if ch.Name == "" {
			ch.Name = ch.Key
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

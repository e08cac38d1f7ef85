package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateChannels(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint must be set")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set")
	}
	if c.Storage.PublicBaseURL == "" {
		return errors.New("storage.public_base_url must be set")
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("storage.access_key and storage.secret_key are required. Set R2_ACCESS_KEY_ID/R2_SECRET_ACCESS_KEY or edit %s (create with 'tubecast config init')", defaultPath)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if err := ensurePositiveMap(map[string]int{
		"pipeline.max_workers":          c.Pipeline.MaxWorkers,
		"pipeline.max_yt_dlp_processes": c.Pipeline.MaxYtDlpProcesses,
	}); err != nil {
		return err
	}
	return validatePolicy("pipeline", c.PolicyFor(Channel{}))
}

func (c *Config) validateAudio() error {
	switch c.Audio.Format {
	case "mp3":
	default:
		return fmt.Errorf("audio.format: unsupported value %q (only mp3 is published)", c.Audio.Format)
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.Enabled && c.Publish.RepoDir == "" {
		return errors.New("publish.repo_dir must be set when publish.enabled is true")
	}
	return nil
}

func (c *Config) validateChannels() error {
	if len(c.Channels) == 0 {
		return errors.New("at least one [[channels]] entry is required")
	}
	seen := make(map[string]struct{}, len(c.Channels))
	for i, ch := range c.Channels {
		label := fmt.Sprintf("channels[%d]", i)
		if ch.Key == "" {
			return fmt.Errorf("%s.key must be set", label)
		}
		if strings.ContainsAny(ch.Key, `/\`) || ch.Key == "." || ch.Key == ".." {
			return fmt.Errorf("%s.key %q must be a single path segment", label, ch.Key)
		}
		if _, dup := seen[ch.Key]; dup {
			return fmt.Errorf("%s.key %q is duplicated", label, ch.Key)
		}
		seen[ch.Key] = struct{}{}
		if ch.Source == "" {
			return fmt.Errorf("%s.source must be set for channel %q", label, ch.Key)
		}
		if err := validatePolicy(label, c.PolicyFor(ch)); err != nil {
			return err
		}
	}
	return nil
}

func validatePolicy(label string, p Policy) error {
	if p.MinDuration < 0 {
		return fmt.Errorf("%s.min_duration must be >= 0", label)
	}
	if p.MaxDuration <= 0 {
		return fmt.Errorf("%s.max_duration must be positive", label)
	}
	if p.MinDuration > p.MaxDuration {
		return fmt.Errorf("%s.min_duration must not exceed max_duration", label)
	}
	if p.LookBackDays < 0 {
		return fmt.Errorf("%s.look_back_days must be >= 0", label)
	}
	if p.RemoteExpireDays > 0 && (p.LocalExpireDays <= 0 || p.LocalExpireDays > p.RemoteExpireDays) {
		return fmt.Errorf("%s.local_expire_days must be between 1 and remote_expire_days (%d) so feeds never list deleted objects", label, p.RemoteExpireDays)
	}
	if p.MaxItems <= 0 {
		return fmt.Errorf("%s.max_items must be positive", label)
	}
	if p.MaxRSSItems <= 0 {
		return fmt.Errorf("%s.max_rss_items must be positive", label)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

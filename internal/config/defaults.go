package config

const (
	defaultConfigPath          = "~/.config/tubecast/config.toml"
	defaultDataDir             = "~/.local/share/tubecast/data"
	defaultLogDir              = "~/.local/share/tubecast/logs"
	defaultLockName            = ".tubecast.lock"
	defaultYtDlp               = "yt-dlp"
	defaultFFprobe             = "ffprobe"
	defaultGit                 = "git"
	defaultStorageRegion       = "auto"
	defaultMinDuration         = 60
	defaultMaxDuration         = 7200
	defaultLookBackDays        = 4
	defaultLocalExpireDays     = 10
	defaultRemoteExpireDays    = 28
	defaultMaxItems            = 15
	defaultMaxRSSItems         = 30
	defaultMaxWorkers          = 3
	defaultMaxYtDlpProcesses   = 2
	defaultFallbackDuration    = 3600
	defaultAudioFormat         = "mp3"
	defaultAudioBitrate        = "128k"
	defaultFeedLanguage        = "ja"
	defaultFeedCategory        = "News"
	defaultDescriptionTemplate = "%s の音声Podcast"
	defaultFeedGlob            = "*/feed.xml"
	defaultCommitMessage       = "auto: update all feeds"
	defaultNtfyTimeout         = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 100
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Tools: Tools{
			YtDlp:   defaultYtDlp,
			FFprobe: defaultFFprobe,
			Git:     defaultGit,
		},
		Storage: Storage{
			Region:     defaultStorageRegion,
			PublicRead: true,
		},
		Pipeline: Pipeline{
			MinDuration:       defaultMinDuration,
			MaxDuration:       defaultMaxDuration,
			LookBackDays:      defaultLookBackDays,
			LocalExpireDays:   defaultLocalExpireDays,
			RemoteExpireDays:  defaultRemoteExpireDays,
			MaxItems:          defaultMaxItems,
			MaxRSSItems:       defaultMaxRSSItems,
			MaxWorkers:        defaultMaxWorkers,
			MaxYtDlpProcesses: defaultMaxYtDlpProcesses,
			FallbackDuration:  defaultFallbackDuration,
		},
		Audio: Audio{
			Format:    defaultAudioFormat,
			Bitrate:   defaultAudioBitrate,
			WriteTags: true,
		},
		Feed: Feed{
			Language:            defaultFeedLanguage,
			Category:            defaultFeedCategory,
			DescriptionTemplate: defaultDescriptionTemplate,
		},
		Publish: Publish{
			FeedGlob:      defaultFeedGlob,
			CommitMessage: defaultCommitMessage,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

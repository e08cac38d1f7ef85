package workflow

import (
	"tubecast/internal/config"
	"tubecast/internal/media/ffprobe"
	"tubecast/internal/media/tagging"
	"tubecast/internal/media/ytdlp"
	"tubecast/internal/objectstore"
	"tubecast/internal/pipeline"
)

// Collaborators are the external-tool and storage adapters shared by every
// pipeline in a run.
type Collaborators struct {
	Lister    pipeline.Lister
	Fetcher   pipeline.MetadataFetcher
	Extractor pipeline.Extractor
	Prober    pipeline.Prober
	Store     pipeline.ObjectStore
	Tagger    pipeline.Tagger
}

// NewCollaborators wires the production adapters from configuration: yt-dlp
// for listing, metadata and extraction, ffprobe for durations, the S3 bucket
// for publication and, when enabled, the ID3 tagger.
func NewCollaborators(cfg *config.Config) (Collaborators, error) {
	client := ytdlp.New(cfg.Tools.YtDlp,
		ytdlp.WithFFmpegLocation(cfg.Tools.FFmpegLocation),
		ytdlp.WithAudio(cfg.Audio.Format, cfg.Audio.Bitrate),
	)
	store, err := objectstore.New(cfg.Storage)
	if err != nil {
		return Collaborators{}, err
	}
	collab := Collaborators{
		Lister:    client,
		Fetcher:   client,
		Extractor: client,
		Prober:    ffprobe.Prober{Binary: cfg.Tools.FFprobe},
		Store:     store,
	}
	if cfg.Audio.WriteTags {
		collab.Tagger = tagging.New()
	}
	return collab, nil
}

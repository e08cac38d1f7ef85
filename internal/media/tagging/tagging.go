// Package tagging writes ID3 metadata into extracted MP3 artifacts so podcast
// clients that ignore the feed still show a sensible title and show name.
package tagging

import (
	"errors"
	"os"
	"time"

	"github.com/bogem/id3v2"

	"tubecast/internal/services"
)

// Tags are the frames written to an artifact.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Date   time.Time
}

// Tagger writes Tags with github.com/bogem/id3v2.
type Tagger struct{}

// New returns a Tagger.
func New() *Tagger {
	return &Tagger{}
}

// Tag replaces the title, artist, album and date frames of the file at path.
func (t *Tagger) Tag(path string, tags Tags) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrFilesystem, "tag", "open", path, err)
		}
		return services.Wrap(services.ErrParse, "tag", "open", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}
	if !tags.Date.IsZero() {
		tag.DeleteFrames("TYER")
		tag.DeleteFrames("TDRC")
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, tags.Date.Format("2006"))
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, tags.Date.Format("2006-01-02"))
	}

	if err := tag.Save(); err != nil {
		return services.Wrap(services.ErrFilesystem, "tag", "save", path, err)
	}
	return nil
}

package feed

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/eduncan911/podcast"

	"tubecast/internal/artifact"
	"tubecast/internal/logging"
	"tubecast/internal/services"
)

// Channel carries the display fields and item bound of one feed.
type Channel struct {
	Key      string
	Name     string
	MaxItems int
}

// Item is one published artifact in a feed.
type Item struct {
	FileName string
	Title    string
	URL      string
	Size     int64
	Date     time.Time
	Duration int
}

// Document is the rendered state of a channel feed.
type Document struct {
	Title       string
	Link        string
	Description string
	Language    string
	Category    string
	BuildDate   time.Time
	Items       []Item
}

// Builder assembles feed documents from local artifacts.
type Builder struct {
	BaseURL             string
	Language            string
	Category            string
	DescriptionTemplate string
	Logger              *slog.Logger
}

// ChannelLink returns the public directory URL of a channel.
func (b Builder) ChannelLink(key string) string {
	return strings.TrimSuffix(b.BaseURL, "/") + "/" + url.PathEscape(key) + "/"
}

// ItemURL returns the public URL of an artifact.
func (b Builder) ItemURL(key, name string) string {
	return b.ChannelLink(key) + url.PathEscape(name)
}

// Build selects up to ch.MaxItems artifacts from names, newest first, and
// describes them. Names that do not decode or whose size cannot be read in
// dir are skipped without using a slot. Durations missing from durations
// render as zero.
func (b Builder) Build(ch Channel, dir string, names []string, durations map[string]int, now time.Time) Document {
	logger := logging.NewComponentLogger(b.Logger, "feed")
	doc := Document{
		Title:       ch.Name,
		Link:        b.ChannelLink(ch.Key),
		Description: b.description(ch.Name),
		Language:    b.Language,
		Category:    b.Category,
		BuildDate:   now,
	}

	sorted := append([]string(nil), names...)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	for _, name := range sorted {
		if ch.MaxItems > 0 && len(doc.Items) >= ch.MaxItems {
			break
		}
		decoded, err := artifact.Decode(name)
		if err != nil {
			if !errors.Is(err, artifact.ErrNotArtifact) {
				logging.WarnWithContext(logger, "feed item skipped", "feed_item_skipped",
					logging.String(logging.FieldChannel, ch.Key),
					logging.String("file", name),
					logging.Error(err),
					logging.String(logging.FieldImpact, "artifact is not listed in the feed"),
				)
			}
			continue
		}
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			logging.WarnWithContext(logger, "feed item skipped", "feed_item_skipped",
				logging.String(logging.FieldChannel, ch.Key),
				logging.String("file", name),
				logging.Error(services.Wrap(services.ErrFilesystem, "render", "stat", name, err)),
				logging.String(logging.FieldImpact, "artifact is not listed in the feed"),
			)
			continue
		}
		doc.Items = append(doc.Items, Item{
			FileName: name,
			Title:    decoded.Title,
			URL:      b.ItemURL(ch.Key, name),
			Size:     info.Size(),
			Date:     decoded.Date(now),
			Duration: durations[name],
		})
	}
	return doc
}

func (b Builder) description(name string) string {
	tmpl := b.DescriptionTemplate
	if tmpl == "" {
		return name
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, name)
	}
	return tmpl
}

// FormatDuration renders seconds as zero-padded HH:MM:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// Encode renders d as RSS 2.0 with the iTunes namespace.
func (d Document) Encode(w io.Writer) error {
	build := d.BuildDate.UTC()
	p := podcast.New(d.Title, d.Link, d.Description, nil, &build)
	p.Language = d.Language
	if d.Category != "" {
		p.AddCategory(d.Category, nil)
	}

	for _, it := range d.Items {
		pub := it.Date
		item := podcast.Item{
			GUID:        it.URL,
			Title:       it.Title,
			Link:        it.URL,
			Description: it.Title,
			IDuration:   FormatDuration(it.Duration),
		}
		if item.Title == "" {
			item.Title = it.FileName
			item.Description = it.FileName
		}
		item.AddEnclosure(it.URL, podcast.MP3, it.Size)
		item.AddPubDate(&pub)
		if _, err := p.AddItem(item); err != nil {
			return services.Wrap(services.ErrParse, "render", "add item", it.FileName, err)
		}
	}

	if err := p.Encode(w); err != nil {
		return services.Wrap(services.ErrFilesystem, "render", "encode", d.Title, err)
	}
	return nil
}

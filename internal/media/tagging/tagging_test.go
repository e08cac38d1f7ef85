package tagging_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2"

	"tubecast/internal/media/tagging"
	"tubecast/internal/services"
)

func TestTagWritesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01-05：episode.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := tagging.New().Tag(path, tagging.Tags{
		Title:  "朝のニュース",
		Artist: "News Channel",
		Album:  "News Channel",
		Date:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()

	if tag.Title() != "朝のニュース" || tag.Artist() != "News Channel" || tag.Album() != "News Channel" {
		t.Fatalf("unexpected frames title=%q artist=%q album=%q", tag.Title(), tag.Artist(), tag.Album())
	}
	if got := tag.GetTextFrame("TDRC").Text; got != "2026-01-05" {
		t.Fatalf("TDRC = %q", got)
	}
}

func TestTagMissingFile(t *testing.T) {
	err := tagging.New().Tag(filepath.Join(t.TempDir(), "absent.mp3"), tagging.Tags{Title: "x"})
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
}

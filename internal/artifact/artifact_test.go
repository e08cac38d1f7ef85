package artifact_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tubecast/internal/artifact"
	"tubecast/internal/services"
)

func TestEncode(t *testing.T) {
	date := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	got := artifact.Encode(date, `News #12: "Weekly" / recap?`)
	want := "03-07：News  12 Weekly  recap.mp3"
	if got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestEncodeTruncatesTitle(t *testing.T) {
	title := strings.Repeat("あ", 55)
	name := artifact.Encode(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), title)
	decoded, err := artifact.Decode(name)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := len([]rune(decoded.Title)); got != artifact.MaxTitleRunes {
		t.Fatalf("expected %d runes, got %d", artifact.MaxTitleRunes, got)
	}
}

func TestRoundTrip(t *testing.T) {
	titles := []string{
		"朝のニュース 2026年1月5日",
		"Daily Briefing",
		strings.Repeat("x", 80),
	}
	date := time.Date(2026, 11, 23, 0, 0, 0, 0, time.UTC)
	for _, title := range titles {
		decoded, err := artifact.Decode(artifact.Encode(date, title))
		if err != nil {
			t.Fatalf("Decode(%q): %v", title, err)
		}
		if decoded.Month != time.November || decoded.Day != 23 {
			t.Fatalf("date mismatch: %+v", decoded)
		}
		want := strings.TrimSpace(artifact.SanitizeTitle(title))
		if decoded.Title != want {
			t.Fatalf("title = %q, want %q", decoded.Title, want)
		}
	}
}

func TestDecodeRejectsNonArtifacts(t *testing.T) {
	for _, name := range []string{"feed.xml", "01-05 title.mp3", "01-05：title.m4a", ".DS_Store"} {
		if _, err := artifact.Decode(name); !errors.Is(err, artifact.ErrNotArtifact) {
			t.Fatalf("Decode(%q) err = %v, want ErrNotArtifact", name, err)
		}
	}
}

func TestDecodeMalformedDate(t *testing.T) {
	for _, name := range []string{"13-01：x.mp3", "1-5：x.mp3", "02-30：x.mp3", "ab-cd：x.mp3"} {
		_, err := artifact.Decode(name)
		if err == nil || errors.Is(err, artifact.ErrNotArtifact) {
			t.Fatalf("Decode(%q) err = %v, want parse error", name, err)
		}
		if !errors.Is(err, services.ErrParse) {
			t.Fatalf("Decode(%q) expected ErrParse marker, got %v", name, err)
		}
	}
}

func TestDecodeSplitsOnFirstSeparator(t *testing.T) {
	decoded, err := artifact.Decode("04-01：第1回：特集 .mp3")
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Title != "第1回：特集" {
		t.Fatalf("title = %q", decoded.Title)
	}
}

func TestInferDate(t *testing.T) {
	tests := []struct {
		name  string
		month time.Month
		day   int
		now   time.Time
		want  time.Time
	}{
		{
			name: "same year", month: time.March, day: 4,
			now:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "december in january rolls back", month: time.December, day: 29,
			now:  time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC),
			want: time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "other future dates stay", month: time.June, day: 1,
			now:  time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC),
			want: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "today is not future", month: time.January, day: 3,
			now:  time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC),
			want: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "leap day normalizes", month: time.February, day: 29,
			now:  time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := artifact.InferDate(tt.month, tt.day, tt.now); !got.Equal(tt.want) {
				t.Fatalf("InferDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanLocal(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"01-20：b.mp3", "01-05：a.mp3", "feed.xml", "notes.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "02-01：dir.mp3"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := artifact.ScanLocal(dir)
	if err != nil {
		t.Fatalf("ScanLocal: %v", err)
	}
	if len(names) != 2 || names[0] != "01-05：a.mp3" || names[1] != "01-20：b.mp3" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestScanLocalMissingDir(t *testing.T) {
	names, err := artifact.ScanLocal(filepath.Join(t.TempDir(), "absent"))
	if err != nil || len(names) != 0 {
		t.Fatalf("expected empty result, got %v, %v", names, err)
	}
}

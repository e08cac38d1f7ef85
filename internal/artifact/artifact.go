package artifact

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"tubecast/internal/services"
	"tubecast/internal/textutil"
)

const (
	// Separator splits the MM-DD prefix from the title (U+FF1A FULLWIDTH COLON).
	Separator = "："
	// Extension is the suffix of every audio artifact.
	Extension = ".mp3"
	// MaxTitleRunes bounds the title portion of a file name.
	MaxTitleRunes = 40
	// FeedFileName is the per-channel feed document name.
	FeedFileName = "feed.xml"
)

// ErrNotArtifact reports a name that does not have the artifact shape.
var ErrNotArtifact = errors.New("not an artifact name")

// Name is the decoded form of an artifact file name.
type Name struct {
	Month time.Month
	Day   int
	Title string
}

// Date returns the calendar date of n inferred relative to now.
func (n Name) Date(now time.Time) time.Time {
	return InferDate(n.Month, n.Day, now)
}

// SanitizeTitle applies the file name rules to title and truncates it to
// MaxTitleRunes runes.
func SanitizeTitle(title string) string {
	return textutil.TruncateRunes(textutil.SanitizeFileName(title), MaxTitleRunes)
}

// Encode builds the artifact file name for an item uploaded on date.
func Encode(date time.Time, title string) string {
	return date.Format("01-02") + Separator + SanitizeTitle(title) + Extension
}

// IsArtifactName reports whether name has the artifact shape. Dates are not
// validated.
func IsArtifactName(name string) bool {
	return strings.HasSuffix(name, Extension) && strings.Contains(name, Separator)
}

// Decode recovers the month, day and title from an artifact file name. Names
// without the extension or separator return ErrNotArtifact; a malformed date
// prefix returns an error marked services.ErrParse.
func Decode(name string) (Name, error) {
	if !IsArtifactName(name) {
		return Name{}, ErrNotArtifact
	}
	base := strings.TrimSuffix(name, Extension)
	prefix, title, _ := strings.Cut(base, Separator)
	month, day, err := parseMonthDay(prefix)
	if err != nil {
		return Name{}, services.Wrap(services.ErrParse, "artifact", "decode", fmt.Sprintf("name %q", name), err)
	}
	return Name{Month: month, Day: day, Title: strings.TrimSpace(title)}, nil
}

func parseMonthDay(value string) (time.Month, int, error) {
	mm, dd, ok := strings.Cut(value, "-")
	if !ok || len(mm) != 2 || len(dd) != 2 {
		return 0, 0, fmt.Errorf("date prefix %q is not MM-DD", value)
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", mm)
	}
	day, err := strconv.Atoi(dd)
	// 2000 is a leap year so 02-29 is accepted.
	if err != nil || day < 1 || day > daysIn(time.Month(month), 2000) {
		return 0, 0, fmt.Errorf("invalid day %q", dd)
	}
	return time.Month(month), day, nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// InferDate places month/day in the current year of now. A December date
// that lands in the future while now is in January belongs to the previous
// year; other future dates are returned as-is. February 29 in a non-leap year
// normalizes to March 1.
func InferDate(month time.Month, day int, now time.Time) time.Time {
	loc := now.Location()
	inferred := time.Date(now.Year(), month, day, 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if inferred.After(today) && month == time.December && now.Month() == time.January {
		inferred = time.Date(now.Year()-1, month, day, 0, 0, 0, 0, loc)
	}
	return inferred
}

// ScanLocal lists the artifact-shaped regular files in dir, sorted by name.
// A missing directory yields an empty list.
func ScanLocal(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrFilesystem, "artifact", "scan", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if IsArtifactName(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

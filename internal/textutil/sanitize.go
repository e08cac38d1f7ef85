package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// titleReplacer drops characters that are unsafe in file names on common
// filesystems and turns '#' into a space so URLs built from the name stay
// unambiguous.
var titleReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
	"#", " ",
)

// SanitizeFileName NFC-normalizes name and removes filesystem-unsafe
// characters. Whitespace is preserved so the result stays a pure function of
// the input.
func SanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	return titleReplacer.Replace(norm.NFC.String(name))
}

// TruncateRunes returns at most limit runes of value.
func TruncateRunes(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range value {
		if count == limit {
			return value[:i]
		}
		count++
	}
	return value
}

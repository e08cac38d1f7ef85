// Package textutil provides the text helpers behind artifact file names:
// Unicode normalization, unsafe character removal and rune-aware truncation.
package textutil

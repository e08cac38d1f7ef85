// Package fileutil writes files atomically through a sibling temp file and
// rename.
package fileutil

// Package ytdlp wraps the yt-dlp CLI: flat playlist listing, per-item
// metadata and audio extraction.
//
// Failures carry a translated reason (premiere pending, private, removed,
// unavailable, geo-blocked) so logs say why an item was skipped instead of
// echoing raw stderr.
package ytdlp

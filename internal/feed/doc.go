// Package feed renders the podcast RSS document of a channel.
//
// Build picks the newest local artifacts (reverse name order, bounded by the
// channel's item limit) and Document.Encode writes RSS 2.0 with iTunes tags
// through github.com/eduncan911/podcast. Enclosure URLs point at the public
// bucket and double as item GUIDs.
package feed

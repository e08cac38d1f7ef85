// Package artifact maps published items to stable file names and back.
//
// A name is "MM-DD：<title>.mp3" where the title is sanitized and truncated to
// 40 runes. The name is the only persisted record of an artifact: its upload
// date drives retention and feed ordering, so Decode and InferDate are shared
// by the local sweep, the remote sweep and the feed builder.
package artifact

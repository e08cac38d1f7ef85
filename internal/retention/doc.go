// Package retention expires artifacts by the date encoded in their names.
//
// The local cache and the published bucket have independent windows: a file
// can leave the disk long before it leaves the feed's storage. Names that do
// not decode are logged and kept.
package retention

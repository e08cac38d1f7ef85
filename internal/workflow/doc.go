// Package workflow orchestrates one tubecast run across every configured
// channel.
//
// The Runner builds one pipeline.Pipeline per channel and drives them through
// a bounded errgroup pool sized by pipeline.max_workers; excess channels
// queue. A single throttle.Throttle built from pipeline.max_yt_dlp_processes
// is shared by pointer with every pipeline so extraction concurrency stays
// bounded no matter how many channels run at once.
//
// Channel failures (including panics) are captured in that channel's
// pipeline.Result and never abort siblings. Summary aggregates the results
// for the CLI table and exit status.
package workflow

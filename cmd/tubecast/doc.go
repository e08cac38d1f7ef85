// Package main hosts the tubecast CLI entrypoint and command graph.
//
// `tubecast run` is the cron entrypoint: it takes the run lock, drives every
// channel pipeline, prints a summary table and optionally commits the
// regenerated feeds. The remaining commands inspect configuration and
// external dependencies or re-render feeds without discovery.
package main

// Package objectstore publishes channel artifacts and feeds to an
// S3-compatible bucket (Cloudflare R2 in production) through minio-go.
//
// Keys are "<channel>/<file name>". Audio uploads as audio/mpeg, feeds as
// application/rss+xml, and both carry a public-read ACL when configured.
package objectstore

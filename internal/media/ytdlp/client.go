package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"tubecast/internal/services"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// Metadata is the subset of `yt-dlp -J` output the pipeline consumes.
type Metadata struct {
	ID         string
	Title      string
	UploadDate string
	Duration   int
	Channel    string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout []byte, stderr []byte, err error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithFFmpegLocation passes --ffmpeg-location to extractions.
func WithFFmpegLocation(path string) Option {
	return func(c *Client) {
		c.ffmpegLocation = strings.TrimSpace(path)
	}
}

// WithAudio sets the extraction format and target bitrate.
func WithAudio(format, bitrate string) Option {
	return func(c *Client) {
		if format = strings.TrimSpace(format); format != "" {
			c.audioFormat = format
		}
		c.audioBitrate = strings.TrimSpace(bitrate)
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary         string
	ffmpegLocation string
	audioFormat    string
	audioBitrate   string
	exec           Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "yt-dlp"
	}
	client := &Client{
		binary:       binary,
		audioFormat:  "mp3",
		audioBitrate: "128k",
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// VideoURL returns the watch URL for id. Values that already look like URLs
// are returned unchanged.
func VideoURL(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		return id
	}
	return watchURLPrefix + id
}

// ListItems returns up to limit item IDs from a playlist or channel locator,
// in source order. Entries without an ID are skipped.
func (c *Client) ListItems(ctx context.Context, locator string, limit int) ([]string, error) {
	if limit < 1 {
		limit = 1
	}
	args := []string{"--flat-playlist", "-J", "--playlist-items", fmt.Sprintf("1-%d", limit), locator}
	stdout, stderr, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "discover", "yt-dlp list", TranslateError(string(stderr)).String(), err)
	}

	var payload struct {
		Entries []*struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return nil, services.Wrap(services.ErrParse, "discover", "yt-dlp list", "decode playlist json", err)
	}
	ids := make([]string, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		if entry == nil || strings.TrimSpace(entry.ID) == "" {
			continue
		}
		ids = append(ids, entry.ID)
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

// FetchMetadata loads the title, upload date and duration of one item.
// Missing fields are returned empty; judging them is the caller's concern.
func (c *Client) FetchMetadata(ctx context.Context, id string) (Metadata, error) {
	stdout, stderr, err := c.exec.Run(ctx, c.binary, []string{"-J", VideoURL(id)})
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "metadata", "yt-dlp", TranslateError(string(stderr)).String(), err)
	}

	var payload struct {
		ID         string          `json:"id"`
		Title      string          `json:"title"`
		UploadDate string          `json:"upload_date"`
		Duration   json.RawMessage `json:"duration"`
		Channel    string          `json:"channel"`
	}
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return Metadata{}, services.Wrap(services.ErrParse, "metadata", "yt-dlp", "decode metadata json", err)
	}
	meta := Metadata{
		ID:         payload.ID,
		Title:      payload.Title,
		UploadDate: payload.UploadDate,
		Duration:   parseDuration(payload.Duration),
		Channel:    payload.Channel,
	}
	if meta.ID == "" {
		meta.ID = id
	}
	return meta, nil
}

// Extract downloads id and converts it to the configured audio format at
// outputPath. Partial output is removed when the extraction fails.
func (c *Client) Extract(ctx context.Context, id, outputPath string) error {
	args := []string{"-x", "--audio-format", c.audioFormat}
	if c.ffmpegLocation != "" {
		args = append(args, "--ffmpeg-location", c.ffmpegLocation)
	}
	if c.audioBitrate != "" {
		args = append(args, "--postprocessor-args", "-b:a "+c.audioBitrate)
	}
	args = append(args, "-o", outputPath, VideoURL(id))

	_, stderr, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		removePartial(outputPath)
		return services.Wrap(services.ErrExternalTool, "download", "yt-dlp extract", TranslateError(string(stderr)).String(), err)
	}
	info, statErr := os.Stat(outputPath)
	if statErr != nil || info.Size() == 0 {
		removePartial(outputPath)
		if statErr == nil {
			statErr = errors.New("empty output")
		}
		return services.Wrap(services.ErrFilesystem, "download", "yt-dlp extract", "no output produced", statErr)
	}
	return nil
}

func removePartial(outputPath string) {
	for _, candidate := range []string{outputPath, outputPath + ".part", outputPath + ".ytdl"} {
		_ = os.Remove(candidate)
	}
}

func parseDuration(raw json.RawMessage) int {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0
	}
	text = strings.Trim(text, `"`)
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || value <= 0 {
		return 0
	}
	return int(value)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

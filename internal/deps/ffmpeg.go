package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CheckFFmpeg reports the ffmpeg binary yt-dlp will convert with.
//
// yt-dlp's --ffmpeg-location accepts either the binary itself or the
// directory holding it; without a location it resolves "ffmpeg" from PATH.
func CheckFFmpeg(location string) Status {
	result := Status{
		Name:        "ffmpeg",
		Description: "Used by yt-dlp to convert extracted audio to mp3",
	}

	location = strings.TrimSpace(location)
	if location != "" {
		candidate := location
		if info, err := os.Stat(location); err == nil && info.IsDir() {
			candidate = filepath.Join(location, "ffmpeg")
		}
		result.Command = candidate
		if isExecutable(candidate) {
			result.Available = true
		} else {
			result.Detail = fmt.Sprintf("ffmpeg_location %q does not contain an executable ffmpeg", location)
		}
		return result
	}

	if ffmpegPath, err := exec.LookPath("ffmpeg"); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = "ffmpeg"
	result.Detail = `binary "ffmpeg" not found`
	return result
}

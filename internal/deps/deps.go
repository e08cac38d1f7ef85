package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"tubecast/internal/config"
)

// Requirement defines an external dependency tubecast relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries a run drives with the given configuration.
// git is only required when publishing is enabled.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: cfg.Tools.YtDlp, Description: "Lists channels, fetches metadata and extracts audio"},
		{Name: "ffprobe", Command: cfg.Tools.FFprobe, Description: "Probes durations of existing artifacts", Optional: true},
		{Name: "git", Command: cfg.Tools.Git, Description: "Commits and pushes regenerated feeds", Optional: !cfg.Publish.Enabled},
	}
}

// Check evaluates every requirement of cfg, including the ffmpeg binary yt-dlp
// converts with.
func Check(cfg *config.Config) []Status {
	statuses := CheckBinaries(Requirements(cfg))
	return append(statuses, CheckFFmpeg(cfg.Tools.FFmpegLocation))
}

// MissingRequired returns the required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch resolved, err := exec.LookPath(cmd); {
		case cmd == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		case !isExecutable(resolved):
			status.Detail = fmt.Sprintf("binary %q is not executable", resolved)
		default:
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

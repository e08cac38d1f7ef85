package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tubecast/internal/config"
	"tubecast/internal/logging"
	"tubecast/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, dir, binary string, args []string) (stdout []byte, stderr []byte, err error)
}

// Git publishes feed documents through the git CLI.
type Git struct {
	Binary        string
	RepoDir       string
	FeedGlob      string
	CommitMessage string
	Remote        string
	Branch        string

	exec   Executor
	logger *slog.Logger
}

// Option configures a Git publisher.
type Option func(*Git)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(g *Git) {
		if exec != nil {
			g.exec = exec
		}
	}
}

// WithLogger sets the publisher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Git) {
		g.logger = logging.NewComponentLogger(logger, "publish")
	}
}

// New builds a publisher from configuration.
func New(cfg *config.Config, opts ...Option) *Git {
	g := &Git{
		Binary:        strings.TrimSpace(cfg.Tools.Git),
		RepoDir:       cfg.Publish.RepoDir,
		FeedGlob:      cfg.Publish.FeedGlob,
		CommitMessage: cfg.Publish.CommitMessage,
		Remote:        cfg.Publish.Remote,
		Branch:        cfg.Publish.Branch,
		exec:          commandExecutor{},
		logger:        logging.NewNop(),
	}
	if g.Binary == "" {
		g.Binary = "git"
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Publish pulls, stages every file matching FeedGlob, and commits and pushes
// when the staged tree changed. It reports whether a commit was made.
func (g *Git) Publish(ctx context.Context) (bool, error) {
	ctx = services.WithStage(ctx, "publish")
	logger := logging.WithContext(ctx, g.logger)

	if g.RepoDir == "" {
		return false, services.Wrap(services.ErrConfiguration, "publish", "repo", "", errors.New("publish.repo_dir is not set"))
	}
	if _, err := os.Stat(filepath.Join(g.RepoDir, ".git")); err != nil {
		return false, services.Wrap(services.ErrConfiguration, "publish", "repo", g.RepoDir, fmt.Errorf("not a git working tree: %w", err))
	}

	if _, err := g.git(ctx, g.pullArgs()...); err != nil {
		return false, err
	}

	files, err := filepath.Glob(filepath.Join(g.RepoDir, g.FeedGlob))
	if err != nil {
		return false, services.Wrap(services.ErrConfiguration, "publish", "glob", g.FeedGlob, err)
	}
	if len(files) == 0 {
		logger.Info("no feed documents to publish", logging.String("glob", g.FeedGlob))
		return false, nil
	}
	addArgs := []string{"add", "--"}
	for _, file := range files {
		rel, err := filepath.Rel(g.RepoDir, file)
		if err != nil {
			rel = file
		}
		addArgs = append(addArgs, filepath.ToSlash(rel))
	}
	if _, err := g.git(ctx, addArgs...); err != nil {
		return false, err
	}

	if _, err := g.git(ctx, "diff", "--cached", "--quiet"); err == nil {
		logger.Info("feeds unchanged; nothing to commit",
			logging.String(logging.FieldEventType, "publish_unchanged"),
		)
		return false, nil
	} else if !isExitCode(err, 1) {
		return false, err
	}

	if _, err := g.git(ctx, "commit", "-m", g.CommitMessage); err != nil {
		return false, err
	}
	if _, err := g.git(ctx, g.pushArgs()...); err != nil {
		return true, err
	}
	logger.Info("feeds published",
		logging.String(logging.FieldEventType, "publish_complete"),
		logging.Int("files", len(files)),
	)
	return true, nil
}

func (g *Git) pullArgs() []string {
	args := []string{"pull", "--ff-only"}
	if g.Remote != "" {
		args = append(args, g.Remote)
		if g.Branch != "" {
			args = append(args, g.Branch)
		}
	}
	return args
}

func (g *Git) pushArgs() []string {
	args := []string{"push"}
	if g.Remote != "" {
		args = append(args, g.Remote)
		if g.Branch != "" {
			args = append(args, g.Branch)
		}
	}
	return args
}

func (g *Git) git(ctx context.Context, args ...string) ([]byte, error) {
	stdout, stderr, err := g.exec.Run(ctx, g.RepoDir, g.Binary, args)
	if err != nil {
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = "git " + args[0]
		}
		return stdout, services.Wrap(services.ErrExternalTool, "publish", "git "+args[0], detail, err)
	}
	return stdout, nil
}

func isExitCode(err error, code int) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == code
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, dir, binary string, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

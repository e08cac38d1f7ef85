package retention

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"tubecast/internal/artifact"
	"tubecast/internal/logging"
	"tubecast/internal/services"
)

// RemoteStore is the subset of the object store the remote sweep needs.
type RemoteStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// Manager runs the local and remote expiration sweeps.
type Manager struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewManager builds a Manager. A nil clock uses time.Now.
func NewManager(logger *slog.Logger, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{logger: logging.NewComponentLogger(logger, "retention"), now: now}
}

// Expired reports whether an artifact dated date is older than windowDays
// at now. The window is counted in calendar days, the comparison is strict,
// and a non-positive window never expires.
func Expired(date, now time.Time, windowDays int) bool {
	if windowDays <= 0 {
		return false
	}
	return now.After(date.AddDate(0, 0, windowDays))
}

// SweepLocal deletes artifacts in dir older than windowDays and returns the
// removed file names. Only local files are touched.
func (m *Manager) SweepLocal(ctx context.Context, dir string, windowDays int) ([]string, error) {
	if windowDays <= 0 {
		return nil, nil
	}
	logger := logging.WithContext(services.WithStage(ctx, "retire-local"), m.logger)
	names, err := artifact.ScanLocal(dir)
	if err != nil {
		return nil, err
	}
	now := m.now()
	var removed []string
	for _, name := range names {
		date, ok := m.decodeDate(logger, name, now)
		if !ok || !Expired(date, now, windowDays) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(logger, "local artifact removal failed", "local_remove_failed",
				logging.String("file", name),
				logging.Error(services.Wrap(services.ErrFilesystem, "retire", "remove", name, err)),
				logging.String(logging.FieldImpact, "expired artifact stays on disk until the next run"),
				logging.String(logging.FieldErrorHint, "check data_dir permissions"),
			)
			continue
		}
		removed = append(removed, name)
		logger.Info("local artifact expired",
			logging.String("file", name),
			logging.String(logging.FieldEventType, "local_expired"),
		)
	}
	return removed, nil
}

// SweepRemote deletes keys directly under prefix whose artifact date is older
// than windowDays and returns the removed keys. Only remote objects are
// touched.
func (m *Manager) SweepRemote(ctx context.Context, store RemoteStore, prefix string, windowDays int) ([]string, error) {
	if windowDays <= 0 || store == nil {
		return nil, nil
	}
	logger := logging.WithContext(services.WithStage(ctx, "retire-remote"), m.logger)
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	now := m.now()
	var removed []string
	for _, key := range keys {
		rel := strings.TrimPrefix(key, prefix)
		if !strings.HasPrefix(key, prefix) || strings.Contains(rel, "/") {
			continue
		}
		date, ok := m.decodeDate(logger, path.Base(key), now)
		if !ok || !Expired(date, now, windowDays) {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logging.WarnWithContext(logger, "remote artifact removal failed", "remote_remove_failed",
				logging.String("key", key),
				logging.Error(err),
				logging.String(logging.FieldImpact, "expired artifact stays published until the next run"),
				logging.String(logging.FieldErrorHint, "check bucket credentials and connectivity"),
			)
			continue
		}
		removed = append(removed, key)
		logger.Info("remote artifact expired",
			logging.String("key", key),
			logging.String(logging.FieldEventType, "remote_expired"),
		)
	}
	return removed, nil
}

func (m *Manager) decodeDate(logger *slog.Logger, name string, now time.Time) (time.Time, bool) {
	decoded, err := artifact.Decode(name)
	if err != nil {
		if errors.Is(err, artifact.ErrNotArtifact) {
			logger.Debug("ignoring non-artifact name", logging.String("name", name))
			return time.Time{}, false
		}
		logging.WarnWithContext(logger, "artifact name has an unreadable date; skipped", "artifact_decode_failed",
			logging.String("name", name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file is never expired automatically"),
			logging.String(logging.FieldErrorHint, "rename or remove the file manually"),
		)
		return time.Time{}, false
	}
	return decoded.Date(now), true
}

// Package storage holds TTL-bounded artifacts on the local filesystem.
// Artifacts are keyed by generated names, so concurrent requests never
// contend over the same file, and nothing survives past its TTL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tryon-server/internal/domain"
)

// TempStore persists transient artifacts (sanitized selfies, generated
// results) under a single directory. File mtime is the creation timestamp.
type TempStore struct {
	dir    string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewTempStore initializes a TempStore rooted at dir with the given TTL.
func NewTempStore(dir string, ttl time.Duration, logger zerolog.Logger) (*TempStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("storage: directory is required")
	}
	if ttl <= 0 {
		return nil, errors.New("storage: ttl must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure directory: %w", err)
	}
	return &TempStore{dir: dir, ttl: ttl, logger: logger}, nil
}

// TTL returns the configured retention duration.
func (s *TempStore) TTL() time.Duration {
	return s.ttl
}

// Put writes data under a fresh generated name with the given extension and
// returns the name. Names are unique, so no write ever contends.
func (s *TempStore) Put(ctx context.Context, ext string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = "jpg"
	}
	name := uuid.NewString() + "." + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write artifact: %w", err)
	}
	return name, nil
}

// Open returns a reader and creation time for the named artifact. Expired
// artifacts are treated as absent even before the sweeper reaches them, so
// a URL handed out at time T stops resolving at T+TTL.
func (s *TempStore) Open(name string) (io.ReadSeekCloser, time.Time, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, time.Time{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("storage: %w", domain.ErrNotFound)
	}
	if time.Since(info.ModTime()) > s.ttl {
		// Lazy expiry: remove now rather than waiting for the sweep.
		_ = os.Remove(path)
		return nil, time.Time{}, fmt.Errorf("storage: %w", domain.ErrNotFound)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("storage: %w", domain.ErrNotFound)
	}
	return f, info.ModTime(), nil
}

// Remove deletes the named artifact. Removing an absent artifact is not an
// error.
func (s *TempStore) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove artifact: %w", err)
	}
	return nil
}

// SweepOnce removes every artifact older than the TTL and reports how many
// were deleted. Files already removed by a concurrent pass are skipped
// silently.
func (s *TempStore) SweepOnce(now time.Time) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep: read temp directory")
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= s.ttl {
			continue
		}
		err = os.Remove(filepath.Join(s.dir, entry.Name()))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Err(err).Str("artifact", entry.Name()).Msg("sweep: remove failed")
			continue
		}
		removed++
	}
	return removed
}

// Sweep runs SweepOnce on the given interval until ctx is cancelled.
func (s *TempStore) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepOnce(time.Now()); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("sweep: expired artifacts deleted")
			}
		}
	}
}

// resolve validates a caller-supplied name and prevents escaping the store
// directory.
func (s *TempStore) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.New("storage: invalid artifact name")
	}
	return filepath.Join(s.dir, name), nil
}

package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"voice-doctor/internal/domain"
)

const (
	PrimaryName  = "response.mp3"
	PlaybackName = "response.wav"
)

var ErrTooLarge = errors.New("upload exceeds size limit")

// Store keeps each turn's files in its own directory under dir, so
// concurrent turns never share a path.
type Store struct {
	dir       string
	retention time.Duration
	logger    *slog.Logger
	mu        sync.Mutex
}

func NewStore(dir string, retention time.Duration, logger *slog.Logger) *Store {
	return &Store{
		dir:       dir,
		retention: retention,
		logger:    logger,
	}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}
	return nil
}

func (s *Store) turnDir(turnID string) (string, error) {
	if turnID == "" || turnID != filepath.Base(turnID) || strings.HasPrefix(turnID, ".") {
		return "", domain.Errorf(domain.KindIO, "store", "invalid turn id %q", turnID)
	}
	return filepath.Join(s.dir, turnID), nil
}

func (s *Store) Prepare(turnID string) (domain.VoiceArtifact, error) {
	dir, err := s.turnDir(turnID)
	if err != nil {
		return domain.VoiceArtifact{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.VoiceArtifact{}, domain.NewError(domain.KindIO, "store.Prepare", err)
	}
	return domain.VoiceArtifact{
		TurnID:       turnID,
		PrimaryPath:  filepath.Join(dir, PrimaryName),
		PlaybackPath: filepath.Join(dir, PlaybackName),
	}, nil
}

// SaveUpload copies an uploaded input file into the turn directory and
// returns its path. At most limit bytes are accepted.
func (s *Store) SaveUpload(turnID, name string, r io.Reader, limit int64) (string, error) {
	dir, err := s.turnDir(turnID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", domain.NewError(domain.KindIO, "store.SaveUpload", err)
	}

	path := filepath.Join(dir, "upload-"+sanitize(name))
	f, err := os.Create(path)
	if err != nil {
		return "", domain.NewError(domain.KindIO, "store.SaveUpload", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", domain.NewError(domain.KindIO, "store.SaveUpload", err)
	}
	if n > limit {
		os.Remove(path)
		return "", ErrTooLarge
	}

	return path, nil
}

// Open returns one of a turn's generated audio files for download.
func (s *Store) Open(turnID, name string) (*os.File, error) {
	if _, err := uuid.Parse(turnID); err != nil {
		return nil, domain.Errorf(domain.KindNotFound, "store.Open", "unknown turn %q", turnID)
	}
	if name != PrimaryName && name != PlaybackName {
		return nil, domain.Errorf(domain.KindNotFound, "store.Open", "unknown artifact %q", name)
	}

	f, err := os.Open(filepath.Join(s.dir, turnID, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewError(domain.KindNotFound, "store.Open", err)
		}
		return nil, domain.NewError(domain.KindIO, "store.Open", err)
	}
	return f, nil
}

// Sweep removes turn directories last modified before now minus retention.
// Entries not named by a turn id are left alone.
func (s *Store) Sweep(now time.Time) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("reading artifact dir: %w", err)
	}

	cutoff := now.Add(-s.retention)
	removed := 0
	for _, entry := range entries {
		// Only turn directories are ours to remove.
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.RemoveAll(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn("removing expired turn", "turn_id", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	return removed, nil
}

func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.retention <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := s.Sweep(now)
				if err != nil {
					s.logger.Error("sweeping artifacts", "error", err)
					continue
				}
				if n > 0 {
					s.logger.Info("expired turns removed", "count", n)
				}
			}
		}
	}()
}

func sanitize(name string) string {
	name = filepath.Base(name)
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	out := strings.TrimLeft(sb.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

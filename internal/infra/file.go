package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"voice-doctor/internal/domain"
)

// WriteFileAtomic writes data next to path and renames it into place, so a
// failed write never leaves a partial file at path.
func WriteFileAtomic(op, path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".part-*")
	if err != nil {
		return domain.NewError(domain.KindIO, op, fmt.Errorf("creating output file: %w", err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.NewError(domain.KindIO, op, fmt.Errorf("writing output file: %w", err))
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domain.NewError(domain.KindIO, op, fmt.Errorf("closing output file: %w", err))
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return domain.NewError(domain.KindIO, op, fmt.Errorf("moving output file: %w", err))
	}

	return nil
}

// Package report renders the classified-record stream into the run's
// artifacts. The text and HTML builders consume the same stream in the
// same order, so the two artifacts always agree record for record.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atikulmunna/canlens/internal/model"
)

// Builder accumulates classified records and renders an artifact.
// Append must be called in classification order; Finalize writes the
// artifact in one atomic step. Path identifies the destination so a
// caller can retract the artifact when a sibling builder fails.
type Builder interface {
	Append(records []model.ClassifiedRecord) error
	Finalize() error
	Path() string
}

// commit writes data to path through a private temp file and rename,
// so a failed write never leaves a partial artifact that looks
// complete and concurrent runs sharing a prefix cannot cross-rename
// each other's half-written output.
func commit(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	// CreateTemp opens 0600; artifacts are world-readable like any
	// other output file.
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// tally counts records per category.
func tally(records []model.ClassifiedRecord) (match, mismatch, neutral int) {
	for _, r := range records {
		switch r.Category {
		case model.CategoryMatch:
			match++
		case model.CategoryMismatch:
			mismatch++
		default:
			neutral++
		}
	}
	return match, mismatch, neutral
}

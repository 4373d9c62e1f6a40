// Package ingest expands ZIP archives into a scoped temporary working
// set of log files. The temp area lives exactly as long as the
// Ingester: callers defer Close so extracted files are removed on
// every exit path, including cancellation and partial extraction.
package ingest

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/atikulmunna/canlens/internal/model"
)

// Ingester extracts log entries from archives into one temp directory
// per run.
type Ingester struct {
	tempDir string
}

// New creates an Ingester with a fresh scoped temp directory.
func New() (*Ingester, error) {
	dir, err := os.MkdirTemp("", "canlens-*")
	if err != nil {
		return nil, fmt.Errorf("creating extraction dir: %w", err)
	}
	return &Ingester{tempDir: dir}, nil
}

// Close removes the temp directory and everything extracted into it.
func (g *Ingester) Close() error {
	if g.tempDir == "" {
		return nil
	}
	err := os.RemoveAll(g.tempDir)
	g.tempDir = ""
	return err
}

// Expand extracts every log entry of the archive and returns one
// LogFile per entry, origin-tagged with the archive name and entry
// path. Non-log entries are skipped silently. A corrupted or
// unreadable archive returns zero files and an error the caller
// records as a warning; it never aborts the run.
func (g *Ingester) Expand(archivePath string) ([]model.LogFile, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", filepath.Base(archivePath), err)
	}
	defer r.Close()

	archiveName := filepath.Base(archivePath)

	var files []model.LogFile
	seen := make(map[string]int)
	for _, entry := range r.File {
		if entry.FileInfo().IsDir() || !IsLogName(entry.Name) {
			continue
		}

		dst, err := g.extractEntry(entry)
		if err != nil {
			log.Printf("warning: skipping entry %s in %s: %v", entry.Name, archiveName, err)
			continue
		}

		// The full entry path keeps names of one archive distinct from
		// each other; the counter covers archives with duplicate entry
		// names, so no two yielded files share an identity.
		name := archiveName + "!" + entry.Name
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s#%d", name, n)
		}

		files = append(files, model.LogFile{
			Path: dst,
			Name: name,
			Origin: model.Origin{
				Archive: archiveName,
				Entry:   entry.Name,
			},
		})
	}

	return files, nil
}

// extractEntry copies one archive entry into the temp dir, flattening
// its path. Base-name collisions, within one archive or across
// archives sharing the temp dir, are disambiguated with a numeric
// suffix; an existing extraction is never truncated.
func (g *Ingester) extractEntry(entry *zip.File) (string, error) {
	base := filepath.Base(entry.Name)
	if base == "." || base == string(filepath.Separator) || strings.Contains(base, "..") {
		return "", fmt.Errorf("unsafe entry name %q", entry.Name)
	}

	dst := filepath.Join(g.tempDir, base)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for i := 1; ; i++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(g.tempDir, fmt.Sprintf("%s_%d%s", stem, i, filepath.Ext(base)))
	}

	src, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

// IsLogName reports whether a file name follows the log naming
// convention (.log, case-insensitive).
func IsLogName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".log")
}

// IsArchiveName reports whether a file name looks like a ZIP archive.
func IsArchiveName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

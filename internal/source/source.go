// Package source enumerates the candidate log files for a run in a
// deterministic order: direct log files sorted by name, then the
// contents of each archive, archives themselves in name order.
package source

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/atikulmunna/canlens/internal/ingest"
	"github.com/atikulmunna/canlens/internal/model"
)

// Enumerate lists the log files under dir. When includeArchives is
// true every ZIP archive in dir is expanded through ing and its files
// are appended after the direct ones. Unreadable archives become
// warnings, never errors; an empty result is left for the caller to
// judge.
func Enumerate(dir string, includeArchives bool, ing *ingest.Ingester) ([]model.LogFile, []string, error) {
	entries, err := doublestar.FilepathGlob(
		filepath.Join(dir, "*"),
		doublestar.WithFilesOnly(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	var logPaths, zipPaths []string
	for _, p := range entries {
		switch {
		case ingest.IsLogName(p):
			logPaths = append(logPaths, p)
		case includeArchives && ingest.IsArchiveName(p):
			zipPaths = append(zipPaths, p)
		}
	}

	// Glob order is not promised across platforms; sort explicitly so
	// two runs over the same directory enumerate identically.
	sort.Strings(logPaths)
	sort.Strings(zipPaths)

	var (
		files    []model.LogFile
		warnings []string
	)

	for _, p := range logPaths {
		files = append(files, model.LogFile{
			Path: p,
			Name: filepath.Base(p),
		})
	}

	for _, p := range zipPaths {
		extracted, err := ing.Expand(p)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		sort.Slice(extracted, func(i, j int) bool {
			return extracted[i].Origin.Entry < extracted[j].Origin.Entry
		})
		files = append(files, extracted...)
	}

	return files, warnings, nil
}

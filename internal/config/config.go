// Package config loads, validates, and creates the classification rule
// file. The file is a JSON document whose top-level shape is an ordered
// list of rules; declaration order is evaluation order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/atikulmunna/canlens/internal/model"
)

var (
	// ErrNotFound is returned by Load when the rule file does not exist.
	ErrNotFound = errors.New("rule file not found")
	// ErrMalformed is returned by Load when the rule file cannot be
	// parsed into a valid rule set.
	ErrMalformed = errors.New("rule file malformed")
	// ErrExists is returned by CreateDefault when the destination
	// already exists and overwrite was not requested.
	ErrExists = errors.New("rule file already exists")
)

// Load reads and validates the rule file at path.
func Load(path string) (model.Configuration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Configuration{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return model.Configuration{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg model.Configuration
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return model.Configuration{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := Validate(cfg); err != nil {
		return model.Configuration{}, err
	}
	return cfg, nil
}

// Validate checks the rule set invariants: at least one rule, unique
// non-empty identifiers, known categories, and a usable expression for
// each rule's match kind.
func Validate(cfg model.Configuration) error {
	if len(cfg.Rules) == 0 {
		return fmt.Errorf("%w: no rules defined", ErrMalformed)
	}

	seen := make(map[string]bool, len(cfg.Rules))
	for i, r := range cfg.Rules {
		if r.ID == "" {
			return fmt.Errorf("%w: rule %d has no id", ErrMalformed, i)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate rule id %q", ErrMalformed, r.ID)
		}
		seen[r.ID] = true

		if !r.Category.Valid() {
			return fmt.Errorf("%w: rule %q has unknown category %q", ErrMalformed, r.ID, r.Category)
		}

		switch r.Kind {
		case model.MatchLiteral:
			if r.Expr == "" {
				return fmt.Errorf("%w: rule %q has an empty literal expression", ErrMalformed, r.ID)
			}
		case model.MatchPattern:
			if _, err := regexp.Compile(r.Expr); err != nil {
				return fmt.Errorf("%w: rule %q has an invalid pattern: %v", ErrMalformed, r.ID, err)
			}
		case model.MatchKeywords:
			if len(r.Keywords) == 0 {
				return fmt.Errorf("%w: rule %q has an empty keyword set", ErrMalformed, r.ID)
			}
		default:
			return fmt.Errorf("%w: rule %q has unknown match kind %q", ErrMalformed, r.ID, r.Kind)
		}
	}
	return nil
}

// Default returns the baseline rule set the tool ships with. The
// match/mismatch keywords mirror how CAN trace lines report outcome,
// but the category mapping stays entirely in the configuration.
func Default() model.Configuration {
	return model.Configuration{
		Rules: []model.Rule{
			{ID: "mismatch", Kind: model.MatchKeywords, Keywords: []string{"mismatch"}, Category: model.CategoryMismatch, Style: "red"},
			{ID: "match", Kind: model.MatchKeywords, Keywords: []string{"match"}, Category: model.CategoryMatch, Style: "green"},
			{ID: "ccp-epk", Kind: model.MatchLiteral, Expr: "CCP: EPK", Category: model.CategoryNeutral, Style: "yellow"},
			{ID: "config-file", Kind: model.MatchLiteral, Expr: "Configuration file:", Category: model.CategoryNeutral, Style: "blue"},
		},
	}
}

// CreateDefault writes the baseline rule set to path and returns it.
// It refuses to overwrite an existing file unless overwrite is true.
// The write goes through a temp file and rename so a crash cannot
// leave a half-written rule file behind.
func CreateDefault(path string, overwrite bool) (model.Configuration, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return model.Configuration{}, fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	cfg := Default()
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return model.Configuration{}, err
	}
	raw = append(raw, '\n')

	// A private temp file keeps concurrent CreateDefault calls on the
	// same path from renaming each other's partial writes.
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return model.Configuration{}, fmt.Errorf("writing %s: %w", path, err)
	}
	tmp := f.Name()
	if _, err := f.Write(raw); err != nil {
		f.Close()
		os.Remove(tmp)
		return model.Configuration{}, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return model.Configuration{}, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return model.Configuration{}, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return model.Configuration{}, fmt.Errorf("writing %s: %w", path, err)
	}
	return cfg, nil
}

package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/atikulmunna/canlens/internal/model"
)

// TextBuilder renders one line per classified record into a plain-text
// artifact. Every category is retained; match and mismatch lines are
// distinguished by their fixed-width tag prefix.
type TextBuilder struct {
	path    string
	records []model.ClassifiedRecord
}

// NewTextBuilder returns a Builder that writes to path on Finalize.
func NewTextBuilder(path string) *TextBuilder {
	return &TextBuilder{path: path}
}

func (b *TextBuilder) Append(records []model.ClassifiedRecord) error {
	b.records = append(b.records, records...)
	return nil
}

// Path returns the artifact destination.
func (b *TextBuilder) Path() string { return b.path }

// Records returns the records appended so far, in append order.
func (b *TextBuilder) Records() []model.ClassifiedRecord {
	return b.records
}

func (b *TextBuilder) Finalize() error {
	var buf bytes.Buffer

	match, mismatch, _ := tally(b.records)
	fmt.Fprintf(&buf, "Classified %d lines (%d match, %d mismatch)\n", len(b.records), match, mismatch)
	buf.WriteString(strings.Repeat("=", 50))
	buf.WriteString("\n\n")

	for _, r := range b.records {
		fmt.Fprintf(&buf, "%s %s:%d  %s\n", textTag(r.Category), r.Source, r.Line, r.Text)
	}

	return commit(b.path, buf.Bytes())
}

// textTag is a fixed-width category prefix so mixed output stays
// column-aligned and greppable.
func textTag(c model.Category) string {
	switch c {
	case model.CategoryMatch:
		return "[MATCH   ]"
	case model.CategoryMismatch:
		return "[MISMATCH]"
	default:
		return "[        ]"
	}
}

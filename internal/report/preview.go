package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/atikulmunna/canlens/internal/model"
)

var (
	styleMatch      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))             // green
	styleMismatch   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	stylePreviewSrc = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true)
)

// Preview writes up to limit classified (non-neutral) records to w with
// category-based coloring, followed by a count of what was elided. It
// gives the operator a quick read on the run without opening the
// artifacts.
func Preview(w io.Writer, records []model.ClassifiedRecord, limit int) {
	var classified []model.ClassifiedRecord
	for _, r := range records {
		if r.Category != model.CategoryNeutral {
			classified = append(classified, r)
		}
	}
	if len(classified) == 0 {
		return
	}

	fmt.Fprintln(w, "Sample of classified lines:")
	shown := classified
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	for _, r := range shown {
		style := styleMatch
		if r.Category == model.CategoryMismatch {
			style = styleMismatch
		}
		src := stylePreviewSrc.Render(fmt.Sprintf("%s:%d", r.Source, r.Line))
		fmt.Fprintf(w, "%s %s\n", src, style.Render(r.Text))
	}

	if rest := len(classified) - len(shown); rest > 0 {
		fmt.Fprintf(w, "...and %d more.\n", rest)
	}
}

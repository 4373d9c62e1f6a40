package report

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"

	"github.com/atikulmunna/canlens/internal/model"
)

// HTMLBuilder renders each classified record as an anchored, styled
// element. Anchors are derived from (source, line) so a reader can
// link straight to an entry; the CSS class follows the category.
type HTMLBuilder struct {
	path    string
	title   string
	records []model.ClassifiedRecord
}

// NewHTMLBuilder returns a Builder that writes to path on Finalize.
func NewHTMLBuilder(path, title string) *HTMLBuilder {
	return &HTMLBuilder{path: path, title: title}
}

func (b *HTMLBuilder) Append(records []model.ClassifiedRecord) error {
	b.records = append(b.records, records...)
	return nil
}

// Path returns the artifact destination.
func (b *HTMLBuilder) Path() string { return b.path }

func (b *HTMLBuilder) Finalize() error {
	match, mismatch, neutral := tally(b.records)

	type row struct {
		Anchor string
		Class  string
		Source string
		Line   int
		Text   string
	}

	rows := make([]row, 0, len(b.records))
	for _, r := range b.records {
		rows = append(rows, row{
			Anchor: Anchor(r.Source, r.Line),
			Class:  string(r.Category),
			Source: r.Source,
			Line:   r.Line,
			Text:   r.Text,
		})
	}

	data := struct {
		Title    string
		Total    int
		Match    int
		Mismatch int
		Neutral  int
		Rows     []row
	}{b.title, len(b.records), match, mismatch, neutral, rows}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering %s: %w", b.path, err)
	}
	return commit(b.path, buf.Bytes())
}

var anchorUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Anchor derives the stable element id for a record. The same
// (source, line) always yields the same anchor across runs.
func Anchor(source string, line int) string {
	return anchorUnsafe.ReplaceAllString(source, "-") + "-L" + fmt.Sprint(line)
}

var htmlTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
h1 { color: #333; }
.summary { margin: 20px 0; padding: 10px; background-color: #f0f0f0; border-radius: 5px; }
.line { margin: 2px 0; padding: 4px; border-bottom: 1px solid #eee; font-family: monospace; white-space: pre-wrap; }
.src { color: #555; font-weight: bold; }
.match { background-color: #ccffcc; }
.match .src { color: #008800; }
.mismatch { background-color: #ffcccc; }
.mismatch .src { color: #cc0000; }
.neutral { background-color: transparent; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="summary">
<p>{{.Total}} lines classified: {{.Match}} match, {{.Mismatch}} mismatch, {{.Neutral}} neutral</p>
</div>
{{range .Rows}}<div class="line {{.Class}}" id="{{.Anchor}}"><a class="src" href="#{{.Anchor}}">{{.Source}}:{{.Line}}</a> {{.Text}}</div>
{{end}}</body>
</html>
`))

package model

// Category classifies a log line according to the rule that matched it.
type Category string

const (
	CategoryMatch    Category = "match"
	CategoryMismatch Category = "mismatch"
	CategoryNeutral  Category = "neutral"
)

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMatch, CategoryMismatch, CategoryNeutral:
		return true
	}
	return false
}

// MatchKind selects how a rule's expression is applied to a line.
type MatchKind string

const (
	MatchLiteral  MatchKind = "literal"  // case-insensitive substring
	MatchPattern  MatchKind = "pattern"  // regular expression
	MatchKeywords MatchKind = "keywords" // any-of whole words, case-insensitive
)

// Rule is one classification rule. Rules are evaluated in declared
// order and the first one that applies to a line wins.
type Rule struct {
	ID       string    `json:"id"`
	Kind     MatchKind `json:"kind"`
	Expr     string    `json:"expr,omitempty"`     // literal and pattern kinds
	Keywords []string  `json:"keywords,omitempty"` // keywords kind
	Category Category  `json:"category"`
	Style    string    `json:"style,omitempty"` // display color: green, red, blue, yellow
}

// Configuration is the ordered rule set for one run. It is loaded once
// and never mutated afterwards.
type Configuration struct {
	Rules []Rule `json:"rules"`
}

// Origin describes where a log file came from.
type Origin struct {
	Archive string `json:"archive,omitempty"` // archive file name, empty for direct files
	Entry   string `json:"entry,omitempty"`   // path inside the archive
}

// FromArchive reports whether the file was materialized from an archive.
func (o Origin) FromArchive() bool { return o.Archive != "" }

// LogFile is one enumerated input file. Path points at readable bytes
// on disk (possibly a temporary extraction); Name is the stable
// display identity used in reports.
type LogFile struct {
	Path   string
	Name   string
	Origin Origin
}

// ClassifiedRecord is the classification result for a single line.
// Exactly one record exists per input line, in input order.
type ClassifiedRecord struct {
	Source   string   `json:"source"`
	Line     int      `json:"line"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	RuleID   string   `json:"rule_id,omitempty"` // empty when no rule applied
}

// FileStats holds per-file category counts.
type FileStats struct {
	Lines    int `json:"lines"`
	Match    int `json:"match"`
	Mismatch int `json:"mismatch"`
	Neutral  int `json:"neutral"`
}

// RunSummary is the aggregate outcome of one pipeline run.
type RunSummary struct {
	Files    int                  `json:"files"`
	Lines    int                  `json:"lines"`
	Match    int                  `json:"match"`
	Mismatch int                  `json:"mismatch"`
	Neutral  int                  `json:"neutral"`
	PerFile  map[string]FileStats `json:"per_file"`
	Warnings []string             `json:"warnings,omitempty"`
	Failed   bool                 `json:"failed"`
}

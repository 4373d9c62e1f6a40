// Package matcher compiles rules into line matchers. Each match kind
// is its own type behind the Matcher interface; compilation happens
// once per run so per-line evaluation stays allocation-free and pure.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/atikulmunna/canlens/internal/model"
)

// Matcher reports whether a rule's expression applies to a line.
type Matcher interface {
	Applies(line string) bool
}

// CompiledRule pairs a rule with its compiled matcher.
type CompiledRule struct {
	Rule    model.Rule
	Matcher Matcher
}

// Compile builds a matcher for the rule. The rule is assumed to have
// passed config validation; Compile still rejects what it cannot build.
func Compile(r model.Rule) (CompiledRule, error) {
	var (
		m   Matcher
		err error
	)

	switch r.Kind {
	case model.MatchLiteral:
		m, err = newLiteral(r.Expr)
	case model.MatchPattern:
		m, err = newPattern(r.Expr)
	case model.MatchKeywords:
		m, err = newKeywordSet(r.Keywords)
	default:
		err = fmt.Errorf("unknown match kind %q", r.Kind)
	}
	if err != nil {
		return CompiledRule{}, fmt.Errorf("rule %q: %w", r.ID, err)
	}
	return CompiledRule{Rule: r, Matcher: m}, nil
}

// CompileAll compiles every rule of a configuration, preserving the
// declared order.
func CompileAll(cfg model.Configuration) ([]CompiledRule, error) {
	rules := make([]CompiledRule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		cr, err := Compile(r)
		if err != nil {
			return nil, err
		}
		rules = append(rules, cr)
	}
	return rules, nil
}

// ---------------------------------------------------------------------------
// Literal matcher
// ---------------------------------------------------------------------------

// literal matches a case-insensitive substring.
type literal struct {
	folded string
}

func newLiteral(expr string) (*literal, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty literal expression")
	}
	return &literal{folded: strings.ToLower(expr)}, nil
}

func (m *literal) Applies(line string) bool {
	return strings.Contains(strings.ToLower(line), m.folded)
}

// ---------------------------------------------------------------------------
// Pattern matcher
// ---------------------------------------------------------------------------

// pattern matches a regular expression, compiled once.
type pattern struct {
	re *regexp.Regexp
}

func newPattern(expr string) (*pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	return &pattern{re: re}, nil
}

func (m *pattern) Applies(line string) bool {
	return m.re.MatchString(line)
}

// ---------------------------------------------------------------------------
// Keyword-set matcher
// ---------------------------------------------------------------------------

// keywordSet matches when any keyword appears as a whole word,
// case-insensitively. Whole-word matching keeps short outcome words
// from firing inside longer ones ("match" inside "mismatch").
type keywordSet struct {
	res []*regexp.Regexp
}

func newKeywordSet(words []string) (*keywordSet, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("empty keyword set")
	}
	res := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		if w == "" {
			return nil, fmt.Errorf("empty keyword")
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", w, err)
		}
		res = append(res, re)
	}
	return &keywordSet{res: res}, nil
}

func (m *keywordSet) Applies(line string) bool {
	for _, re := range m.res {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

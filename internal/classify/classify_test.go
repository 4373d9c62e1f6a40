package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atikulmunna/canlens/internal/matcher"
	"github.com/atikulmunna/canlens/internal/model"
)

func compile(t *testing.T, rules ...model.Rule) []matcher.CompiledRule {
	t.Helper()
	compiled, err := matcher.CompileAll(model.Configuration{Rules: rules})
	if err != nil {
		t.Fatal(err)
	}
	return compiled
}

func TestClassifyOneRecordPerLine(t *testing.T) {
	rules := compile(t,
		model.Rule{ID: "err", Kind: model.MatchLiteral, Expr: "error", Category: model.CategoryMismatch},
	)
	lines := []string{"a", "error b", "c", "error d", ""}

	records := Classify(rules, model.LogFile{Name: "t.log"}, lines)

	if len(records) != len(lines) {
		t.Fatalf("expected %d records, got %d", len(lines), len(records))
	}
	for i, r := range records {
		if r.Line != i+1 {
			t.Errorf("record %d: expected line %d, got %d", i, i+1, r.Line)
		}
		if r.Source != "t.log" {
			t.Errorf("record %d: expected source t.log, got %q", i, r.Source)
		}
		if r.Text != lines[i] {
			t.Errorf("record %d: expected text %q, got %q", i, lines[i], r.Text)
		}
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// "nack" declared before "ack": a literal "ACK" occurs inside
	// "NACK", so declaration order, not specificity, must decide.
	rules := compile(t,
		model.Rule{ID: "nack", Kind: model.MatchLiteral, Expr: "NACK", Category: model.CategoryMismatch},
		model.Rule{ID: "ack", Kind: model.MatchLiteral, Expr: "ACK", Category: model.CategoryMatch},
	)

	records := Classify(rules, model.LogFile{Name: "t.log"}, []string{"0x10 NACK received"})

	if records[0].Category != model.CategoryMismatch {
		t.Errorf("expected mismatch, got %s", records[0].Category)
	}
	if records[0].RuleID != "nack" {
		t.Errorf("expected rule nack, got %q", records[0].RuleID)
	}
}

func TestClassifyEarlierRuleWinsBothApply(t *testing.T) {
	rules := compile(t,
		model.Rule{ID: "first", Kind: model.MatchLiteral, Expr: "CCP", Category: model.CategoryMatch},
		model.Rule{ID: "second", Kind: model.MatchLiteral, Expr: "EPK", Category: model.CategoryMismatch},
	)

	records := Classify(rules, model.LogFile{Name: "t.log"}, []string{"CCP: EPK read"})

	if records[0].RuleID != "first" {
		t.Errorf("expected earlier rule to win, got %q", records[0].RuleID)
	}
	if records[0].Category != model.CategoryMatch {
		t.Errorf("expected category of earlier rule, got %s", records[0].Category)
	}
}

func TestClassifyNeutralWhenNoRuleApplies(t *testing.T) {
	rules := compile(t,
		model.Rule{ID: "x", Kind: model.MatchLiteral, Expr: "nothing", Category: model.CategoryMatch},
	)

	records := Classify(rules, model.LogFile{Name: "t.log"}, []string{"plain trace line"})

	if records[0].Category != model.CategoryNeutral {
		t.Errorf("expected neutral, got %s", records[0].Category)
	}
	if records[0].RuleID != "" {
		t.Errorf("expected empty rule id, got %q", records[0].RuleID)
	}
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.log")
	if err := os.WriteFile(path, []byte("first\r\nsecond\nlast without newline"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"first", "second", "last without newline"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestReadLinesDropsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.log")
	if err := os.WriteFile(path, []byte("ok \xff\xfe line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines[0] != "ok  line" {
		t.Errorf("expected invalid bytes dropped, got %q", lines[0])
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	_, err := ReadLines(filepath.Join(t.TempDir(), "absent.log"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

// Package classify applies compiled rules to log lines.
package classify

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/atikulmunna/canlens/internal/matcher"
	"github.com/atikulmunna/canlens/internal/model"
)

// maxLineBytes bounds a single log line; CAN trace lines are short but
// a corrupt file should not blow up the scanner.
const maxLineBytes = 1 << 20

// Classify produces exactly one record per input line, in input order.
// Rules are evaluated in declared order and the first rule that applies
// decides the record's category and rule id; a line no rule applies to
// is neutral with no rule id.
func Classify(rules []matcher.CompiledRule, lf model.LogFile, lines []string) []model.ClassifiedRecord {
	records := make([]model.ClassifiedRecord, 0, len(lines))

	for i, line := range lines {
		rec := model.ClassifiedRecord{
			Source:   lf.Name,
			Line:     i + 1,
			Text:     line,
			Category: model.CategoryNeutral,
		}
		for _, cr := range rules {
			if cr.Matcher.Applies(line) {
				rec.Category = cr.Rule.Category
				rec.RuleID = cr.Rule.ID
				break
			}
		}
		records = append(records, rec)
	}

	return records
}

// ReadLines reads a file into trimmed lines. Bytes that are not valid
// UTF-8 are dropped rather than failing the file, and a missing final
// newline still yields the last line.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines = append(lines, sanitize(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

// sanitize strips invalid UTF-8 and trailing whitespace from a line.
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.TrimRight(s, " \t\r")
}

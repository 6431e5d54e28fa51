package rulelist

import (
	"time"

	"github.com/samber/lo"
)

// Correction records one line rewritten by Normalize.
type Correction struct {
	Line   int // 1-based
	Before string
	After  string
}

// Result is the outcome of fixing one rule-list file.
type Result struct {
	Lines       []string
	Corrections []Correction
	Before      string
	After       string
}

// Changed reports whether the file content differs from what was read and
// must be written back. Because the header date is regenerated on every run,
// the first run on a new calendar day always reports a change even when no
// rule was touched.
func (r Result) Changed() bool {
	return r.Before != r.After
}

// RuleCount returns the number of rule lines below the header.
func (r Result) RuleCount() int {
	if len(r.Lines) <= HeaderLines {
		return 0
	}
	return CountRules(r.Lines[HeaderLines:])
}

// Summary counts body rules by type prefix.
func (r Result) Summary() map[RuleType]int {
	if len(r.Lines) <= HeaderLines {
		return map[RuleType]int{}
	}
	rules := lo.Filter(r.Lines[HeaderLines:], func(line string, _ int) bool {
		return IsRule(line)
	})
	return lo.CountValuesBy(rules, func(line string) RuleType {
		t, _ := TypeOf(line)
		return t
	})
}

// Fixer runs the normalize-then-rewrite-header pipeline.
type Fixer struct {
	Header Header
	Now    func() time.Time
}

// NewFixer creates a Fixer with the given header layout and the wall clock.
func NewFixer(h Header) *Fixer {
	return &Fixer{
		Header: h,
		Now:    time.Now,
	}
}

// Fix normalizes every line, rewrites the header and fingerprints the
// content before and after.
func (f *Fixer) Fix(lines []string) Result {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	fixed := make([]string, len(lines))
	var corrections []Correction
	for i, line := range lines {
		out, changed := Normalize(line)
		fixed[i] = out
		if changed {
			corrections = append(corrections, Correction{
				Line:   i + 1,
				Before: line,
				After:  out,
			})
		}
	}

	fixed = f.Header.Rewrite(fixed, now())

	return Result{
		Lines:       fixed,
		Corrections: corrections,
		Before:      Fingerprint(lines),
		After:       Fingerprint(fixed),
	}
}

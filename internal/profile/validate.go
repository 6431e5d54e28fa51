// Package profile checks that the rule blocks of a subconverter-style
// profile only reference proxy groups declared in the matching group block.
package profile

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	DefaultRuleLabel  = ";规则label"
	DefaultGroupLabel = ";分组label"

	rulesetKey    = "ruleset"
	proxyGroupKey = "custom_proxy_group"
)

// Labels are the sentinel lines that open and close blocks.
type Labels struct {
	Rule  string
	Group string
}

// DefaultLabels returns the sentinels used by the published profiles.
func DefaultLabels() Labels {
	return Labels{Rule: DefaultRuleLabel, Group: DefaultGroupLabel}
}

// WarningKind distinguishes structural from name-level findings.
type WarningKind int

const (
	// WarnUnmatchedBlock means a rule block has no group block at its position.
	WarnUnmatchedBlock WarningKind = iota
	// WarnMissingGroup means a ruleset name is absent from the paired group block.
	WarnMissingGroup
)

// Warning is a single validation finding. Block is 1-based.
type Warning struct {
	Kind  WarningKind
	Block int
	Name  string
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnUnmatchedBlock:
		return fmt.Sprintf("rule block %d has no matching group block", w.Block)
	default:
		return fmt.Sprintf("block %d: ruleset %q is not defined in the matching group block", w.Block, w.Name)
	}
}

// Document holds the blocks extracted from a profile, in document order.
type Document struct {
	RuleBlocks  [][]string
	GroupBlocks [][]string
}

type blockKind int

const (
	blockNone blockKind = iota
	blockRule
	blockGroup
)

// scanner is the block state machine. names is only meaningful while kind
// is not blockNone.
type scanner struct {
	labels Labels
	kind   blockKind
	names  []string
	doc    Document
}

// Parse scans lines top to bottom and collects rule and group blocks. A
// sentinel line opens its block kind or, when that kind is already open,
// closes it. A trailing open block is closed at end of input.
func Parse(lines []string, labels Labels) Document {
	s := &scanner{labels: labels}
	for _, line := range lines {
		s.feed(strings.TrimSpace(line))
	}
	s.close()
	return s.doc
}

func (s *scanner) feed(line string) {
	switch {
	case line == "":
		return
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return
	case line == s.labels.Rule:
		s.toggle(blockRule)
		return
	case line == s.labels.Group:
		s.toggle(blockGroup)
		return
	}

	key, value, found := strings.Cut(line, "=")
	if !found {
		return
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	var name string
	switch {
	case s.kind == blockRule && key == rulesetKey:
		name = leading(value, ",")
	case s.kind == blockGroup && key == proxyGroupKey:
		name = leading(value, "`")
	default:
		return
	}
	if name != "" {
		s.names = append(s.names, name)
	}
}

// toggle closes the open block when it is of kind k, and otherwise opens a
// fresh block of kind k. An open block of the other kind is dropped.
func (s *scanner) toggle(k blockKind) {
	if s.kind == k {
		s.close()
		return
	}
	s.kind = k
	s.names = []string{}
}

func (s *scanner) close() {
	names := s.names
	if names == nil {
		names = []string{}
	}
	switch s.kind {
	case blockRule:
		s.doc.RuleBlocks = append(s.doc.RuleBlocks, names)
	case blockGroup:
		s.doc.GroupBlocks = append(s.doc.GroupBlocks, names)
	}
	s.kind = blockNone
	s.names = nil
}

// leading returns the trimmed text of value before the first sep.
func leading(value, sep string) string {
	name, _, _ := strings.Cut(value, sep)
	return strings.TrimSpace(name)
}

// Check pairs rule blocks with group blocks by position. The first rule
// block without a group block yields one warning and ends the check; blocks
// after it are not examined.
func (d Document) Check() []Warning {
	var warnings []Warning
	for i, rules := range d.RuleBlocks {
		if i >= len(d.GroupBlocks) {
			warnings = append(warnings, Warning{Kind: WarnUnmatchedBlock, Block: i + 1})
			break
		}
		groups := d.GroupBlocks[i]
		for _, name := range rules {
			if !lo.Contains(groups, name) {
				warnings = append(warnings, Warning{Kind: WarnMissingGroup, Block: i + 1, Name: name})
			}
		}
	}
	return warnings
}

// Validate parses lines and returns every pairing warning in order. An
// empty result means the profile is consistent.
func Validate(lines []string, labels Labels) []Warning {
	return Parse(lines, labels).Check()
}

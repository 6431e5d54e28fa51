// Package rulelist normalizes Surge-style rule-list files: one rule per line,
// a type prefix followed by a comma-separated payload.
package rulelist

import "strings"

// RuleType is the type prefix of a rule line.
type RuleType string

const (
	RuleDomain        RuleType = "DOMAIN"
	RuleDomainSuffix  RuleType = "DOMAIN-SUFFIX"
	RuleDomainKeyword RuleType = "DOMAIN-KEYWORD"
	RuleIPCIDR        RuleType = "IP-CIDR"
	RuleGeoIP         RuleType = "GEOIP"
)

// RuleTypes lists every recognized prefix.
var RuleTypes = []RuleType{
	RuleDomain,
	RuleDomainSuffix,
	RuleDomainKeyword,
	RuleIPCIDR,
	RuleGeoIP,
}

// prefixCorrections maps known misspellings (upper-cased) to their canonical type.
var prefixCorrections = map[string]RuleType{
	"DOMAIN-SUFIX":  RuleDomainSuffix,
	"IP-CID":        RuleIPCIDR,
	"DOMIAN":        RuleDomain,
	"DOMIAN-SUFFIX": RuleDomainSuffix,
	"GEO-IP":        RuleGeoIP,
}

// LineKind classifies a rule-list line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineRule
)

// Classify reports the kind of a raw line.
func Classify(line string) LineKind {
	stripped := strings.TrimSpace(line)
	switch {
	case stripped == "":
		return LineBlank
	case strings.HasPrefix(stripped, "#"):
		return LineComment
	default:
		return LineRule
	}
}

// IsRule reports whether line is neither blank nor a comment.
func IsRule(line string) bool {
	return Classify(line) == LineRule
}

// lookupPrefix resolves a raw prefix token to a canonical type, trying an
// exact case-insensitive match first and the correction table second.
func lookupPrefix(prefix string) (RuleType, bool) {
	upper := strings.ToUpper(prefix)
	for _, t := range RuleTypes {
		if string(t) == upper {
			return t, true
		}
	}
	t, ok := prefixCorrections[upper]
	return t, ok
}

// TypeOf returns the prefix of an already-normalized rule line. The second
// result is false for blank lines, comments and lines without a known prefix.
func TypeOf(line string) (RuleType, bool) {
	if !IsRule(line) {
		return "", false
	}
	prefix, _, found := strings.Cut(strings.TrimSpace(line), ",")
	if !found {
		return "", false
	}
	prefix = strings.TrimSpace(prefix)
	for _, t := range RuleTypes {
		if string(t) == prefix {
			return t, true
		}
	}
	return "", false
}

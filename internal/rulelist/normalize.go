package rulelist

import (
	"net/netip"
	"strings"
)

// Normalize returns the canonical form of a single rule-list line and
// whether it differs from what was read.
//
// Blank lines and comments pass through. A bare value (no comma) gets
// IP-CIDR when it parses as an address block, DOMAIN-SUFFIX otherwise. A
// prefixed line keeps its prefix when it is already canonical, has it
// corrected when it is a known variant, and is otherwise demoted into the
// payload of an inferred rule. Normalize never fails and is idempotent.
func Normalize(line string) (string, bool) {
	stripped := strings.TrimSpace(line)
	if Classify(stripped) != LineRule {
		return stripped, false
	}

	prefix, rest, found := strings.Cut(stripped, ",")
	if !found {
		if isAddressBlock(stripped) {
			return string(RuleIPCIDR) + "," + stripped, true
		}
		return string(RuleDomainSuffix) + "," + stripped, true
	}

	prefix = strings.TrimSpace(prefix)
	rest = strings.TrimSpace(rest)

	canonical, ok := lookupPrefix(prefix)
	if !ok {
		if isAddressBlock(prefix + "," + rest) {
			return string(RuleIPCIDR) + "," + prefix + "," + rest, true
		}
		return string(RuleDomainSuffix) + "," + prefix + "," + rest, true
	}
	if string(canonical) != prefix {
		return string(canonical) + "," + rest, true
	}
	return stripped, false
}

// isAddressBlock reports whether s is an IPv4/IPv6 address or CIDR block.
// Host bits are allowed; a bare address is a single-host block.
func isAddressBlock(s string) bool {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		return err == nil && p.Addr().Zone() == ""
	}
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Zone() == ""
}

package rulelist

import (
	"slices"
	"testing"
	"time"
)

func fixedClock(day string) func() time.Time {
	return func() time.Time {
		t, err := time.Parse(time.DateOnly, day)
		if err != nil {
			panic(err)
		}
		return t.Add(15*time.Hour + 4*time.Minute)
	}
}

func TestHeaderRewrite_RecomputesCount(t *testing.T) {
	lines := []string{
		"# Streaming",
		"# 更新时间: 2020-01-01",
		"# 规则数量: 999",
		"# video",
		"DOMAIN-SUFFIX,a.com",
		"DOMAIN-SUFFIX,b.com",
		"",
		"DOMAIN,c.com",
		"# audio",
		"IP-CIDR,1.0.0.0/8",
		"GEOIP,CN",
	}

	got := DefaultHeader().Rewrite(lines, fixedClock("2026-10-14")())

	want := []string{"# Streaming", "# 更新时间: 2026-10-14", "# 规则数量: 5"}
	if !slices.Equal(got[:3], want) {
		t.Fatalf("header = %q, want %q", got[:3], want)
	}
	if !slices.Equal(got[3:], lines[3:]) {
		t.Fatalf("body changed: %q", got[3:])
	}
}

func TestHeaderRewrite_ShortInput(t *testing.T) {
	h := Header{Title: "# T", UpdatedMarker: "U:", CountMarker: "C:"}
	now := fixedClock("2026-01-02")()

	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{name: "empty", lines: nil, want: []string{"# T", "U:2026-01-02", "C:0"}},
		{name: "title only", lines: []string{"# Mine"}, want: []string{"# Mine", "U:2026-01-02", "C:0"}},
		{name: "three lines", lines: []string{"a", "b", "c"}, want: []string{"a", "U:2026-01-02", "C:0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Rewrite(tt.lines, now); !slices.Equal(got, tt.want) {
				t.Errorf("Rewrite() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"x", "y"})
	if a != Fingerprint([]string{"x", "y"}) {
		t.Fatal("Fingerprint is not deterministic")
	}
	if a == Fingerprint([]string{"xy"}) {
		t.Fatal("Fingerprint ignores line boundaries")
	}
	if len(a) != 64 {
		t.Fatalf("Fingerprint length = %d, want 64", len(a))
	}
}

func TestFixer_Fix(t *testing.T) {
	f := &Fixer{Header: DefaultHeader(), Now: fixedClock("2026-10-14")}

	res := f.Fix([]string{
		"# Lists",
		"# 更新时间: 2026-10-13",
		"# 规则数量: 1",
		"DOMIAN,example.com",
		"example.org",
		"10.0.0.0/8",
		"DOMAIN-KEYWORD,ads",
	})

	want := []string{
		"# Lists",
		"# 更新时间: 2026-10-14",
		"# 规则数量: 4",
		"DOMAIN,example.com",
		"DOMAIN-SUFFIX,example.org",
		"IP-CIDR,10.0.0.0/8",
		"DOMAIN-KEYWORD,ads",
	}
	if !slices.Equal(res.Lines, want) {
		t.Fatalf("Lines = %q, want %q", res.Lines, want)
	}
	if !res.Changed() {
		t.Error("Changed() = false, want true")
	}
	if len(res.Corrections) != 3 {
		t.Fatalf("Corrections = %d, want 3", len(res.Corrections))
	}
	if c := res.Corrections[0]; c.Line != 4 || c.Before != "DOMIAN,example.com" || c.After != "DOMAIN,example.com" {
		t.Errorf("Corrections[0] = %+v", c)
	}
	if res.RuleCount() != 4 {
		t.Errorf("RuleCount() = %d, want 4", res.RuleCount())
	}

	summary := res.Summary()
	if summary[RuleDomain] != 1 || summary[RuleDomainSuffix] != 1 || summary[RuleIPCIDR] != 1 || summary[RuleDomainKeyword] != 1 {
		t.Errorf("Summary() = %v", summary)
	}
}

func TestFixer_FingerprintGating(t *testing.T) {
	f := &Fixer{Header: DefaultHeader(), Now: fixedClock("2026-10-14")}
	first := f.Fix([]string{"# T", "", "", "DOMAIN,a.com", "b.com"})
	if !first.Changed() {
		t.Fatal("first run: Changed() = false, want true")
	}

	// Same day, already normalized: nothing to write.
	second := f.Fix(first.Lines)
	if second.Changed() {
		t.Fatalf("same-day rerun: Changed() = true, lines %q", second.Lines)
	}
	if len(second.Corrections) != 0 {
		t.Fatalf("same-day rerun: %d corrections, want 0", len(second.Corrections))
	}

	// Next day, nothing but the date differs: still a write.
	f.Now = fixedClock("2026-10-15")
	third := f.Fix(first.Lines)
	if !third.Changed() {
		t.Fatal("next-day rerun: Changed() = false, want true")
	}
	if len(third.Corrections) != 0 {
		t.Fatalf("next-day rerun: %d corrections, want 0", len(third.Corrections))
	}
	if !slices.Equal(third.Lines[2:], first.Lines[2:]) {
		t.Fatalf("next-day rerun changed more than the date: %q", third.Lines)
	}
}

func TestNewFixer_UsesWallClock(t *testing.T) {
	f := NewFixer(DefaultHeader())
	res := f.Fix(nil)
	want := DefaultUpdatedMarker + time.Now().Format(time.DateOnly)
	if res.Lines[1] != want {
		t.Errorf("date line = %q, want %q", res.Lines[1], want)
	}
	if res.Lines[0] != DefaultTitle {
		t.Errorf("title = %q, want %q", res.Lines[0], DefaultTitle)
	}
}

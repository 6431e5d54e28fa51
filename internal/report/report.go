// Package report renders per-file outcomes to the console log.
package report

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/xxxbrian/surge-rulekit/internal/geoip"
	"github.com/xxxbrian/surge-rulekit/internal/profile"
	"github.com/xxxbrian/surge-rulekit/internal/rulelist"
)

// Status describes what happened to a rule-list file.
type Status int

const (
	Unchanged Status = iota
	Rewritten
	Pending // would be rewritten, dry run
)

func (s Status) String() string {
	switch s {
	case Rewritten:
		return "updated"
	case Pending:
		return "needs update"
	default:
		return "unchanged"
	}
}

// Reporter serializes output from concurrent workers.
type Reporter struct {
	mu      sync.Mutex
	logger  *log.Logger
	catalog *geoip.Catalog
}

// New creates a Reporter. catalog may be nil.
func New(logger *log.Logger, catalog *geoip.Catalog) *Reporter {
	return &Reporter{logger: logger, catalog: catalog}
}

// ListFile reports a processed rule-list file.
func (r *Reporter) ListFile(path string, res rulelist.Result, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.logger.With("file", path)
	for _, c := range res.Corrections {
		l.Debug("corrected", "line", c.Line, "from", strings.TrimSpace(c.Before), "to", c.After)
	}

	switch status {
	case Rewritten:
		l.Info("file updated", "rules", res.RuleCount(), "corrected", len(res.Corrections))
	case Pending:
		l.Warn("file needs update", "rules", res.RuleCount(), "corrected", len(res.Corrections))
	default:
		l.Debug("file unchanged", "rules", res.RuleCount())
	}

	if r.logger.GetLevel() <= log.DebugLevel {
		l.Debug("summary", "types", r.summary(res))
	}
}

// summary renders "TYPE=n" pairs in a stable order, with GEOIP codes
// annotated by their network counts when a catalog is loaded.
func (r *Reporter) summary(res rulelist.Result) string {
	counts := res.Summary()
	var parts []string
	for _, t := range rulelist.RuleTypes {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", t, n))
		}
	}
	if r.catalog == nil || counts[rulelist.RuleGeoIP] == 0 {
		return strings.Join(parts, " ")
	}

	var codes []string
	for _, line := range res.Lines[rulelist.HeaderLines:] {
		if t, ok := rulelist.TypeOf(line); !ok || t != rulelist.RuleGeoIP {
			continue
		}
		_, payload, _ := strings.Cut(line, ",")
		code, _, _ := strings.Cut(payload, ",")
		code = strings.ToUpper(strings.TrimSpace(code))
		if slices.Contains(codes, code) {
			continue
		}
		codes = append(codes, code)
		if n, ok := r.catalog.Networks(code); ok {
			parts = append(parts, fmt.Sprintf("%s(%d networks)", code, n))
		} else {
			parts = append(parts, code+"(not in database)")
		}
	}
	return strings.Join(parts, " ")
}

// ProfileFile reports the warnings of one profile file.
func (r *Reporter) ProfileFile(path string, warnings []profile.Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.logger.With("file", path)
	if len(warnings) == 0 {
		l.Info("no problems found")
		return
	}
	for _, w := range warnings {
		l.Warn(w.String())
	}
}

// NoProfiles reports that no profile file was found under root.
func (r *Reporter) NoProfiles(root string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Info("no profile files found", "root", root)
}

// Failed reports a file that could not be processed.
func (r *Reporter) Failed(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Error("failed", "file", path, "err", err)
}

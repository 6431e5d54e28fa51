// Package runner wires discovery, the rule-list fixer, the profile validator,
// reporting and metrics into one pass over a directory tree.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/xxxbrian/surge-rulekit/internal/files"
	"github.com/xxxbrian/surge-rulekit/internal/metrics"
	"github.com/xxxbrian/surge-rulekit/internal/profile"
	"github.com/xxxbrian/surge-rulekit/internal/report"
	"github.com/xxxbrian/surge-rulekit/internal/rulelist"
)

// Mode selects which file families a run processes.
type Mode int

const (
	ModeAll Mode = iota
	ModeFix
	ModeCheck
)

// ParseMode maps a subcommand name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "all":
		return ModeAll, nil
	case "fix":
		return ModeFix, nil
	case "check":
		return ModeCheck, nil
	default:
		return 0, fmt.Errorf("unknown command %q", s)
	}
}

// Options configures a Runner.
type Options struct {
	Root              string
	Workers           int
	DryRun            bool
	ListExtensions    []string
	ProfileExtensions []string
	Header            rulelist.Header
	Labels            profile.Labels
}

// Stats summarizes a run.
type Stats struct {
	Lists     int
	Rewritten int
	Pending   int
	Profiles  int
	Warnings  int
	Failed    int
}

// Runner processes files independently; each file is owned by exactly one
// worker.
type Runner struct {
	opts     Options
	fixer    *rulelist.Fixer
	reporter *report.Reporter
	metrics  *metrics.Metrics

	mu    sync.Mutex
	stats Stats
	errs  []error
}

// New creates a Runner. m may be nil.
func New(opts Options, reporter *report.Reporter, m *metrics.Metrics) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		opts:     opts,
		fixer:    rulelist.NewFixer(opts.Header),
		reporter: reporter,
		metrics:  m,
	}
}

// Run processes every matching file under the root. File-level failures do
// not stop the run; they are reported and returned joined at the end.
func (r *Runner) Run(ctx context.Context, mode Mode) (Stats, error) {
	r.mu.Lock()
	r.stats = Stats{}
	r.errs = nil
	r.mu.Unlock()

	var lists, profiles []string
	var err error

	if mode != ModeCheck {
		if lists, err = files.Find(r.opts.Root, r.opts.ListExtensions); err != nil {
			return Stats{}, err
		}
	}
	if mode != ModeFix {
		if profiles, err = files.Find(r.opts.Root, r.opts.ProfileExtensions); err != nil {
			return Stats{}, err
		}
		if len(profiles) == 0 {
			r.reporter.NoProfiles(r.opts.Root)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for _, path := range lists {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.fixList(path)
			return nil
		})
	}
	for _, path := range profiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.checkProfile(path)
			return nil
		})
	}

	waitErr := g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats, errors.Join(append([]error{waitErr}, r.errs...)...)
}

func (r *Runner) fixList(path string) {
	lines, err := files.ReadLines(path)
	if err != nil {
		r.fail(metrics.KindList, path, err)
		return
	}

	res := r.fixer.Fix(lines)

	status := report.Unchanged
	if res.Changed() {
		if r.opts.DryRun {
			status = report.Pending
		} else {
			if err := files.WriteLines(path, res.Lines); err != nil {
				r.fail(metrics.KindList, path, err)
				return
			}
			status = report.Rewritten
		}
	}
	r.reporter.ListFile(path, res, status)

	r.mu.Lock()
	r.stats.Lists++
	switch status {
	case report.Rewritten:
		r.stats.Rewritten++
	case report.Pending:
		r.stats.Pending++
	}
	r.mu.Unlock()

	if r.metrics != nil {
		result := metrics.ResultUnchanged
		switch status {
		case report.Rewritten:
			result = metrics.ResultRewritten
		case report.Pending:
			result = metrics.ResultPending
		}
		r.metrics.FileDone(metrics.KindList, result)
		r.metrics.LinesCorrected.Add(float64(len(res.Corrections)))
	}
}

func (r *Runner) checkProfile(path string) {
	lines, err := files.ReadLines(path)
	if err != nil {
		r.fail(metrics.KindProfile, path, err)
		return
	}

	warnings := profile.Validate(lines, r.opts.Labels)
	r.reporter.ProfileFile(path, warnings)

	r.mu.Lock()
	r.stats.Profiles++
	r.stats.Warnings += len(warnings)
	r.mu.Unlock()

	if r.metrics != nil {
		result := metrics.ResultValid
		if len(warnings) > 0 {
			result = metrics.ResultWarned
		}
		r.metrics.FileDone(metrics.KindProfile, result)
		r.metrics.Warnings.Add(float64(len(warnings)))
	}
}

func (r *Runner) fail(kind, path string, err error) {
	r.reporter.Failed(path, err)

	r.mu.Lock()
	r.stats.Failed++
	r.errs = append(r.errs, err)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.FileDone(kind, metrics.ResultFailed)
	}
}

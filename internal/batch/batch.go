// Package batch drives daily production: it works through todo cases toward a
// per-day publish target, refilling the queue from the planner when it runs
// short, and stops early once the initial launch ceiling is reached.
package batch

import (
	"context"
	"fmt"
	"log"

	"github.com/hyeonlab/casefactory/internal/agent"
	"github.com/hyeonlab/casefactory/internal/database"
)

// Store is the case inventory the batch runner works against.
type Store interface {
	ListTodo(limit int) ([]database.Case, error)
	CountPublished() (int, error)
	UpsertCase(c *database.Case) error
}

// Runner processes a single case end to end.
type Runner interface {
	Run(ctx context.Context, caseID string, maxAttempts int) (*agent.Outcome, error)
}

// CasePlanner supplies new todo cases when the queue runs short.
type CasePlanner interface {
	Suggest(domain string, limit int) ([]database.Case, error)
}

// Options controls one batch run.
type Options struct {
	TargetPerDay       int
	MaxRefillLoops     int
	DomainType         string
	InitialLaunchLimit int
	IgnoreInitialLimit bool
	DryRun             bool
}

// Result summarizes a batch run.
type Result struct {
	Published    []string
	Discarded    []string
	Planned      int
	LimitReached bool
}

// Batch coordinates planner, store and agent for a daily run.
type Batch struct {
	store   Store
	runner  Runner
	planner CasePlanner
	opts    Options
}

// New builds a batch runner. Zero options fall back to the standard volumes.
func New(store Store, runner Runner, planner CasePlanner, opts Options) *Batch {
	if opts.TargetPerDay <= 0 {
		opts.TargetPerDay = 10
	}
	if opts.MaxRefillLoops <= 0 {
		opts.MaxRefillLoops = 3
	}
	if opts.DomainType == "" {
		opts.DomainType = "debt"
	}
	return &Batch{store: store, runner: runner, planner: planner, opts: opts}
}

// Run executes one daily batch and returns its summary.
func (b *Batch) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	// Launch guard: stop automated production once the site holds enough
	// pages for a manual SEO review.
	if b.opts.InitialLaunchLimit > 0 && !b.opts.IgnoreInitialLimit {
		total, err := b.store.CountPublished()
		if err != nil {
			return nil, fmt.Errorf("counting published cases: %w", err)
		}
		if total >= b.opts.InitialLaunchLimit {
			log.Printf("batch: initial launch limit reached (%d published), stopping", total)
			res.LimitReached = true
			return res, nil
		}
	}

	for loop := 0; loop < b.opts.MaxRefillLoops && len(res.Published) < b.opts.TargetPerDay; loop++ {
		needed := b.opts.TargetPerDay - len(res.Published)
		log.Printf("batch: loop %d, published=%d, needed=%d", loop+1, len(res.Published), needed)

		todo, err := b.store.ListTodo(needed * 2)
		if err != nil {
			return nil, fmt.Errorf("listing todo cases: %w", err)
		}

		if len(todo) < needed {
			shortage := needed - len(todo)
			planned, err := b.refill(shortage)
			if err != nil {
				return nil, err
			}
			res.Planned += planned
			if !b.opts.DryRun && planned > 0 {
				todo, err = b.store.ListTodo(needed * 2)
				if err != nil {
					return nil, fmt.Errorf("relisting todo cases: %w", err)
				}
			}
		}

		if len(todo) == 0 {
			log.Printf("batch: no todo cases available, stopping")
			break
		}

		for _, c := range todo {
			if len(res.Published) >= b.opts.TargetPerDay {
				break
			}
			if b.opts.DryRun {
				log.Printf("batch: dry-run, skipping %s", c.CaseID)
				continue
			}
			out, err := b.runner.Run(ctx, c.CaseID, agent.AttemptCeiling)
			if err != nil {
				return res, fmt.Errorf("processing %s: %w", c.CaseID, err)
			}
			switch out.Status {
			case agent.StatusPublished:
				res.Published = append(res.Published, c.CaseID)
				log.Printf("batch: published %s -> %s", c.CaseID, out.HTMLPath)
			case agent.StatusDiscarded:
				res.Discarded = append(res.Discarded, c.CaseID)
				log.Printf("batch: discarded %s (%s)", c.CaseID, out.Reason)
			default:
				log.Printf("batch: %s on %s (%s)", out.Status, c.CaseID, out.Reason)
			}
		}

		if b.opts.DryRun {
			break
		}
	}

	return res, nil
}

// refill plans new cases for the shortage. Planning twice the shortage (at
// least two) absorbs drafts the loop later discards.
func (b *Batch) refill(shortage int) (int, error) {
	want := shortage * 2
	if want < 2 {
		want = 2
	}
	cases, err := b.planner.Suggest(b.opts.DomainType, want)
	if err != nil {
		return 0, fmt.Errorf("planning new cases: %w", err)
	}
	if b.opts.DryRun {
		log.Printf("batch: dry-run, planned %d cases without saving", len(cases))
		return len(cases), nil
	}
	for i := range cases {
		if err := b.store.UpsertCase(&cases[i]); err != nil {
			return 0, fmt.Errorf("saving planned case %s: %w", cases[i].CaseID, err)
		}
	}
	return len(cases), nil
}

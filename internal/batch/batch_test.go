package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyeonlab/casefactory/internal/agent"
	"github.com/hyeonlab/casefactory/internal/database"
)

type fakeStore struct {
	todo      []database.Case
	published int
	upserts   []database.Case
}

func (s *fakeStore) ListTodo(limit int) ([]database.Case, error) {
	if len(s.todo) > limit {
		return s.todo[:limit], nil
	}
	return s.todo, nil
}

func (s *fakeStore) CountPublished() (int, error) { return s.published, nil }

func (s *fakeStore) UpsertCase(c *database.Case) error {
	s.upserts = append(s.upserts, *c)
	s.todo = append(s.todo, *c)
	return nil
}

type fakeRunner struct {
	outcomes   map[string]*agent.Outcome
	discardAll bool
	calls      []string
	attempts   []int
}

func (r *fakeRunner) Run(ctx context.Context, caseID string, maxAttempts int) (*agent.Outcome, error) {
	r.calls = append(r.calls, caseID)
	r.attempts = append(r.attempts, maxAttempts)
	if out, ok := r.outcomes[caseID]; ok {
		return out, nil
	}
	if r.discardAll {
		return &agent.Outcome{Status: agent.StatusDiscarded, Reason: "x", Attempts: maxAttempts}, nil
	}
	return &agent.Outcome{Status: agent.StatusPublished, Attempts: 1}, nil
}

type fakePlanner struct {
	requested []int
	serial    int
}

func (p *fakePlanner) Suggest(domain string, limit int) ([]database.Case, error) {
	p.requested = append(p.requested, limit)
	var cases []database.Case
	for i := 0; i < limit; i++ {
		p.serial++
		cases = append(cases, database.Case{
			CaseID: fmt.Sprintf("PLAN-%03d", p.serial),
			Slug:   fmt.Sprintf("auto-plan-%03d", p.serial),
			Status: database.StatusTodo,
		})
	}
	return cases, nil
}

func todoCases(n int) []database.Case {
	var cases []database.Case
	for i := 0; i < n; i++ {
		cases = append(cases, database.Case{
			CaseID: fmt.Sprintf("DEBT-%03d", i),
			Slug:   fmt.Sprintf("slug-%03d", i),
			Status: database.StatusTodo,
		})
	}
	return cases
}

func TestRunPublishesUpToTarget(t *testing.T) {
	store := &fakeStore{todo: todoCases(10)}
	runner := &fakeRunner{}
	b := New(store, runner, &fakePlanner{}, Options{TargetPerDay: 3})

	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Published) != 3 {
		t.Errorf("expected 3 published, got %d", len(res.Published))
	}
	if len(runner.calls) != 3 {
		t.Errorf("expected 3 pipeline runs, got %d", len(runner.calls))
	}
	for _, attempts := range runner.attempts {
		if attempts != agent.AttemptCeiling {
			t.Errorf("pipeline should run with the attempt ceiling, got %d", attempts)
		}
	}
}

func TestRunCountsDiscards(t *testing.T) {
	store := &fakeStore{todo: todoCases(4)}
	runner := &fakeRunner{outcomes: map[string]*agent.Outcome{
		"DEBT-001": {Status: agent.StatusDiscarded, Reason: "PUI 40 < 기준 80"},
	}}
	b := New(store, runner, &fakePlanner{}, Options{TargetPerDay: 3, MaxRefillLoops: 1})

	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Published) != 3 {
		t.Errorf("expected 3 published, got %d (%v)", len(res.Published), res.Published)
	}
	if len(res.Discarded) != 1 || res.Discarded[0] != "DEBT-001" {
		t.Errorf("expected DEBT-001 discarded, got %v", res.Discarded)
	}
}

func TestRunRefillsFromPlanner(t *testing.T) {
	store := &fakeStore{} // empty queue
	runner := &fakeRunner{}
	planner := &fakePlanner{}
	b := New(store, runner, planner, Options{TargetPerDay: 2, MaxRefillLoops: 3})

	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Planned == 0 {
		t.Fatal("expected planner to be consulted")
	}
	// Shortage of 2 asks for twice as many candidates.
	if planner.requested[0] != 4 {
		t.Errorf("expected 4 candidates requested, got %d", planner.requested[0])
	}
	if len(store.upserts) == 0 {
		t.Error("planned cases should be saved")
	}
	if len(res.Published) != 2 {
		t.Errorf("expected refilled queue to publish 2, got %d", len(res.Published))
	}
}

func TestRunStopsAtRefillLimit(t *testing.T) {
	store := &fakeStore{todo: todoCases(2)}
	// Every case gets discarded: the target is never reached.
	runner := &fakeRunner{discardAll: true}
	planner := &fakePlanner{}
	b := New(store, runner, planner, Options{TargetPerDay: 5, MaxRefillLoops: 2})

	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Published) >= 5 {
		t.Errorf("discard-only queue should not hit target, got %v", res.Published)
	}
	// Two refill loops at most, regardless of remaining shortage.
	if len(planner.requested) > 2 {
		t.Errorf("planner consulted %d times, limit is 2", len(planner.requested))
	}
}

func TestRunInitialLaunchLimit(t *testing.T) {
	store := &fakeStore{todo: todoCases(5), published: 100}
	runner := &fakeRunner{}
	b := New(store, runner, &fakePlanner{}, Options{TargetPerDay: 3, InitialLaunchLimit: 100})

	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.LimitReached {
		t.Error("expected launch limit to stop the batch")
	}
	if len(runner.calls) != 0 {
		t.Errorf("no cases should be processed past the limit, got %v", runner.calls)
	}
}

func TestRunIgnoreInitialLaunchLimit(t *testing.T) {
	store := &fakeStore{todo: todoCases(5), published: 100}
	runner := &fakeRunner{}
	b := New(store, runner, &fakePlanner{}, Options{
		TargetPerDay:       2,
		InitialLaunchLimit: 100,
		IgnoreInitialLimit: true,
	})

	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.LimitReached {
		t.Error("ignored limit should not stop the batch")
	}
	if len(res.Published) != 2 {
		t.Errorf("expected 2 published, got %d", len(res.Published))
	}
}

func TestRunDryRun(t *testing.T) {
	store := &fakeStore{}
	runner := &fakeRunner{}
	planner := &fakePlanner{}
	b := New(store, runner, planner, Options{TargetPerDay: 3, DryRun: true})

	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("dry run must not process cases, got %v", runner.calls)
	}
	if len(store.upserts) != 0 {
		t.Errorf("dry run must not save planned cases, got %d", len(store.upserts))
	}
	if res.Planned == 0 {
		t.Error("dry run should still report planned candidates")
	}
}

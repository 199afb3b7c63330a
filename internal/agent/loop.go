// Package agent runs the generate-review-refine production loop for a case:
// draft, safety review, similarity and uniqueness gates, PUI scoring, then
// render and publish, with reviewer feedback threaded into each retry.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hyeonlab/casefactory/internal/content"
	"github.com/hyeonlab/casefactory/internal/database"
	"github.com/hyeonlab/casefactory/internal/metrics"
	"github.com/hyeonlab/casefactory/internal/quality"
	"github.com/hyeonlab/casefactory/internal/safety"
	"github.com/hyeonlab/casefactory/internal/similarity"
	"github.com/hyeonlab/casefactory/internal/writer"
)

// AttemptCeiling caps the number of drafts per case. One refinement pass is
// all a case gets: fail twice and it is discarded instead of burning more
// LLM calls on a draft the reviewers keep rejecting.
const AttemptCeiling = 2

// Uniqueness gate: drafts need a uniqueness score of at least minUniqueness
// and at least minUniqueBlocks keyword-bearing paragraphs.
const (
	minUniqueness   = 0.6
	minUniqueBlocks = 3
)

// Outcome statuses.
const (
	StatusPublished = "published"
	StatusDiscarded = "discarded"
	StatusError     = "error"
)

// Outcome is the terminal result of one production run.
type Outcome struct {
	Status   string
	Reason   string
	HTMLPath string
	Attempts int
}

// Store is the case persistence the loop needs.
type Store interface {
	GetCase(caseID string) (*database.Case, error)
	UpdateStatus(caseID, status, batchDate string) error
	ListPublishedSlugs(limit int) ([]string, error)
}

// Drafter produces and refines documents for a case.
type Drafter interface {
	Generate(ctx context.Context, c *database.Case, safeMode bool) (*content.Document, error)
	Refine(ctx context.Context, c *database.Case, prevSummary, feedback string, safeMode bool) (*content.Document, error)
}

// Reviewer classifies content safety.
type Reviewer interface {
	Review(ctx context.Context, text string) safety.Verdict
}

// Publisher renders pages and reads published ones back for the corpus.
type Publisher interface {
	RenderAndSave(doc *content.Document) (string, error)
	PublishedText(slug string) string
}

// Recorder logs terminal outcomes.
type Recorder interface {
	Log(rec metrics.Record) error
}

// Config holds the loop's evaluation thresholds.
type Config struct {
	SimilarityThreshold float64
	MinPUIScore         int
	CorpusLimit         int
	DomainType          string
}

// Agent wires the production loop's collaborators.
type Agent struct {
	store    Store
	drafter  Drafter
	reviewer Reviewer
	pages    Publisher
	recorder Recorder
	cfg      Config
	now      func() time.Time
}

// New builds an agent. Zero thresholds fall back to the standard gates.
func New(store Store, drafter Drafter, reviewer Reviewer, pages Publisher, recorder Recorder, cfg Config) *Agent {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.4
	}
	if cfg.MinPUIScore <= 0 {
		cfg.MinPUIScore = 80
	}
	if cfg.CorpusLimit <= 0 {
		cfg.CorpusLimit = 100
	}
	if cfg.DomainType == "" {
		cfg.DomainType = "debt"
	}
	return &Agent{
		store:    store,
		drafter:  drafter,
		reviewer: reviewer,
		pages:    pages,
		recorder: recorder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run drives one case through the loop until it publishes or gets discarded.
// maxAttempts is clamped to AttemptCeiling.
func (a *Agent) Run(ctx context.Context, caseID string, maxAttempts int) (*Outcome, error) {
	if maxAttempts <= 0 || maxAttempts > AttemptCeiling {
		maxAttempts = AttemptCeiling
	}

	c, err := a.store.GetCase(caseID)
	if err != nil {
		return nil, fmt.Errorf("loading case %s: %w", caseID, err)
	}
	if c == nil {
		return &Outcome{Status: StatusError, Reason: "case_not_found"}, nil
	}

	safeMode := writer.SafeMode(c)
	planning := c.Planning()

	var (
		lastFeedback string
		lastSummary  string
		corpus       []string
		corpusLoaded bool

		simScore    *float64
		uniqScore   *float64
		blockCount  *int
		wordCount   *int
		puiScores   *quality.Scores
		safetyState string
	)

	record := func(status, reason, slug string) {
		rec := metrics.Record{
			CaseID:           caseID,
			Slug:             slug,
			Status:           status,
			Reason:           reason,
			SafetyStatus:     safetyState,
			SimilarityScore:  simScore,
			UniquenessScore:  uniqScore,
			UniqueBlockCount: blockCount,
			WordCount:        wordCount,
			UserIntent:       planning.UserIntent,
			StructureType:    planning.StructureType,
			DomainType:       a.cfg.DomainType,
		}
		if puiScores != nil {
			rec.PUITotal = &puiScores.Total
			rec.PUIStructure = &puiScores.Structure
			rec.PUIData = &puiScores.Data
			rec.PUIEEAT = &puiScores.EEAT
		}
		if err := a.recorder.Log(rec); err != nil {
			log.Printf("agent: logging metrics for %s: %v", caseID, err)
		}
	}

	discard := func(reason, slug string, attempts int) (*Outcome, error) {
		if err := a.store.UpdateStatus(caseID, database.StatusDiscarded, a.batchDate()); err != nil {
			return nil, fmt.Errorf("marking %s discarded: %w", caseID, err)
		}
		record(StatusDiscarded, reason, slug)
		return &Outcome{Status: StatusDiscarded, Reason: reason, Attempts: attempts}, nil
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var doc *content.Document
		var err error
		if attempt == 1 {
			doc, err = a.drafter.Generate(ctx, c, safeMode)
		} else {
			doc, err = a.drafter.Refine(ctx, c, lastSummary, lastFeedback, safeMode)
		}
		if err != nil {
			log.Printf("agent: draft failed for %s (attempt %d): %v", caseID, attempt, err)
			lastFeedback = "writer_failed"
			continue
		}

		doc.InjectSlug(c.Slug)
		doc.InheritStructureType(planning.StructureType)
		slug := doc.PageMeta.Slug
		if slug == "" {
			slug = c.Slug
		}

		flat := doc.Flatten()
		wc := len(strings.Fields(flat))
		wordCount = &wc

		verdict := a.reviewer.Review(ctx, flat)
		safetyState = verdict.Status

		if verdict.Status == safety.StatusEdit || verdict.Status == safety.StatusDiscard {
			reason := verdict.Reason
			if reason == "" {
				reason = "safety_discard"
			}
			if attempt >= maxAttempts {
				return discard(reason, slug, attempt)
			}
			lastFeedback = verdict.Reason
			if verdict.RefinedContent != "" {
				lastSummary = verdict.RefinedContent
			} else {
				lastSummary = flat
			}
			log.Printf("agent: safety %s on %s (attempt %d), retrying: %s", verdict.Status, caseID, attempt, verdict.Reason)
			continue
		}

		if !corpusLoaded {
			corpus, err = a.loadCorpus()
			if err != nil {
				return nil, fmt.Errorf("loading similarity corpus: %w", err)
			}
			corpusLoaded = true
		}

		sim := similarity.MaxAgainstCorpus(flat, corpus)
		uniq := quality.Uniqueness(sim)
		blocks := quality.CountUniqueBlocks(flat, planning)
		simScore, uniqScore, blockCount = &sim, &uniq, &blocks

		tooSimilar := sim > a.cfg.SimilarityThreshold
		notUnique := uniq < minUniqueness || blocks < minUniqueBlocks
		if tooSimilar || notUnique {
			var parts []string
			if tooSimilar {
				parts = append(parts, fmt.Sprintf("유사도 %.2f > %.2f", sim, a.cfg.SimilarityThreshold))
			}
			if notUnique {
				parts = append(parts, fmt.Sprintf("유니크도 %.2f / 고유블록 %d (기준: 0.6+, 3+)", uniq, blocks))
			}
			feedback := strings.Join(parts, " / ") + " -> 더 독창적인 구조/표현/예시를 추가하세요."
			if attempt >= maxAttempts {
				return discard(feedback, slug, attempt)
			}
			lastFeedback = feedback
			lastSummary = flat
			log.Printf("agent: similarity gate on %s (attempt %d): %s", caseID, attempt, feedback)
			continue
		}

		pui := quality.PUI(flat, planning, verdict.Status)
		puiScores = &pui
		log.Printf("agent: PUI on %s: total=%d structure=%d data=%d eeat=%d",
			caseID, pui.Total, pui.Structure, pui.Data, pui.EEAT)

		if pui.Total < a.cfg.MinPUIScore {
			feedback := fmt.Sprintf("PUI %d < 기준 %d. 구조/데이터/EEAT를 강화해 다시 작성하세요.", pui.Total, a.cfg.MinPUIScore)
			if attempt >= maxAttempts {
				return discard(feedback, slug, attempt)
			}
			lastFeedback = feedback
			lastSummary = flat
			log.Printf("agent: PUI gate on %s (attempt %d): %s", caseID, attempt, feedback)
			continue
		}

		htmlPath, err := a.pages.RenderAndSave(doc)
		if err != nil {
			log.Printf("agent: render failed for %s (attempt %d): %v", caseID, attempt, err)
			lastFeedback = fmt.Sprintf("render_error: %v", err)
			lastSummary = flat
			continue
		}

		if err := a.store.UpdateStatus(caseID, database.StatusPublished, a.batchDate()); err != nil {
			return nil, fmt.Errorf("marking %s published: %w", caseID, err)
		}
		record(StatusPublished, "", slug)
		return &Outcome{Status: StatusPublished, HTMLPath: htmlPath, Attempts: attempt}, nil
	}

	reason := lastFeedback
	if reason == "" {
		reason = "max_attempts_exceeded"
	}
	wordCount = nil
	return discard(reason, c.Slug, maxAttempts)
}

// loadCorpus gathers the text of recently published pages.
func (a *Agent) loadCorpus() ([]string, error) {
	slugs, err := a.store.ListPublishedSlugs(a.cfg.CorpusLimit)
	if err != nil {
		return nil, err
	}
	var corpus []string
	for _, slug := range slugs {
		if text := a.pages.PublishedText(slug); text != "" {
			corpus = append(corpus, text)
		}
	}
	return corpus, nil
}

func (a *Agent) batchDate() string {
	return a.now().Format("2006-01-02")
}


// Package planner turns seed scenarios into new todo cases: it derives the
// search intent, relationship, legal strategy and page structure from simple
// rules, and caps production per (strategy, amount band) bucket.
package planner

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/hyeonlab/casefactory/internal/database"
)

// DefaultSeedPath is the bundled seed scenario file.
const DefaultSeedPath = "data_seeds/debt_cases_30.csv"

// DefaultMaxPerBand caps cases per (legal_strategy, amount_band) bucket.
const DefaultMaxPerBand = 100

// SeedCase is one row of the seed scenario CSV.
type SeedCase struct {
	CaseID           string
	SlugBase         string
	TitleH1          string
	UserType         string
	Relation         string
	AmountBand       string
	SituationSummary string
	EvidenceType     string
}

// Store is the case inventory the planner consults for dedup and band caps.
type Store interface {
	AllSlugs() ([]string, error)
	CountByStrategyBand() ([]database.StrategyBandCount, error)
}

// Planner plans new cases from seed scenarios.
type Planner struct {
	store      Store
	seedPath   string
	maxPerBand int
	rng        *rand.Rand
}

// New builds a planner. An empty seedPath uses the bundled seeds and a
// non-positive maxPerBand uses the default cap.
func New(store Store, seedPath string, maxPerBand int) *Planner {
	if seedPath == "" {
		seedPath = DefaultSeedPath
	}
	if maxPerBand <= 0 {
		maxPerBand = DefaultMaxPerBand
	}
	return &Planner{
		store:      store,
		seedPath:   seedPath,
		maxPerBand: maxPerBand,
		rng:        rand.New(rand.NewSource(rand.Int63())),
	}
}

// LoadSeeds reads the seed CSV. A missing file yields no seeds, not an error.
func (p *Planner) LoadSeeds() ([]SeedCase, error) {
	f, err := os.Open(p.seedPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening seeds: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing seeds: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}
	get := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var seeds []SeedCase
	for _, row := range rows[1:] {
		seeds = append(seeds, SeedCase{
			CaseID:           get(row, "case_id"),
			SlugBase:         get(row, "slug_base"),
			TitleH1:          get(row, "title_h1"),
			UserType:         get(row, "user_type"),
			Relation:         get(row, "relation"),
			AmountBand:       get(row, "amount_band"),
			SituationSummary: get(row, "situation_summary"),
			EvidenceType:     get(row, "evidence_type"),
		})
	}
	return seeds, nil
}

// Suggest plans up to limit new cases. Seeds are drawn at random; duplicate
// slugs and full strategy/band buckets are skipped. Runs out of candidates
// rather than looping forever when every bucket is full.
func (p *Planner) Suggest(domain string, limit int) ([]database.Case, error) {
	seeds, err := p.LoadSeeds()
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return nil, nil
	}

	existingSlugs := map[string]bool{}
	slugs, err := p.store.AllSlugs()
	if err != nil {
		return nil, fmt.Errorf("loading existing slugs: %w", err)
	}
	for _, s := range slugs {
		existingSlugs[s] = true
	}

	bandCounts := map[string]int{}
	counts, err := p.store.CountByStrategyBand()
	if err != nil {
		return nil, fmt.Errorf("loading band counts: %w", err)
	}
	for _, c := range counts {
		bandCounts[c.LegalStrategy+"|"+c.AmountBand] += c.Count
	}

	var results []database.Case
	for tries := 0; len(results) < limit && tries < limit*50; tries++ {
		seed := seeds[p.rng.Intn(len(seeds))]
		planned := p.plan(seed, domain)
		if existingSlugs[planned.Slug] {
			continue
		}
		bandKey := planned.LegalStrategy + "|" + seed.AmountBand
		if bandCounts[bandKey] >= p.maxPerBand {
			continue
		}
		bandCounts[bandKey]++
		existingSlugs[planned.Slug] = true
		results = append(results, planned)
	}
	return results, nil
}

// plan derives a full case from one seed.
func (p *Planner) plan(seed SeedCase, domain string) database.Case {
	mainKeyword := seed.TitleH1
	if mainKeyword == "" {
		mainKeyword = seed.SituationSummary
	}
	intent := pickIntent(seed)
	relationship := pickRelationship(seed)
	strategy := pickStrategy(seed)
	structure := pickStructure(seed, intent)
	uniquePoint := seed.EvidenceType
	if uniquePoint == "" {
		uniquePoint = seed.AmountBand
	}

	var keywords []string
	for _, k := range []string{mainKeyword, seed.UserType, seed.Relation, seed.AmountBand, strategy} {
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	targetUser := seed.UserType
	if targetUser == "" {
		targetUser = seed.Relation
	}

	return database.Case{
		CaseID:        "DEBT-" + strings.ToUpper(shortID(6)),
		Slug:          "auto-미수금-" + shortID(8),
		Category:      domain,
		Title:         mainKeyword,
		H1:            uniquePoint,
		TargetUser:    targetUser,
		PainSummary:   seed.SituationSummary,
		IntroCopy:     fmt.Sprintf("%s / 전략: %s / 포인트: %s", seed.SituationSummary, strategy, uniquePoint),
		Keywords:      strings.Join(keywords, ", "),
		Status:        database.StatusTodo,
		UserIntent:    intent,
		Relationship:  relationship,
		LegalStrategy: strategy,
		AmountBand:    seed.AmountBand,
		StructureType: structure,
	}
}

func shortID(n int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(id) {
		n = len(id)
	}
	return id[:n]
}

// pickIntent maps the amount band to a search intent.
func pickIntent(seed SeedCase) string {
	if strings.Contains(seed.AmountBand, "100만 미만") {
		return "정보탐색"
	}
	if strings.Contains(seed.AmountBand, "2000만") {
		return "행동유도"
	}
	return "계산"
}

// pickRelationship classifies who owes whom.
func pickRelationship(seed SeedCase) string {
	if strings.Contains(seed.Relation, "가족") || strings.Contains(seed.Relation, "친구") || strings.Contains(seed.Relation, "지인") {
		return "가족/지인"
	}
	if strings.Contains(seed.CaseID, "B2B") || strings.Contains(seed.UserType, "업체") ||
		strings.Contains(seed.UserType, "사업") || strings.Contains(seed.UserType, "법인") {
		return "B2B"
	}
	if strings.Contains(seed.UserType, "강사") || strings.Contains(seed.UserType, "근로자") {
		return "B2C"
	}
	return "C2C"
}

// pickStrategy selects the legal recourse to feature.
func pickStrategy(seed SeedCase) string {
	rel := pickRelationship(seed)
	if rel == "B2B" {
		if strings.Contains(seed.SituationSummary, "하도급") || strings.Contains(seed.UserType, "건설") {
			return "지급명령"
		}
		return "가압류"
	}
	if strings.Contains(seed.SituationSummary, "사기") || strings.Contains(seed.CaseID, "사기") {
		return "형사고소"
	}
	if strings.Contains(seed.UserType, "플랫폼") || strings.Contains(seed.SituationSummary, "정산") {
		return "공정위신고"
	}
	if strings.Contains(seed.AmountBand, "소액") || strings.Contains(seed.AmountBand, "100만") {
		return "소액심판"
	}
	return "지급명령"
}

// pickStructure selects the page layout for the intent and relationship.
func pickStructure(seed SeedCase, intent string) string {
	if intent == "행동유도" {
		return "TYPE_A"
	}
	if pickRelationship(seed) == "가족/지인" {
		return "TYPE_C"
	}
	return "TYPE_B"
}

package database

import "github.com/hyeonlab/casefactory/internal/content"

// Case lifecycle statuses.
const (
	StatusTodo      = "todo"
	StatusPublished = "published"
	StatusDiscarded = "discarded"
)

// Case is one planned landing page and its production state.
type Case struct {
	CaseID        string
	Slug          string
	Category      string
	Title         string
	H1            string
	TargetUser    string
	PainSummary   string
	IntroCopy     string
	Keywords      string
	FAQ1Q         string
	FAQ1A         string
	FAQ2Q         string
	FAQ2A         string
	FAQ3Q         string
	FAQ3A         string
	Status        string
	BatchDate     string
	UserIntent    string
	Relationship  string
	LegalStrategy string
	AmountBand    string
	StructureType string
	CreatedAt     string
	UpdatedAt     string
}

// Planning projects the evaluation-relevant metadata of a case.
func (c *Case) Planning() content.PlanningInfo {
	return content.PlanningInfo{
		UserIntent:      c.UserIntent,
		StructureType:   c.StructureType,
		Relationship:    c.Relationship,
		LegalStrategy:   c.LegalStrategy,
		UniqueDataPoint: c.H1,
		MainKeyword:     c.Title,
		Keywords:        c.Keywords,
		AmountBand:      c.AmountBand,
	}
}

// Stats summarizes case counts per status.
type Stats struct {
	Total     int
	Todo      int
	Published int
	Discarded int
}

// StrategyBandCount is one (legal_strategy, amount_band, status) bucket.
type StrategyBandCount struct {
	LegalStrategy string
	AmountBand    string
	Status        string
	Count         int
}

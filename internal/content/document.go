package content

import (
	"encoding/json"
	"strings"
)

// Document is the generated landing-page content for one case.
//
// The field order below mirrors the writer's JSON schema and is load-bearing:
// Flatten walks fields in declaration order so the flattened text is the same
// for the same document on every run.
type Document struct {
	PageMeta          PageMeta    `json:"page_meta"`
	HeroSection       Hero        `json:"hero_section"`
	SituationAnalysis Situation   `json:"situation_analysis"`
	ActionGuide       ActionGuide `json:"action_guide"`
	FAQSection        []FAQ       `json:"faq_section"`
	LegalSafety       LegalSafety `json:"legal_safety"`
	StructureType     string      `json:"structure_type,omitempty"`
}

// PageMeta holds the head metadata for the rendered page.
type PageMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	Slug        string `json:"slug"`
}

// Hero is the headline block.
type Hero struct {
	Headline  string `json:"headline"`
	IntroCopy string `json:"intro_copy"`
}

// Situation summarizes the reader's situation.
type Situation struct {
	PainSummary string `json:"pain_summary"`
}

// ActionGuide holds the guidance body (markdown allowed).
type ActionGuide struct {
	Guidance string `json:"guidance"`
}

// FAQ is a single question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// LegalSafety holds the disclaimer block.
type LegalSafety struct {
	Disclaimer string `json:"disclaimer"`
}

// PlanningInfo is a read-only projection of a case's planning metadata,
// threaded through every evaluation call.
type PlanningInfo struct {
	UserIntent      string
	StructureType   string
	Relationship    string
	LegalStrategy   string
	UniqueDataPoint string
	MainKeyword     string
	Keywords        string // comma-joined auxiliary keywords
	AmountBand      string
}

// FromMap converts a parsed LLM response into a Document.
// Unknown fields are dropped; missing fields stay zero.
func FromMap(m map[string]any) (*Document, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Flatten concatenates every leaf string value depth-first in schema order,
// joined by single spaces. This is the canonical text representation fed to
// the safety reviewer and the quality scorers.
func (d *Document) Flatten() string {
	leaves := []string{
		d.PageMeta.Title,
		d.PageMeta.Description,
		d.PageMeta.Keywords,
		d.PageMeta.Slug,
		d.HeroSection.Headline,
		d.HeroSection.IntroCopy,
		d.SituationAnalysis.PainSummary,
		d.ActionGuide.Guidance,
	}
	for _, faq := range d.FAQSection {
		leaves = append(leaves, faq.Question, faq.Answer)
	}
	leaves = append(leaves, d.LegalSafety.Disclaimer)
	if d.StructureType != "" {
		leaves = append(leaves, d.StructureType)
	}
	return strings.Join(leaves, " ")
}

// WordCount returns the whitespace-separated token count of the flattened document.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.Flatten()))
}

// InjectSlug fills page_meta.slug when the document has none.
func (d *Document) InjectSlug(slug string) {
	if slug == "" {
		return
	}
	if d.PageMeta.Slug == "" {
		d.PageMeta.Slug = slug
	}
}

// InheritStructureType stamps the planning structure type when the
// document carries none of its own.
func (d *Document) InheritStructureType(structureType string) {
	if structureType != "" && d.StructureType == "" {
		d.StructureType = structureType
	}
}

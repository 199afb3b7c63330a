// Package safety classifies generated content as PASS, EDIT or DISCARD
// through a layered review: a hard denylist, a soft-phrasing denylist, and
// an optional LLM compliance check.
package safety

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hyeonlab/casefactory/internal/llm"
)

// Verdict statuses.
const (
	StatusPass    = "PASS"
	StatusEdit    = "EDIT"
	StatusDiscard = "DISCARD"
)

// Which review stage produced the verdict.
const (
	SourceHard     = "hard_filter"
	SourceSoft     = "soft_filter"
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// hardFlags are phrases that make content unpublishable outright.
var hardFlags = []string{
	"100% 회수",
	"무조건 승소",
	"보장합니다",
	"전문 변호사",
	"대리해 드립니다",
	"책임집니다",
}

// softFlags are over-assertive phrasings that require a rewrite.
var softFlags = []string{
	"승소 가능성이 높습니다",
	"확실히 받을 수 있습니다",
	"법률 자문",
	"법률 상담",
	"보장된 결과",
	"반드시",
	"절대",
	"무조건",
}

// Verdict is the outcome of a content review.
type Verdict struct {
	Status         string
	RiskScore      int
	Reason         string
	RefinedContent string
	Source         string
}

// Reviewer runs the layered safety review. The provider is optional; without
// one the semantic stage is skipped and clean content passes.
type Reviewer struct {
	provider llm.Provider
}

// NewReviewer builds a reviewer. provider may be nil.
func NewReviewer(provider llm.Provider) *Reviewer {
	return &Reviewer{provider: provider}
}

// Review classifies text. Stages run in order and the first stage that
// produces a non-clean result decides the verdict; the LLM stage only runs
// for text both denylists pass.
func (r *Reviewer) Review(ctx context.Context, text string) Verdict {
	lower := strings.ToLower(text)

	if hits := matchFlags(lower, hardFlags); len(hits) > 0 {
		return Verdict{
			Status:    StatusDiscard,
			RiskScore: 90,
			Reason:    "하드 금지어 감지: " + strings.Join(hits, ", "),
			Source:    SourceHard,
		}
	}

	if hits := matchFlags(lower, softFlags); len(hits) > 0 {
		return Verdict{
			Status:    StatusEdit,
			RiskScore: 60,
			Reason:    "단정/보장 어투 감지: " + strings.Join(hits, ", "),
			Source:    SourceSoft,
		}
	}

	if v, ok := r.semanticCheck(ctx, text); ok {
		return v
	}

	// Semantic stage unavailable or failed: publish-friendly default.
	return Verdict{
		Status:    StatusPass,
		RiskScore: 5,
		Reason:    "soft check skipped",
		Source:    SourceFallback,
	}
}

func matchFlags(lower string, flags []string) []string {
	var hits []string
	for _, flag := range flags {
		if strings.Contains(lower, strings.ToLower(flag)) {
			hits = append(hits, flag)
		}
	}
	return hits
}

// semanticCheck asks the LLM whether the text reads like legal advice or an
// outcome guarantee. Any provider failure is logged and reported as not-ok so
// the caller falls through to the lenient default.
func (r *Reviewer) semanticCheck(ctx context.Context, text string) (Verdict, bool) {
	if r.provider == nil || !r.provider.IsConfigured() {
		return Verdict{}, false
	}

	prompt := fmt.Sprintf(`다음 한국어 텍스트가 법률 자문처럼 들리거나, 승소/회수 보장을 암시하는지 평가해주세요.
- 위험하면 status='EDIT' 또는 'DISCARD'로 제안하고, 짧은 수정 피드백 또는 순화된 문장 예시를 제시.
- 안전하면 status='PASS'.
- JSON만 반환: {"status": "PASS|EDIT|DISCARD", "reason": "...", "refined_content": "..."}

텍스트:
%s
`, text)

	raw, err := r.provider.Generate(ctx, prompt, 1000)
	if err != nil {
		log.Printf("safety: soft check LLM error, skipping: %v", err)
		return Verdict{}, false
	}

	parsed, err := llm.ParseJSONResponse(raw)
	if err != nil {
		log.Printf("safety: soft check returned unparseable JSON, skipping: %v", err)
		return Verdict{}, false
	}

	status := llm.GetString(parsed, "status", StatusPass)
	reason := llm.GetString(parsed, "reason", "")
	refined := llm.GetString(parsed, "refined_content", "")

	switch status {
	case StatusDiscard:
		return Verdict{Status: StatusDiscard, RiskScore: 85, Reason: reason, RefinedContent: refined, Source: SourceLLM}, true
	case StatusEdit:
		return Verdict{Status: StatusEdit, RiskScore: 55, Reason: reason, RefinedContent: refined, Source: SourceLLM}, true
	default:
		if reason == "" {
			reason = "LLM pass"
		}
		return Verdict{Status: StatusPass, RiskScore: 5, Reason: reason, Source: SourceLLM}, true
	}
}

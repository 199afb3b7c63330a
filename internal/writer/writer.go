// Package writer drafts landing-page JSON content for a case via an LLM,
// and rewrites drafts against reviewer feedback.
package writer

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyeonlab/casefactory/internal/content"
	"github.com/hyeonlab/casefactory/internal/database"
	"github.com/hyeonlab/casefactory/internal/llm"
)

const systemPrompt = `당신은 '떼인 돈 계산기' pSEO 랜딩 콘텐츠를 생성하는 시니어 에디터입니다.
정의된 JSON 스키마와 작성 규칙을 반드시 따르세요.

핵심 컴플라이언스 (한국어):
- 이 콘텐츠는 법률 자문이 아님을 명시.
- 승소/회수/결과를 보장하거나 확정적으로 단정하는 표현 금지.
- 법률 전문가 상담을 권유하는 문구 포함.
- 100% 회수, 무조건 승소, 보장 등의 표현 금지.
- JSON 한 개 객체만 반환, 필수 필드 누락 금지, 불필요 필드 추가 금지.
- 톤: 직관적·간결, 보수적이고 신중한 표현.

전개 규칙 (시작 금지/구조 다양화):
- "미수금이란?" 같은 정의로 시작하지 말 것. 사용자 상황/핵심 경고/결론부터 시작.
- user_intent/structure_type에 따라 전개를 달리한다:
  * intent=계산: 상단에 계산/지연이자 등 핵심 숫자 → 이후 절차 설명.
  * intent=행동유도: 지금 당장 할 1·2·3 단계 리스트 제시.
  * intent=정보탐색: 상황 설명 → 법적 쟁점 → 절차/주의점 순서.
  * structure_type=TYPE_A: TL;DR 한 줄 요약 → 중요한 숫자/결과 → 상세 설명.
  * structure_type=TYPE_B: 실제 유사 사례 스토리로 시작 → 판례/쟁점 정리.
  * structure_type=TYPE_C: FAQ + 체크리스트 위주 구성.
- relationship에 따라 어조:
  * B2B: 감정 최소화, 계약/세금계산서/하도급법 중심의 냉철한 톤.
  * C2C/가족/지인: 공감 한두 문단 후 법적 현실 설명.
- CTA:
  * 금액이 작으면 셀프 지급명령/소액심판 등 자조적 행동 제안.
  * 금액이 크거나 복잡하면 전문가 상담 필요 톤으로 마무리.`

// Writer turns cases into structured landing-page documents.
type Writer struct {
	provider  llm.Provider
	maxTokens int
}

// New builds a writer on the given provider.
func New(provider llm.Provider, maxTokens int) *Writer {
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	return &Writer{provider: provider, maxTokens: maxTokens}
}

// Generate drafts a document for the case. In safe mode no LLM is called and
// a fixed denylist-clean fixture is returned instead.
func (w *Writer) Generate(ctx context.Context, c *database.Case, safeMode bool) (*content.Document, error) {
	if safeMode {
		return safeTestDocument(c.Slug), nil
	}
	return w.call(ctx, buildPrompt(c, "", ""))
}

// Refine rewrites a draft using reviewer feedback. prevSummary is a flattened
// summary of the previous draft, threaded back as a hint.
func (w *Writer) Refine(ctx context.Context, c *database.Case, prevSummary, feedback string, safeMode bool) (*content.Document, error) {
	if safeMode {
		return safeTestDocument(c.Slug), nil
	}
	return w.call(ctx, buildPrompt(c, prevSummary, feedback))
}

func (w *Writer) call(ctx context.Context, prompt string) (*content.Document, error) {
	if w.provider == nil || !w.provider.IsConfigured() {
		return nil, fmt.Errorf("writer: no configured LLM provider")
	}
	raw, err := w.provider.Generate(ctx, prompt, w.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("writer: generating draft: %w", err)
	}
	parsed, err := llm.ParseJSONResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("writer: parsing draft JSON: %w", err)
	}
	doc, err := content.FromMap(parsed)
	if err != nil {
		return nil, fmt.Errorf("writer: mapping draft: %w", err)
	}
	return doc, nil
}

func buildPrompt(c *database.Case, prevSummary, feedback string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	b.WriteString("아래 케이스 정보를 활용해 JSON 스키마에 맞는 랜딩 페이지 콘텐츠를 JSON으로만 생성해 주세요.\n\n")
	b.WriteString("규칙:\n")
	b.WriteString("- 출력은 반드시 JSON 한 개 객체로만 반환 (추가 텍스트 금지)\n")
	b.WriteString("- 스키마 필수 필드 포함, 선택 필드는 가능하면 채우기\n")
	b.WriteString("- 법률 자문 아님을 명시하고, 단정적 승소 표현 금지\n\n")

	fields := []struct{ label, value string }{
		{"case_id", c.CaseID},
		{"slug", c.Slug},
		{"category", c.Category},
		{"title", c.Title},
		{"target_user", c.TargetUser},
		{"pain_summary", c.PainSummary},
		{"keywords", c.Keywords},
		{"이전 초안 요약(있다면)", prevSummary},
		{"개선해야 할 피드백(있다면)", feedback},
		{"user_intent", c.UserIntent},
		{"structure_type", c.StructureType},
		{"relationship", c.Relationship},
		{"legal_strategy", c.LegalStrategy},
		{"unique_data_point", c.H1},
		{"main_keyword", c.Title},
		{"amount_band", c.AmountBand},
	}
	for _, f := range fields {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	b.WriteString("위 의도/구조/어조/CTA 지침을 반영해, JSON 스키마 필드를 채워주세요.")
	return b.String()
}

// safeTestDocument is the fixture used when the loop runs in safe test mode.
// It contains no denylisted phrasing so it clears the safety review.
func safeTestDocument(slug string) *content.Document {
	return &content.Document{
		PageMeta: content.PageMeta{
			Title:       "테스트 안전 케이스",
			Description: "테스트용 안전 문구",
			Keywords:    "테스트, 안전",
			Slug:        slug,
		},
		HeroSection: content.Hero{
			Headline:  "테스트용 안전 헤드라인",
			IntroCopy: "이 문서는 테스트를 위한 안전한 샘플 문구입니다.",
		},
		SituationAnalysis: content.Situation{PainSummary: "테스트용 페인 포인트 요약"},
		ActionGuide:       content.ActionGuide{Guidance: "테스트용 안내 문구입니다."},
		FAQSection: []content.FAQ{
			{Question: "테스트 FAQ1?", Answer: "테스트 FAQ1 답변"},
			{Question: "테스트 FAQ2?", Answer: "테스트 FAQ2 답변"},
			{Question: "테스트 FAQ3?", Answer: "테스트 FAQ3 답변"},
		},
		LegalSafety: content.LegalSafety{Disclaimer: "이 콘텐츠는 테스트용이며 법률 자문이 아닙니다."},
	}
}

// SafeMode reports whether a case must bypass the LLM entirely.
// The reserved smoke-test case and anything in the test category qualify.
func SafeMode(c *database.Case) bool {
	return c.CaseID == database.TestCaseID || c.Category == "test"
}

package content

import (
	"strings"
	"testing"
)

func sampleDocument() *Document {
	return &Document{
		PageMeta: PageMeta{
			Title:       "프리랜서 미수금 받는 법",
			Description: "정산 지연에 대응하는 절차",
			Keywords:    "미수금, 프리랜서",
			Slug:        "freelancer-misugum",
		},
		HeroSection: Hero{
			Headline:  "떼인 돈, 이렇게 받으세요",
			IntroCopy: "지급명령부터 소액사건까지",
		},
		SituationAnalysis: Situation{PainSummary: "정산이 3개월째 밀렸습니다"},
		ActionGuide:       ActionGuide{Guidance: "1. 내용증명 발송\n2. 지급명령 신청"},
		FAQSection: []FAQ{
			{Question: "비용이 얼마나 드나요?", Answer: "인지대와 송달료가 듭니다"},
			{Question: "기간은요?", Answer: "보통 2주에서 한 달"},
		},
		LegalSafety:   LegalSafety{Disclaimer: "이 콘텐츠는 법률 자문이 아닙니다"},
		StructureType: "TYPE_A",
	}
}

func TestFlattenIsDeterministic(t *testing.T) {
	doc := sampleDocument()
	first := doc.Flatten()
	for i := 0; i < 10; i++ {
		if got := doc.Flatten(); got != first {
			t.Fatalf("flatten output changed between calls:\n%q\n%q", first, got)
		}
	}
}

func TestFlattenSchemaOrder(t *testing.T) {
	doc := sampleDocument()
	flat := doc.Flatten()

	// Title leads, disclaimer and structure type trail.
	if !strings.HasPrefix(flat, doc.PageMeta.Title) {
		t.Errorf("flatten should start with the title, got %q", flat[:30])
	}
	if !strings.HasSuffix(flat, "TYPE_A") {
		t.Errorf("flatten should end with the structure type, got %q", flat)
	}
	titleIdx := strings.Index(flat, doc.PageMeta.Title)
	faqIdx := strings.Index(flat, doc.FAQSection[0].Question)
	disclaimerIdx := strings.Index(flat, doc.LegalSafety.Disclaimer)
	if !(titleIdx < faqIdx && faqIdx < disclaimerIdx) {
		t.Errorf("leaves out of schema order: title=%d faq=%d disclaimer=%d", titleIdx, faqIdx, disclaimerIdx)
	}
}

func TestFlattenDoesNotMutate(t *testing.T) {
	doc := sampleDocument()
	before := *doc
	doc.Flatten()
	doc.WordCount()
	if doc.PageMeta != before.PageMeta || doc.StructureType != before.StructureType {
		t.Error("flatten mutated the document")
	}
}

func TestFlattenOmitsEmptyStructureType(t *testing.T) {
	doc := sampleDocument()
	doc.StructureType = ""
	if strings.HasSuffix(doc.Flatten(), "TYPE_A") {
		t.Error("empty structure type should not appear in flattened text")
	}
	if !strings.HasSuffix(strings.TrimSpace(doc.Flatten()), doc.LegalSafety.Disclaimer) {
		t.Error("disclaimer should be the final leaf without a structure type")
	}
}

func TestWordCount(t *testing.T) {
	doc := &Document{
		PageMeta:    PageMeta{Title: "하나 둘 셋"},
		HeroSection: Hero{Headline: "넷 다섯"},
	}
	if got := doc.WordCount(); got != 5 {
		t.Errorf("expected 5 words, got %d", got)
	}
}

func TestInjectSlugOnlyWhenEmpty(t *testing.T) {
	doc := &Document{}
	doc.InjectSlug("auto-slug")
	if doc.PageMeta.Slug != "auto-slug" {
		t.Errorf("expected slug injected, got %q", doc.PageMeta.Slug)
	}

	doc.InjectSlug("other-slug")
	if doc.PageMeta.Slug != "auto-slug" {
		t.Errorf("existing slug must not be overwritten, got %q", doc.PageMeta.Slug)
	}

	empty := &Document{}
	empty.InjectSlug("")
	if empty.PageMeta.Slug != "" {
		t.Errorf("empty slug must not be injected, got %q", empty.PageMeta.Slug)
	}
}

func TestInheritStructureType(t *testing.T) {
	doc := &Document{}
	doc.InheritStructureType("TYPE_B")
	if doc.StructureType != "TYPE_B" {
		t.Errorf("expected TYPE_B inherited, got %q", doc.StructureType)
	}

	doc.InheritStructureType("TYPE_C")
	if doc.StructureType != "TYPE_B" {
		t.Errorf("document structure type must win, got %q", doc.StructureType)
	}
}

func TestFromMap(t *testing.T) {
	m := map[string]any{
		"page_meta": map[string]any{
			"title": "제목",
			"slug":  "jemok",
		},
		"faq_section": []any{
			map[string]any{"question": "질문?", "answer": "답변."},
		},
		"unknown_field": "dropped",
	}
	doc, err := FromMap(m)
	if err != nil {
		t.Fatalf("FromMap failed: %v", err)
	}
	if doc.PageMeta.Title != "제목" || doc.PageMeta.Slug != "jemok" {
		t.Errorf("page_meta not mapped: %+v", doc.PageMeta)
	}
	if len(doc.FAQSection) != 1 || doc.FAQSection[0].Question != "질문?" {
		t.Errorf("faq_section not mapped: %+v", doc.FAQSection)
	}
	if doc.HeroSection.Headline != "" {
		t.Errorf("missing fields should stay zero, got %q", doc.HeroSection.Headline)
	}
}

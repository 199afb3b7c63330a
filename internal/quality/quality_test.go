package quality

import (
	"strings"
	"testing"

	"github.com/hyeonlab/casefactory/internal/content"
)

func TestUniquenessInverseOfSimilarity(t *testing.T) {
	cases := []struct {
		sim  float64
		want float64
	}{
		{0.0, 1.0},
		{0.25, 0.75},
		{1.0, 0.0},
		{-0.5, 1.0}, // clamped
		{1.7, 0.0},  // clamped
	}
	for _, c := range cases {
		if got := Uniqueness(c.sim); got != c.want {
			t.Errorf("Uniqueness(%f): expected %f, got %f", c.sim, c.want, got)
		}
	}
}

func TestUniquenessMonotonicallyDecreasing(t *testing.T) {
	prev := Uniqueness(0.0)
	for sim := 0.1; sim <= 1.0; sim += 0.1 {
		u := Uniqueness(sim)
		if u > prev {
			t.Fatalf("uniqueness increased from %f to %f at sim=%f", prev, u, sim)
		}
		if u < 0 || u > 1 {
			t.Fatalf("uniqueness %f outside [0,1] at sim=%f", u, sim)
		}
		prev = u
	}
}

func TestCountUniqueBlocks(t *testing.T) {
	planning := content.PlanningInfo{
		MainKeyword:   "미수금",
		LegalStrategy: "지급명령",
		Keywords:      "프리랜서, 정산",
	}
	text := "프리랜서 미수금 문제는 흔합니다.\n\n지급명령 절차를 고려하세요.\n\n날씨가 좋습니다.\n\n정산 지연에 대한 기록을 남기세요."
	if got := CountUniqueBlocks(text, planning); got != 3 {
		t.Errorf("expected 3 keyword-bearing paragraphs, got %d", got)
	}
}

func TestCountUniqueBlocksIgnoresBlankParagraphs(t *testing.T) {
	planning := content.PlanningInfo{MainKeyword: "미수금"}
	text := "미수금 이야기.\n\n   \n\n미수금 후속."
	if got := CountUniqueBlocks(text, planning); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestCountUniqueBlocksNoKeywords(t *testing.T) {
	if got := CountUniqueBlocks("문단 하나.\n\n문단 둘.", content.PlanningInfo{}); got != 0 {
		t.Errorf("expected 0 with no keywords, got %d", got)
	}
}

func TestPUINumericPointsCapped(t *testing.T) {
	// 1000 numeric tokens must still contribute at most 15 points.
	text := strings.Repeat("42 ", 1000)
	scores := PUI(text, content.PlanningInfo{}, "")
	if scores.Data > DataCap {
		t.Errorf("data score %d exceeds cap %d", scores.Data, DataCap)
	}
	if scores.Data != numericPointCap {
		t.Errorf("expected numeric contribution capped at %d, got %d", numericPointCap, scores.Data)
	}
}

func TestPUISubScoresNeverExceedCaps(t *testing.T) {
	planning := content.PlanningInfo{
		UserIntent:      "계산",
		StructureType:   "TYPE_A",
		UniqueDataPoint: "지연이자 12%",
		LegalStrategy:   "지급명령",
	}
	// Text hitting every rubric marker at once.
	text := "TL;DR 요약: 지연이자 12% 기준 1. 단계 2. 단계 사례 스토리 faq 체크리스트 " +
		strings.Repeat("7 ", 50) +
		"지급명령 % 이자 법률 자문이 아닙니다 전문가와 상담 하세요"
	scores := PUI(text, planning, "PASS")
	if scores.Structure > StructureCap {
		t.Errorf("structure %d exceeds cap %d", scores.Structure, StructureCap)
	}
	if scores.Data > DataCap {
		t.Errorf("data %d exceeds cap %d", scores.Data, DataCap)
	}
	if scores.EEAT > EEATCap {
		t.Errorf("eeat %d exceeds cap %d", scores.EEAT, EEATCap)
	}
	if scores.Total > 100 {
		t.Errorf("total %d exceeds 100", scores.Total)
	}
}

func TestPUIIntentAndLayoutMarkers(t *testing.T) {
	planning := content.PlanningInfo{UserIntent: "계산", StructureType: "TYPE_A"}
	scores := PUI("tl;dr 핵심 요약입니다", planning, "")
	if scores.Structure != 16 {
		t.Errorf("expected structure 16 (10 intent + 6 layout), got %d", scores.Structure)
	}
}

func TestPUIEEATRewardsDisclaimerAndPass(t *testing.T) {
	text := "이 콘텐츠는 법률 자문이 아닙니다. 전문가와 상담 하세요."
	scores := PUI(text, content.PlanningInfo{}, "PASS")
	// 6 disclaimer + 6 consult + 6 PASS + 4 no overclaiming
	if scores.EEAT != 22 {
		t.Errorf("expected eeat 22, got %d", scores.EEAT)
	}

	overclaim := text + " 무조건 승소 100%"
	scores = PUI(overclaim, content.PlanningInfo{}, "PASS")
	if scores.EEAT != 18 {
		t.Errorf("expected eeat 18 with overclaiming text, got %d", scores.EEAT)
	}
}

func TestPUIIsPure(t *testing.T) {
	planning := content.PlanningInfo{UserIntent: "정보탐색", MainKeyword: "미수금"}
	text := "실제 사례를 보면 미수금 회수에는 3단계가 있습니다.\n\n지연이자 계산이 중요합니다."
	first := PUI(text, planning, "PASS")
	for i := 0; i < 5; i++ {
		if got := PUI(text, planning, "PASS"); got != first {
			t.Fatalf("PUI not deterministic: %+v vs %+v", got, first)
		}
	}
	a := CountUniqueBlocks(text, planning)
	for i := 0; i < 5; i++ {
		if got := CountUniqueBlocks(text, planning); got != a {
			t.Fatalf("CountUniqueBlocks not deterministic: %d vs %d", got, a)
		}
	}
}

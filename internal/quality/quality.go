// Package quality scores a flattened document for uniqueness and
// publish-readiness (PUI: structure + data + EEAT).
package quality

import (
	"regexp"
	"strings"

	"github.com/hyeonlab/casefactory/internal/content"
)

// Sub-score caps of the PUI rubric.
const (
	StructureCap = 40
	DataCap      = 35
	EEATCap      = 25

	// Numeric tokens contribute at most this many points to the data score.
	numericPointCap = 15
)

var (
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
	numberRe    = regexp.MustCompile(`\d[\d,\.]*`)
)

// Scores is the PUI score breakdown. Total is capped at 100.
type Scores struct {
	Total     int
	Structure int
	Data      int
	EEAT      int
}

// Uniqueness converts a max-similarity score into a uniqueness score.
// The input is clamped to [0,1] first, so the result is always in [0,1].
func Uniqueness(maxSimilarity float64) float64 {
	if maxSimilarity < 0 {
		maxSimilarity = 0
	}
	if maxSimilarity > 1 {
		maxSimilarity = 1
	}
	return 1.0 - maxSimilarity
}

// CountUniqueBlocks splits text into blank-line-separated paragraphs and
// counts those containing at least one planning-derived keyword.
func CountUniqueBlocks(text string, planning content.PlanningInfo) int {
	var keywords []string
	for _, v := range []string{
		planning.MainKeyword,
		planning.UniqueDataPoint,
		planning.LegalStrategy,
		planning.Relationship,
		planning.UserIntent,
		planning.StructureType,
		planning.AmountBand,
	} {
		if v != "" {
			keywords = append(keywords, v)
		}
	}
	if planning.Keywords != "" {
		keywords = append(keywords, strings.Split(planning.Keywords, ",")...)
	}

	var lowered []string
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}

	count := 0
	for _, p := range paragraphRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lp := strings.ToLower(p)
		for _, k := range lowered {
			if strings.Contains(lp, k) {
				count++
				break
			}
		}
	}
	return count
}

// PUI computes the rubric score for a flattened document. safetyStatus is
// the safety reviewer's verdict status ("PASS" contributes to EEAT).
// Pure function: same inputs always yield the same scores.
func PUI(text string, planning content.PlanningInfo, safetyStatus string) Scores {
	intent := strings.ToLower(planning.UserIntent)
	structure := strings.ToLower(planning.StructureType)
	lower := strings.ToLower(text)

	structureScore := 0
	if intent == "계산" && strings.Contains(lower, "tl;dr") {
		structureScore += 10
	}
	if intent == "행동유도" && (strings.Contains(lower, "단계") || strings.Contains(lower, "1.") || strings.Contains(lower, "2.")) {
		structureScore += 10
	}
	if intent == "정보탐색" && (strings.Contains(lower, "사례") || strings.Contains(lower, "스토리")) {
		structureScore += 8
	}
	if structure == "type_a" && (strings.Contains(lower, "요약") || strings.Contains(lower, "tl;dr")) {
		structureScore += 6
	}
	if structure == "type_b" && (strings.Contains(lower, "사례") || strings.Contains(lower, "스토리")) {
		structureScore += 6
	}
	if structure == "type_c" && (strings.Contains(lower, "faq") || strings.Contains(lower, "체크리스트")) {
		structureScore += 6
	}
	structureScore = min(structureScore, StructureCap)

	dataScore := min(len(numberRe.FindAllString(text, -1))*2, numericPointCap)
	if up := strings.ToLower(planning.UniqueDataPoint); up != "" && strings.Contains(lower, up) {
		dataScore += 8
	}
	if ls := strings.ToLower(planning.LegalStrategy); ls != "" && strings.Contains(lower, ls) {
		dataScore += 6
	}
	if strings.Contains(text, "%") || strings.Contains(lower, "이자") {
		dataScore += 4
	}
	dataScore = min(dataScore, DataCap)

	eeatScore := 0
	if strings.Contains(lower, "법률 자문이 아닙니다") {
		eeatScore += 6
	}
	if strings.Contains(text, "전문가와 상의") || strings.Contains(text, "전문가와 상담") {
		eeatScore += 6
	}
	if safetyStatus == "PASS" {
		eeatScore += 6
	}
	if !strings.Contains(lower, "무조건") && !strings.Contains(lower, "100%") && !strings.Contains(lower, "승소") {
		eeatScore += 4
	}
	eeatScore = min(eeatScore, EEATCap)

	return Scores{
		Total:     min(structureScore+dataScore+eeatScore, 100),
		Structure: structureScore,
		Data:      dataScore,
		EEAT:      eeatScore,
	}
}

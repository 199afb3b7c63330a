package database

// TestCaseID is the reserved case ID that forces safe test mode in the
// production loop (no LLM calls, fixture content only).
const TestCaseID = "TEST-CASE-001"

// InsertTestCase seeds the reserved smoke-test case.
func (db *DB) InsertTestCase() error {
	return db.UpsertCase(&Case{
		CaseID:      TestCaseID,
		Slug:        "test-freelancer-unpaid",
		Category:    "test",
		Title:       "프리랜서 미수금 테스트 케이스",
		H1:          "테스트 프리랜서 미수금",
		TargetUser:  "테스트 사용자",
		PainSummary: "테스트용 페인 포인트",
		IntroCopy:   "이것은 테스트용 인트로 문구입니다.",
		Keywords:    "테스트, 프리랜서, 미수금",
		FAQ1Q:       "테스트 FAQ1?",
		FAQ1A:       "테스트 FAQ1 답변",
		FAQ2Q:       "테스트 FAQ2?",
		FAQ2A:       "테스트 FAQ2 답변",
		FAQ3Q:       "테스트 FAQ3?",
		FAQ3A:       "테스트 FAQ3 답변",
		Status:      StatusTodo,
	})
}

package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing log: %v", err)
	}
	return rows
}

func TestLogWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "metrics.csv")
	l := NewLogger(path)

	if err := l.Log(Record{CaseID: "A", Status: "published"}); err != nil {
		t.Fatalf("first log: %v", err)
	}
	if err := l.Log(Record{CaseID: "B", Status: "discarded"}); err != nil {
		t.Fatalf("second log: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(header, ",") {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "A" || rows[2][1] != "B" {
		t.Errorf("rows out of order: %v %v", rows[1], rows[2])
	}
}

func TestLogFormatsScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	l := NewLogger(path)

	sim := 0.45678
	uniq := 0.54322
	blocks := 4
	words := 512
	total := 85
	if err := l.Log(Record{
		CaseID:           "DEBT-000001",
		Slug:             "slug-1",
		Status:           "published",
		SafetyStatus:     "PASS",
		SimilarityScore:  &sim,
		UniquenessScore:  &uniq,
		UniqueBlockCount: &blocks,
		WordCount:        &words,
		PUITotal:         &total,
		UserIntent:       "계산",
		StructureType:    "TYPE_A",
	}); err != nil {
		t.Fatalf("log: %v", err)
	}

	row := readRows(t, path)[1]
	if row[6] != "0.4568" {
		t.Errorf("similarity not formatted to 4 decimals: %q", row[6])
	}
	if row[7] != "0.5432" {
		t.Errorf("uniqueness not formatted to 4 decimals: %q", row[7])
	}
	if row[8] != "4" || row[9] != "512" || row[10] != "85" {
		t.Errorf("int columns wrong: %v", row)
	}
	if row[16] != "debt" {
		t.Errorf("empty domain should default to debt, got %q", row[16])
	}
}

func TestLogEmptyCellsForUnreachedStages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	l := NewLogger(path)

	if err := l.Log(Record{CaseID: "X", Status: "discarded", Reason: "writer_failed"}); err != nil {
		t.Fatalf("log: %v", err)
	}

	row := readRows(t, path)[1]
	for _, idx := range []int{6, 7, 8, 9, 10, 11, 12, 13} {
		if row[idx] != "" {
			t.Errorf("column %d should be empty for unreached stage, got %q", idx, row[idx])
		}
	}
}

func TestLogQuotesCommaReasons(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	l := NewLogger(path)

	reason := "하드 금지어 감지: 무조건 승소, 보장합니다"
	if err := l.Log(Record{CaseID: "X", Status: "discarded", Reason: reason}); err != nil {
		t.Fatalf("log: %v", err)
	}

	row := readRows(t, path)[1]
	if row[4] != reason {
		t.Errorf("reason with commas not round-tripped: %q", row[4])
	}
}

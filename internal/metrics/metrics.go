// Package metrics appends per-case production results to a CSV log.
package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var header = []string{
	"timestamp",
	"case_id",
	"slug",
	"status",
	"reason",
	"safety_status",
	"similarity_score",
	"uniqueness_score",
	"unique_block_count",
	"word_count",
	"pui_total",
	"pui_structure",
	"pui_data",
	"pui_eeat",
	"user_intent",
	"structure_type",
	"domain_type",
}

// Record is one terminal production-loop outcome. Pointer fields stay empty
// cells in the CSV when the pipeline never reached the corresponding stage.
type Record struct {
	CaseID           string
	Slug             string
	Status           string
	Reason           string
	SafetyStatus     string
	SimilarityScore  *float64
	UniquenessScore  *float64
	UniqueBlockCount *int
	WordCount        *int
	PUITotal         *int
	PUIStructure     *int
	PUIData          *int
	PUIEEAT          *int
	UserIntent       string
	StructureType    string
	DomainType       string
}

// Logger appends records to a CSV file, writing the header lazily on first use.
type Logger struct {
	path string
	now  func() time.Time
}

// NewLogger builds a logger writing to path.
func NewLogger(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// Log appends one record. The file and its header are created on first call.
func (l *Logger) Log(rec Record) error {
	if err := l.ensureHeader(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening metrics log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(rec.row(l.now().UTC())); err != nil {
		return fmt.Errorf("writing metrics row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (l *Logger) ensureHeader() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}

	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("creating metrics log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing metrics header: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (r Record) row(ts time.Time) []string {
	domain := r.DomainType
	if domain == "" {
		domain = "debt"
	}
	return []string{
		ts.Format(time.RFC3339),
		r.CaseID,
		r.Slug,
		r.Status,
		r.Reason,
		r.SafetyStatus,
		formatFloat(r.SimilarityScore),
		formatFloat(r.UniquenessScore),
		formatInt(r.UniqueBlockCount),
		formatInt(r.WordCount),
		formatInt(r.PUITotal),
		formatInt(r.PUIStructure),
		formatInt(r.PUIData),
		formatInt(r.PUIEEAT),
		r.UserIntent,
		r.StructureType,
		domain,
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.4f", *v)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

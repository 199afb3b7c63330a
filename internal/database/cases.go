package database

import (
	"database/sql"
	"fmt"
)

const caseColumns = `case_id, slug, category, title, h1, target_user, pain_summary,
	intro_copy, keywords, faq1_q, faq1_a, faq2_q, faq2_a, faq3_q, faq3_a,
	status, batch_date, user_intent, relationship, legal_strategy, amount_band,
	structure_type, created_at, updated_at`

// UpsertCase inserts a case or updates every column of an existing one.
// An empty status defaults to 'todo'.
func (db *DB) UpsertCase(c *Case) error {
	if c.CaseID == "" {
		return fmt.Errorf("upserting case: empty case_id")
	}
	status := c.Status
	if status == "" {
		status = StatusTodo
	}
	_, err := db.conn.Exec(`
		INSERT INTO cases (case_id, slug, category, title, h1, target_user, pain_summary,
			intro_copy, keywords, faq1_q, faq1_a, faq2_q, faq2_a, faq3_q, faq3_a,
			status, batch_date, user_intent, relationship, legal_strategy, amount_band, structure_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(case_id) DO UPDATE SET
			slug=excluded.slug, category=excluded.category, title=excluded.title,
			h1=excluded.h1, target_user=excluded.target_user, pain_summary=excluded.pain_summary,
			intro_copy=excluded.intro_copy, keywords=excluded.keywords,
			faq1_q=excluded.faq1_q, faq1_a=excluded.faq1_a,
			faq2_q=excluded.faq2_q, faq2_a=excluded.faq2_a,
			faq3_q=excluded.faq3_q, faq3_a=excluded.faq3_a,
			status=excluded.status, batch_date=excluded.batch_date,
			user_intent=excluded.user_intent, relationship=excluded.relationship,
			legal_strategy=excluded.legal_strategy, amount_band=excluded.amount_band,
			structure_type=excluded.structure_type,
			updated_at=datetime('now')`,
		c.CaseID, c.Slug, c.Category, c.Title, c.H1, c.TargetUser, c.PainSummary,
		c.IntroCopy, c.Keywords, c.FAQ1Q, c.FAQ1A, c.FAQ2Q, c.FAQ2A, c.FAQ3Q, c.FAQ3A,
		status, c.BatchDate, c.UserIntent, c.Relationship, c.LegalStrategy, c.AmountBand,
		c.StructureType,
	)
	if err != nil {
		return fmt.Errorf("upserting case %s: %w", c.CaseID, err)
	}
	return nil
}

// GetCase returns a single case by ID, or nil when it does not exist.
func (db *DB) GetCase(caseID string) (*Case, error) {
	row := db.conn.QueryRow(
		"SELECT "+caseColumns+" FROM cases WHERE case_id = ?", caseID,
	)
	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading case %s: %w", caseID, err)
	}
	return c, nil
}

// ListTodo returns up to limit cases still waiting for production.
func (db *DB) ListTodo(limit int) ([]Case, error) {
	rows, err := db.conn.Query(
		"SELECT "+caseColumns+" FROM cases WHERE status = ? LIMIT ?",
		StatusTodo, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

// UpdateStatus sets a case's lifecycle status and batch date.
func (db *DB) UpdateStatus(caseID, status, batchDate string) error {
	_, err := db.conn.Exec(
		"UPDATE cases SET status = ?, batch_date = ?, updated_at = datetime('now') WHERE case_id = ?",
		status, batchDate, caseID,
	)
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", caseID, err)
	}
	return nil
}

// ListPublishedSlugs returns the slugs of published cases, newest first,
// capped at limit. These form the similarity corpus.
func (db *DB) ListPublishedSlugs(limit int) ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT slug FROM cases WHERE status = ? AND slug IS NOT NULL AND slug != '' ORDER BY created_at DESC LIMIT ?",
		StatusPublished, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// AllSlugs returns every non-empty slug in the table, any status.
func (db *DB) AllSlugs() ([]string, error) {
	rows, err := db.conn.Query("SELECT slug FROM cases WHERE slug IS NOT NULL AND slug != ''")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// CountPublished returns the number of published cases.
func (db *DB) CountPublished() (int, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM cases WHERE status = ?", StatusPublished,
	).Scan(&count)
	return count, err
}

// CountByStrategyBand groups case counts by (legal_strategy, amount_band, status).
// NULL columns collapse to empty strings.
func (db *DB) CountByStrategyBand() ([]StrategyBandCount, error) {
	rows, err := db.conn.Query(`
		SELECT COALESCE(legal_strategy, ''), COALESCE(amount_band, ''), COALESCE(status, ''), COUNT(*)
		FROM cases GROUP BY legal_strategy, amount_band, status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StrategyBandCount
	for rows.Next() {
		var c StrategyBandCount
		if err := rows.Scan(&c.LegalStrategy, &c.AmountBand, &c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CleanupNullCases removes rows missing a case_id or slug and returns the
// number of deleted rows.
func (db *DB) CleanupNullCases() (int64, error) {
	result, err := db.conn.Exec("DELETE FROM cases WHERE case_id IS NULL OR slug IS NULL")
	if err != nil {
		return 0, fmt.Errorf("cleaning null cases: %w", err)
	}
	return result.RowsAffected()
}

// GetStats returns case counts per lifecycle status.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}
	rows, err := db.conn.Query("SELECT status, COUNT(*) FROM cases GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case StatusTodo:
			stats.Todo += count
		case StatusPublished:
			stats.Published += count
		case StatusDiscarded:
			stats.Discarded += count
		}
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*Case, error) {
	var c Case
	var slug, category, title, h1, targetUser, painSummary, introCopy, keywords sql.NullString
	var faq1q, faq1a, faq2q, faq2a, faq3q, faq3a sql.NullString
	var status, batchDate, userIntent, relationship, legalStrategy, amountBand sql.NullString
	var structureType, createdAt, updatedAt sql.NullString

	err := row.Scan(
		&c.CaseID, &slug, &category, &title, &h1, &targetUser, &painSummary,
		&introCopy, &keywords, &faq1q, &faq1a, &faq2q, &faq2a, &faq3q, &faq3a,
		&status, &batchDate, &userIntent, &relationship, &legalStrategy, &amountBand,
		&structureType, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Slug = slug.String
	c.Category = category.String
	c.Title = title.String
	c.H1 = h1.String
	c.TargetUser = targetUser.String
	c.PainSummary = painSummary.String
	c.IntroCopy = introCopy.String
	c.Keywords = keywords.String
	c.FAQ1Q = faq1q.String
	c.FAQ1A = faq1a.String
	c.FAQ2Q = faq2q.String
	c.FAQ2A = faq2a.String
	c.FAQ3Q = faq3q.String
	c.FAQ3A = faq3a.String
	c.Status = status.String
	c.BatchDate = batchDate.String
	c.UserIntent = userIntent.String
	c.Relationship = relationship.String
	c.LegalStrategy = legalStrategy.String
	c.AmountBand = amountBand.String
	c.StructureType = structureType.String
	c.CreatedAt = createdAt.String
	c.UpdatedAt = updatedAt.String
	return &c, nil
}

func scanCases(rows *sql.Rows) ([]Case, error) {
	var cases []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

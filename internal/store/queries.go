package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/j-veylop/vapi-call-browser/internal/logger"
	"github.com/j-veylop/vapi-call-browser/internal/models"
)

// timeLayout is the on-disk timestamp format. Timestamps are stored as UTC
// text with fixed-width fractional seconds so that lexicographic ORDER BY is
// chronological (RFC3339Nano trims trailing zeros and would not sort).
const timeLayout = "2006-01-02 15:04:05.000000000"

// Upsert inserts or fully replaces each record keyed by id. Every row in the
// batch gets the same cached_at value, so one refresh cycle forms one
// ordering unit for ListAll. The batch runs in a transaction: a crash cannot
// leave a half-written row, and partial application is harmless because
// records are idempotent and re-fetchable.
func (s *Store) Upsert(records []models.CallRecord, writtenAt time.Time) error {
	if len(records) == 0 {
		return nil
	}

	ctx := context.Background()
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO calls (
			id, caller, transcript, summary, start, "end",
			cost, cost_breakdown, ended_reason, cached_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	cachedAt := timeText(writtenAt)
	for _, rec := range records {
		breakdown := rec.CostBreakdown
		if breakdown == nil {
			breakdown = map[string]float64{}
		}
		breakdownJSON, _ := json.Marshal(breakdown)

		_, err := stmt.ExecContext(ctx,
			rec.ID,
			nullString(rec.Caller),
			nullString(rec.Transcript),
			nullString(rec.Summary),
			timeText(rec.Start),
			timeText(rec.End),
			rec.Cost,
			string(breakdownJSON),
			nullString(rec.EndedReason),
			cachedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert call %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	return nil
}

// ListAll returns every cached call ordered by cached_at descending (most
// recently written batch first; call start time breaks ties within a batch).
// A nil slice means "no cached data yet", which callers must distinguish
// from an error: zero rows and a missing file both report nil, nil.
func (s *Store) ListAll() ([]models.CallRecord, error) {
	query := `
		SELECT id, caller, transcript, summary, start, "end",
			   cost, cost_breakdown, ended_reason
		FROM calls
		ORDER BY cached_at DESC, start DESC
	`

	rows, err := s.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached calls: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var calls []models.CallRecord
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached call: %w", err)
		}
		calls = append(calls, rec)
	}

	return calls, rows.Err()
}

// LatestByStart returns the cached call with the maximum start time, or
// nil when the cache is empty. Start time, not cached_at, is the comparison
// key for "does the remote have anything newer".
func (s *Store) LatestByStart() (*models.CallRecord, error) {
	query := `
		SELECT id, caller, transcript, summary, start, "end",
			   cost, cost_breakdown, ended_reason
		FROM calls
		ORDER BY start DESC
		LIMIT 1
	`

	row := s.QueryRowContext(context.Background(), query)
	rec, err := scanCall(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest cached call: %w", err)
	}

	return &rec, nil
}

// Stats reports a snapshot of the cache. It never returns an error: failures
// are encoded in the Status field so status displays cannot themselves fail.
func (s *Store) Stats() models.CacheStats {
	return statsOn(s.DB, s.path)
}

// StatsAt reports a snapshot for a cache file without initializing a Store,
// for callers that must not create the file as a side effect.
func StatsAt(path string) models.CacheStats {
	stats := models.CacheStats{Path: path, Status: models.CacheStatusNotExists}
	if _, err := os.Stat(path); err != nil {
		return stats
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		stats.Exists = true
		stats.Status = models.CacheStatusError
		return stats
	}
	defer func() { _ = db.Close() }()

	return statsOn(db, path)
}

func statsOn(db *sql.DB, path string) models.CacheStats {
	stats := models.CacheStats{
		Path:   path,
		Status: models.CacheStatusNotExists,
	}

	fi, err := os.Stat(path)
	if err != nil {
		return stats
	}
	stats.Exists = true
	stats.SizeBytes = fi.Size()

	// A file written by something else may not hold our table at all; that
	// still counts as "no cache", not an error.
	var name string
	err = db.QueryRowContext(context.Background(),
		"SELECT name FROM sqlite_master WHERE type='table' AND name='calls'",
	).Scan(&name)
	if err == sql.ErrNoRows {
		return stats
	}
	if err != nil {
		logger.Error("failed to inspect cache schema", "error", err)
		stats.Status = models.CacheStatusError
		return stats
	}

	var count int
	var oldest, newest sql.NullString
	err = db.QueryRowContext(context.Background(),
		"SELECT COUNT(*), MIN(cached_at), MAX(cached_at) FROM calls",
	).Scan(&count, &oldest, &newest)
	if err != nil {
		logger.Error("failed to query cache stats", "error", err)
		stats.Status = models.CacheStatusError
		return stats
	}

	stats.CallCount = count
	if oldest.Valid {
		stats.OldestCachedAt = parseTimeText(oldest.String)
	}
	if newest.Valid {
		stats.NewestCachedAt = parseTimeText(newest.String)
	}
	stats.Status = models.CacheStatusOK

	return stats
}

// DailyStats aggregates cached calls per day over the trailing window.
// Days are UTC buckets of the call start time, oldest first.
func (s *Store) DailyStats(days int) ([]models.DailyCallStats, error) {
	query := `
		SELECT substr(start, 1, 10) AS day,
			   COUNT(*) AS call_count,
			   COALESCE(SUM(cost), 0) AS total_cost
		FROM calls
		WHERE start >= ?
		GROUP BY day
		ORDER BY day ASC
	`

	cutoff := timeText(time.Now().AddDate(0, 0, -days))
	rows, err := s.QueryContext(context.Background(), query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []models.DailyCallStats
	for rows.Next() {
		var d models.DailyCallStats
		var dayStr string
		if err := rows.Scan(&dayStr, &d.CallCount, &d.TotalCost); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		d.Date, _ = time.Parse("2006-01-02", dayStr)
		stats = append(stats, d)
	}

	return stats, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCall(row scanner) (models.CallRecord, error) {
	var rec models.CallRecord
	var caller, transcript, summary, endedReason, breakdown sql.NullString
	var startStr, endStr string

	err := row.Scan(
		&rec.ID,
		&caller,
		&transcript,
		&summary,
		&startStr,
		&endStr,
		&rec.Cost,
		&breakdown,
		&endedReason,
	)
	if err != nil {
		return rec, err
	}

	rec.Caller = caller.String
	rec.Transcript = transcript.String
	rec.Summary = summary.String
	rec.EndedReason = endedReason.String
	rec.Start = parseTimeText(startStr)
	rec.End = parseTimeText(endStr)

	rec.CostBreakdown = map[string]float64{}
	if breakdown.Valid && breakdown.String != "" {
		if err := json.Unmarshal([]byte(breakdown.String), &rec.CostBreakdown); err != nil {
			logger.Warn("ignoring malformed cost breakdown", "call", rec.ID, "error", err)
			rec.CostBreakdown = map[string]float64{}
		}
	}

	return rec, nil
}

// timeText renders a timestamp in the on-disk format.
func timeText(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTimeText parses an on-disk timestamp back into a local-zone instant.
// Malformed values degrade to the zero time rather than failing the read.
func parseTimeText(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		logger.Warn("ignoring malformed cache timestamp", "value", s, "error", err)
		return time.Time{}
	}
	return t.Local()
}

// nullString returns a sql.NullString from a string.
func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

// Package models defines data structures and domain types.
package models

import "time"

// Cache status values reported by CacheStats.Status.
const (
	CacheStatusOK        = "ok"
	CacheStatusNotExists = "not_exists"
	CacheStatusError     = "error_db_operation"
)

// CacheStats is a read-only snapshot of the record store. It is derived on
// demand and never persisted; failures while gathering it are encoded in
// Status rather than returned as errors.
type CacheStats struct {
	OldestCachedAt time.Time
	NewestCachedAt time.Time
	Path           string
	Status         string
	SizeBytes      int64
	CallCount      int
	Exists         bool
}

// SizeMB returns the store file size in megabytes.
func (s *CacheStats) SizeMB() float64 {
	return float64(s.SizeBytes) / (1024 * 1024)
}

// DailyCallStats aggregates cached calls for one day, used by trend charts.
type DailyCallStats struct {
	Date      time.Time
	CallCount int
	TotalCost float64
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/vapi-call-browser/internal/models"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "calls.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if s.Path() != dbPath {
		t.Errorf("Expected path %s, got %s", dbPath, s.Path())
	}

	// Verify file exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Cache file was not created")
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "calls.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store with nested path: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Error("Nested directories were not created")
	}
}

func TestNew_IsIdempotent(t *testing.T) {
	s := newTestStore(t)
	path := s.Path()

	if err := s.Upsert([]models.CallRecord{testCall("keep-me")}, time.Now()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopening must preserve existing rows.
	s2, err := New(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s2.Close()

	calls, err := s2.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(calls) != 1 || calls[0].ID != "keep-me" {
		t.Errorf("Expected existing row to survive reopen, got %v", calls)
	}
}

func TestSchema_TableExists(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	var name string
	err := s.QueryRowContext(context.Background(),
		"SELECT name FROM sqlite_master WHERE type='table' AND name='calls'").Scan(&name)
	if err != nil {
		t.Errorf("Table calls does not exist: %v", err)
	}
}

func TestUpsert_OverwritesExistingID(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	first := testCall("call-1")
	first.Caller = "+14155551234"
	first.Cost = 0.10
	if err := s.Upsert([]models.CallRecord{first}, time.Now()); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	second := testCall("call-1")
	second.Caller = "+16505559999"
	second.Summary = "replaced"
	second.Cost = 0.42
	second.CostBreakdown = map[string]float64{"transport": 0.12, "llm": 0.30}
	if err := s.Upsert([]models.CallRecord{second}, time.Now()); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	calls, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("Expected 1 row after overwrite, got %d", len(calls))
	}

	got := calls[0]
	if got.Caller != "+16505559999" {
		t.Errorf("Caller = %q, want overwritten value", got.Caller)
	}
	if got.Summary != "replaced" {
		t.Errorf("Summary = %q, want %q", got.Summary, "replaced")
	}
	if got.Cost != 0.42 {
		t.Errorf("Cost = %v, want 0.42", got.Cost)
	}
	if got.CostBreakdown["llm"] != 0.30 {
		t.Errorf("CostBreakdown[llm] = %v, want 0.30", got.CostBreakdown["llm"])
	}
}

func TestListAll_OrdersByWriteTimeNotStartTime(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	now := time.Now()

	// Batch A holds the NEWER calls but is written first.
	batchA := []models.CallRecord{
		testCallAt("new-call", now.Add(-time.Hour)),
	}
	if err := s.Upsert(batchA, now.Add(-10*time.Minute)); err != nil {
		t.Fatalf("Upsert batch A failed: %v", err)
	}

	// Batch B holds an OLDER call but is written later.
	batchB := []models.CallRecord{
		testCallAt("old-call", now.Add(-48*time.Hour)),
	}
	if err := s.Upsert(batchB, now); err != nil {
		t.Fatalf("Upsert batch B failed: %v", err)
	}

	calls, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(calls))
	}
	if calls[0].ID != "old-call" {
		t.Errorf("Expected most recently written batch first, got %s", calls[0].ID)
	}
	if calls[1].ID != "new-call" {
		t.Errorf("Expected earlier batch second, got %s", calls[1].ID)
	}
}

func TestListAll_EmptyReturnsNil(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	calls, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if calls != nil {
		t.Errorf("Expected nil for empty cache, got %v", calls)
	}
}

func TestListAll_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	orig := models.CallRecord{
		ID:          "round-trip",
		Caller:      "+14155551234",
		Transcript:  "AI: Hello\nUser: Hi there",
		Summary:     "Short greeting",
		Start:       time.Date(2025, 6, 1, 9, 30, 0, 123456789, time.Local),
		End:         time.Date(2025, 6, 1, 9, 35, 0, 0, time.Local),
		Cost:        1.25,
		EndedReason: "Customer Ended",
		CostBreakdown: map[string]float64{
			"stt": 0.25,
			"llm": 1.00,
		},
	}

	if err := s.Upsert([]models.CallRecord{orig}, time.Now()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	calls, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(calls))
	}

	got := calls[0]
	if got.ID != orig.ID || got.Caller != orig.Caller || got.Transcript != orig.Transcript {
		t.Errorf("Text fields did not round-trip: %+v", got)
	}
	if !got.Start.Equal(orig.Start) {
		t.Errorf("Start = %v, want %v", got.Start, orig.Start)
	}
	if !got.End.Equal(orig.End) {
		t.Errorf("End = %v, want %v", got.End, orig.End)
	}
	if got.Cost != orig.Cost {
		t.Errorf("Cost = %v, want %v", got.Cost, orig.Cost)
	}
	if len(got.CostBreakdown) != 2 || got.CostBreakdown["stt"] != 0.25 {
		t.Errorf("CostBreakdown did not round-trip: %v", got.CostBreakdown)
	}
	if got.EndedReason != orig.EndedReason {
		t.Errorf("EndedReason = %q, want %q", got.EndedReason, orig.EndedReason)
	}
}

func TestLatestByStart(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	now := time.Now()

	// Written later but started earlier: must NOT win.
	if err := s.Upsert([]models.CallRecord{testCallAt("older-start", now.Add(-2*time.Hour))}, now.Add(-time.Minute)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert([]models.CallRecord{testCallAt("newer-start", now.Add(-time.Hour))}, now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	latest, err := s.LatestByStart()
	if err != nil {
		t.Fatalf("LatestByStart failed: %v", err)
	}
	if latest == nil {
		t.Fatal("Expected a latest call, got nil")
	}
	if latest.ID != "newer-start" {
		t.Errorf("LatestByStart = %s, want newer-start (start time, not write time)", latest.ID)
	}
}

func TestLatestByStart_Empty(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	latest, err := s.LatestByStart()
	if err != nil {
		t.Fatalf("LatestByStart failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Expected nil for empty cache, got %v", latest)
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	batch := []models.CallRecord{testCall("a"), testCall("b"), testCall("c")}
	if err := s.Upsert(batch, time.Now()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	stats := s.Stats()
	if !stats.Exists {
		t.Error("Stats.Exists = false, want true")
	}
	if stats.Status != models.CacheStatusOK {
		t.Errorf("Stats.Status = %q, want %q", stats.Status, models.CacheStatusOK)
	}
	if stats.CallCount != 3 {
		t.Errorf("Stats.CallCount = %d, want 3", stats.CallCount)
	}
	if stats.SizeBytes == 0 {
		t.Error("Stats.SizeBytes = 0, want > 0")
	}
	if stats.NewestCachedAt.IsZero() || stats.OldestCachedAt.IsZero() {
		t.Error("Stats cached_at bounds should be set")
	}
	if stats.Path != s.Path() {
		t.Errorf("Stats.Path = %q, want %q", stats.Path, s.Path())
	}
}

func TestStats_EmptyStore(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	stats := s.Stats()
	if stats.Status != models.CacheStatusOK {
		t.Errorf("Stats.Status = %q, want %q", stats.Status, models.CacheStatusOK)
	}
	if stats.CallCount != 0 {
		t.Errorf("Stats.CallCount = %d, want 0", stats.CallCount)
	}
	if !stats.NewestCachedAt.IsZero() {
		t.Error("NewestCachedAt should be zero for empty store")
	}
}

func TestStatsAt_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.db")

	stats := StatsAt(path)
	if stats.Exists {
		t.Error("Stats.Exists = true for missing file")
	}
	if stats.Status != models.CacheStatusNotExists {
		t.Errorf("Stats.Status = %q, want %q", stats.Status, models.CacheStatusNotExists)
	}

	// Inspecting must not create the file.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("StatsAt created the cache file")
	}
}

func TestStatsAt_ExistingStore(t *testing.T) {
	s := newTestStore(t)
	if err := s.Upsert([]models.CallRecord{testCall("x")}, time.Now()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	path := s.Path()
	s.Close()

	stats := StatsAt(path)
	if stats.Status != models.CacheStatusOK {
		t.Errorf("Stats.Status = %q, want %q", stats.Status, models.CacheStatusOK)
	}
	if stats.CallCount != 1 {
		t.Errorf("Stats.CallCount = %d, want 1", stats.CallCount)
	}
}

func TestDailyStats(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	now := time.Now()
	batch := []models.CallRecord{
		withCost(testCallAt("today-1", now.Add(-time.Hour)), 0.50),
		withCost(testCallAt("today-2", now.Add(-2*time.Hour)), 0.25),
		withCost(testCallAt("last-week", now.AddDate(0, 0, -6)), 1.00),
	}
	if err := s.Upsert(batch, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	stats, err := s.DailyStats(30)
	if err != nil {
		t.Fatalf("DailyStats failed: %v", err)
	}
	if len(stats) < 2 {
		t.Fatalf("Expected at least 2 day buckets, got %d", len(stats))
	}

	// Oldest bucket first.
	for i := 1; i < len(stats); i++ {
		if stats[i].Date.Before(stats[i-1].Date) {
			t.Error("DailyStats not ordered oldest first")
		}
	}

	var totalCalls int
	var totalCost float64
	for _, d := range stats {
		totalCalls += d.CallCount
		totalCost += d.TotalCost
	}
	if totalCalls != 3 {
		t.Errorf("Total calls across buckets = %d, want 3", totalCalls)
	}
	if totalCost < 1.74 || totalCost > 1.76 {
		t.Errorf("Total cost across buckets = %v, want 1.75", totalCost)
	}
}

func TestVacuum(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	if err := s.Vacuum(); err != nil {
		t.Errorf("Vacuum failed: %v", err)
	}
}

func TestClose(t *testing.T) {
	s := newTestStore(t)

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Verify store is closed by trying to query
	_, err := s.QueryContext(context.Background(), "SELECT 1")
	if err == nil {
		t.Error("Expected error querying closed store")
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	path := s.Path()
	if err := s.Upsert([]models.CallRecord{testCall("x")}, time.Now()); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	s.Close()

	if err := Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Cache file still exists after Remove")
	}

	// Removing again is fine.
	if err := Remove(path); err != nil {
		t.Errorf("Remove of missing file failed: %v", err)
	}
}

// Helper to create a test store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "calls.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	return s
}

func testCall(id string) models.CallRecord {
	return testCallAt(id, time.Now().Add(-time.Hour))
}

func testCallAt(id string, start time.Time) models.CallRecord {
	return models.CallRecord{
		ID:          id,
		Caller:      "+14155551234",
		Transcript:  "AI: Hello\nUser: Hi",
		Summary:     "Test call",
		Start:       start,
		End:         start.Add(90 * time.Second),
		Cost:        0.05,
		EndedReason: "Customer Ended",
	}
}

func withCost(rec models.CallRecord, cost float64) models.CallRecord {
	rec.Cost = cost
	return rec
}

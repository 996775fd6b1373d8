package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwstringx "github.com/msto63/kylang/foundation/utils/stringx"
)

// MaxOutputBytes caps the program output kept per run
const MaxOutputBytes = 64 * 1024

// Status is the outcome of a run
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Origin names the surface that started a run
type Origin string

const (
	OriginCLI        Origin = "cli"
	OriginServer     Origin = "server"
	OriginPlayground Origin = "playground"
)

// Run is one recorded program execution
type Run struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	Origin       Origin        `json:"origin"`
	File         string        `json:"file,omitempty"`
	Source       string        `json:"source"`
	SourceHash   string        `json:"source_hash"`
	Status       Status        `json:"status"`
	Steps        int64         `json:"steps"`
	Duration     time.Duration `json:"duration"`
	Output       string        `json:"output,omitempty"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// NewRun prepares a run record for src with a fresh ID
func NewRun(origin Origin, file, src string) *Run {
	return &Run{
		ID:         uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		Origin:     origin,
		File:       file,
		Source:     src,
		SourceHash: HashSource(src),
		Status:     StatusOK,
	}
}

// Fail marks the run as failed with err
func (r *Run) Fail(err error) {
	r.Status = StatusFailed
	r.ErrorCode = mdwerror.GetCode(err).String()
	r.ErrorMessage = err.Error()
}

// HashSource returns the hex SHA-256 of a program text
func HashSource(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Filter defines criteria for listing runs
type Filter struct {
	Status Status
	Origin Origin
	File   string
	Since  time.Time
	Limit  int
	Offset int
}

// Stats summarises the recorded runs
type Stats struct {
	Total       int64            `json:"total"`
	ByStatus    map[Status]int64 `json:"by_status"`
	ByErrorCode map[string]int64 `json:"by_error_code"`
	AvgDuration time.Duration    `json:"avg_duration"`
	LastRun     time.Time        `json:"last_run,omitempty"`
}

// Store defines the interface for run persistence
type Store interface {
	Record(ctx context.Context, run *Run) error
	List(ctx context.Context, filter Filter) ([]*Run, error)
	Get(ctx context.Context, id string) (*Run, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/kylang-history.db",
	}
}

// NewSQLiteStore opens (and if needed creates) the history database
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dbError(err, "failed to create directory")
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open database")
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema")
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		origin TEXT NOT NULL,
		file TEXT,
		source TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		status TEXT NOT NULL,
		steps INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		output TEXT,
		error_code TEXT,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	CREATE INDEX IF NOT EXISTS idx_runs_source_hash ON runs(source_hash);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run, filling in ID, timestamp and hash when missing
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(run)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, origin, file, source, source_hash, status,
			steps, duration_ns, output, error_code, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.Origin, run.File, run.Source, run.SourceHash, run.Status,
		run.Steps, int64(run.Duration), run.Output, run.ErrorCode, run.ErrorMessage)

	if err != nil {
		return dbError(err, "failed to insert run")
	}
	return nil
}

const selectRuns = `SELECT id, started_at, origin, file, source, source_hash, status,
	steps, duration_ns, output, error_code, error_message FROM runs`

// List retrieves runs matching filter, newest first
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRuns + ` WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Origin != "" {
		query += " AND origin = ?"
		args = append(args, filter.Origin)
	}
	if filter.File != "" {
		query += " AND file = ?"
		args = append(args, filter.File)
	}
	if !filter.Since.IsZero() {
		query += " AND started_at >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY started_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to read runs")
	}
	return runs, nil
}

// Get returns the run with the given ID. A unique ID prefix is accepted.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectRuns+` WHERE substr(id, 1, length(?)) = ? ORDER BY started_at DESC LIMIT 2`, id, id)
	if err != nil {
		return nil, dbError(err, "failed to query run")
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan run")
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to read runs")
	}
	return pick(found, id)
}

// Stats returns run statistics
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		ByStatus:    make(map[Status]int64),
		ByErrorCode: make(map[string]int64),
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), AVG(duration_ns) FROM runs`).Scan(&stats.Total, &avg); err != nil {
		return nil, dbError(err, "failed to count runs")
	}
	if avg.Valid {
		stats.AvgDuration = time.Duration(avg.Float64)
	}

	err := s.countBy(ctx, `SELECT status, COUNT(*) FROM runs GROUP BY status`, func(key string, n int64) {
		stats.ByStatus[Status(key)] = n
	})
	if err != nil {
		return nil, dbError(err, "failed to group runs by status")
	}

	err = s.countBy(ctx, `SELECT error_code, COUNT(*) FROM runs WHERE error_code != '' GROUP BY error_code`, func(key string, n int64) {
		stats.ByErrorCode[key] = n
	})
	if err != nil {
		return nil, dbError(err, "failed to group runs by error code")
	}

	var last sql.NullTime
	err = s.db.QueryRowContext(ctx, `SELECT started_at FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, dbError(err, "failed to read last run")
	case last.Valid:
		stats.LastRun = last.Time.UTC()
	}

	return stats, nil
}

func (s *SQLiteStore) countBy(ctx context.Context, query string, put func(key string, n int64)) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	return scanCounts(rows, put)
}

// countRows is the part of *sql.Rows that scanCounts reads
type countRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanCounts reads (key, count) rows until the first error
func scanCounts(rows countRows, put func(key string, n int64)) error {
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		put(key, n)
	}
	return rows.Err()
}

// Prune removes runs older than the specified duration
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune runs")
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var file, output, errCode, errMsg sql.NullString
	var durationNS int64

	if err := row.Scan(&run.ID, &run.StartedAt, &run.Origin, &file, &run.Source, &run.SourceHash,
		&run.Status, &run.Steps, &durationNS, &output, &errCode, &errMsg); err != nil {
		return nil, err
	}
	run.StartedAt = run.StartedAt.UTC()
	run.Duration = time.Duration(durationNS)
	run.File = file.String
	run.Output = output.String
	run.ErrorCode = errCode.String
	run.ErrorMessage = errMsg.String
	return &run, nil
}

// prepare fills defaults before a run is stored
func prepare(run *Run) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()
	if run.SourceHash == "" {
		run.SourceHash = HashSource(run.Source)
	}
	if run.Status == "" {
		run.Status = StatusOK
	}
	if len(run.Output) > MaxOutputBytes {
		run.Output = mdwstringx.Truncate(run.Output, MaxOutputBytes, "\n...")
	}
}

// pick resolves an ID prefix lookup to exactly one run
func pick(found []*Run, id string) (*Run, error) {
	switch len(found) {
	case 0:
		return nil, mdwerror.Newf("run %s not found", id).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("history.get").
			WithDetail("id", id)
	case 1:
		return found[0], nil
	}
	for _, run := range found {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, mdwerror.Newf("run ID prefix %s is ambiguous", id).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("history.get").
		WithDetail("id", id)
}

func checkID(id string) error {
	if mdwstringx.IsBlank(id) {
		return mdwerror.New("run ID cannot be empty").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("history.get")
	}
	return nil
}

func dbError(err error, message string) *mdwerror.Error {
	return mdwerror.Wrap(err, message).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation("history")
}

// MemoryStore is an in-memory implementation used when history is disabled
// and in tests
type MemoryStore struct {
	mu   sync.RWMutex
	runs []*Run
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make([]*Run, 0)}
}

// Record stores a copy of run
func (s *MemoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(run)
	stored := *run
	s.runs = append(s.runs, &stored)
	return nil
}

// List returns runs matching filter, newest first
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Run
	for _, run := range s.runs {
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		if filter.Origin != "" && run.Origin != filter.Origin {
			continue
		}
		if filter.File != "" && run.File != filter.File {
			continue
		}
		if !filter.Since.IsZero() && run.StartedAt.Before(filter.Since) {
			continue
		}
		copied := *run
		result = append(result, &copied)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if filter.Limit > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
		if len(result) > filter.Limit {
			result = result[:filter.Limit]
		}
	}
	return result, nil
}

// Get returns the run with the given ID or unique ID prefix
func (s *MemoryStore) Get(ctx context.Context, id string) (*Run, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []*Run
	for _, run := range s.runs {
		if len(run.ID) >= len(id) && run.ID[:len(id)] == id {
			copied := *run
			found = append(found, &copied)
		}
	}
	return pick(found, id)
}

// Stats returns run statistics
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		Total:       int64(len(s.runs)),
		ByStatus:    make(map[Status]int64),
		ByErrorCode: make(map[string]int64),
	}
	var total time.Duration
	for _, run := range s.runs {
		stats.ByStatus[run.Status]++
		if run.ErrorCode != "" {
			stats.ByErrorCode[run.ErrorCode]++
		}
		total += run.Duration
		if run.StartedAt.After(stats.LastRun) {
			stats.LastRun = run.StartedAt
		}
	}
	if len(s.runs) > 0 {
		stats.AvgDuration = total / time.Duration(len(s.runs))
	}
	return stats, nil
}

// Prune removes runs older than the specified duration
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	kept := s.runs[:0]
	var removed int64
	for _, run := range s.runs {
		if run.StartedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, run)
	}
	s.runs = kept
	return removed, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/topic-gate/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create db dir: %v", ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %v", ErrStorageUnavailable, err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorageUnavailable, err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS topics (
		id          TEXT PRIMARY KEY,
		topic       TEXT NOT NULL,
		source_id   TEXT,
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_topics_recorded ON topics(recorded_at);

	CREATE TABLE IF NOT EXISTS web_cache (
		id         TEXT PRIMARY KEY,
		query      TEXT NOT NULL,
		topic      TEXT,
		snippet    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_web_cache_created ON web_cache(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) LoadTopics(ctx context.Context) ([]model.TopicRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic, source_id, recorded_at FROM topics ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: load topics: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var records []model.TopicRecord
	for rows.Next() {
		var r model.TopicRecord
		var sourceID sql.NullString
		var recordedAt string
		if err := rows.Scan(&r.ID, &r.Topic, &sourceID, &recordedAt); err != nil {
			return nil, fmt.Errorf("%w: scan topic: %v", ErrStorageCorrupt, err)
		}
		r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: topic %s has invalid recorded_at %q", ErrStorageCorrupt, r.ID, recordedAt)
		}
		if sourceID.Valid {
			r.SourceID = sourceID.String
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load topics: %v", ErrStorageUnavailable, err)
	}
	return records, nil
}

func (s *SQLiteStore) AppendTopic(ctx context.Context, p AppendTopicParams) (*model.TopicRecord, error) {
	at := p.RecordedAt
	if at.IsZero() {
		at = time.Now()
	}
	// Stored in UTC so the returned record matches what a later load sees.
	at = at.UTC()
	rec := &model.TopicRecord{
		ID:         s.newID(),
		Topic:      p.Topic,
		SourceID:   p.SourceID,
		RecordedAt: at,
	}

	var sourceID *string
	if p.SourceID != "" {
		sourceID = &p.SourceID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topics (id, topic, source_id, recorded_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Topic, sourceID, at.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("%w: insert topic: %v", ErrStorageUnavailable, err)
	}
	return rec, nil
}

func (s *SQLiteStore) LoadCache(ctx context.Context) ([]model.CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, topic, snippet, created_at FROM web_cache ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: load cache: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var entries []model.CacheEntry
	for rows.Next() {
		var e model.CacheEntry
		var topic sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Query, &topic, &e.Snippet, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan cache entry: %v", ErrStorageCorrupt, err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: cache entry %s has invalid created_at %q", ErrStorageCorrupt, e.ID, createdAt)
		}
		if topic.Valid {
			e.Topic = topic.String
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load cache: %v", ErrStorageUnavailable, err)
	}
	return entries, nil
}

func (s *SQLiteStore) AppendCache(ctx context.Context, p AppendCacheParams) (*model.CacheEntry, error) {
	at := p.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()
	entry := &model.CacheEntry{
		ID:        s.newID(),
		Query:     p.Query,
		Topic:     p.Topic,
		Snippet:   p.Snippet,
		CreatedAt: at,
	}

	var topic *string
	if p.Topic != "" {
		topic = &p.Topic
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO web_cache (id, query, topic, snippet, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Query, topic, entry.Snippet, at.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("%w: insert cache entry: %v", ErrStorageUnavailable, err)
	}
	return entry, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, scope model.ResetScope) (model.ResetSummary, error) {
	var sum model.ResetSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("%w: begin clear: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	if scope == model.ScopeTopics || scope == model.ScopeAll {
		res, err := tx.ExecContext(ctx, `DELETE FROM topics`)
		if err != nil {
			return sum, fmt.Errorf("%w: clear topics: %v", ErrStorageUnavailable, err)
		}
		n, _ := res.RowsAffected()
		sum.TopicsRemoved = int(n)
	}
	if scope == model.ScopeWeb || scope == model.ScopeAll {
		res, err := tx.ExecContext(ctx, `DELETE FROM web_cache`)
		if err != nil {
			return sum, fmt.Errorf("%w: clear web cache: %v", ErrStorageUnavailable, err)
		}
		n, _ := res.RowsAffected()
		sum.CacheEntriesRemoved = int(n)
	}

	if err := tx.Commit(); err != nil {
		return model.ResetSummary{}, fmt.Errorf("%w: commit clear: %v", ErrStorageUnavailable, err)
	}
	return sum, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*model.Stats, error) {
	st := &model.Stats{}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topics`).Scan(&st.TotalTopics); err != nil {
		return nil, fmt.Errorf("%w: count topics: %v", ErrStorageUnavailable, err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM web_cache`).Scan(&st.TotalCacheEntries); err != nil {
		return nil, fmt.Errorf("%w: count cache entries: %v", ErrStorageUnavailable, err)
	}

	// Last inserted row, not lexicographic max: imported rows may carry
	// older timestamps than rows already present.
	var last string
	err := s.db.QueryRowContext(ctx,
		`SELECT recorded_at FROM topics ORDER BY rowid DESC LIMIT 1`).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("%w: latest topic: %v", ErrStorageUnavailable, err)
	default:
		t, err := time.Parse(time.RFC3339Nano, last)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid recorded_at %q", ErrStorageCorrupt, last)
		}
		st.LastUpdated = &t
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

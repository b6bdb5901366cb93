// Package store provides the topic-history storage interface with SQLite
// and flat-file JSON implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/topic-gate/internal/model"
)

// Storage failure kinds. Implementations wrap these so callers can
// distinguish an unreadable store from an unparseable one with errors.Is.
var (
	// ErrStorageUnavailable means a read or write against the backing
	// store failed (disk error, permissions). Callers must surface this
	// rather than treat it as empty history.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStorageCorrupt means persisted data exists but fails to parse or
	// validate. Surfaced distinctly so the caller can choose to reset or
	// alert instead of silently overwriting.
	ErrStorageCorrupt = errors.New("storage corrupt")
)

// AppendTopicParams holds parameters for recording a topic.
type AppendTopicParams struct {
	Topic    string
	SourceID string
	// RecordedAt overrides the record timestamp; zero means now.
	// Used by import to preserve original timestamps.
	RecordedAt time.Time
}

// AppendCacheParams holds parameters for caching a web-search result.
type AppendCacheParams struct {
	Query   string
	Topic   string
	Snippet string
	// CreatedAt overrides the entry timestamp; zero means now.
	CreatedAt time.Time
}

// Store defines the gate's persistence contract: full reads, atomic
// appends, scoped clears. Each mutation becomes visible atomically;
// readers never observe a torn write.
type Store interface {
	// LoadTopics returns all topic records in insertion order.
	LoadTopics(ctx context.Context) ([]model.TopicRecord, error)

	// AppendTopic persists a new topic record and returns it. The write is
	// durable on return or an error is returned; never partial.
	AppendTopic(ctx context.Context, p AppendTopicParams) (*model.TopicRecord, error)

	// LoadCache returns all cache entries in insertion order.
	LoadCache(ctx context.Context) ([]model.CacheEntry, error)

	// AppendCache persists a new cache entry and returns it.
	AppendCache(ctx context.Context, p AppendCacheParams) (*model.CacheEntry, error)

	// Clear removes all entries in the given scope and reports how many
	// were removed per partition.
	Clear(ctx context.Context, scope model.ResetScope) (model.ResetSummary, error)

	// Stats returns partition counts and the latest topic timestamp.
	Stats(ctx context.Context) (*model.Stats, error)

	// Close closes the store.
	Close() error
}

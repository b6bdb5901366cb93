// Package gate implements the topic coverage gate: it decides whether a
// candidate topic duplicates something already recorded in history.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rcliao/topic-gate/internal/model"
	"github.com/rcliao/topic-gate/internal/similarity"
	"github.com/rcliao/topic-gate/internal/store"
)

// ErrInvalidInput means a topic or query was empty after trimming.
var ErrInvalidInput = errors.New("invalid input")

// DefaultThreshold is the inclusive similarity score at or above which a
// topic counts as already covered.
const DefaultThreshold = 0.35

// DefaultTopK is how many matched topics Check returns at most.
const DefaultTopK = 5

// Config holds gate tuning. Zero values fall back to the defaults.
type Config struct {
	Threshold float64
	TopK      int
	Metric    similarity.Metric
}

// Gate checks candidate topics against persisted history. Record and Reset
// are serialized behind a mutex; Check and Stats are read-only and safe to
// call concurrently.
type Gate struct {
	store     store.Store
	threshold float64
	topK      int
	metric    similarity.Metric

	mu sync.Mutex // guards writers (Record, StoreSearch, Reset)
}

// New creates a Gate over the given store.
func New(s store.Store, cfg Config) *Gate {
	g := &Gate{
		store:     s,
		threshold: cfg.Threshold,
		topK:      cfg.TopK,
		metric:    cfg.Metric,
	}
	if g.threshold == 0 {
		g.threshold = DefaultThreshold
	}
	if g.topK == 0 {
		g.topK = DefaultTopK
	}
	if g.metric == nil {
		g.metric = similarity.Jaccard{}
	}
	return g
}

// Threshold returns the configured coverage threshold.
func (g *Gate) Threshold() float64 { return g.threshold }

// Check scores topic against every historical record and reports whether it
// is already covered. It never mutates history.
func (g *Gate) Check(ctx context.Context, topic string) (*model.SimilarityResult, error) {
	candidate := similarity.Normalize(topic)
	if candidate == "" {
		return nil, fmt.Errorf("%w: empty topic", ErrInvalidInput)
	}

	history, err := g.store.LoadTopics(ctx)
	if err != nil {
		return nil, err
	}

	res := &model.SimilarityResult{MatchedTopics: []model.TopicMatch{}}
	for _, rec := range history {
		score := g.metric.Score(candidate, similarity.Normalize(rec.Topic))
		if score > res.SimilarityScore {
			res.SimilarityScore = score
		}
		if score > 0 {
			res.MatchedTopics = append(res.MatchedTopics, model.TopicMatch{
				Topic: rec.Topic,
				Score: score,
			})
		}
	}

	// Descending by score; the stable sort keeps earliest-recorded first
	// on ties since history is in insertion order.
	sort.SliceStable(res.MatchedTopics, func(i, j int) bool {
		return res.MatchedTopics[i].Score > res.MatchedTopics[j].Score
	})
	if len(res.MatchedTopics) > g.topK {
		res.MatchedTopics = res.MatchedTopics[:g.topK]
	}

	res.IsCovered = res.SimilarityScore >= g.threshold
	return res, nil
}

// Record normalizes and appends a topic to history. Not idempotent:
// recording the same topic twice creates two entries; deduplication is the
// caller's job via Check.
func (g *Gate) Record(ctx context.Context, topic, sourceID string) (*model.TopicRecord, error) {
	normalized := similarity.Normalize(topic)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty topic", ErrInvalidInput)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.AppendTopic(ctx, store.AppendTopicParams{
		Topic:    normalized,
		SourceID: sourceID,
	})
}

// StoreSearch caches a web-search result in the external cache partition.
// Cached entries never participate in similarity scoring.
func (g *Gate) StoreSearch(ctx context.Context, query, topic, snippet string) (*model.CacheEntry, error) {
	if similarity.Normalize(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidInput)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.AppendCache(ctx, store.AppendCacheParams{
		Query:   query,
		Topic:   similarity.Normalize(topic),
		Snippet: snippet,
	})
}

// Reset clears the given scope and reports removed counts. Destructive and
// always explicit; Check and Record never trigger it.
func (g *Gate) Reset(ctx context.Context, scope model.ResetScope) (model.ResetSummary, error) {
	if !model.ValidScopes[scope] {
		return model.ResetSummary{}, fmt.Errorf("%w: unknown scope %q", ErrInvalidInput, scope)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Clear(ctx, scope)
}

// Stats returns partition counts and the latest record timestamp.
func (g *Gate) Stats(ctx context.Context) (*model.Stats, error) {
	return g.store.Stats(ctx)
}

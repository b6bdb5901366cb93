// Package model defines the core topic-gate data types.
package model

import "time"

// TopicRecord is a previously processed subject stored in topic history.
// Topic holds the normalized text; SourceID points at the content item the
// topic produced (an article or post file) and is display-only; it never
// participates in similarity scoring.
type TopicRecord struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	SourceID   string    `json:"source_id,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CacheEntry is an auxiliary cached web-search result associated with a
// topic. Entries live in their own partition and are reset independently of
// topic history.
type CacheEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Topic     string    `json:"topic,omitempty"`
	Snippet   string    `json:"snippet"`
	CreatedAt time.Time `json:"created_at"`
}

// TopicMatch is one historical topic with its similarity score.
type TopicMatch struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// SimilarityResult is the outcome of checking a candidate topic against
// history. MatchedTopics holds the top scoring records (score > 0), highest
// first, ties broken by earliest-recorded-first.
type SimilarityResult struct {
	IsCovered       bool         `json:"is_covered"`
	SimilarityScore float64      `json:"similarity_score"`
	MatchedTopics   []TopicMatch `json:"matched_topics"`
}

// ResetScope selects which partition a reset clears.
type ResetScope string

const (
	ScopeTopics ResetScope = "topics"
	ScopeWeb    ResetScope = "web"
	ScopeAll    ResetScope = "all"
)

// ValidScopes are the allowed reset scopes.
var ValidScopes = map[ResetScope]bool{
	ScopeTopics: true,
	ScopeWeb:    true,
	ScopeAll:    true,
}

// ResetSummary reports how many entries a reset removed per partition.
type ResetSummary struct {
	TopicsRemoved       int `json:"topics_removed"`
	CacheEntriesRemoved int `json:"cache_entries_removed"`
}

// Stats holds store counters. LastUpdated is the timestamp of the most
// recent topic record, nil when history is empty.
type Stats struct {
	TotalTopics       int        `json:"total_topics"`
	TotalCacheEntries int        `json:"total_external_cache_entries"`
	LastUpdated       *time.Time `json:"last_updated"`
}

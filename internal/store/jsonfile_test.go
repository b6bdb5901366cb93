package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/topic-gate/internal/model"
)

func newTestJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	s, err := NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return s
}

func TestJSONAppendAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestJSONStore(t)

	// Missing files read as empty, not as an error
	topics, err := s.LoadTopics(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(topics) != 0 {
		t.Fatalf("expected empty history, got %d", len(topics))
	}

	if _, err := s.AppendTopic(ctx, AppendTopicParams{Topic: "machine learning basics"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.AppendTopic(ctx, AppendTopicParams{Topic: "deep learning fundamentals"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	topics, err = s.LoadTopics(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}
	if topics[0].Topic != "machine learning basics" {
		t.Errorf("insertion order not preserved: %v", topics)
	}
}

func TestJSONWriteIsCommitted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	if _, err := s.AppendTopic(ctx, AppendTopicParams{Topic: "serverless architectures"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// The final file exists and no temp files are left behind
	if _, err := os.Stat(filepath.Join(dir, topicFileName)); err != nil {
		t.Fatalf("expected %s to exist: %v", topicFileName, err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != topicFileName && e.Name() != cacheFileName {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestJSONCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, topicFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	_, err = s.LoadTopics(ctx)
	if !errors.Is(err, ErrStorageCorrupt) {
		t.Errorf("expected ErrStorageCorrupt, got %v", err)
	}

	// Appends refuse to overwrite corrupt data
	_, err = s.AppendTopic(ctx, AppendTopicParams{Topic: "anything"})
	if !errors.Is(err, ErrStorageCorrupt) {
		t.Errorf("expected ErrStorageCorrupt on append, got %v", err)
	}

	// Clear recovers the partition
	sum, err := s.Clear(ctx, model.ScopeTopics)
	if err != nil {
		t.Fatalf("clear after corruption: %v", err)
	}
	if sum.TopicsRemoved != 0 {
		t.Errorf("corrupt partition has unknowable count, expected 0, got %d", sum.TopicsRemoved)
	}
	if _, err := s.LoadTopics(ctx); err != nil {
		t.Errorf("expected readable store after clear, got %v", err)
	}
}

func TestJSONUnreadableFileIsUnavailable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	// A directory where the file should be makes every read fail without
	// being a missing-file case; must surface as unavailable, not as an
	// empty history.
	if err := os.Mkdir(filepath.Join(dir, topicFileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, err := s.LoadTopics(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("load: expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := s.AppendTopic(ctx, AppendTopicParams{Topic: "x"}); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("append: expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := s.Stats(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("stats: expected ErrStorageUnavailable, got %v", err)
	}
}

func TestJSONSchemaValidation(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	// Valid JSON, wrong shape: a record without topic text
	bad := `{"topics":[{"id":"x","recorded_at":"0001-01-01T00:00:00Z"}]}`
	if err := os.WriteFile(filepath.Join(dir, topicFileName), []byte(bad), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err = s.LoadTopics(ctx)
	if !errors.Is(err, ErrStorageCorrupt) {
		t.Errorf("expected ErrStorageCorrupt, got %v", err)
	}
}

func TestJSONClearScopes(t *testing.T) {
	ctx := context.Background()
	s := newTestJSONStore(t)

	s.AppendTopic(ctx, AppendTopicParams{Topic: "a"})
	s.AppendCache(ctx, AppendCacheParams{Query: "q", Snippet: "s"})
	s.AppendCache(ctx, AppendCacheParams{Query: "q2", Snippet: "s2"})

	sum, err := s.Clear(ctx, model.ScopeWeb)
	if err != nil {
		t.Fatalf("clear web: %v", err)
	}
	if sum.TopicsRemoved != 0 || sum.CacheEntriesRemoved != 2 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	topics, _ := s.LoadTopics(ctx)
	if len(topics) != 1 {
		t.Errorf("expected topics untouched, got %d", len(topics))
	}

	st, _ := s.Stats(ctx)
	if st.TotalCacheEntries != 0 {
		t.Errorf("expected 0 cache entries after clear, got %d", st.TotalCacheEntries)
	}
}

func TestJSONStats(t *testing.T) {
	ctx := context.Background()
	s := newTestJSONStore(t)

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.LastUpdated != nil {
		t.Error("expected nil last_updated for empty history")
	}

	rec, _ := s.AppendTopic(ctx, AppendTopicParams{Topic: "observability pipelines"})
	st, _ = s.Stats(ctx)
	if st.TotalTopics != 1 {
		t.Errorf("expected 1 topic, got %d", st.TotalTopics)
	}
	if st.LastUpdated == nil || !st.LastUpdated.Equal(rec.RecordedAt) {
		t.Errorf("expected last_updated %v, got %v", rec.RecordedAt, st.LastUpdated)
	}
}

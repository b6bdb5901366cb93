package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/topic-gate/internal/model"
)

// JSONStore implements Store with two flat JSON files in a directory:
// topic_memory.json for topic history and web_cache.json for cached search
// results. Writes go to a temp file in the same directory and are committed
// with an atomic rename, so readers see either the old file or the new one,
// never a partial write.
type JSONStore struct {
	dir     string
	entropy *rand.Rand
}

const (
	topicFileName = "topic_memory.json"
	cacheFileName = "web_cache.json"
)

type topicFile struct {
	Topics      []model.TopicRecord `json:"topics"`
	LastUpdated time.Time           `json:"last_updated"`
}

type cacheFile struct {
	Entries     []model.CacheEntry `json:"entries"`
	LastUpdated time.Time          `json:"last_updated"`
}

// NewJSONStore opens or creates a JSON store rooted at dir.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create store dir: %v", ErrStorageUnavailable, err)
	}
	return &JSONStore{
		dir:     dir,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (s *JSONStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// readFile loads and decodes one JSON file into out. A missing file is not
// an error; out is left untouched. A file that exists but does not decode
// or validate is corrupt.
func (s *JSONStore) readFile(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrStorageCorrupt, name, err)
	}
	return nil
}

// writeFile encodes v to a temp file and renames it over name.
func (s *JSONStore) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrStorageUnavailable, name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrStorageUnavailable, name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: sync %s: %v", ErrStorageUnavailable, name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrStorageUnavailable, name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: commit %s: %v", ErrStorageUnavailable, name, err)
	}
	return nil
}

func (s *JSONStore) loadTopicFile() (*topicFile, error) {
	var tf topicFile
	if err := s.readFile(topicFileName, &tf); err != nil {
		return nil, err
	}
	for i, r := range tf.Topics {
		if r.Topic == "" || r.RecordedAt.IsZero() {
			return nil, fmt.Errorf("%w: %s: topic %d missing required fields", ErrStorageCorrupt, topicFileName, i)
		}
	}
	return &tf, nil
}

func (s *JSONStore) loadCacheFile() (*cacheFile, error) {
	var cf cacheFile
	if err := s.readFile(cacheFileName, &cf); err != nil {
		return nil, err
	}
	for i, e := range cf.Entries {
		if e.Query == "" || e.CreatedAt.IsZero() {
			return nil, fmt.Errorf("%w: %s: entry %d missing required fields", ErrStorageCorrupt, cacheFileName, i)
		}
	}
	return &cf, nil
}

func (s *JSONStore) LoadTopics(ctx context.Context) ([]model.TopicRecord, error) {
	tf, err := s.loadTopicFile()
	if err != nil {
		return nil, err
	}
	return tf.Topics, nil
}

func (s *JSONStore) AppendTopic(ctx context.Context, p AppendTopicParams) (*model.TopicRecord, error) {
	tf, err := s.loadTopicFile()
	if err != nil {
		return nil, err
	}

	at := p.RecordedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	rec := model.TopicRecord{
		ID:         s.newID(),
		Topic:      p.Topic,
		SourceID:   p.SourceID,
		RecordedAt: at,
	}
	tf.Topics = append(tf.Topics, rec)
	tf.LastUpdated = time.Now().UTC()

	if err := s.writeFile(topicFileName, tf); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *JSONStore) LoadCache(ctx context.Context) ([]model.CacheEntry, error) {
	cf, err := s.loadCacheFile()
	if err != nil {
		return nil, err
	}
	return cf.Entries, nil
}

func (s *JSONStore) AppendCache(ctx context.Context, p AppendCacheParams) (*model.CacheEntry, error) {
	cf, err := s.loadCacheFile()
	if err != nil {
		return nil, err
	}

	at := p.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	entry := model.CacheEntry{
		ID:        s.newID(),
		Query:     p.Query,
		Topic:     p.Topic,
		Snippet:   p.Snippet,
		CreatedAt: at,
	}
	cf.Entries = append(cf.Entries, entry)
	cf.LastUpdated = time.Now().UTC()

	if err := s.writeFile(cacheFileName, cf); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Clear is the recovery path for a corrupt partition: a file that fails to
// parse is still replaced with an empty one, reported as zero removed since
// the old entry count is unknowable.
func (s *JSONStore) Clear(ctx context.Context, scope model.ResetScope) (model.ResetSummary, error) {
	var sum model.ResetSummary

	if scope == model.ScopeTopics || scope == model.ScopeAll {
		tf, err := s.loadTopicFile()
		if err != nil && !errors.Is(err, ErrStorageCorrupt) {
			return sum, err
		}
		if tf != nil {
			sum.TopicsRemoved = len(tf.Topics)
		}
		empty := topicFile{Topics: []model.TopicRecord{}, LastUpdated: time.Now().UTC()}
		if err := s.writeFile(topicFileName, &empty); err != nil {
			return model.ResetSummary{}, err
		}
	}
	if scope == model.ScopeWeb || scope == model.ScopeAll {
		cf, err := s.loadCacheFile()
		if err != nil && !errors.Is(err, ErrStorageCorrupt) {
			return sum, err
		}
		if cf != nil {
			sum.CacheEntriesRemoved = len(cf.Entries)
		}
		empty := cacheFile{Entries: []model.CacheEntry{}, LastUpdated: time.Now().UTC()}
		if err := s.writeFile(cacheFileName, &empty); err != nil {
			return model.ResetSummary{}, err
		}
	}
	return sum, nil
}

func (s *JSONStore) Stats(ctx context.Context) (*model.Stats, error) {
	tf, err := s.loadTopicFile()
	if err != nil {
		return nil, err
	}
	cf, err := s.loadCacheFile()
	if err != nil {
		return nil, err
	}

	st := &model.Stats{
		TotalTopics:       len(tf.Topics),
		TotalCacheEntries: len(cf.Entries),
	}
	if n := len(tf.Topics); n > 0 {
		last := tf.Topics[n-1].RecordedAt
		st.LastUpdated = &last
	}
	return st, nil
}

func (s *JSONStore) Close() error {
	return nil
}

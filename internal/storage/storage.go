// Package storage persists the whole data document as one JSON file.
// There are no partial updates: every mutation is load, change, overwrite.
package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/SM-TRIBE/bot/internal/lib/sl"
	"github.com/SM-TRIBE/bot/internal/models"
)

// Store is the document-store port the rest of the system talks to.
type Store interface {
	// Load reads the document. It never fails from the caller's view:
	// unreadable or corrupt files degrade to an empty document, so callers
	// must not assume prior data survived.
	Load() *models.Document

	// Save overwrites the whole document. The error is reported so callers
	// can log it, but the system keeps running on the in-memory copy.
	Save(doc *models.Document) error

	// Mutate runs fn inside load -> fn -> save while holding the locks of
	// every listed user id. Operations touching the same user serialize;
	// unrelated users proceed in parallel. This is the only mutation
	// primitive handlers should use.
	Mutate(userIDs []int64, fn func(doc *models.Document) error) error
}

// FileStore implements Store over a single JSON file.
type FileStore struct {
	path string
	log  *slog.Logger

	mu    sync.Mutex // guards locks
	locks map[int64]*sync.Mutex
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string, log *slog.Logger) *FileStore {
	return &FileStore{
		path:  path,
		log:   log,
		locks: make(map[int64]*sync.Mutex),
	}
}

// Load reads and normalizes the document, falling back to an empty one.
func (s *FileStore) Load() *models.Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error("data file unreadable, using empty document", sl.Err(err))
		}
		return models.NewDocument()
	}

	doc := models.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.log.Error("data file corrupt, using empty document", sl.Err(err))
		return models.NewDocument()
	}
	doc.Normalize()
	return doc
}

// Save overwrites the document atomically (temp file + rename).
func (s *FileStore) Save(doc *models.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.log.Error("encode document", sl.Err(err))
		return err
	}

	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.log.Error("create data dir", sl.Err(err))
			return err
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Error("write data file", sl.Err(err))
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Error("replace data file", sl.Err(err))
		return err
	}
	return nil
}

// Mutate locks the given user ids in sorted order, then performs the
// read-modify-write cycle. Sorted acquisition keeps cross-user operations
// (likes, gifts) deadlock-free.
func (s *FileStore) Mutate(userIDs []int64, fn func(doc *models.Document) error) error {
	ids := dedupSorted(userIDs)
	for _, id := range ids {
		s.userLock(id).Lock()
	}
	defer func() {
		for i := len(ids) - 1; i >= 0; i-- {
			s.userLock(ids[i]).Unlock()
		}
	}()

	doc := s.Load()
	if err := fn(doc); err != nil {
		return err
	}
	return s.Save(doc)
}

func (s *FileStore) userLock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func dedupSorted(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

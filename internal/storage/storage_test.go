package storage_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SM-TRIBE/bot/internal/models"
	"github.com/SM-TRIBE/bot/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*storage.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return storage.NewFileStore(path, log), path
}

// TestLoad_MissingFile verifies that first load materializes an empty document.
func TestLoad_MissingFile(t *testing.T) {
	s, _ := newTestStore(t)

	doc := s.Load()

	require.NotNil(t, doc)
	assert.Empty(t, doc.Users)
	assert.Empty(t, doc.Matches)
	assert.Empty(t, doc.Reports)
}

// TestSaveLoad_RoundTrip verifies a saved document loads back field-for-field.
func TestSaveLoad_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// Arrange
	doc := models.NewDocument()
	doc.PutUser(&models.User{
		ID:        1,
		Name:      "Ana",
		Age:       24,
		Gender:    models.GenderFemale,
		City:      "Lisbon",
		Interests: []string{"music", "hiking"},
		Coins:     115,
		RefCode:   "ABCD1234",
		Likes:     []int64{2},
		Viewers:   []models.Viewer{{UserID: 2, SeenAt: now}},
		CreatedAt: now,
	})
	m := models.NewMatch(1, 2, now)
	doc.Matches[m.ID] = m
	doc.Reports = append(doc.Reports, models.NewReport(1, 2, "spam", now))
	doc.SubAdmins = []int64{9}

	// Act
	require.NoError(t, s.Save(doc))
	loaded := s.Load()

	// Assert
	u, ok := loaded.User(1)
	require.True(t, ok)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, 24, u.Age)
	assert.Equal(t, []string{"music", "hiking"}, u.Interests)
	assert.Equal(t, int64(115), u.Coins)
	assert.Len(t, u.Viewers, 1)
	assert.Equal(t, int64(2), u.Viewers[0].UserID)
	assert.Len(t, loaded.Matches, 1)
	assert.Len(t, loaded.Reports, 1)
	assert.Equal(t, "spam", loaded.Reports[0].Reason)
	assert.Equal(t, []int64{9}, loaded.SubAdmins)
}

// TestLoad_BackfillsViewers verifies documents written before the viewers
// feature load with empty lists instead of erroring.
func TestLoad_BackfillsViewers(t *testing.T) {
	s, path := newTestStore(t)

	// A legacy document: user without viewers/likes arrays, no reports key.
	legacy := map[string]any{
		"users": map[string]any{
			"42": map[string]any{"id": 42, "name": "Old", "age": 30},
		},
	}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	doc := s.Load()

	u, ok := doc.User(42)
	require.True(t, ok)
	assert.NotNil(t, u.Viewers)
	assert.Empty(t, u.Viewers)
	assert.NotNil(t, u.Likes)
	assert.NotNil(t, doc.Matches)
	assert.NotNil(t, doc.Reports)
}

// TestLoad_CorruptFile verifies a corrupt file degrades to an empty document.
func TestLoad_CorruptFile(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	doc := s.Load()

	require.NotNil(t, doc)
	assert.Empty(t, doc.Users)
}

// TestMutate_PersistsChanges verifies Mutate runs load -> fn -> save.
func TestMutate_PersistsChanges(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Mutate([]int64{1}, func(doc *models.Document) error {
		doc.PutUser(&models.User{ID: 1, Name: "Bea", Coins: 100})
		return nil
	})
	require.NoError(t, err)

	u, ok := s.Load().User(1)
	require.True(t, ok)
	assert.Equal(t, "Bea", u.Name)
}

// TestMutate_ErrorSkipsSave verifies a failing fn leaves the file untouched.
func TestMutate_ErrorSkipsSave(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Mutate([]int64{1}, func(doc *models.Document) error {
		doc.PutUser(&models.User{ID: 1, Coins: 100})
		return nil
	}))

	err := s.Mutate([]int64{1}, func(doc *models.Document) error {
		u, _ := doc.User(1)
		u.Coins = 0
		return assert.AnError
	})

	assert.Error(t, err)
	u, _ := s.Load().User(1)
	assert.Equal(t, int64(100), u.Coins, "rejected mutation must not persist")
}

// TestMutate_SerializesPerUser verifies concurrent mutations of the same user
// do not lose updates.
func TestMutate_SerializesPerUser(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Mutate([]int64{1}, func(doc *models.Document) error {
		doc.PutUser(&models.User{ID: 1, Coins: 0})
		return nil
	}))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Mutate([]int64{1}, func(doc *models.Document) error {
				u, _ := doc.User(1)
				u.Coins++
				return nil
			})
		}()
	}
	wg.Wait()

	u, _ := s.Load().User(1)
	assert.Equal(t, int64(n), u.Coins, "no increment may be lost")
}

// TestMutate_CrossUserLockOrder verifies that mutations locking the same two
// users in opposite orders complete (no deadlock).
func TestMutate_CrossUserLockOrder(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Mutate([]int64{1, 2}, func(doc *models.Document) error {
		doc.PutUser(&models.User{ID: 1})
		doc.PutUser(&models.User{ID: 2})
		return nil
	}))

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = s.Mutate([]int64{1, 2}, func(*models.Document) error { return nil })
			}()
			go func() {
				defer wg.Done()
				_ = s.Mutate([]int64{2, 1}, func(*models.Document) error { return nil })
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("cross-user mutations deadlocked")
	}
}

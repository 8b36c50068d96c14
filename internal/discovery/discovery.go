// Package discovery filters, ranks and paginates candidate profiles for
// swipe-style search.
package discovery

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SM-TRIBE/bot/internal/models"
)

// Browsing errors.
var (
	ErrNoResults = errors.New("no active search results")
	ErrBoundary  = errors.New("end of results")
)

// Direction of cursor movement through cached results.
type Direction int

const (
	Next Direction = iota
	Prev
)

// Bucket is a closed age interval offered as a search choice.
type Bucket struct {
	Label string
	Min   int
	Max   int
}

// AgeBuckets is the fixed set of age ranges a searcher picks from.
var AgeBuckets = []Bucket{
	{Label: "18-24", Min: 18, Max: 24},
	{Label: "25-34", Min: 25, Max: 34},
	{Label: "35-44", Min: 35, Max: 44},
	{Label: "45+", Min: 45, Max: 99},
}

// BucketAt returns the age bucket at index i.
func BucketAt(i int) (Bucket, bool) {
	if i < 0 || i >= len(AgeBuckets) {
		return Bucket{}, false
	}
	return AgeBuckets[i], true
}

// Criteria is a fully gathered search query.
type Criteria struct {
	Gender    string
	Bucket    Bucket
	Interests []string // empty means no interest filter
}

// Engine owns the per-user ephemeral search result cache.
type Engine struct {
	mu      sync.Mutex
	results map[int64]*resultSet
}

type resultSet struct {
	ids    []int64
	cursor int
}

// NewEngine creates an engine with an empty cache.
func NewEngine() *Engine {
	return &Engine{results: make(map[int64]*resultSet)}
}

// Execute runs the search over the document and returns the ranked
// candidate ids. Excluded: the searcher, banned users and incomplete
// profiles. Boosted-and-active profiles sort first; otherwise the original
// order is kept (stable sort).
func Execute(doc *models.Document, searcherID int64, c Criteria, now time.Time) []int64 {
	var candidates []*models.User
	for _, u := range doc.Users {
		if u.ID == searcherID || u.Banned || !u.Complete {
			continue
		}
		if u.Gender != c.Gender {
			continue
		}
		if u.Age < c.Bucket.Min || u.Age > c.Bucket.Max {
			continue
		}
		if len(c.Interests) > 0 && !interestsOverlap(c.Interests, u.Interests) {
			continue
		}
		candidates = append(candidates, u)
	}

	// Map iteration order is random; fix it before the stable ranking pass
	// so results are reproducible.
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].BoostActive(now) && !candidates[j].BoostActive(now)
	})

	ids := make([]int64, len(candidates))
	for i, u := range candidates {
		ids[i] = u.ID
	}
	return ids
}

func interestsOverlap(wanted, have []string) bool {
	for _, w := range wanted {
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(w), strings.TrimSpace(h)) {
				return true
			}
		}
	}
	return false
}

// Put caches a fresh result list for userID, resetting the cursor. Any
// previous results are superseded.
func (e *Engine) Put(userID int64, ids []int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(ids) == 0 {
		delete(e.results, userID)
		return
	}
	e.results[userID] = &resultSet{ids: ids}
}

// Current returns the candidate under the cursor.
func (e *Engine) Current(userID int64) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rs, ok := e.results[userID]
	if !ok {
		return 0, ErrNoResults
	}
	return rs.ids[rs.cursor], nil
}

// Advance moves the cursor and returns the new candidate. Moving past
// either end clamps the cursor and reports ErrBoundary.
func (e *Engine) Advance(userID int64, dir Direction) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rs, ok := e.results[userID]
	if !ok {
		return 0, ErrNoResults
	}
	switch dir {
	case Next:
		if rs.cursor+1 >= len(rs.ids) {
			return rs.ids[rs.cursor], ErrBoundary
		}
		rs.cursor++
	case Prev:
		if rs.cursor == 0 {
			return rs.ids[rs.cursor], ErrBoundary
		}
		rs.cursor--
	}
	return rs.ids[rs.cursor], nil
}

// Clear drops the cached results for userID.
func (e *Engine) Clear(userID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.results, userID)
}

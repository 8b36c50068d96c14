package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Match is a mutual like between two users. The pair is stored in
// normalized order (UserA < UserB) so that {A,B} and {B,A} are the same match.
type Match struct {
	ID        string    `json:"id"`
	UserA     int64     `json:"userA"`
	UserB     int64     `json:"userB"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMatch creates a match record for the unordered pair {a, b}.
func NewMatch(a, b int64, at time.Time) *Match {
	if a > b {
		a, b = b, a
	}
	return &Match{
		ID:        uuid.New().String(),
		UserA:     a,
		UserB:     b,
		CreatedAt: at,
	}
}

// PairKey returns a canonical key for the unordered pair {a, b}.
func PairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// Involves reports whether id is one of the matched users.
func (m *Match) Involves(id int64) bool {
	return m.UserA == id || m.UserB == id
}

// Other returns the partner of id within the match.
func (m *Match) Other(id int64) int64 {
	if m.UserA == id {
		return m.UserB
	}
	return m.UserA
}

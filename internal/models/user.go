// Package models defines the entities persisted in the data document:
// users, matches, reports and the document itself.
package models

import "time"

// Gender values accepted by the profile wizard.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Roles. Admin is fixed by configuration, sub-admins live in the document.
const (
	RoleUser     = "user"
	RoleSubAdmin = "sub-admin"
	RoleAdmin    = "admin"
)

// Viewer is one entry of a user's recent-viewers list.
type Viewer struct {
	UserID int64     `json:"userId"`
	SeenAt time.Time `json:"seenAt"`
}

// User represents a dating profile together with its coin ledger,
// social links and moderation flags. ID is the Telegram chat id.
type User struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name" validate:"required"`
	Age       int      `json:"age" validate:"gte=18,lte=99"`
	Gender    string   `json:"gender" validate:"oneof=male female other"`
	City      string   `json:"city"`
	Interests []string `json:"interests"`
	Limits    []string `json:"limits"`
	Bio       string   `json:"bio"`
	Photos    []string `json:"photos" validate:"min=1"` // Telegram file IDs, ordered

	Coins       int64      `json:"coins"`
	BoostUntil  *time.Time `json:"boostUntil,omitempty"`
	LastDailyAt *time.Time `json:"lastDailyAt,omitempty"`

	Likes   []int64  `json:"likes"`
	Matches []int64  `json:"matches"`
	Viewers []Viewer `json:"viewers"` // most-recent-first, capped

	Banned bool `json:"banned"`

	RefCode      string `json:"refCode"`
	ReferrerID   int64  `json:"referrerId,omitempty"`
	ReferralPaid bool   `json:"referralPaid,omitempty"`

	// Complete flips when the wizard finishes; incomplete profiles are
	// hidden from discovery.
	Complete bool `json:"complete"`

	CreatedAt time.Time `json:"createdAt"`
}

// BoostActive reports whether the profile boost is set and still running.
func (u *User) BoostActive(now time.Time) bool {
	return u.BoostUntil != nil && u.BoostUntil.After(now)
}

// HasLiked reports whether the user already liked target.
func (u *User) HasLiked(target int64) bool {
	for _, id := range u.Likes {
		if id == target {
			return true
		}
	}
	return false
}

// MatchedWith reports whether the user is matched with target.
func (u *User) MatchedWith(target int64) bool {
	for _, id := range u.Matches {
		if id == target {
			return true
		}
	}
	return false
}

// RecordViewer bumps or inserts a viewer entry at the front of the list,
// deduplicating by viewer id and truncating to cap. Self-views are ignored.
func (u *User) RecordViewer(viewerID int64, at time.Time, cap int) {
	if viewerID == u.ID {
		return
	}
	entry := Viewer{UserID: viewerID, SeenAt: at}
	out := make([]Viewer, 0, len(u.Viewers)+1)
	out = append(out, entry)
	for _, v := range u.Viewers {
		if v.UserID == viewerID {
			continue
		}
		out = append(out, v)
	}
	if len(out) > cap {
		out = out[:cap]
	}
	u.Viewers = out
}

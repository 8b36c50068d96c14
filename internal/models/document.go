package models

import "strconv"

// Document is the whole persisted state: one JSON file, overwritten on
// every save. Users are keyed by their decimal Telegram id.
type Document struct {
	Users     map[string]*User  `json:"users"`
	Matches   map[string]*Match `json:"matches"`
	Reports   []*Report         `json:"reports"`
	SubAdmins []int64           `json:"subAdmins"`
}

// NewDocument returns an empty document with all collections materialized.
func NewDocument() *Document {
	return &Document{
		Users:   make(map[string]*User),
		Matches: make(map[string]*Match),
		Reports: []*Report{},
	}
}

// UserKey converts a Telegram id to its document key.
func UserKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Normalize back-fills collections that older documents may lack, so a
// load never yields nil maps or nil per-user slices.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = make(map[string]*User)
	}
	if d.Matches == nil {
		d.Matches = make(map[string]*Match)
	}
	if d.Reports == nil {
		d.Reports = []*Report{}
	}
	for _, u := range d.Users {
		if u.Interests == nil {
			u.Interests = []string{}
		}
		if u.Limits == nil {
			u.Limits = []string{}
		}
		if u.Photos == nil {
			u.Photos = []string{}
		}
		if u.Likes == nil {
			u.Likes = []int64{}
		}
		if u.Matches == nil {
			u.Matches = []int64{}
		}
		if u.Viewers == nil {
			u.Viewers = []Viewer{}
		}
	}
}

// User looks up a user by Telegram id.
func (d *Document) User(id int64) (*User, bool) {
	u, ok := d.Users[UserKey(id)]
	return u, ok
}

// PutUser stores a user under its document key.
func (d *Document) PutUser(u *User) {
	d.Users[UserKey(u.ID)] = u
}

// UserByRefCode finds the owner of a referral code.
func (d *Document) UserByRefCode(code string) (*User, bool) {
	if code == "" {
		return nil, false
	}
	for _, u := range d.Users {
		if u.RefCode == code {
			return u, true
		}
	}
	return nil, false
}

// MatchBetween returns the match record for the unordered pair, if any.
func (d *Document) MatchBetween(a, b int64) (*Match, bool) {
	key := PairKey(a, b)
	for _, m := range d.Matches {
		if PairKey(m.UserA, m.UserB) == key {
			return m, true
		}
	}
	return nil, false
}

// IsSubAdmin reports whether id is in the sub-admin set.
func (d *Document) IsSubAdmin(id int64) bool {
	for _, s := range d.SubAdmins {
		if s == id {
			return true
		}
	}
	return false
}

// AddSubAdmin promotes id. Returns false if it already was a sub-admin.
func (d *Document) AddSubAdmin(id int64) bool {
	if d.IsSubAdmin(id) {
		return false
	}
	d.SubAdmins = append(d.SubAdmins, id)
	return true
}

// RemoveSubAdmin demotes id. Returns false if it was not a sub-admin.
func (d *Document) RemoveSubAdmin(id int64) bool {
	for i, s := range d.SubAdmins {
		if s == id {
			d.SubAdmins = append(d.SubAdmins[:i], d.SubAdmins[i+1:]...)
			return true
		}
	}
	return false
}

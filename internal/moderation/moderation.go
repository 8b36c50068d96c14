// Package moderation provides the core logic for roles, bans, reports and
// the admin user listing.
package moderation

import (
	"errors"
	"sort"
	"time"

	"github.com/SM-TRIBE/bot/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrReportNotFound = errors.New("report not found")
)

// Stats is the aggregate view shown in the admin console.
type Stats struct {
	Users   int
	Matches int
	Reports int
	Open    int
}

// Collect computes the aggregate stats over the document.
func Collect(doc *models.Document) Stats {
	s := Stats{
		Users:   len(doc.Users),
		Matches: len(doc.Matches),
		Reports: len(doc.Reports),
	}
	for _, r := range doc.Reports {
		if r.Status == models.ReportOpen {
			s.Open++
		}
	}
	return s
}

// RoleOf resolves the role of id: the configured admin, a sub-admin from
// the document, or a plain user.
func RoleOf(doc *models.Document, adminID, id int64) string {
	if id == adminID {
		return models.RoleAdmin
	}
	if doc.IsSubAdmin(id) {
		return models.RoleSubAdmin
	}
	return models.RoleUser
}

// SetBanned sets the ban flag. Returns whether the flag actually changed,
// so callers can report idempotent no-ops.
func SetBanned(doc *models.Document, id int64, banned bool) (bool, error) {
	u, ok := doc.User(id)
	if !ok {
		return false, ErrUserNotFound
	}
	if u.Banned == banned {
		return false, nil
	}
	u.Banned = banned
	return true, nil
}

// File creates an open report against reportedID.
func File(doc *models.Document, reporterID, reportedID int64, reason string, now time.Time) (*models.Report, error) {
	if _, ok := doc.User(reportedID); !ok {
		return nil, ErrUserNotFound
	}
	r := models.NewReport(reporterID, reportedID, reason, now)
	doc.Reports = append(doc.Reports, r)
	return r, nil
}

// Open returns the open reports, oldest first.
func Open(doc *models.Document) []*models.Report {
	var out []*models.Report
	for _, r := range doc.Reports {
		if r.Status == models.ReportOpen {
			out = append(out, r)
		}
	}
	return out
}

// Resolve transitions a report open -> closed. Resolving an already closed
// report reports no change. Reports are never deleted or re-opened.
func Resolve(doc *models.Document, reportID string) (bool, error) {
	for _, r := range doc.Reports {
		if r.ID != reportID {
			continue
		}
		if r.Status == models.ReportClosed {
			return false, nil
		}
		r.Status = models.ReportClosed
		return true, nil
	}
	return false, ErrReportNotFound
}

// UserPage returns one page of users ordered by id, plus the total page
// count for the given page size.
func UserPage(doc *models.Document, page, size int) ([]*models.User, int) {
	all := make([]*models.User, 0, len(doc.Users))
	for _, u := range doc.Users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	pages := (len(all) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}
	start := page * size
	end := start + size
	if start > len(all) {
		return nil, pages
	}
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], pages
}

// Broadcastable returns the ids of every non-banned user, ordered by id for
// a deterministic send sequence.
func Broadcastable(doc *models.Document) []int64 {
	var ids []int64
	for _, u := range doc.Users {
		if !u.Banned {
			ids = append(ids, u.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

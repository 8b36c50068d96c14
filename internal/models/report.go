package models

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses. A report only ever moves open -> closed.
const (
	ReportOpen   = "open"
	ReportClosed = "closed"
)

// Report is a user complaint against another user. Reports are never deleted.
type Report struct {
	ID         string    `json:"id"`
	ReporterID int64     `json:"reporterId"`
	ReportedID int64     `json:"reportedId"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewReport creates an open report.
func NewReport(reporterID, reportedID int64, reason string, at time.Time) *Report {
	return &Report{
		ID:         uuid.New().String(),
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		Status:     ReportOpen,
		CreatedAt:  at,
	}
}

package model

import "time"

// Item represents a reported lost or found object.
type Item struct {
	ID           int64     `json:"id"`
	ReportedBy   int64     `json:"reported_by"`
	CategoryID   int64     `json:"category_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Status       string    `json:"status"`
	PhotoMime    string    `json:"photo_mime,omitempty"`
	DateReported time.Time `json:"date_reported"`

	// Joined fields (not always populated).
	ReporterName string `json:"reporter_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

// Item statuses. An item is reported as lost or found, moves to
// claim_pending when the first claim is filed, and becomes resolved
// when a claim on it is approved. Resolution is terminal.
const (
	ItemStatusLost         = "lost"
	ItemStatusFound        = "found"
	ItemStatusClaimPending = "claim_pending"
	ItemStatusResolved     = "resolved"
)

// ValidReportStatus reports whether status is allowed when reporting an item.
func ValidReportStatus(status string) bool {
	return status == ItemStatusLost || status == ItemStatusFound
}

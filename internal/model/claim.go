package model

import "time"

// Claim is an assertion by a user that a given item belongs to them.
// A claim is resolved exactly once; there is no re-resolution path.
type Claim struct {
	ID                  int64     `json:"id"`
	ItemID              int64     `json:"item_id"`
	ClaimantID          int64     `json:"claimant_id"`
	Status              string    `json:"status"`
	VerificationDetails string    `json:"verification_details,omitempty"`
	ClaimedAt           time.Time `json:"claimed_at"`

	// Joined fields (not always populated).
	ItemTitle     string `json:"item_title,omitempty"`
	ItemStatus    string `json:"item_status,omitempty"`
	ReportedBy    int64  `json:"reported_by,omitempty"`
	ClaimantName  string `json:"claimant_name,omitempty"`
	ClaimantEmail string `json:"claimant_email,omitempty"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// Resolution types accepted by the admin resolve endpoint.
const (
	ResolutionApprove = "approve"
	ResolutionReject  = "reject"
)

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/back2u/internal/model"
)

// Claim errors returned to handlers.
var (
	ErrItemNotFound   = errors.New("item not found")
	ErrItemResolved   = errors.New("item already resolved")
	ErrDuplicateClaim = errors.New("pending claim already exists for this item")
	ErrClaimNotFound  = errors.New("claim not found")
	ErrClaimResolved  = errors.New("claim already resolved")
)

// SubmitClaim files a claim on an item. Within a single transaction it
// verifies the item exists and is not resolved, rejects a second pending
// claim by the same claimant, inserts the claim, and moves the item to
// claim_pending unless it is already claim_pending or resolved.
func SubmitClaim(ctx context.Context, db *sql.DB, itemID, claimantID int64, verificationDetails string) (*model.Claim, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM items WHERE id = ?`, itemID,
	).Scan(&itemStatus)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}
	if itemStatus == model.ItemStatusResolved {
		return nil, ErrItemResolved
	}

	var pending int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE item_id = ? AND claimant_id = ? AND status = ?`,
		itemID, claimantID, model.ClaimStatusPending,
	).Scan(&pending)
	if err != nil {
		return nil, fmt.Errorf("checking existing claims: %w", err)
	}
	if pending > 0 {
		return nil, ErrDuplicateClaim
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_id, status, verification_details)
		 VALUES (?, ?, ?, ?)`,
		itemID, claimantID, model.ClaimStatusPending, verificationDetails,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting claim: %w", err)
	}

	// Repeated claims on an item that is already claim_pending leave the
	// status alone.
	if itemStatus != model.ItemStatusClaimPending {
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET status = ? WHERE id = ?`,
			model.ItemStatusClaimPending, itemID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating item status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	claimID, _ := result.LastInsertId()
	return GetClaim(ctx, db, claimID)
}

// ResolveClaim approves or rejects a claim inside a single transaction.
// Approval uses a conditional update (status must still be pending), so a
// racing second approval fails with ErrClaimResolved instead of silently
// succeeding. The item status transition is performed by the
// item_resolved_on_claim_approval trigger, never here. The updated claim row
// is re-read inside the transaction and returned so the caller has
// authoritative item and claimant IDs for notification dispatch.
func ResolveClaim(ctx context.Context, db *sql.DB, claimID int64, resolution string) (*model.Claim, error) {
	var newStatus string
	switch resolution {
	case model.ResolutionApprove:
		newStatus = model.ClaimStatusApproved
	case model.ResolutionReject:
		newStatus = model.ClaimStatusRejected
	default:
		return nil, fmt.Errorf("invalid resolution type %q", resolution)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM claims WHERE id = ?`, claimID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking claim: %w", err)
	}
	if status != model.ClaimStatusPending {
		return nil, ErrClaimResolved
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ? WHERE id = ? AND status = ?`,
		newStatus, claimID, model.ClaimStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("updating claim: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrClaimResolved
	}

	// Re-read the claim so the returned row reflects what was committed,
	// not a stale in-memory copy.
	claim, err := getClaimTx(ctx, tx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing resolution: %w", err)
	}
	return claim, nil
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	return scanClaimRow(db.QueryRowContext(ctx,
		`SELECT id, item_id, claimant_id, status, verification_details, claimed_at
		 FROM claims WHERE id = ?`, id,
	))
}

func getClaimTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Claim, error) {
	return scanClaimRow(tx.QueryRowContext(ctx,
		`SELECT id, item_id, claimant_id, status, verification_details, claimed_at
		 FROM claims WHERE id = ?`, id,
	))
}

func scanClaimRow(row *sql.Row) (*model.Claim, error) {
	c := &model.Claim{}
	var details sql.NullString
	err := row.Scan(&c.ID, &c.ItemID, &c.ClaimantID, &c.Status, &details, &c.ClaimedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	c.VerificationDetails = details.String
	return c, nil
}

// ListClaimsForItem returns all claims on an item in insertion order.
func ListClaimsForItem(ctx context.Context, db *sql.DB, itemID int64) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, claimant_id, status, verification_details, claimed_at
		 FROM claims WHERE item_id = ? ORDER BY id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var details sql.NullString
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ClaimantID, &c.Status, &details, &c.ClaimedAt); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		c.VerificationDetails = details.String
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// ListPendingClaims returns pending claims joined with item and claimant
// details, for the admin dashboard.
func ListPendingClaims(ctx context.Context, db *sql.DB) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.item_id, c.claimant_id, c.status, c.verification_details, c.claimed_at,
		        i.title AS item_title, i.status AS item_status, i.reported_by,
		        u.name AS claimant_name, u.email AS claimant_email
		 FROM claims c
		 JOIN items i ON c.item_id = i.id
		 JOIN users u ON c.claimant_id = u.id
		 WHERE c.status = ?
		 ORDER BY c.claimed_at ASC, c.id ASC`, model.ClaimStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var details sql.NullString
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ClaimantID, &c.Status, &details, &c.ClaimedAt,
			&c.ItemTitle, &c.ItemStatus, &c.ReportedBy, &c.ClaimantName, &c.ClaimantEmail); err != nil {
			return nil, fmt.Errorf("scanning pending claim: %w", err)
		}
		c.VerificationDetails = details.String
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/back2u/internal/model"
)

// ItemFilter narrows down ListItems results.
type ItemFilter struct {
	Status          string // exact status match, must be a listed status
	Search          string // substring match on title or description
	IncludeResolved bool   // also list resolved items
}

// CreateItem records a newly reported item. The caller is responsible for
// validating the status against model.ValidReportStatus.
func CreateItem(ctx context.Context, db *sql.DB, reportedBy, categoryID int64, title, description, status string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (reported_by, category_id, title, description, status)
		 VALUES (?, ?, ?, ?, ?)`,
		reportedBy, categoryID, title, description, status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	var description, photoMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, reported_by, category_id, title, description, status, photo_mime, date_reported
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.ReportedBy, &item.CategoryID, &item.Title, &description,
		&item.Status, &photoMime, &item.DateReported)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Description = description.String
	item.PhotoMime = photoMime.String
	return item, nil
}

// ListItems returns items joined with reporter and category names.
// By default only lost and found items are listed; resolved items are
// included on request, claim_pending items never (they are mid-claim).
func ListItems(ctx context.Context, db *sql.DB, filter ItemFilter) ([]model.Item, error) {
	allowed := []string{model.ItemStatusLost, model.ItemStatusFound}
	if filter.IncludeResolved {
		allowed = append(allowed, model.ItemStatusResolved)
	}

	query := `SELECT i.id, i.reported_by, i.category_id, i.title, i.description, i.status,
	                 i.photo_mime, i.date_reported,
	                 u.name AS reporter_name, c.name AS category_name
	          FROM items i
	          JOIN users u ON i.reported_by = u.id
	          JOIN categories c ON i.category_id = c.id
	          WHERE i.status IN (?` + repeatPlaceholder(len(allowed)-1) + `)`

	args := make([]any, 0, len(allowed)+3)
	for _, s := range allowed {
		args = append(args, s)
	}

	statusOK := false
	for _, s := range allowed {
		if filter.Status == s {
			statusOK = true
		}
	}
	if statusOK {
		query += ` AND i.status = ?`
		args = append(args, filter.Status)
	}

	if filter.Search != "" {
		query += ` AND (i.title LIKE ? OR i.description LIKE ?)`
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}

	query += ` ORDER BY i.date_reported DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var description, photoMime sql.NullString
		if err := rows.Scan(&item.ID, &item.ReportedBy, &item.CategoryID, &item.Title, &description,
			&item.Status, &photoMime, &item.DateReported, &item.ReporterName, &item.CategoryName); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Description = description.String
		item.PhotoMime = photoMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// SetItemPhoto stores an item's photo data.
func SetItemPhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET photo = ?, photo_mime = ? WHERE id = ?`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item photo: %w", err)
	}
	return nil
}

// GetItemPhoto returns an item's photo data and MIME type.
func GetItemPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM items WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item photo: %w", err)
	}
	return photo, mime.String, nil
}

// repeatPlaceholder returns n copies of ", ?" for IN clauses.
func repeatPlaceholder(n int) string {
	return strings.Repeat(", ?", n)
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/back2u/internal/model"
)

// Category errors returned to handlers.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already exists")
)

// CreateCategory creates a new category.
func CreateCategory(ctx context.Context, db *sql.DB, name string) (*model.Category, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (name) VALUES (?)`, name,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}

	return GetCategory(ctx, db, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, db *sql.DB, id int64) (*model.Category, error) {
	c := &model.Category{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func ListCategories(ctx context.Context, db *sql.DB) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name FROM categories ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory renames a category.
func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ?`, name, id,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrCategoryExists
		}
		return fmt.Errorf("updating category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory deletes a category together with its items and the claims on
// those items, in a single transaction. Claims go first, then items, then the
// category itself. Returns ErrCategoryNotFound if the category does not exist,
// rolling back any dependent deletes.
func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM claims WHERE item_id IN (SELECT id FROM items WHERE category_id = ?)`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting claims: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM items WHERE category_id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting items: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing category delete: %w", err)
	}
	return nil
}

// SeedCategories inserts the default categories if they are missing.
func SeedCategories(ctx context.Context, db *sql.DB) error {
	defaults := []string{"Electronics", "Clothing", "Books", "Accessories", "Other"}
	for _, name := range defaults {
		if _, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name,
		); err != nil {
			return fmt.Errorf("seeding category %q: %w", name, err)
		}
	}
	return nil
}

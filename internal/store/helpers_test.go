package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/back2u/internal/model"
)

// Shared seed helpers for the store tests.

func seedUser(t *testing.T, db *sql.DB, name, email string) *model.User {
	t.Helper()
	user, err := CreateUser(context.Background(), db, name, email, model.RoleStudent, "hash")
	if err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return user
}

func seedCategory(t *testing.T, db *sql.DB, name string) *model.Category {
	t.Helper()
	category, err := CreateCategory(context.Background(), db, name)
	if err != nil {
		t.Fatalf("seeding category %s: %v", name, err)
	}
	return category
}

func seedItem(t *testing.T, db *sql.DB, reportedBy, categoryID int64, title, status string) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), db, reportedBy, categoryID, title, "", status)
	if err != nil {
		t.Fatalf("seeding item %s: %v", title, err)
	}
	return item
}

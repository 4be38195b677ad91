package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Row snapshots used during re-sequencing. Timestamps are carried as raw
// strings so values round-trip byte-exact through the rebuild.
type userRow struct {
	id           int64
	name         string
	email        string
	role         string
	passwordHash string
	createdAt    string
}

type categoryRow struct {
	id   int64
	name string
}

type itemRow struct {
	id           int64
	reportedBy   int64
	categoryID   int64
	title        string
	description  sql.NullString
	status       string
	photo        []byte
	photoMime    sql.NullString
	dateReported string
}

type claimRow struct {
	id         int64
	itemID     int64
	claimantID int64
	status     string
	details    sql.NullString
	claimedAt  string
}

type notificationRow struct {
	id        int64
	userID    int64
	message   string
	ntype     string
	status    string
	createdAt string
}

// Resequence rebuilds the five domain tables with compact primary keys
// starting at 1, preserving per-table insertion order and translating all
// foreign keys through old-ID to new-ID maps. Children whose parent vanished
// are dropped instead of re-inserted. The whole rebuild is one transaction on
// a pinned connection: SQLite's foreign_keys pragma is connection-scoped and
// a no-op inside a transaction, so it is toggled on the same connection
// before the transaction starts.
//
// Callers must not run Resequence concurrently with other writes; it is only
// invoked synchronously after a cascade-delete commits.
func Resequence(ctx context.Context, db *sql.DB) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys=OFF"); err != nil {
		return fmt.Errorf("disabling foreign keys: %w", err)
	}
	defer conn.ExecContext(ctx, "PRAGMA foreign_keys=ON")

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning maintenance transaction: %w", err)
	}
	defer tx.Rollback()

	users, err := loadUserRows(ctx, tx)
	if err != nil {
		return err
	}
	categories, err := loadCategoryRows(ctx, tx)
	if err != nil {
		return err
	}
	items, err := loadItemRows(ctx, tx)
	if err != nil {
		return err
	}
	claims, err := loadClaimRows(ctx, tx)
	if err != nil {
		return err
	}
	notifications, err := loadNotificationRows(ctx, tx)
	if err != nil {
		return err
	}

	// Deletion order does not matter with foreign keys disabled, but child
	// tables first keeps the statement list readable.
	for _, table := range []string{"claims", "notifications", "items", "categories", "users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	// Re-insert parents first, recording fresh IDs. Plain INTEGER PRIMARY
	// KEY rowids restart at 1 once the table is empty.
	userMap := make(map[int64]int64, len(users))
	for _, u := range users {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO users (name, email, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
			u.name, u.email, u.role, u.passwordHash, u.createdAt,
		)
		if err != nil {
			return fmt.Errorf("re-inserting user %d: %w", u.id, err)
		}
		newID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting new user id: %w", err)
		}
		userMap[u.id] = newID
	}

	categoryMap := make(map[int64]int64, len(categories))
	for _, c := range categories {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name) VALUES (?)`, c.name,
		)
		if err != nil {
			return fmt.Errorf("re-inserting category %d: %w", c.id, err)
		}
		newID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting new category id: %w", err)
		}
		categoryMap[c.id] = newID
	}

	itemMap := make(map[int64]int64, len(items))
	for _, i := range items {
		reporter, ok := userMap[i.reportedBy]
		if !ok {
			continue // dangling reporter, drop the item
		}
		category, ok := categoryMap[i.categoryID]
		if !ok {
			continue // dangling category, drop the item
		}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO items (reported_by, category_id, title, description, status, photo, photo_mime, date_reported)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			reporter, category, i.title, i.description, i.status, i.photo, i.photoMime, i.dateReported,
		)
		if err != nil {
			return fmt.Errorf("re-inserting item %d: %w", i.id, err)
		}
		newID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting new item id: %w", err)
		}
		itemMap[i.id] = newID
	}

	for _, c := range claims {
		item, ok := itemMap[c.itemID]
		if !ok {
			continue
		}
		claimant, ok := userMap[c.claimantID]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO claims (item_id, claimant_id, status, verification_details, claimed_at)
			 VALUES (?, ?, ?, ?, ?)`,
			item, claimant, c.status, c.details, c.claimedAt,
		); err != nil {
			return fmt.Errorf("re-inserting claim %d: %w", c.id, err)
		}
	}

	for _, n := range notifications {
		user, ok := userMap[n.userID]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notifications (user_id, message, type, status, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			user, n.message, n.ntype, n.status, n.createdAt,
		); err != nil {
			return fmt.Errorf("re-inserting notification %d: %w", n.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing maintenance: %w", err)
	}
	return nil
}

func loadUserRows(ctx context.Context, tx *sql.Tx) ([]userRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, email, role, password_hash, created_at FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	defer rows.Close()

	var users []userRow
	for rows.Next() {
		var u userRow
		if err := rows.Scan(&u.id, &u.name, &u.email, &u.role, &u.passwordHash, &u.createdAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func loadCategoryRows(ctx context.Context, tx *sql.Tx) ([]categoryRow, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	defer rows.Close()

	var categories []categoryRow
	for rows.Next() {
		var c categoryRow
		if err := rows.Scan(&c.id, &c.name); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func loadItemRows(ctx context.Context, tx *sql.Tx) ([]itemRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, reported_by, category_id, title, description, status, photo, photo_mime, date_reported
		 FROM items ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	defer rows.Close()

	var items []itemRow
	for rows.Next() {
		var i itemRow
		if err := rows.Scan(&i.id, &i.reportedBy, &i.categoryID, &i.title, &i.description,
			&i.status, &i.photo, &i.photoMime, &i.dateReported); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func loadClaimRows(ctx context.Context, tx *sql.Tx) ([]claimRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, item_id, claimant_id, status, verification_details, claimed_at
		 FROM claims ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading claims: %w", err)
	}
	defer rows.Close()

	var claims []claimRow
	for rows.Next() {
		var c claimRow
		if err := rows.Scan(&c.id, &c.itemID, &c.claimantID, &c.status, &c.details, &c.claimedAt); err != nil {
			return nil, fmt.Errorf("scanning claim row: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func loadNotificationRows(ctx context.Context, tx *sql.Tx) ([]notificationRow, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, user_id, message, type, status, created_at FROM notifications ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notificationRow
	for rows.Next() {
		var n notificationRow
		if err := rows.Scan(&n.id, &n.userID, &n.message, &n.ntype, &n.status, &n.createdAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/back2u/internal/model"
)

// ErrNotificationNotFound is returned when a notification does not exist or
// belongs to another user.
var ErrNotificationNotFound = errors.New("notification not found")

// CreateNotification appends a notification log entry for a user.
func CreateNotification(ctx context.Context, db *sql.DB, userID int64, message, notificationType, status string) (*model.Notification, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, message, type, status) VALUES (?, ?, ?, ?)`,
		userID, message, notificationType, status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting notification id: %w", err)
	}

	return GetNotification(ctx, db, id)
}

// GetNotification returns a notification by ID.
func GetNotification(ctx context.Context, db *sql.DB, id int64) (*model.Notification, error) {
	n := &model.Notification{}
	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, message, type, status, created_at
		 FROM notifications WHERE id = ?`, id,
	).Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.Status, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return n, nil
}

// ListNotificationsForUser returns a user's notifications, newest first.
func ListNotificationsForUser(ctx context.Context, db *sql.DB, userID int64) ([]model.Notification, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, message, type, status, created_at
		 FROM notifications WHERE user_id = ? ORDER BY id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.Status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks a user's notification as read. The user ID is
// part of the predicate so users cannot touch other users' notifications.
func MarkNotificationRead(ctx context.Context, db *sql.DB, id, userID int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET status = ? WHERE id = ? AND user_id = ?`,
		model.NotificationStatusRead, id, userID,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

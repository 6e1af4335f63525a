package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/alumni-connect/internal/model"
)

// NotificationRepo stores per-user notifications.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create inserts n and fills ID and CreatedAt.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (recipient_id, type, title, message, related_id) VALUES (?,?,?,?,?)",
		n.RecipientID, n.Type, n.Title, n.Message, n.RelatedID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT created_at FROM notifications WHERE id = ?", n.ID).Scan(&n.CreatedAt)
}

// ListByRecipient returns the user's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID uint64) ([]*model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipient_id, type, title, message, related_id, is_read, created_at
		 FROM notifications WHERE recipient_id = ?
		 ORDER BY created_at DESC, id DESC`, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message, &n.RelatedID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead sets the read flag on one of the recipient's notifications.
// Marking an already-read notification succeeds.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, recipientID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?", id, recipientID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification of the recipient and returns
// how many changed.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0", recipientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package repository

import (
	"context"
	"database/sql"

	"github.com/gvriil/habit-tracker/internal/model"
)

// NotificationRepo appends to the 'notification_logs' table. Every
// reminder or digest delivery attempt is recorded with its outcome so
// operators can audit what was sent without trawling process logs.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo constructs a NotificationRepo with the given DB handle.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Log inserts one delivery attempt record.
func (r *NotificationRepo) Log(ctx context.Context, n *model.NotificationLog) error {
	const q = `INSERT INTO notification_logs (user_id, habit_id, message, is_delivered)
	           VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, n.UserID, n.HabitID, n.Message, n.IsDelivered)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByUser returns a user's delivery log, newest first, paginated.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]*model.NotificationLog, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	const q = `SELECT id, user_id, habit_id, message, is_delivered, sent_at
	           FROM notification_logs WHERE user_id = ?
	           ORDER BY sent_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.NotificationLog
	for rows.Next() {
		n := new(model.NotificationLog)
		var habitID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.UserID, &habitID, &n.Message, &n.IsDelivered, &n.SentAt); err != nil {
			return nil, err
		}
		if habitID.Valid {
			v := uint64(habitID.Int64)
			n.HabitID = &v
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

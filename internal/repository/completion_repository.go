package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gvriil/habit-tracker/internal/model"
)

// ErrCompletionNotFound is returned when a completion lookup fails.
var ErrCompletionNotFound = errors.New("completion not found")

// CompletionRepo provides access to the 'habit_completions' table.
// Completions are insert-only; the only mutation is deletion by owner.
type CompletionRepo struct {
	db *sql.DB
}

// NewCompletionRepo constructs a CompletionRepo with the given DB handle.
func NewCompletionRepo(db *sql.DB) *CompletionRepo {
	return &CompletionRepo{db: db}
}

const completionColumns = "id, habit_id, user_id, completed_at, is_successful, notes"

// Create inserts a completion record. A zero CompletedAt defaults to the
// current time.
func (r *CompletionRepo) Create(ctx context.Context, c *model.HabitCompletion) error {
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now().UTC()
	}
	const q = `INSERT INTO habit_completions (habit_id, user_id, completed_at, is_successful, notes)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.HabitID, c.UserID, c.CompletedAt, c.IsSuccessful, c.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID retrieves a single completion record.
func (r *CompletionRepo) GetByID(ctx context.Context, id uint64) (*model.HabitCompletion, error) {
	const q = "SELECT " + completionColumns + " FROM habit_completions WHERE id = ?"
	c := new(model.HabitCompletion)
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&c.ID, &c.HabitID, &c.UserID, &c.CompletedAt, &c.IsSuccessful, &c.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompletionNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByHabit returns completions of one habit, newest first, paginated.
func (r *CompletionRepo) ListByHabit(ctx context.Context, habitID uint64, page, pageSize int) ([]*model.HabitCompletion, int64, error) {
	return r.listWhere(ctx, "habit_id = ?", []any{habitID}, page, pageSize)
}

// ListByUser returns every completion made by a user, newest first.
func (r *CompletionRepo) ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]*model.HabitCompletion, int64, error) {
	return r.listWhere(ctx, "user_id = ?", []any{userID}, page, pageSize)
}

// DeleteByIDAndUser removes a completion owned by the given user.
// Returns ErrCompletionNotFound when no row matched.
func (r *CompletionRepo) DeleteByIDAndUser(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM habit_completions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCompletionNotFound
	}
	return nil
}

// HabitIDsCompletedSince returns the set of habit ids that have at least
// one completion at or after the given instant. The due-soon selector
// uses it to exclude habits already completed today.
func (r *CompletionRepo) HabitIDsCompletedSince(ctx context.Context, since time.Time) (map[uint64]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT habit_id FROM habit_completions WHERE completed_at >= ?", since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]bool)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// CountByHabit returns the lifetime completion count of a habit. Reminder
// messages include it as progress feedback.
func (r *CompletionRepo) CountByHabit(ctx context.Context, habitID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM habit_completions WHERE habit_id = ?", habitID).Scan(&n)
	return n, err
}

// CountDistinctHabitsCompletedBetween returns how many distinct habits of
// a user were completed in [from, to). Digest composition uses it as the
// numerator of the completion percentage.
func (r *CompletionRepo) CountDistinctHabitsCompletedBetween(ctx context.Context, userID uint64, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT hc.habit_id)
		 FROM habit_completions hc
		 JOIN habits h ON h.id = hc.habit_id
		 WHERE h.user_id = ? AND hc.completed_at >= ? AND hc.completed_at < ?`,
		userID, from, to).Scan(&n)
	return n, err
}

func (r *CompletionRepo) listWhere(ctx context.Context, cond string, args []any, page, pageSize int) ([]*model.HabitCompletion, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM habit_completions WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	q := "SELECT " + completionColumns + " FROM habit_completions WHERE " + cond +
		" ORDER BY completed_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.HabitCompletion
	for rows.Next() {
		c := new(model.HabitCompletion)
		if err := rows.Scan(&c.ID, &c.HabitID, &c.UserID, &c.CompletedAt, &c.IsSuccessful, &c.Notes); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

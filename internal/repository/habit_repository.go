package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gvriil/habit-tracker/internal/model"
)

// ErrHabitNotFound is returned when a habit lookup fails.
var ErrHabitNotFound = errors.New("habit not found")

// habitColumns is the canonical select list shared by every habit query.
const habitColumns = "id, user_id, name, description, place, action, periodicity, time_to_complete, estimated_duration, is_pleasant, is_public, is_active, related_habit_id, reward, created_at, updated_at"

// HabitRepo provides methods to create, query and mutate habits.
type HabitRepo struct {
	db *sql.DB
}

// NewHabitRepo constructs a HabitRepo with the given DB handle.
func NewHabitRepo(db *sql.DB) *HabitRepo {
	return &HabitRepo{db: db}
}

// HabitFilter defines optional filters and pagination for habit listings.
// Query matches name, description, place and action case-insensitively.
type HabitFilter struct {
	IsPleasant  *bool
	Periodicity *int
	Query       string
	Page        int
	PageSize    int
}

func (f HabitFilter) limitOffset() (int, int) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 || size > 100 {
		size = 20
	}
	return size, (page - 1) * size
}

func scanHabit(row interface{ Scan(...any) error }) (*model.Habit, error) {
	h := new(model.Habit)
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Place, &h.Action,
		&h.Periodicity, &h.TimeToComplete, &h.EstimatedDuration,
		&h.IsPleasant, &h.IsPublic, &h.IsActive,
		&h.RelatedHabitID, &h.Reward, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Create inserts a new habit. UserID, Name, Periodicity, TimeToComplete
// and EstimatedDuration must be set. After the insert the record is read
// back so system-managed fields (flags, timestamps) are populated.
func (r *HabitRepo) Create(ctx context.Context, h *model.Habit) error {
	const qInsert = `INSERT INTO habits
	    (user_id, name, description, place, action, periodicity, time_to_complete, estimated_duration, is_pleasant, is_public, related_habit_id, reward)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		h.UserID, h.Name, h.Description, h.Place, h.Action,
		h.Periodicity, h.TimeToComplete, h.EstimatedDuration,
		h.IsPleasant, h.IsPublic, h.RelatedHabitID, h.Reward)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)

	got, err := r.GetByID(ctx, h.ID)
	if err != nil {
		return err
	}
	*h = *got
	return nil
}

// GetByID retrieves a habit by its ID regardless of owner. It returns
// ErrHabitNotFound when no row is found.
func (r *HabitRepo) GetByID(ctx context.Context, id uint64) (*model.Habit, error) {
	const q = "SELECT " + habitColumns + " FROM habits WHERE id = ?"
	h, err := scanHabit(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	return h, nil
}

// GetByIDAndOwner retrieves a habit only if it belongs to the given
// owner. Used to enforce resource ownership on write paths.
func (r *HabitRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Habit, error) {
	const q = "SELECT " + habitColumns + " FROM habits WHERE id = ? AND user_id = ?"
	h, err := scanHabit(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	return h, nil
}

// ListVisible returns the habits visible to a user (their own plus public
// ones) with filters and pagination, along with the total row count.
func (r *HabitRepo) ListVisible(ctx context.Context, userID uint64, f HabitFilter) ([]*model.Habit, int64, error) {
	where := []string{"(user_id = ? OR is_public = 1)"}
	args := []any{userID}
	where, args = applyHabitFilter(where, args, f)
	return r.listWhere(ctx, where, args, f)
}

// ListByOwner returns only the user's own habits.
func (r *HabitRepo) ListByOwner(ctx context.Context, userID uint64, f HabitFilter) ([]*model.Habit, int64, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	where, args = applyHabitFilter(where, args, f)
	return r.listWhere(ctx, where, args, f)
}

// ListPublic returns public habits for the shared browse endpoint.
func (r *HabitRepo) ListPublic(ctx context.Context, f HabitFilter) ([]*model.Habit, int64, error) {
	where := []string{"is_public = 1"}
	args := []any{}
	where, args = applyHabitFilter(where, args, f)
	return r.listWhere(ctx, where, args, f)
}

// ListActive returns every active habit. The due-soon selector and the
// weekly fan-out iterate over this set.
func (r *HabitRepo) ListActive(ctx context.Context) ([]*model.Habit, error) {
	const q = "SELECT " + habitColumns + " FROM habits WHERE is_active = 1 ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CountByOwner returns how many habits a user has. Digest composition
// uses this as the denominator of the completion percentage.
func (r *HabitRepo) CountByOwner(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM habits WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

// UpdateByIDAndOwner rewrites all mutable fields of a habit owned by the
// given user. Returns ErrHabitNotFound when no row matched.
func (r *HabitRepo) UpdateByIDAndOwner(ctx context.Context, h *model.Habit) error {
	const q = `UPDATE habits
	    SET name = ?, description = ?, place = ?, action = ?, periodicity = ?,
	        time_to_complete = ?, estimated_duration = ?, is_pleasant = ?,
	        is_public = ?, is_active = ?, related_habit_id = ?, reward = ?,
	        updated_at = CURRENT_TIMESTAMP
	    WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		h.Name, h.Description, h.Place, h.Action, h.Periodicity,
		h.TimeToComplete, h.EstimatedDuration, h.IsPleasant,
		h.IsPublic, h.IsActive, h.RelatedHabitID, h.Reward,
		h.ID, h.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHabitNotFound
	}
	return nil
}

// DeleteByIDAndOwner hard-deletes a habit in one transaction: habits that
// reference it as their related habit are unlinked (not deleted), its
// completions are removed, then the habit row itself.
func (r *HabitRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE habits SET related_habit_id = NULL WHERE related_habit_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM habit_completions WHERE habit_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM habits WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHabitNotFound
	}
	return tx.Commit()
}

func applyHabitFilter(where []string, args []any, f HabitFilter) ([]string, []any) {
	if f.IsPleasant != nil {
		where = append(where, "is_pleasant = ?")
		args = append(args, *f.IsPleasant)
	}
	if f.Periodicity != nil {
		where = append(where, "periodicity = ?")
		args = append(args, *f.Periodicity)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		where = append(where,
			"(LOWER(name) LIKE ? OR LOWER(COALESCE(description,'')) LIKE ? OR LOWER(COALESCE(place,'')) LIKE ? OR LOWER(COALESCE(action,'')) LIKE ?)")
		args = append(args, like, like, like, like)
	}
	return where, args
}

func (r *HabitRepo) listWhere(ctx context.Context, where []string, args []any, f HabitFilter) ([]*model.Habit, int64, error) {
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM habits WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := f.limitOffset()
	q := "SELECT " + habitColumns + " FROM habits WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	return out, total, rows.Err()
}

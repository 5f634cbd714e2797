package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func newProfileRepoMock(t *testing.T) (*ProfileRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProfileRepo(db), mock
}

func TestProfileRepo_Link_NewChat(t *testing.T) {
	repo, mock := newProfileRepoMock(t)

	mock.ExpectQuery("SELECT user_id FROM telegram_profiles").
		WithArgs("chat-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectExec("UPDATE telegram_profiles SET chat_id").
		WithArgs("chat-1", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO telegram_profiles").
		WithArgs(uint64(7), "chat-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.Link(context.Background(), 7, "chat-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Link_Relink(t *testing.T) {
	repo, mock := newProfileRepoMock(t)

	// The new chat is unclaimed and the user already has a row, so the
	// update moves them without an insert.
	mock.ExpectQuery("SELECT user_id FROM telegram_profiles").
		WithArgs("chat-2").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectExec("UPDATE telegram_profiles SET chat_id").
		WithArgs("chat-2", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Link(context.Background(), 7, "chat-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Link_ChatBoundToOtherUser(t *testing.T) {
	repo, mock := newProfileRepoMock(t)

	// chat-1 belongs to user 1; user 2 linking it must get ErrConflict
	// and no write may touch user 1's row.
	mock.ExpectQuery("SELECT user_id FROM telegram_profiles").
		WithArgs("chat-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))

	assert.ErrorIs(t, repo.Link(context.Background(), 2, "chat-1"), ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Link_InsertRace(t *testing.T) {
	repo, mock := newProfileRepoMock(t)

	// Another user claims the chat between our select and insert; the
	// duplicate-key error still surfaces as ErrConflict.
	mock.ExpectQuery("SELECT user_id FROM telegram_profiles").
		WithArgs("chat-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectExec("UPDATE telegram_profiles SET chat_id").
		WithArgs("chat-1", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO telegram_profiles").
		WithArgs(uint64(7), "chat-1").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'chat-1' for key 'chat_id'"))

	assert.ErrorIs(t, repo.Link(context.Background(), 7, "chat-1"), ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Link_AlreadyLinkedSameUser(t *testing.T) {
	repo, mock := newProfileRepoMock(t)

	mock.ExpectQuery("SELECT user_id FROM telegram_profiles").
		WithArgs("chat-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))

	assert.NoError(t, repo.Link(context.Background(), 7, "chat-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

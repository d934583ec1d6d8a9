package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kanban-board.com/kanban-board/internal/auth"
	apperrors "kanban-board.com/kanban-board/internal/errors"
	"kanban-board.com/kanban-board/internal/keystore"
	"kanban-board.com/kanban-board/internal/ordering"
	repository "kanban-board.com/kanban-board/internal/repositories"
)

var errConnReset = errors.New("connection reset by peer")

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func newMockTaskService(db *gorm.DB) *TaskService {
	return NewTaskService(
		db,
		repository.NewBoardRepository(db),
		repository.NewColumnRepository(db),
		repository.NewTaskRepository(db),
	)
}

// expectMoveSetup queues the reads MoveTask issues before it writes: the
// ownership lookups and the locked sibling set of column 10.
func expectMoveSetup(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `columns` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "title", "position"}).AddRow(10, 1, "To Do", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `boards` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).AddRow(1, 7, "Roadmap"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `tasks` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "column_id", "title", "position"}).AddRow(104, 10, "D", 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `columns` WHERE id = ? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id`,`position` FROM `tasks` WHERE column_id = ? ORDER BY position asc FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "position"}).
			AddRow(101, 0).AddRow(102, 1).AddRow(103, 2).AddRow(104, 3))
}

func TestMoveTask_FailureMidShiftRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	owner := Identity{UserID: 7, Username: "alice"}

	expectMoveSetup(mock)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `tasks` SET `position`=? WHERE id = ?")).
		WithArgs(ordering.Sentinel, 104).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `tasks` SET `position`=-(position + ?) WHERE column_id = ? AND position BETWEEN ? AND ?")).
		WithArgs(2, 10, 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `tasks` SET `position`=? - position WHERE column_id = ? AND position < ?")).
		WillReturnError(errConnReset)
	mock.ExpectRollback()

	_, err := newMockTaskService(db).MoveTask(context.Background(), owner, 10, 104, 10, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errConnReset)

	var stageErr *ordering.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, ordering.StageParked, stageErr.Stage)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveTask_DuplicateKeyIsPositionConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	owner := Identity{UserID: 7, Username: "alice"}

	expectMoveSetup(mock)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `tasks` SET `position`=? WHERE id = ?")).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	_, err := newMockTaskService(db).MoveTask(context.Background(), owner, 10, 104, 10, 1)
	assert.ErrorIs(t, err, apperrors.ErrPositionConflict)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, 500, apperrors.StatusCode(err))

	var stageErr *ordering.StageError
	require.True(t, errors.As(err, &stageErr), "stage must survive the conflict mapping")
	assert.Equal(t, ordering.StageStaged, stageErr.Stage)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveTask_ForbiddenTouchesNothing(t *testing.T) {
	db, mock := setupMockDB(t)
	stranger := Identity{UserID: 8, Username: "mallory"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `columns` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "title", "position"}).AddRow(10, 1, "To Do", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `boards` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).AddRow(1, 7, "Roadmap"))
	mock.ExpectRollback()

	_, err := newMockTaskService(db).MoveTask(context.Background(), stranger, 10, 104, 10, 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveTask_FailedCommitReportsCommittedStage(t *testing.T) {
	db, mock := setupMockDB(t)
	owner := Identity{UserID: 7, Username: "alice"}

	expectMoveSetup(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `tasks` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "column_id", "title", "position"}).AddRow(104, 10, "D", 3))
	mock.ExpectCommit().WillReturnError(errConnReset)

	_, err := newMockTaskService(db).MoveTask(context.Background(), owner, 10, 104, 10, 3)
	assert.ErrorIs(t, err, errConnReset)

	var stageErr *ordering.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, ordering.StageCommitted, stageErr.Stage)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// expectColumnLocks queues the locked read of board 1 and its two columns.
func expectColumnLocks(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `boards` WHERE id = ? FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id`,`position` FROM `columns` WHERE board_id = ? ORDER BY position asc FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "position"}).AddRow(10, 0).AddRow(11, 1))
}

func TestDeleteColumn_LocksColumnsBeforeTasks(t *testing.T) {
	db, mock := setupMockDB(t)
	owner := Identity{UserID: 7, Username: "alice"}
	svc := NewColumnService(db, repository.NewBoardRepository(db), repository.NewColumnRepository(db), repository.NewTaskRepository(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `boards` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).AddRow(1, 7, "Roadmap"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `columns` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "title", "position"}).AddRow(10, 1, "To Do", 0))
	expectColumnLocks(mock)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `tasks` WHERE column_id = ?")).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 2))
	expectColumnLocks(mock)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `columns` WHERE `columns`.`id` = ?")).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `columns` SET `position`=-(position + ?) WHERE board_id = ? AND position BETWEEN ? AND ?")).
		WithArgs(2, 1, 1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `columns` SET `position`=? - position WHERE board_id = ? AND position < ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteColumn(context.Background(), owner, 1, 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBoard_LocksBoardBeforeChildren(t *testing.T) {
	db, mock := setupMockDB(t)
	owner := Identity{UserID: 7, Username: "alice"}
	svc := NewBoardService(db, repository.NewBoardRepository(db), repository.NewColumnRepository(db), repository.NewTaskRepository(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `boards` WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).AddRow(1, 7, "Roadmap"))
	expectColumnLocks(mock)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `tasks` WHERE column_id IN")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `columns` WHERE board_id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `boards` WHERE `boards`.`id` = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteBoard(context.Background(), owner, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_LostRaceOnEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), auth.NewTokenIssuer(testSecret, time.Hour), keystore.NewMemoryStore(), 16, time.Minute)

	countUsers := func(where string, n int) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE " + where)).
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(n))
	}
	countUsers("username = ?", 0)
	countUsers("email = ?", 0)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()
	countUsers("username = ?", 0)

	_, err := svc.Register(context.Background(), "carol", "alice@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

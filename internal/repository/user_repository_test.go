package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Delete must remove the user's tasks, detach their managed users, and
// remove the user, all inside one transaction.
func TestGormUserRepository_DeleteCascades(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tasks` SET `deleted_at`").
		WithArgs(sqlmock.AnyArg(), 7, 7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE `users` SET `assigned_admin_id`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `users` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewUserRepository(db)
	require.NoError(t, repo.Delete(7))
	require.NoError(t, mock.ExpectationsWereMet())
}

// A failure mid-cascade must roll the transaction back.
func TestGormUserRepository_DeleteRollsBackOnError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tasks` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE `users` SET `assigned_admin_id`").
		WillReturnError(errBoom{})
	mock.ExpectRollback()

	repo := NewUserRepository(db)
	require.Error(t, repo.Delete(7))
	require.NoError(t, mock.ExpectationsWereMet())
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

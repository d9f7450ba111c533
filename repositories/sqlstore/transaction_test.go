package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/employee-management/models"
	"github.com/upb/employee-management/repositories"
)

func TestTransactionManager_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())
	employees := NewEmployeeRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM employees WHERE id").
		WithArgs("EMP001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))
	mock.ExpectExec("INSERT INTO employees").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := tm.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		op, err := employees.Upsert(ctx, &models.Employee{ID: "EMP001", Name: "John Doe", Department: "IT"})
		require.NoError(t, err)
		assert.Equal(t, models.OperationInserted, op)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, nil)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tm.InTransaction(context.Background(), func(ctx context.Context, tx repositories.Transaction) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_BeginFailure(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, nil)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := tm.Begin(context.Background())
	assert.ErrorContains(t, err, "begin transaction")
}

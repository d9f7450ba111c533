package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/upb/employee-management/repositories"
)

type txKey struct{}

// MockTransactionManager is a mock implementation of TransactionManager
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// MockTransaction is a mock implementation of Transaction
type MockTransaction struct {
	mock.Mock
	committed  bool
	rolledback bool
}

func (m *MockTransaction) Commit() error {
	args := m.Called()
	m.committed = true
	return args.Error(0)
}

func (m *MockTransaction) Rollback() error {
	args := m.Called()
	m.rolledback = true
	return args.Error(0)
}

func (m *MockTransaction) Context() context.Context {
	args := m.Called()
	return args.Get(0).(context.Context)
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, txKey{}, "tx")

	t.Run("commits and passes the transaction context", func(t *testing.T) {
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Context").Return(txCtx)
		mockTx.On("Commit").Return(nil)

		err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
			assert.Equal(t, "tx", ctx.Value(txKey{}))
			return nil
		})

		require.NoError(t, err)
		assert.True(t, mockTx.committed)
		assert.False(t, mockTx.rolledback)
		mockTxMgr.AssertExpectations(t)
		mockTx.AssertExpectations(t)
	})

	t.Run("error in function rolls back", func(t *testing.T) {
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		expectedErr := errors.New("operation failed")
		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Context").Return(txCtx)
		mockTx.On("Rollback").Return(nil)

		err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
			return expectedErr
		})

		assert.Equal(t, expectedErr, err)
		assert.False(t, mockTx.committed)
		assert.True(t, mockTx.rolledback)
	})

	t.Run("begin error", func(t *testing.T) {
		mockTxMgr := new(MockTransactionManager)
		mockTxMgr.On("Begin", ctx).Return(nil, errors.New("pool exhausted"))

		called := false
		err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
			called = true
			return nil
		})

		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.False(t, called)
	})

	t.Run("commit error", func(t *testing.T) {
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Context").Return(txCtx)
		mockTx.On("Commit").Return(errors.New("commit failed"))

		err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
			return nil
		})

		assert.Contains(t, err.Error(), "failed to commit transaction")
	})

	t.Run("rollback error", func(t *testing.T) {
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Context").Return(txCtx)
		mockTx.On("Rollback").Return(errors.New("rollback failed"))

		err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
			return errors.New("operation failed")
		})

		assert.Contains(t, err.Error(), "transaction error")
		assert.Contains(t, err.Error(), "rollback error")
	})

	t.Run("panic rolls back and re-panics", func(t *testing.T) {
		mockTxMgr := new(MockTransactionManager)
		mockTx := new(MockTransaction)
		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Context").Return(txCtx)
		mockTx.On("Rollback").Return(nil)

		assert.Panics(t, func() {
			_ = WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
				panic("boom")
			})
		})
		assert.True(t, mockTx.rolledback)
	})
}

func TestWithTransactionResult(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := new(MockTransactionManager)
	mockTx := new(MockTransaction)
	mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
	mockTx.On("Context").Return(ctx)
	mockTx.On("Commit").Return(nil)

	result, err := WithTransactionResult(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) (string, error) {
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.True(t, mockTx.committed)
}

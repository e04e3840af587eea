package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"quizfaucet/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestClaimAttemptRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXClaimAttemptRepository(db)

	now := time.Now().UTC()
	attempt := &domain.ClaimAttempt{
		ID:          "01HTEST",
		UserAddress: "0x1234567890AbcdEF1234567890aBcdef12345678",
		Score:       85,
		State:       domain.AttemptSettled,
		TxHash:      "0xdeadbeef",
		CreatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO claim_attempts").
		WithArgs(attempt.ID, attempt.UserAddress, attempt.Score, string(attempt.State),
			sql.NullString{String: "0xdeadbeef", Valid: true},
			sql.NullString{},
			now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), attempt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimAttemptRepository_ListByAddress(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSQLXClaimAttemptRepository(db)

	address := "0x1234567890AbcdEF1234567890aBcdef12345678"
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_address", "score", "state", "tx_hash", "reason", "created_at"}).
		AddRow("a2", address, 90, "settled", "0xaa", nil, now).
		AddRow("a1", address, 40, "rejected", nil, "daily claim limit reached", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM claim_attempts WHERE user_address").
		WithArgs(address, 50).
		WillReturnRows(rows)

	attempts, err := repo.ListByAddress(context.Background(), address, 50)
	require.NoError(t, err)

	require.Len(t, attempts, 2)
	assert.Equal(t, domain.AttemptSettled, attempts[0].State)
	assert.Equal(t, "0xaa", attempts[0].TxHash)
	assert.Empty(t, attempts[0].Reason)
	assert.Equal(t, domain.AttemptRejected, attempts[1].State)
	assert.Equal(t, "daily claim limit reached", attempts[1].Reason)
	assert.Empty(t, attempts[1].TxHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimAttemptConverters(t *testing.T) {
	now := time.Now().UTC()
	attempt := &domain.ClaimAttempt{
		ID:          "01HTEST",
		UserAddress: "0xabc",
		Score:       70,
		State:       domain.AttemptFailed,
		Reason:      "timeout: transaction not confirmed",
		CreatedAt:   now,
	}

	m := fromDomainClaimAttempt(attempt)
	assert.False(t, m.TxHash.Valid)
	assert.True(t, m.Reason.Valid)
	assert.Equal(t, "timeout: transaction not confirmed", m.Reason.String)

	back := toDomainClaimAttempt(m)
	assert.Equal(t, attempt, back)

	assert.Nil(t, toDomainClaimAttempt(nil))
	assert.Nil(t, fromDomainClaimAttempt(nil))

	withHash := fromDomainClaimAttempt(&domain.ClaimAttempt{
		ID: "x", State: domain.AttemptSettled, TxHash: "0xbb", CreatedAt: now,
	})
	assert.Equal(t, sql.NullString{String: "0xbb", Valid: true}, withHash.TxHash)
	assert.False(t, withHash.Reason.Valid)
}

package repository

import (
	"context"
	"database/sql"

	"quizfaucet/internal/domain"
	"quizfaucet/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const claimAttemptsSchema = `
CREATE TABLE IF NOT EXISTS claim_attempts (
	id           TEXT PRIMARY KEY,
	user_address TEXT NOT NULL,
	score        INTEGER NOT NULL,
	state        TEXT NOT NULL,
	tx_hash      TEXT,
	reason       TEXT,
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_claim_attempts_address ON claim_attempts (user_address, created_at);
`

// sqlxClaimAttemptRepository implements domain.ClaimAttemptRepository using sqlx.
type sqlxClaimAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXClaimAttemptRepository creates a new instance of sqlxClaimAttemptRepository.
func NewSQLXClaimAttemptRepository(db *sqlx.DB) domain.ClaimAttemptRepository {
	return &sqlxClaimAttemptRepository{db: db}
}

// EnsureSchema creates the audit table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, claimAttemptsSchema)
	return err
}

func toDomainClaimAttempt(m *models.ClaimAttempt) *domain.ClaimAttempt {
	if m == nil {
		return nil
	}
	return &domain.ClaimAttempt{
		ID:          m.ID,
		UserAddress: m.UserAddress,
		Score:       m.Score,
		State:       domain.AttemptState(m.State),
		TxHash:      m.TxHash.String,
		Reason:      m.Reason.String,
		CreatedAt:   m.CreatedAt,
	}
}

func fromDomainClaimAttempt(a *domain.ClaimAttempt) *models.ClaimAttempt {
	if a == nil {
		return nil
	}
	return &models.ClaimAttempt{
		ID:          a.ID,
		UserAddress: a.UserAddress,
		Score:       a.Score,
		State:       string(a.State),
		TxHash:      sql.NullString{String: a.TxHash, Valid: a.TxHash != ""},
		Reason:      sql.NullString{String: a.Reason, Valid: a.Reason != ""},
		CreatedAt:   a.CreatedAt,
	}
}

// Save appends one attempt record. Attempts are never updated: each attempt
// reaches exactly one terminal state and is recorded once.
func (r *sqlxClaimAttemptRepository) Save(ctx context.Context, attempt *domain.ClaimAttempt) error {
	m := fromDomainClaimAttempt(attempt)
	query := `INSERT INTO claim_attempts (id, user_address, score, state, tx_hash, reason, created_at)
		VALUES (:id, :user_address, :score, :state, :tx_hash, :reason, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, m)
	return err
}

// ListByAddress returns the newest attempts for an address.
func (r *sqlxClaimAttemptRepository) ListByAddress(ctx context.Context, address string, limit int) ([]*domain.ClaimAttempt, error) {
	query := `SELECT id, user_address, score, state, tx_hash, reason, created_at
		FROM claim_attempts WHERE user_address = ? ORDER BY created_at DESC LIMIT ?`

	var rows []models.ClaimAttempt
	if err := r.db.SelectContext(ctx, &rows, query, address, limit); err != nil {
		return nil, err
	}

	attempts := make([]*domain.ClaimAttempt, 0, len(rows))
	for i := range rows {
		attempts = append(attempts, toDomainClaimAttempt(&rows[i]))
	}
	return attempts, nil
}

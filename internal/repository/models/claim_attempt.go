package models

import (
	"database/sql"
	"time"
)

// ClaimAttempt is the database row for one settlement attempt.
type ClaimAttempt struct {
	ID          string         `db:"id"`
	UserAddress string         `db:"user_address"`
	Score       int            `db:"score"`
	State       string         `db:"state"`
	TxHash      sql.NullString `db:"tx_hash"`
	Reason      sql.NullString `db:"reason"`
	CreatedAt   time.Time      `db:"created_at"`
}

package dto

import "time"

// ClaimStatusResponse is the payload of GET /api/claim/status/:userAddress.
// LastClaimTime is null when the address has never claimed.
type ClaimStatusResponse struct {
	UserAddress     string     `json:"userAddress"`
	RemainingClaims int        `json:"remainingClaims"`
	LastClaimTime   *time.Time `json:"lastClaimTime"`
	CanClaim        bool       `json:"canClaim"`
}

// InitiateClaimRequest is the payload of POST /api/claim/initiate.
type InitiateClaimRequest struct {
	UserAddress     string `json:"userAddress"`
	ScorePercentage int    `json:"scorePercentage"`
}

// InitiateClaimResponse is returned for a settled claim only; rejections
// and failures surface through the error middleware.
type InitiateClaimResponse struct {
	Success         bool   `json:"success"`
	UserAddress     string `json:"userAddress"`
	ScorePercentage int    `json:"scorePercentage"`
	TransactionHash string `json:"transactionHash"`
}

type ClaimAttemptRecord struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Score     int       `json:"score"`
	TxHash    string    `json:"txHash,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClaimHistoryResponse is the payload of GET /api/claim/history/:userAddress.
type ClaimHistoryResponse struct {
	UserAddress string               `json:"userAddress"`
	Attempts    []ClaimAttemptRecord `json:"attempts"`
}

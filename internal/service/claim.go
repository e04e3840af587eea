package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quizfaucet/internal/cache"
	"quizfaucet/internal/domain"
	"quizfaucet/internal/dto"
	"quizfaucet/internal/logger"
	"quizfaucet/internal/util"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const historyLimit = 50

// ClaimService coordinates reward settlement against the external faucet
// ledger. The service holds no per-identity state and takes no in-process
// locks: concurrent attempts for the same address may both pass the
// advisory eligibility read, and the ledger's own atomic accounting is what
// guarantees at most one of them settles.
type ClaimService interface {
	Status(ctx context.Context, address string) (*dto.ClaimStatusResponse, error)
	InitiateClaim(ctx context.Context, address string, scorePercentage int) (*dto.InitiateClaimResponse, error)
	History(ctx context.Context, address string) (*dto.ClaimHistoryResponse, error)
}

type claimService struct {
	ledger         domain.Ledger
	attempts       domain.ClaimAttemptRepository
	cache          domain.Cache
	statusCacheTTL time.Duration
}

// NewClaimService creates a new claimService. attempts and cacheAdapter may
// be nil; auditing and status caching are then skipped.
func NewClaimService(
	ledger domain.Ledger,
	attempts domain.ClaimAttemptRepository,
	cacheAdapter domain.Cache,
	statusCacheTTL time.Duration,
) ClaimService {
	return &claimService{
		ledger:         ledger,
		attempts:       attempts,
		cache:          cacheAdapter,
		statusCacheTTL: statusCacheTTL,
	}
}

// Status is the advisory eligibility read for the UI. Responses are cached
// briefly; the settlement path never consults this cache. A read failure is
// "unknown", never "eligible".
func (s *claimService) Status(ctx context.Context, address string) (*dto.ClaimStatusResponse, error) {
	if !common.IsHexAddress(address) {
		return nil, domain.NewInvalidInputError("invalid address format")
	}

	cacheKey := cache.GenerateCacheKey("claim", "status", address)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var resp dto.ClaimStatusResponse
			if err := json.Unmarshal([]byte(raw), &resp); err == nil {
				return &resp, nil
			}
			_ = s.cache.Delete(ctx, cacheKey)
		}
	}

	status, err := s.ledger.Status(ctx, address)
	if err != nil {
		return nil, domain.NewLedgerUnreachableError(err)
	}

	resp := statusToDTO(address, status)
	if s.cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(raw), s.statusCacheTTL); err != nil {
				logger.Get().Warn("Claim status cache write failed", zap.Error(err), zap.String("address", address))
			}
		}
	}
	return resp, nil
}

// InitiateClaim runs one settlement attempt through its state machine:
//
//	idle -> eligibility_checked -> submitted -> settled|rejected|failed
//
// The eligibility read always strictly precedes submission. Exactly one
// submission is issued per accepted attempt and ambiguous failures are
// never auto-retried: resubmitting after a lost confirmation risks a double
// reward if the first write actually landed.
func (s *claimService) InitiateClaim(ctx context.Context, address string, scorePercentage int) (*dto.InitiateClaimResponse, error) {
	if !common.IsHexAddress(address) {
		return nil, domain.NewInvalidInputError("invalid address format")
	}
	if scorePercentage < 0 || scorePercentage > 100 {
		return nil, domain.NewInvalidInputError("invalid score percentage")
	}

	attempt := &domain.ClaimAttempt{
		ID:          util.NewULID(),
		UserAddress: address,
		Score:       scorePercentage,
		State:       domain.AttemptIdle,
		CreatedAt:   time.Now().UTC(),
	}
	l := logger.Get().With(zap.String("attempt_id", attempt.ID), zap.String("address", address))

	// Advisory gate: a fresh ledger read, never the status cache. The read
	// narrows the common case but the ledger remains the final authority.
	status, err := s.ledger.Status(ctx, address)
	if err != nil {
		attempt.Conclude(domain.FailedOutcome("eligibility unknown", err))
		s.record(ctx, attempt)
		return nil, domain.NewLedgerUnreachableError(err)
	}
	attempt.State = domain.AttemptEligibilityChecked

	if !status.CanClaim {
		attempt.Conclude(domain.RejectedOutcome("daily claim limit reached"))
		s.record(ctx, attempt)
		l.Info("Claim rejected before submission", zap.Int("remaining_claims", status.RemainingClaims))
		return nil, domain.NewClaimRejectedError("daily claim limit reached")
	}

	attempt.State = domain.AttemptSubmitted
	l.Info("Submitting claim to ledger", zap.Int("score", scorePercentage))

	txHash, err := s.ledger.SubmitClaim(ctx, address, scorePercentage)
	if err != nil {
		outcome := failureOutcome(err)
		attempt.Conclude(outcome)
		s.record(ctx, attempt)
		l.Error("Claim settlement failed", zap.Error(err), zap.String("reason", outcome.Reason))
		return nil, domain.NewSettlementFailedError(outcome.Reason, err)
	}

	attempt.Conclude(domain.SettledOutcome(txHash))
	s.record(ctx, attempt)
	l.Info("Claim settled", zap.String("tx_hash", txHash))

	return &dto.InitiateClaimResponse{
		Success:         true,
		UserAddress:     address,
		ScorePercentage: scorePercentage,
		TransactionHash: txHash,
	}, nil
}

// History returns the audit trail for an address, newest first.
func (s *claimService) History(ctx context.Context, address string) (*dto.ClaimHistoryResponse, error) {
	if !common.IsHexAddress(address) {
		return nil, domain.NewInvalidInputError("invalid address format")
	}
	if s.attempts == nil {
		return &dto.ClaimHistoryResponse{UserAddress: address, Attempts: []dto.ClaimAttemptRecord{}}, nil
	}

	rows, err := s.attempts.ListByAddress(ctx, address, historyLimit)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load claim history", err)
	}

	resp := &dto.ClaimHistoryResponse{
		UserAddress: address,
		Attempts:    make([]dto.ClaimAttemptRecord, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Attempts = append(resp.Attempts, dto.ClaimAttemptRecord{
			ID:        row.ID,
			State:     string(row.State),
			Score:     row.Score,
			TxHash:    row.TxHash,
			Reason:    row.Reason,
			CreatedAt: row.CreatedAt,
		})
	}
	return resp, nil
}

// record persists the attempt's terminal state. Auditing is best-effort:
// a storage failure must never change the settlement result the caller sees.
func (s *claimService) record(ctx context.Context, attempt *domain.ClaimAttempt) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		logger.Get().Warn("Failed to audit claim attempt",
			zap.Error(err),
			zap.String("attempt_id", attempt.ID),
			zap.String("state", string(attempt.State)),
		)
	}
}

// failureOutcome classifies a ledger write error. A deadline expiry means
// the true on-chain outcome is unknown, which callers must not present as
// "reward not granted".
func failureOutcome(err error) domain.SettlementOutcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FailedOutcome("timeout: transaction not confirmed", err)
	}
	return domain.FailedOutcome("transaction failed", err)
}

func statusToDTO(address string, status *domain.ClaimStatus) *dto.ClaimStatusResponse {
	var last *time.Time
	if !status.LastClaimTime.IsZero() {
		t := status.LastClaimTime
		last = &t
	}
	return &dto.ClaimStatusResponse{
		UserAddress:     address,
		RemainingClaims: status.RemainingClaims,
		LastClaimTime:   last,
		CanClaim:        status.CanClaim,
	}
}

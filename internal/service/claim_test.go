package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quizfaucet/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x1234567890AbcdEF1234567890aBcdef12345678"

func newClaimServiceForTest(l domain.Ledger, attempts domain.ClaimAttemptRepository) ClaimService {
	return NewClaimService(l, attempts, nil, 30*time.Second)
}

func TestStatus_InvalidAddress(t *testing.T) {
	svc := newClaimServiceForTest(new(MockLedger), nil)

	_, err := svc.Status(context.Background(), "not-an-address")
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrInvalidInput, domainErr.Code)
}

func TestStatus_ReturnsLedgerSnapshot(t *testing.T) {
	lastClaim := time.Unix(1700000000, 0).UTC()
	ledger := new(MockLedger)
	ledger.On("Status", mock.Anything, testAddress).Return(&domain.ClaimStatus{
		RemainingClaims: 2,
		LastClaimTime:   lastClaim,
		CanClaim:        true,
	}, nil)

	svc := newClaimServiceForTest(ledger, nil)
	resp, err := svc.Status(context.Background(), testAddress)
	require.NoError(t, err)

	assert.Equal(t, testAddress, resp.UserAddress)
	assert.Equal(t, 2, resp.RemainingClaims)
	require.NotNil(t, resp.LastClaimTime)
	assert.Equal(t, lastClaim, *resp.LastClaimTime)
	assert.True(t, resp.CanClaim)
}

func TestStatus_NeverClaimed(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Status", mock.Anything, testAddress).Return(&domain.ClaimStatus{
		RemainingClaims: 3,
		CanClaim:        true,
	}, nil)

	svc := newClaimServiceForTest(ledger, nil)
	resp, err := svc.Status(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Nil(t, resp.LastClaimTime)
}

func TestStatus_LedgerUnreachable(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Status", mock.Anything, testAddress).Return(nil, errors.New("dial tcp: connection refused"))

	svc := newClaimServiceForTest(ledger, nil)
	_, err := svc.Status(context.Background(), testAddress)
	require.Error(t, err)

	// Unreachable means "unknown", surfaced as an error, never as eligible.
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrLedgerUnreachable, domainErr.Code)
}

func TestInitiateClaim_Settles(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Status", mock.Anything, testAddress).Return(&domain.ClaimStatus{RemainingClaims: 3, CanClaim: true}, nil)
	ledger.On("SubmitClaim", mock.Anything, testAddress, 85).Return("0xdeadbeef", nil)

	attempts := new(MockClaimAttemptRepository)
	attempts.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.ClaimAttempt) bool {
		return a.State == domain.AttemptSettled && a.TxHash == "0xdeadbeef" && a.Score == 85
	})).Return(nil)

	svc := newClaimServiceForTest(ledger, attempts)
	resp, err := svc.InitiateClaim(context.Background(), testAddress, 85)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "0xdeadbeef", resp.TransactionHash)
	assert.Equal(t, 85, resp.ScorePercentage)
	ledger.AssertExpectations(t)
	attempts.AssertExpectations(t)
}

func TestInitiateClaim_RejectedWithoutSubmission(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Status", mock.Anything, testAddress).Return(&domain.ClaimStatus{RemainingClaims: 0, CanClaim: false}, nil)

	attempts := new(MockClaimAttemptRepository)
	attempts.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.ClaimAttempt) bool {
		return a.State == domain.AttemptRejected && a.Reason == "daily claim limit reached"
	})).Return(nil)

	svc := newClaimServiceForTest(ledger, attempts)
	_, err := svc.InitiateClaim(context.Background(), testAddress, 85)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrClaimRejected, domainErr.Code)

	// The ledger's submit endpoint must never have been called.
	ledger.AssertNotCalled(t, "SubmitClaim", mock.Anything, mock.Anything, mock.Anything)
	attempts.AssertExpectations(t)
}

func TestInitiateClaim_WriteFailure(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Status", mock.Anything, testAddress).Return(&domain.ClaimStatus{RemainingClaims: 1, CanClaim: true}, nil)
	ledger.On("SubmitClaim", mock.Anything, testAddress, 60).Return("", errors.New("claim transaction reverted"))

	attempts := new(MockClaimAttemptRepository)
	attempts.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.ClaimAttempt) bool {
		return a.State == domain.AttemptFailed
	})).Return(nil)

	svc := newClaimServiceForTest(ledger, attempts)
	_, err := svc.InitiateClaim(context.Background(), testAddress, 60)
	require.Error(t, err)

	// A failed write is distinct from a rejection: the UI must be able to
	// tell "you can't claim" apart from "something went wrong".
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrSettlementFailed, domainErr.Code)
}

func TestInitiateClaim_TimeoutIsUnconfirmedNotDenied(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Status", mock.Anything, testAddress).Return(&domain.ClaimStatus{RemainingClaims: 1, CanClaim: true}, nil)
	ledger.On("SubmitClaim", mock.Anything, testAddress, 60).Return("", context.DeadlineExceeded)

	svc := newClaimServiceForTest(ledger, nil)
	_, err := svc.InitiateClaim(context.Background(), testAddress, 60)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrSettlementFailed, domainErr.Code)
	assert.Contains(t, domainErr.Message, "not confirmed")
}

func TestInitiateClaim_EligibilityUnknown(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Status", mock.Anything, testAddress).Return(nil, errors.New("rpc timeout"))

	svc := newClaimServiceForTest(ledger, nil)
	_, err := svc.InitiateClaim(context.Background(), testAddress, 60)
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrLedgerUnreachable, domainErr.Code)
	ledger.AssertNotCalled(t, "SubmitClaim", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiateClaim_InvalidInput(t *testing.T) {
	svc := newClaimServiceForTest(new(MockLedger), nil)

	_, err := svc.InitiateClaim(context.Background(), "bogus", 50)
	require.Error(t, err)

	_, err = svc.InitiateClaim(context.Background(), testAddress, 101)
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrInvalidInput, domainErr.Code)

	_, err = svc.InitiateClaim(context.Background(), testAddress, -1)
	require.Error(t, err)
}

func TestInitiateClaim_AuditFailureDoesNotChangeOutcome(t *testing.T) {
	ledger := new(MockLedger)
	ledger.On("Status", mock.Anything, testAddress).Return(&domain.ClaimStatus{RemainingClaims: 1, CanClaim: true}, nil)
	ledger.On("SubmitClaim", mock.Anything, testAddress, 70).Return("0xfeed", nil)

	attempts := new(MockClaimAttemptRepository)
	attempts.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := newClaimServiceForTest(ledger, attempts)
	resp, err := svc.InitiateClaim(context.Background(), testAddress, 70)
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", resp.TransactionHash)
}

// raceLedger simulates the faucet's atomic accounting: every status read
// reports canClaim=true, but only the first write wins.
type raceLedger struct {
	mu        sync.Mutex
	remaining int
	submits   int
}

func (l *raceLedger) Status(ctx context.Context, address string) (*domain.ClaimStatus, error) {
	return &domain.ClaimStatus{RemainingClaims: 1, CanClaim: true}, nil
}

func (l *raceLedger) SubmitClaim(ctx context.Context, address string, scorePercentage int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submits++
	if l.remaining == 0 {
		return "", errors.New("execution reverted: daily claim limit reached")
	}
	l.remaining--
	return "0xwinner", nil
}

func TestInitiateClaim_ConcurrentAttemptsSingleSuccess(t *testing.T) {
	ledger := &raceLedger{remaining: 1}
	svc := newClaimServiceForTest(ledger, nil)

	const attempts = 2
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.InitiateClaim(context.Background(), testAddress, 90)
		}(i)
	}
	wg.Wait()

	// Both attempts pass the advisory read, both submit, but the ledger's
	// own accounting lets at most one settle.
	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			var domainErr *domain.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, domain.ErrSettlementFailed, domainErr.Code)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts, ledger.submits)
}

func TestHistory(t *testing.T) {
	now := time.Now().UTC()
	attempts := new(MockClaimAttemptRepository)
	attempts.On("ListByAddress", mock.Anything, testAddress, historyLimit).Return([]*domain.ClaimAttempt{
		{ID: "a2", UserAddress: testAddress, Score: 90, State: domain.AttemptSettled, TxHash: "0xaa", CreatedAt: now},
		{ID: "a1", UserAddress: testAddress, Score: 40, State: domain.AttemptRejected, Reason: "daily claim limit reached", CreatedAt: now.Add(-time.Hour)},
	}, nil)

	svc := newClaimServiceForTest(new(MockLedger), attempts)
	resp, err := svc.History(context.Background(), testAddress)
	require.NoError(t, err)

	require.Len(t, resp.Attempts, 2)
	assert.Equal(t, "settled", resp.Attempts[0].State)
	assert.Equal(t, "0xaa", resp.Attempts[0].TxHash)
	assert.Equal(t, "rejected", resp.Attempts[1].State)
}

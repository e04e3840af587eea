package domain

import "time"

// ClaimStatus is a read-only snapshot of the ledger's per-identity claim
// accounting. It may be stale by the time a write is issued; the ledger's
// own enforcement is authoritative.
type ClaimStatus struct {
	RemainingClaims int
	// LastClaimTime is zero when the identity has never claimed.
	LastClaimTime time.Time
	CanClaim      bool
}

// AttemptState is the settlement state machine position for one attempt.
// Terminal states are never revisited; a new user action starts a brand-new
// attempt at AttemptIdle.
type AttemptState string

const (
	AttemptIdle               AttemptState = "idle"
	AttemptEligibilityChecked AttemptState = "eligibility_checked"
	AttemptSubmitted          AttemptState = "submitted"
	AttemptSettled            AttemptState = "settled"
	AttemptRejected           AttemptState = "rejected"
	AttemptFailed             AttemptState = "failed"
)

// Terminal reports whether the state ends the attempt.
func (s AttemptState) Terminal() bool {
	switch s {
	case AttemptSettled, AttemptRejected, AttemptFailed:
		return true
	}
	return false
}

// SettlementOutcome is the single result of one settlement attempt. Exactly
// one of the three terminal variants applies: Settled carries a TxHash,
// Rejected carries a Reason, Failed carries a Cause.
type SettlementOutcome struct {
	State  AttemptState
	TxHash string
	Reason string
	Cause  error
}

func SettledOutcome(txHash string) SettlementOutcome {
	return SettlementOutcome{State: AttemptSettled, TxHash: txHash}
}

func RejectedOutcome(reason string) SettlementOutcome {
	return SettlementOutcome{State: AttemptRejected, Reason: reason}
}

func FailedOutcome(reason string, cause error) SettlementOutcome {
	return SettlementOutcome{State: AttemptFailed, Reason: reason, Cause: cause}
}

// ClaimAttempt is the audit record of one settlement attempt.
type ClaimAttempt struct {
	ID          string
	UserAddress string
	Score       int
	State       AttemptState
	TxHash      string
	Reason      string
	CreatedAt   time.Time
}

// Conclude moves the attempt into the outcome's terminal state.
func (a *ClaimAttempt) Conclude(o SettlementOutcome) {
	a.State = o.State
	a.TxHash = o.TxHash
	a.Reason = o.Reason
}

package domain

import "context"

// GradeResult is the validated response of the grading oracle for one
// free-response answer. Score is kept unrounded; rounding happens once, at
// score composition.
type GradeResult struct {
	Score    float64
	Feedback string
}

// GradingOracle grades a free-text answer against a rubric via an external
// LLM. Implementations must fully validate the oracle's payload before
// returning it and must not retry on transport failure.
type GradingOracle interface {
	GradeFreeResponse(ctx context.Context, question, rubric, answer string) (*GradeResult, error)
}

// QuizGenerator produces quiz content from course material via an external
// LLM. Generated items are validated before being returned.
type QuizGenerator interface {
	GenerateQuestions(ctx context.Context, material string, numQuestions int) ([]*QuizItem, error)
	GenerateFreeResponse(ctx context.Context, material string) (*FreeResponseItem, error)
}

// Ledger is the external rate-limited faucet contract. Status is an
// advisory read; SubmitClaim is the authoritative, non-idempotent write.
// SubmitClaim returns the transaction hash of a confirmed claim.
type Ledger interface {
	Status(ctx context.Context, address string) (*ClaimStatus, error)
	SubmitClaim(ctx context.Context, address string, scorePercentage int) (string, error)
}

// SlideRepository serves week-gated course material.
type SlideRepository interface {
	// RandomCovered returns a random slide whose week is <= week.
	RandomCovered(week int) (*Slide, error)
}

// ClaimAttemptRepository is the append-only settlement audit log.
type ClaimAttemptRepository interface {
	Save(ctx context.Context, attempt *ClaimAttempt) error
	ListByAddress(ctx context.Context, address string, limit int) ([]*ClaimAttempt, error)
}

package service

import (
	"quizfaucet/internal/config"
	"quizfaucet/internal/domain"
	"quizfaucet/internal/util"
)

// ObjectiveResult is the outcome of grading the multiple-choice portion of
// a submission.
type ObjectiveResult struct {
	PerItem      []domain.ItemResult
	TotalCorrect int
	Score        int
}

// GradeObjective grades aligned answer/ground-truth sequences by exact,
// case-sensitive string equality. No trimming, no normalization: the
// options were generated verbatim and the client echoes them verbatim.
func GradeObjective(itemIDs, userAnswers, groundTruth []string) (*ObjectiveResult, error) {
	n := len(groundTruth)
	if n == 0 {
		return nil, domain.NewInvalidInputError("submission contains no answers")
	}
	if len(userAnswers) != n {
		return nil, domain.NewInvalidInputError("userAnswers and groundTruth lengths differ")
	}
	if len(itemIDs) != n {
		return nil, domain.NewInvalidInputError("itemIds and groundTruth lengths differ")
	}

	perItem := make([]domain.ItemResult, 0, n)
	totalCorrect := 0
	for i := 0; i < n; i++ {
		isCorrect := userAnswers[i] == groundTruth[i]
		if isCorrect {
			totalCorrect++
		}
		perItem = append(perItem, domain.ItemResult{
			ItemID:        itemIDs[i],
			UserAnswer:    userAnswers[i],
			CorrectAnswer: groundTruth[i],
			IsCorrect:     isCorrect,
		})
	}

	return &ObjectiveResult{
		PerItem:      perItem,
		TotalCorrect: totalCorrect,
		Score:        util.Percentage(totalCorrect, n),
	}, nil
}

// ScoringPolicy is the injected weighting configuration for score
// composition. Weights and threshold come from config, never from
// constants inside the grading logic.
type ScoringPolicy struct {
	ObjectiveWeight  float64
	SubjectiveWeight float64
	PassThreshold    int
}

func NewScoringPolicy(cfg config.ScoringConfig) ScoringPolicy {
	return ScoringPolicy{
		ObjectiveWeight:  cfg.ObjectiveWeight,
		SubjectiveWeight: cfg.SubjectiveWeight,
		PassThreshold:    cfg.PassThreshold,
	}
}

// Compose combines the objective sub-score with an optional subjective
// sub-score into the final percentage. Rounding happens here and only
// here; the subjective score stays unrounded until composition so that
// boundary outcomes (49.5 vs 50) are decided once.
func (p ScoringPolicy) Compose(objectiveScore int, subjectiveScore float64, hasSubjective bool) (finalScore int, passed bool) {
	if hasSubjective {
		finalScore = util.RoundHalfUp(float64(objectiveScore)*p.ObjectiveWeight + subjectiveScore*p.SubjectiveWeight)
	} else {
		finalScore = objectiveScore
	}
	return finalScore, finalScore >= p.PassThreshold
}

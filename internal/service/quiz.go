package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"quizfaucet/internal/cache"
	"quizfaucet/internal/domain"
	"quizfaucet/internal/dto"
	"quizfaucet/internal/logger"
	"quizfaucet/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultNumQuestions = 1
	maxNumQuestions     = 10
)

// QuizService generates quizzes from course material and grades
// submissions into one final score.
type QuizService interface {
	GenerateQuiz(ctx context.Context, week, numQuestions int) (*dto.GenerateQuizResponse, error)
	SubmitAnswers(ctx context.Context, req *dto.SubmitAnswersRequest) (*dto.SubmitAnswersResponse, error)
}

type quizService struct {
	slides       domain.SlideRepository
	generator    domain.QuizGenerator
	oracle       domain.GradingOracle
	cache        domain.Cache
	policy       ScoringPolicy
	currentWeek  int
	quizCacheTTL time.Duration
}

// NewQuizService creates a new quizService. cacheAdapter may be nil, in
// which case generated quizzes are not cached.
func NewQuizService(
	slides domain.SlideRepository,
	generator domain.QuizGenerator,
	oracle domain.GradingOracle,
	cacheAdapter domain.Cache,
	policy ScoringPolicy,
	currentWeek int,
	quizCacheTTL time.Duration,
) QuizService {
	return &quizService{
		slides:       slides,
		generator:    generator,
		oracle:       oracle,
		cache:        cacheAdapter,
		policy:       policy,
		currentWeek:  currentWeek,
		quizCacheTTL: quizCacheTTL,
	}
}

// GenerateQuiz picks a random slide covered up to the requested week and
// asks the oracle for multiple-choice and free-response questions. The two
// generation calls run concurrently; either failure aborts the request.
func (s *quizService) GenerateQuiz(ctx context.Context, week, numQuestions int) (*dto.GenerateQuizResponse, error) {
	if week <= 0 {
		week = s.currentWeek
	}
	if numQuestions <= 0 {
		numQuestions = defaultNumQuestions
	}
	if numQuestions > maxNumQuestions {
		numQuestions = maxNumQuestions
	}

	slide, err := s.slides.RandomCovered(week)
	if err != nil {
		return nil, domain.NewNotFoundError("no course material available for the current week")
	}

	cacheKey := cache.GenerateCacheKey("quiz", "generated", slide.Filename, strconv.Itoa(numQuestions))
	if cached := s.cachedQuiz(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	var (
		items []*domain.QuizItem
		fr    *domain.FreeResponseItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var genErr error
		items, genErr = s.generator.GenerateQuestions(gctx, slide.Content, numQuestions)
		return genErr
	})
	g.Go(func() error {
		var genErr error
		fr, genErr = s.generator.GenerateFreeResponse(gctx, slide.Content)
		return genErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &dto.GenerateQuizResponse{
		Questions: make([]dto.QuizQuestion, 0, len(items)),
		FreeResponseQuestion: &dto.FreeResponseQuestion{
			Question:     fr.Question,
			SampleAnswer: fr.SampleAnswer,
			Rubric:       fr.Rubric,
		},
		Metadata: dto.QuizMetadata{
			SlideTopic:  slide.Topic,
			CurrentWeek: week,
		},
	}
	for _, item := range items {
		resp.Questions = append(resp.Questions, dto.QuizQuestion{
			ID:            item.ID,
			Question:      item.Question,
			Options:       item.Options,
			CorrectAnswer: item.CorrectAnswer,
			Explanation:   item.Explanation,
		})
	}

	s.storeQuiz(ctx, cacheKey, resp)
	return resp, nil
}

// SubmitAnswers grades a submission: objective items by exact match, the
// free-response answer (when present) via the grading oracle, then
// composes the final score. Grading is all-or-nothing: an oracle failure
// aborts the whole submission rather than returning a partial score.
func (s *quizService) SubmitAnswers(ctx context.Context, req *dto.SubmitAnswersRequest) (*dto.SubmitAnswersResponse, error) {
	result, err := s.grade(ctx, &domain.Submission{
		ItemIDs:            req.ItemIDs,
		UserAnswers:        req.UserAnswers,
		GroundTruth:        req.GroundTruth,
		FreeResponseAnswer: req.FreeResponseAnswer,
		FreeResponsePrompt: req.FreeResponsePrompt,
		FreeResponseRubric: req.FreeResponseRubric,
	})
	if err != nil {
		return nil, err
	}
	return gradingResultToDTO(result), nil
}

func (s *quizService) grade(ctx context.Context, sub *domain.Submission) (*domain.GradingResult, error) {
	objective, err := GradeObjective(sub.ItemIDs, sub.UserAnswers, sub.GroundTruth)
	if err != nil {
		return nil, err
	}

	var grade *domain.GradeResult
	if sub.HasFreeResponse() {
		if sub.FreeResponsePrompt == "" || sub.FreeResponseRubric == "" {
			return nil, domain.NewInvalidInputError("free-response answer requires its prompt and rubric")
		}
		grade, err = s.oracle.GradeFreeResponse(ctx, sub.FreeResponsePrompt, sub.FreeResponseRubric, sub.FreeResponseAnswer)
		if err != nil {
			return nil, err
		}
	}

	var subjective float64
	if grade != nil {
		subjective = grade.Score
	}
	finalScore, passed := s.policy.Compose(objective.Score, subjective, sub.HasFreeResponse())

	result := &domain.GradingResult{
		PerItem:        objective.PerItem,
		TotalCorrect:   objective.TotalCorrect,
		ObjectiveScore: objective.Score,
		HasSubjective:  sub.HasFreeResponse(),
		FinalScore:     finalScore,
		Passed:         passed,
	}
	if grade != nil {
		// The unrounded subjective score already went into the composite;
		// the per-section display value is rounded here.
		result.SubjectiveScore = util.RoundHalfUp(grade.Score)
		result.SubjectiveFeedback = grade.Feedback
	}
	return result, nil
}

func gradingResultToDTO(r *domain.GradingResult) *dto.SubmitAnswersResponse {
	resp := &dto.SubmitAnswersResponse{
		Score:     r.FinalScore,
		IsCorrect: r.Passed,
		MultipleChoice: dto.MultipleChoiceResult{
			Results:        make([]dto.ItemResult, 0, len(r.PerItem)),
			TotalCorrect:   r.TotalCorrect,
			TotalQuestions: len(r.PerItem),
			Score:          r.ObjectiveScore,
		},
	}
	for _, item := range r.PerItem {
		resp.MultipleChoice.Results = append(resp.MultipleChoice.Results, dto.ItemResult{
			ItemID:        item.ItemID,
			UserAnswer:    item.UserAnswer,
			CorrectAnswer: item.CorrectAnswer,
			IsCorrect:     item.IsCorrect,
		})
	}
	if r.HasSubjective {
		resp.FreeResponse = &dto.FreeResponseResult{
			Score:    r.SubjectiveScore,
			Feedback: r.SubjectiveFeedback,
		}
	}
	return resp
}

func (s *quizService) cachedQuiz(ctx context.Context, key string) *dto.GenerateQuizResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != domain.ErrCacheMiss {
			logger.Get().Warn("Quiz cache read failed", zap.Error(err), zap.String("key", key))
		}
		return nil
	}
	var resp dto.GenerateQuizResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logger.Get().Warn("Dropping corrupt quiz cache entry", zap.Error(err), zap.String("key", key))
		_ = s.cache.Delete(ctx, key)
		return nil
	}
	return &resp
}

func (s *quizService) storeQuiz(ctx context.Context, key string, resp *dto.GenerateQuizResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.quizCacheTTL); err != nil {
		logger.Get().Warn("Quiz cache write failed", zap.Error(err), zap.String("key", key))
	}
}

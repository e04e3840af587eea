package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"quizfaucet/internal/domain"
	"quizfaucet/internal/logger"
	"quizfaucet/internal/util"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const (
	gradingTemperature    = 0.3
	generationTemperature = 0.7
)

// LLMOracle implements domain.GradingOracle and domain.QuizGenerator on top
// of a langchaingo model. Every payload from the model is treated as
// untrusted input and fully validated before use; validation violations are
// surfaced as ORACLE_RESPONSE_INVALID and are never clamped or coerced.
type LLMOracle struct {
	llm     llms.Model
	timeout time.Duration
}

// NewLLMOracle creates a new oracle adapter. timeout bounds every single
// model call; transport or deadline failures surface as ORACLE_UNAVAILABLE
// and are not retried here.
func NewLLMOracle(llm llms.Model, timeout time.Duration) *LLMOracle {
	return &LLMOracle{llm: llm, timeout: timeout}
}

var (
	_ domain.GradingOracle = (*LLMOracle)(nil)
	_ domain.QuizGenerator = (*LLMOracle)(nil)
)

// GradeFreeResponse sends one grading request and validates the
// {score, feedback} payload: score must be a JSON number in [0,100] and
// feedback a non-empty string.
func (o *LLMOracle) GradeFreeResponse(ctx context.Context, question, rubric, answer string) (*domain.GradeResult, error) {
	prompt := fmt.Sprintf(`Please grade the following free response answer based on the provided rubric.

Question: %s

Rubric: %s

Student Answer: %s

Grade the answer on a scale of 0-100 based on how well it meets the criteria in the rubric.
Provide specific feedback explaining the score and suggesting improvements.

Format your response as a JSON object with:
- "score": number (between 0 and 100)
- "feedback": string (specific feedback on the answer)`, question, rubric, answer)

	raw, err := o.call(ctx, prompt, gradingTemperature)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Score    *float64 `json:"score"`
		Feedback string   `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		logger.Get().Error("Oracle grading payload is not valid JSON",
			zap.Error(err),
			zap.String("raw_response", raw),
		)
		return nil, domain.NewOracleResponseInvalidError("grading result is not valid JSON", err)
	}
	if parsed.Score == nil {
		return nil, domain.NewOracleResponseInvalidError("grading result is missing a numeric score", nil)
	}
	if *parsed.Score < 0 || *parsed.Score > 100 {
		return nil, domain.NewOracleResponseInvalidError(
			fmt.Sprintf("grading score %.2f is outside [0,100]", *parsed.Score), nil)
	}
	if parsed.Feedback == "" {
		return nil, domain.NewOracleResponseInvalidError("grading result is missing feedback", nil)
	}

	return &domain.GradeResult{Score: *parsed.Score, Feedback: parsed.Feedback}, nil
}

// GenerateQuestions asks the model for numQuestions multiple-choice items
// about the given material and validates each item's shape.
func (o *LLMOracle) GenerateQuestions(ctx context.Context, material string, numQuestions int) ([]*domain.QuizItem, error) {
	prompt := fmt.Sprintf(`Based on the following course material, generate %d quiz questions with a mix of difficulty levels:

%s

Format the response as a JSON object with a "questions" array where each question has:
- "question": string
- "options": string[] (4 options)
- "correctAnswer": string (must match one of the options exactly)
- "explanation": string`, numQuestions, material)

	raw, err := o.call(ctx, prompt, generationTemperature)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Questions []struct {
			Question      string   `json:"question"`
			Options       []string `json:"options"`
			CorrectAnswer string   `json:"correctAnswer"`
			Explanation   string   `json:"explanation"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		logger.Get().Error("Oracle question payload is not valid JSON",
			zap.Error(err),
			zap.String("raw_response", raw),
		)
		return nil, domain.NewOracleResponseInvalidError("generated questions are not valid JSON", err)
	}
	if len(parsed.Questions) == 0 {
		return nil, domain.NewOracleResponseInvalidError("oracle returned no questions", nil)
	}

	items := make([]*domain.QuizItem, 0, len(parsed.Questions))
	for _, q := range parsed.Questions {
		item := &domain.QuizItem{
			ID:            util.NewULID(),
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if err := item.Validate(); err != nil {
			return nil, domain.NewOracleResponseInvalidError("generated question failed validation", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// GenerateFreeResponse asks the model for one free-response question with a
// sample answer and grading rubric.
func (o *LLMOracle) GenerateFreeResponse(ctx context.Context, material string) (*domain.FreeResponseItem, error) {
	prompt := fmt.Sprintf(`Based on the following course material, generate a thoughtful free response question that tests understanding of key concepts:

%s

Format the response as a JSON object with:
- "question": string (the free response question)
- "sampleAnswer": string (an example of what a good answer would include)
- "rubric": string (criteria for grading answers, including key points that should be mentioned)`, material)

	raw, err := o.call(ctx, prompt, generationTemperature)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Question     string `json:"question"`
		SampleAnswer string `json:"sampleAnswer"`
		Rubric       string `json:"rubric"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		logger.Get().Error("Oracle free-response payload is not valid JSON",
			zap.Error(err),
			zap.String("raw_response", raw),
		)
		return nil, domain.NewOracleResponseInvalidError("generated free-response question is not valid JSON", err)
	}

	item := &domain.FreeResponseItem{
		Question:     parsed.Question,
		SampleAnswer: parsed.SampleAnswer,
		Rubric:       parsed.Rubric,
	}
	if err := item.Validate(); err != nil {
		return nil, domain.NewOracleResponseInvalidError("generated free-response question failed validation", err)
	}
	return item, nil
}

func (o *LLMOracle) call(ctx context.Context, prompt string, temperature float64) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(cctx, o.llm, prompt,
		llms.WithTemperature(temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		logger.Get().Error("Oracle call failed", zap.Error(err))
		return "", domain.NewOracleUnavailableError(err)
	}
	return response, nil
}

// extractJSON strips markdown code fences and anything surrounding the
// outermost JSON object. Models occasionally wrap their JSON despite the
// JSON-mode request.
func extractJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end != -1 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

package handler

import (
	"quizfaucet/internal/domain"
	"quizfaucet/internal/dto"
	"quizfaucet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// GenerateQuiz handles GET /api/quiz/generate
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	numQuestions := c.QueryInt("numQuestions", 0)
	week := c.QueryInt("week", 0)

	resp, err := h.service.GenerateQuiz(c.Context(), week, numQuestions)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAnswers handles POST /api/quiz/submit
func (h *QuizHandler) SubmitAnswers(c *fiber.Ctx) error {
	var req dto.SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request format")
	}
	if req.ItemIDs == nil || req.UserAnswers == nil || req.GroundTruth == nil {
		return domain.NewInvalidInputError("itemIds, userAnswers and groundTruth are required")
	}

	resp, err := h.service.SubmitAnswers(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

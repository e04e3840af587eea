package handler

import (
	"quizfaucet/internal/domain"
	"quizfaucet/internal/dto"
	"quizfaucet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ClaimHandler handles reward-claim HTTP requests
type ClaimHandler struct {
	service service.ClaimService
}

// NewClaimHandler creates a new ClaimHandler instance
func NewClaimHandler(service service.ClaimService) *ClaimHandler {
	return &ClaimHandler{service: service}
}

// GetClaimStatus handles GET /api/claim/status/:userAddress
func (h *ClaimHandler) GetClaimStatus(c *fiber.Ctx) error {
	address := c.Params("userAddress")
	resp, err := h.service.Status(c.Context(), address)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// InitiateClaim handles POST /api/claim/initiate
func (h *ClaimHandler) InitiateClaim(c *fiber.Ctx) error {
	var req dto.InitiateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request format")
	}

	resp, err := h.service.InitiateClaim(c.Context(), req.UserAddress, req.ScorePercentage)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetClaimHistory handles GET /api/claim/history/:userAddress
func (h *ClaimHandler) GetClaimHistory(c *fiber.Ctx) error {
	address := c.Params("userAddress")
	resp, err := h.service.History(c.Context(), address)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

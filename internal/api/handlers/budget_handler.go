package handlers

import (
	"errors"

	"finwise/internal/dto"
	"finwise/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BudgetHandler struct {
	budgetService *service.BudgetService
	logger        *zap.Logger
}

func NewBudgetHandler(budgetService *service.BudgetService, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		logger:        logger,
	}
}

// SetBudget godoc
// @Summary Create or replace the user's monthly budget
// @Tags budget
// @Accept json
// @Produce json
// @Param request body dto.SetBudgetRequest true "Budget"
// @Success 200 {object} dto.BudgetResponse
// @Security Bearer
// @Router /budget [put]
func (h *BudgetHandler) SetBudget(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req dto.SetBudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}

	budget, err := h.budgetService.SetBudget(c.Context(), userID, amount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
		}
		h.logger.Error("Budget update failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to set budget"})
	}

	return c.JSON(dto.BudgetResponse{
		ID:             budget.ID.String(),
		Amount:         budget.Amount.StringFixed(2),
		SpentThisMonth: "0.00",
	})
}

// GetBudget godoc
// @Summary Get the user's budget with current-month usage
// @Tags budget
// @Produce json
// @Success 200 {object} dto.BudgetResponse
// @Security Bearer
// @Router /budget [get]
func (h *BudgetHandler) GetBudget(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	budget, spent, err := h.budgetService.GetBudget(c.Context(), userID)
	if err != nil {
		h.logger.Error("Budget fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch budget"})
	}
	if budget == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No budget set"})
	}

	return c.JSON(dto.BudgetResponse{
		ID:             budget.ID.String(),
		Amount:         budget.Amount.StringFixed(2),
		SpentThisMonth: spent.StringFixed(2),
		PercentageUsed: service.PercentageUsed(spent, budget.Amount),
		LastAlertSent:  formatTime(budget.LastAlertSent),
	})
}

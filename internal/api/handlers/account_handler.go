package handlers

import (
	"errors"
	"time"

	"finwise/internal/dto"
	"finwise/internal/models"
	"finwise/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AccountHandler struct {
	accountService *service.AccountService
	logger         *zap.Logger
}

func NewAccountHandler(accountService *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// CreateAccount godoc
// @Summary Create an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body dto.CreateAccountRequest true "Account"
// @Success 201 {object} dto.AccountResponse
// @Security Bearer
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req dto.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	balance, err := decimal.NewFromString(req.Balance)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid balance amount"})
	}

	account, err := h.accountService.CreateAccount(c.Context(), userID, req.Name, models.AccountType(req.Type), balance, req.IsDefault)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAccountType) || errors.Is(err, service.ErrInvalidAmount) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account data"})
		}
		h.logger.Error("Account creation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create account"})
	}

	return c.Status(fiber.StatusCreated).JSON(accountResponse(account, 0))
}

// ListAccounts godoc
// @Summary List the user's accounts with transaction counts
// @Tags accounts
// @Produce json
// @Success 200 {array} dto.AccountResponse
// @Security Bearer
// @Router /accounts [get]
func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	summaries, err := h.accountService.ListAccounts(c.Context(), userID)
	if err != nil {
		h.logger.Error("Account listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list accounts"})
	}

	resp := make([]dto.AccountResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, accountResponse(s.Account, s.TransactionCount))
	}

	return c.JSON(resp)
}

// UpdateDefaultAccount godoc
// @Summary Make an account the user's default
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body dto.UpdateDefaultAccountRequest true "Account id"
// @Success 200 {object} map[string]bool
// @Security Bearer
// @Router /accounts/default [post]
func (h *AccountHandler) UpdateDefaultAccount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req dto.UpdateDefaultAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account id"})
	}

	if err := h.accountService.UpdateDefaultAccount(c.Context(), accountID, userID); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
		}
		h.logger.Error("Default account update failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update default account"})
	}

	return c.JSON(fiber.Map{"success": true})
}

func accountResponse(account *models.Account, transactionCount int) dto.AccountResponse {
	return dto.AccountResponse{
		ID:               account.ID.String(),
		Name:             account.Name,
		Type:             string(account.Type),
		Balance:          account.Balance.StringFixed(2),
		IsDefault:        account.IsDefault,
		TransactionCount: transactionCount,
		CreatedAt:        account.CreatedAt.Format(time.RFC3339),
	}
}

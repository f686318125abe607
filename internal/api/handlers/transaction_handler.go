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

type TransactionHandler struct {
	transactionService *service.TransactionService
	logger             *zap.Logger
}

func NewTransactionHandler(transactionService *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// CreateTransaction godoc
// @Summary Record a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction"
// @Success 201 {object} dto.TransactionResponse
// @Security Bearer
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req dto.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account id"})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}

	input := service.CreateTransactionInput{
		UserID:      userID,
		AccountID:   accountID,
		Type:        models.TransactionType(req.Type),
		Amount:      amount,
		Description: req.Description,
		Category:    req.Category,
		IsRecurring: req.IsRecurring,
	}

	if req.Date != "" {
		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date"})
		}
		input.Date = date
	}

	if req.RecurringInterval != "" {
		interval := models.RecurringInterval(req.RecurringInterval)
		input.RecurringInterval = &interval
	}

	tx, err := h.transactionService.CreateTransaction(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
		case errors.Is(err, service.ErrInvalidTransaction), errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction data"})
		}
		h.logger.Error("Transaction creation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create transaction"})
	}

	return c.Status(fiber.StatusCreated).JSON(transactionResponse(tx, ""))
}

// Dashboard godoc
// @Summary List the user's transactions, newest first
// @Tags transactions
// @Produce json
// @Success 200 {array} dto.TransactionResponse
// @Security Bearer
// @Router /transactions [get]
func (h *TransactionHandler) Dashboard(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	entries, err := h.transactionService.Dashboard(c.Context(), userID)
	if err != nil {
		h.logger.Error("Dashboard fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}

	resp := make([]dto.TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, transactionResponse(entry.Transaction, entry.AccountName))
	}

	return c.JSON(resp)
}

func transactionResponse(tx *models.Transaction, accountName string) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:          tx.ID.String(),
		AccountID:   tx.AccountID.String(),
		AccountName: accountName,
		Type:        string(tx.Type),
		Amount:      tx.Amount.StringFixed(2),
		Description: tx.Description,
		Category:    tx.Category,
		Date:        tx.Date.Format(time.RFC3339),
		Status:      string(tx.Status),
		IsRecurring: tx.IsRecurring,
	}
	if tx.RecurringInterval != nil {
		resp.RecurringInterval = string(*tx.RecurringInterval)
	}
	resp.NextRecurringDate = formatTime(tx.NextRecurringDate)
	return resp
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "bankbook/internal/errors"
	"bankbook/internal/ledger"
	"bankbook/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for applying a
// transaction. Kind and amount rules are checked by the ledger so that every
// caller gets the same error codes.
type CreateTransactionRequest struct {
	Kind               string          `json:"kind" binding:"required"`
	Amount             decimal.Decimal `json:"amount"`
	Date               *string         `json:"date"`
	OriginAccount      string          `json:"origin_account" binding:"max=100"`
	DestinationAccount string          `json:"destination_account" binding:"max=100"`
	Budget             string          `json:"budget" binding:"max=100"`
	BudgetMonth        string          `json:"budget_month" binding:"max=20"`
	Category           string          `json:"category" binding:"max=100"`
	Recipient          string          `json:"recipient" binding:"max=255"`
	Description        string          `json:"description" binding:"max=500"`
}

func (r CreateTransactionRequest) draft() (ledger.Draft, error) {
	d := ledger.Draft{
		Kind:               r.Kind,
		Amount:             r.Amount,
		OriginAccount:      r.OriginAccount,
		DestinationAccount: r.DestinationAccount,
		Budget:             r.Budget,
		BudgetMonth:        r.BudgetMonth,
		Category:           r.Category,
		Recipient:          r.Recipient,
		Description:        r.Description,
	}
	if r.Date != nil && *r.Date != "" {
		parsed, err := parseFlexibleTime(*r.Date)
		if err != nil {
			return d, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
		}
		d.Date = parsed
	}
	return d, nil
}

// CreateTransaction handles applying a new transaction
// @Summary     Apply a transaction
// @Description Validate a debit, credit or transfer and apply it to the named accounts and budget
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction applied"
// @Failure     400 {object} ErrorResponse "Invalid transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account or budget not found"
// @Failure     409 {object} ErrorResponse "Insufficient funds"
// @Failure     500 {object} ErrorResponse "Storage error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	draft, err := req.draft()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, draft)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"kind": transaction.Kind, "amount": transaction.Amount.String()})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions handles listing transactions
// @Summary     List transactions
// @Description Get a paginated list of applied transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from_date    query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date      query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Param       kind         query string false "debit, credit or transfer"
// @Param       account      query string false "Origin or destination account name"
// @Param       budget       query string false "Budget name"
// @Param       budget_month query string false "Budget month"
// @Param       category     query string false "Category"
// @Param       min_amount   query string false "Minimum amount"
// @Param       max_amount   query string false "Maximum amount"
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	page, err := parsePageRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("kind"); v != "" {
		kind, ok := ledger.ParseTransactionKind(v)
		if !ok {
			return filter, apperrors.ErrInvalidKind
		}
		filter.Kind = &kind
	}

	if v := c.Query("account"); v != "" {
		filter.Account = &v
	}
	if v := c.Query("budget"); v != "" {
		filter.Budget = &v
	}
	if v := c.Query("budget_month"); v != "" {
		month, ok := ledger.NormalizeMonth(v)
		if !ok {
			return filter, apperrors.WithDetails(apperrors.ErrInvalidMonth, map[string]any{"month": v})
		}
		filter.BudgetMonth = &month
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles reversing a transaction
// @Summary     Reverse a transaction
// @Description Undo a transaction's effect on every balance it touched and remove it
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Reversed transaction"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction, account or budget not found"
// @Failure     500 {object} ErrorResponse "Storage error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"kind": transaction.Kind, "amount": transaction.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// GetCategories lists the categories used by applied transactions
// @Summary     List categories
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]string
// @Router      /categories [get]
func (h *TransactionHandler) GetCategories(c *gin.Context) {
	categories, err := h.transactionService.GetCategories()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

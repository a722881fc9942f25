package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "bankbook/internal/errors"
	"bankbook/internal/ledger"
	"bankbook/internal/models"
	"bankbook/internal/pagination"
	"bankbook/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for creating an account
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	Kind           string          `json:"kind" binding:"required,account_kind"`
	Description    string          `json:"description" binding:"max=500"`
	OpeningBalance decimal.Decimal `json:"opening_balance" binding:"gte=0"`
}

// KindsResponse lists the account and transaction kinds the API accepts.
type KindsResponse struct {
	AccountKinds     []ledger.AccountKind     `json:"account_kinds"`
	TransactionKinds []ledger.TransactionKind `json:"transaction_kinds"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create a new checking, saving or investment account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Account name already taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	kind, _ := ledger.ParseAccountKind(req.Kind)

	account, err := h.accountService.CreateAccount(req.Name, kind, req.Description, req.OpeningBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": account.Name, "kind": account.Kind, "opening_balance": account.Balance.String()})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetAccounts handles the retrieval of accounts
// @Summary     List accounts
// @Description Get a paginated list of accounts, optionally filtered by kind or exact name
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       kind      query string false "Account kind"
// @Param       name      query string false "Exact account name"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Account] "Paginated accounts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	page, err := parsePageRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if name := c.Query("name"); name != "" {
		h.getAccountsByName(c, page, name)
		return
	}

	var kind *ledger.AccountKind
	if v := c.Query("kind"); v != "" {
		k, ok := ledger.ParseAccountKind(v)
		if !ok {
			respondWithError(c, apperrors.WithDetails(apperrors.ErrInvalidAccountKind, map[string]any{"kind": v}))
			return
		}
		kind = &k
	}

	result, err := h.accountService.GetAccounts(page, kind)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// getAccountsByName answers a name lookup as a page of at most one account.
func (h *AccountHandler) getAccountsByName(c *gin.Context, page pagination.PageRequest, name string) {
	var found []models.Account
	account, err := h.accountService.GetAccountByName(name)
	switch {
	case err == nil:
		found = append(found, *account)
	case !errors.Is(err, apperrors.ErrAccountNotFound):
		respondWithError(c, err)
		return
	}

	page = page.Normalized()
	c.JSON(http.StatusOK, pagination.NewPageResponse(found, page.Page, page.PageSize, int64(len(found))))
}

// GetAccountByID handles the retrieval of a specific account
// @Summary     Get account by ID
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Account details"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount handles soft-deleting an account
// @Summary     Delete account
// @Description Soft-delete an account. Transactions that reference it are kept.
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Deleted account"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.DeleteAccount(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": account.Name, "balance": account.Balance.String()})

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// GetAccountHistory handles listing an account's balance history
// @Summary     Account history
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Account ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.HistoryEntry] "History entries, oldest first"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id}/history [get]
func (h *AccountHandler) GetAccountHistory(c *gin.Context) {
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := parsePageRequest(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.accountService.GetAccountHistory(accountID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetKinds lists the account kinds enabled for this deployment and the
// transaction kinds.
// @Summary     Available kinds
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} KindsResponse
// @Router      /kinds [get]
func (h *AccountHandler) GetKinds(c *gin.Context) {
	c.JSON(http.StatusOK, KindsResponse{
		AccountKinds:     h.accountService.AccountKinds(),
		TransactionKinds: ledger.TransactionKinds,
	})
}

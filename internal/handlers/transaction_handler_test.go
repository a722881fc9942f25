package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "bankbook/internal/errors"
	"bankbook/internal/ledger"
	"bankbook/internal/models"
	"bankbook/internal/pagination"
	"bankbook/internal/services"
)

const testTransactionID = "0190a1b2-0000-7000-8000-0000000000c1"

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn  func(ctx context.Context, userID string, draft ledger.Draft) (*models.Transaction, error)
	getTransactionsFn    func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn func(transactionID string) (*models.Transaction, error)
	deleteTransactionFn  func(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	getCategoriesFn      func() ([]string, error)
}

func (m *mockTransactionService) CreateTransaction(ctx context.Context, userID string, draft ledger.Draft) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(ctx, userID, draft)
	}
	return &models.Transaction{ID: testTransactionID}, nil
}

func (m *mockTransactionService) GetTransactions(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getTransactionsFn != nil {
		return m.getTransactionsFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(transactionID)
	}
	return &models.Transaction{ID: transactionID}, nil
}

func (m *mockTransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(ctx, userID, transactionID)
	}
	return &models.Transaction{ID: transactionID}, nil
}

func (m *mockTransactionService) GetCategories() ([]string, error) {
	if m.getCategoriesFn != nil {
		return m.getCategoriesFn()
	}
	return []string{}, nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	auth.GET("/categories", handler.GetCategories)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 and passes the draft through", func(t *testing.T) {
		var captured ledger.Draft
		var capturedUser string
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, userID string, draft ledger.Draft) (*models.Transaction, error) {
				captured, capturedUser = draft, userID
				return &models.Transaction{ID: testTransactionID, Kind: ledger.KindDebit, Amount: draft.Amount}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

		rec := doRequest(r, "POST", "/transactions",
			`{"kind":"debit","amount":"50.25","date":"2024-06-03","origin_account":"Checking","budget":"Food","budget_month":"june","category":"Groceries"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if capturedUser != testUserID {
			t.Errorf("expected user %s, got %s", testUserID, capturedUser)
		}
		if captured.Kind != "debit" || captured.OriginAccount != "Checking" || captured.BudgetMonth != "june" {
			t.Errorf("unexpected draft: %+v", captured)
		}
		if !captured.Amount.Equal(decimal.RequireFromString("50.25")) {
			t.Errorf("expected amount 50.25, got %s", captured.Amount)
		}
		if !captured.Date.Equal(time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", captured.Date)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "CREATE_TRANSACTION" {
			t.Errorf("unexpected audit entries: %+v", audit.entries)
		}
	})

	t.Run("returns 400 on missing kind", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"amount":10}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"kind":"credit","amount":10,"date":"03/06/2024"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	errorCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation error", apperrors.ErrMissingOrigin, http.StatusBadRequest, "MISSING_ORIGIN"},
		{"unknown account", apperrors.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"insufficient funds", apperrors.WithDetails(apperrors.ErrInsufficientFunds, map[string]any{"amount": "150", "balance": "100"}), http.StatusConflict, "INSUFFICIENT_FUNDS"},
		{"storage error", apperrors.Wrap(apperrors.ErrStorage, context.DeadlineExceeded), http.StatusInternalServerError, "STORAGE_ERROR"},
		{"partial application", apperrors.ErrPartialApplication, http.StatusInternalServerError, "PARTIAL_APPLICATION"},
	}
	for _, tc := range errorCases {
		t.Run("maps "+tc.name, func(t *testing.T) {
			txSvc := &mockTransactionService{
				createTransactionFn: func(_ context.Context, _ string, _ ledger.Draft) (*models.Transaction, error) {
					return nil, tc.err
				},
			}
			audit := &mockAuditService{}
			r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

			rec := doRequest(r, "POST", "/transactions", `{"kind":"debit","amount":150,"origin_account":"A"}`)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tc.code)
			if len(audit.entries) != 0 {
				t.Errorf("expected no audit entry, got %+v", audit.entries)
			}
		})
	}

	t.Run("includes insufficient funds details", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ context.Context, _ string, _ ledger.Draft) (*models.Transaction, error) {
				return nil, apperrors.WithDetails(apperrors.ErrInsufficientFunds, map[string]any{"amount": "150", "balance": "100"})
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"kind":"debit","amount":150,"origin_account":"A"}`)

		errObj := parseJSON(t, rec)["error"].(map[string]interface{})
		details := errObj["details"].(map[string]interface{})
		if details["amount"] != "150" || details["balance"] != "100" {
			t.Errorf("unexpected details: %v", details)
		}
	})
}

func TestTransactionHandler_GetTransactions(t *testing.T) {
	t.Run("parses every filter", func(t *testing.T) {
		var captured services.TransactionFilter
		txSvc := &mockTransactionService{
			getTransactionsFn: func(_ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				captured = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET",
			"/transactions?from_date=2024-06-01&to_date=2024-06-30T23:59:59Z&kind=Transfer&account=A&budget=Food&budget_month=june&category=Rent&min_amount=10&max_amount=99.5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.FromDate == nil || captured.ToDate == nil {
			t.Fatal("expected date range")
		}
		if captured.Kind == nil || *captured.Kind != ledger.KindTransfer {
			t.Errorf("expected transfer, got %v", captured.Kind)
		}
		if captured.Account == nil || *captured.Account != "A" {
			t.Errorf("expected account A, got %v", captured.Account)
		}
		if captured.BudgetMonth == nil || *captured.BudgetMonth != "June" {
			t.Errorf("expected normalized month June, got %v", captured.BudgetMonth)
		}
		if captured.MaxAmount == nil || !captured.MaxAmount.Equal(decimal.RequireFromString("99.5")) {
			t.Errorf("expected max 99.5, got %v", captured.MaxAmount)
		}
	})

	badFilters := []struct {
		query string
		code  string
	}{
		{"kind=income", "INVALID_KIND"},
		{"from_date=yesterday", "INVALID_INPUT"},
		{"min_amount=ten", "INVALID_INPUT"},
		{"budget_month=Jun", "INVALID_MONTH"},
	}
	for _, tc := range badFilters {
		t.Run("rejects "+tc.query, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "GET", "/transactions?"+tc.query, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tc.code)
		})
	}
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(_ string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/"+testTransactionID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})

	t.Run("returns 400 on invalid ID", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/not-a-uuid", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("reverses and audits", func(t *testing.T) {
		var reversed string
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_ context.Context, _ string, transactionID string) (*models.Transaction, error) {
				reversed = transactionID
				return &models.Transaction{ID: transactionID, Kind: ledger.KindCredit}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

		rec := doRequest(r, "DELETE", "/transactions/"+testTransactionID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if reversed != testTransactionID {
			t.Errorf("expected %s reversed, got %s", testTransactionID, reversed)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "DELETE_TRANSACTION" {
			t.Errorf("unexpected audit entries: %+v", audit.entries)
		}
	})

	t.Run("returns 404 for unknown transaction", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_ context.Context, _, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/transactions/"+testTransactionID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetCategories(t *testing.T) {
	txSvc := &mockTransactionService{
		getCategoriesFn: func() ([]string, error) {
			return []string{"Groceries", "Unknown"}, nil
		},
	}
	r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/categories", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cats := parseJSON(t, rec)["categories"].([]interface{}); len(cats) != 2 {
		t.Errorf("expected 2 categories, got %v", cats)
	}
}

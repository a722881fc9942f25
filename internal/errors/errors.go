// Package errors provides the application error taxonomy.
// Every error the ledger engine and the services return is an AppError so
// the API layer can map it to a status code without leaking internals.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, optional details for the caller
// and an optional internal error.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Internal   error          `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so
// errors.Is(err, ErrInsufficientFunds) matches derived errors too.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Details:    sentinel.Details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithDetails creates a new AppError carrying caller-facing details.
func WithDetails(sentinel *AppError, details map[string]any) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound    = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrDuplicateAccount   = &AppError{Code: "DUPLICATE_ACCOUNT", Message: "An account with this name already exists", StatusCode: http.StatusConflict}
	ErrInvalidAccountKind = &AppError{Code: "INVALID_ACCOUNT_KIND", Message: "Account kind is not available", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound  = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrDuplicateBudget = &AppError{Code: "DUPLICATE_BUDGET", Message: "A budget with this name already exists for that month", StatusCode: http.StatusConflict}
	ErrInvalidMonth    = &AppError{Code: "INVALID_MONTH", Message: "Month must be a calendar month name", StatusCode: http.StatusBadRequest}
)

// Transaction construction errors. These are raised before any storage call.
var (
	ErrInvalidKind         = &AppError{Code: "INVALID_KIND", Message: "Transaction kind must be debit, credit or transfer", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Transaction amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrMissingBudgetMonth  = &AppError{Code: "MISSING_BUDGET_MONTH", Message: "A budget month is required when a budget is set", StatusCode: http.StatusBadRequest}
	ErrMissingDestination  = &AppError{Code: "MISSING_DESTINATION", Message: "Destination account is required for credit transactions", StatusCode: http.StatusBadRequest}
	ErrMissingOrigin       = &AppError{Code: "MISSING_ORIGIN", Message: "Origin account is required for debit transactions", StatusCode: http.StatusBadRequest}
	ErrMissingAccounts     = &AppError{Code: "MISSING_ACCOUNTS", Message: "Origin and destination accounts are required for transfer transactions", StatusCode: http.StatusBadRequest}
	ErrBudgetNotAllowed    = &AppError{Code: "BUDGET_NOT_ALLOWED", Message: "Transfers cannot reference a budget", StatusCode: http.StatusBadRequest}
	ErrSameAccountTransfer = &AppError{Code: "SAME_ACCOUNT_TRANSFER", Message: "Cannot transfer to the same account", StatusCode: http.StatusBadRequest}
)

// Transaction application errors.
var (
	ErrTransactionNotFound       = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrTransactionAlreadyApplied = &AppError{Code: "TRANSACTION_ALREADY_APPLIED", Message: "Transaction has already been applied", StatusCode: http.StatusConflict}
	ErrInsufficientFunds         = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds in origin account", StatusCode: http.StatusConflict}
	ErrStorage                   = &AppError{Code: "STORAGE_ERROR", Message: "The transaction could not be stored; nothing was applied", StatusCode: http.StatusInternalServerError}
	ErrPartialApplication        = &AppError{Code: "PARTIAL_APPLICATION", Message: "The transaction was only partially applied and needs manual reconciliation", StatusCode: http.StatusInternalServerError}
)

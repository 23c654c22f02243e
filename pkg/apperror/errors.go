package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Details    any    `json:"details,omitempty"` // Safe to expose to clients
	Err        error  `json:"-"`                 // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithDetails attaches client-visible details and returns e.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// ---- Items (ITEM) ----

func ErrNotFound(entity string) *AppError {
	return New("ITEM_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// Validation returns an ITEM_002 validation error.
func Validation(message string) *AppError {
	return New("ITEM_002", message, http.StatusBadRequest)
}

func ErrDuplicateItem() *AppError {
	return New("ITEM_003", "An item with this NFC serial number already exists", http.StatusConflict)
}

func ErrNonceUsed() *AppError {
	return New("ITEM_004", "Transaction nonce has already been used", http.StatusConflict)
}

func ErrSameOwner() *AppError {
	return New("ITEM_005", "Item is already owned by this party", http.StatusUnprocessableEntity)
}

// ErrDuplicateSubmission means the client reused a request nonce within its
// replay window.
func ErrDuplicateSubmission() *AppError {
	return New("ITEM_006", "Request nonce has already been used", http.StatusConflict)
}

// ---- Ledger integrity (LEDGER) ----

// ErrTamperDetected is returned whenever chain verification fails. The reason
// names the affected block and is safe to show as a tamper warning.
func ErrTamperDetected(reason string) *AppError {
	return New("LEDGER_001", "Ledger verification failed: "+reason, http.StatusConflict)
}

// ---- Tags (TAG) ----

// ErrInvalidTag is deliberately generic. The precise cause is logged, never returned.
func ErrInvalidTag() *AppError {
	return New("TAG_001", "Invalid or tampered tag", http.StatusBadRequest)
}

// ---- Key custody (KEY) ----

func ErrKeyNotFound() *AppError {
	return New("KEY_001", "Key version not found", http.StatusNotFound)
}

func ErrKeyExpired() *AppError {
	return New("KEY_002", "Tag key has expired, use a newer tag", http.StatusGone)
}

func ErrKeyUnwrap(err error) *AppError {
	return Wrap("KEY_003", "Key custodian failure", http.StatusInternalServerError, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrMissingToken() *AppError {
	return New("AUTH_002", "Missing bearer token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// CodeAllocationConflict is the code of ErrAllocationConflict.
const CodeAllocationConflict = "SYS_004"

// ErrAllocationConflict means a concurrent writer took the same block number,
// mint number or key version. The request can be retried by the caller.
func ErrAllocationConflict(err error) *AppError {
	return Wrap(CodeAllocationConflict, "Concurrent ledger write, retry the request", http.StatusConflict, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ---- Configuration (CFG) ----

func ErrInvalidMasterKey(err error) *AppError {
	return Wrap("CFG_001", "Master key must be exactly 32 bytes", http.StatusInternalServerError, err)
}

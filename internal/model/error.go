package model

// Standard error codes for API responses
const (
	ErrCodeStoreNotConfigured = "STORE_NOT_CONFIGURED"
	ErrCodeFetchFailed        = "FETCH_FAILED"
	ErrCodeTransitionFailed   = "TRANSITION_FAILED"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeTerminalStatus     = "TERMINAL_STATUS"
	ErrCodeAdvanceInFlight    = "ADVANCE_IN_FLIGHT"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrStoreUnavailable  = NewDomainError(ErrCodeStoreNotConfigured, "Order store is not configured; set the database environment variables")
	ErrFetchFailed       = NewDomainError(ErrCodeFetchFailed, "Failed to load orders from the store")
	ErrTransitionFailed  = NewDomainError(ErrCodeTransitionFailed, "Failed to persist the status transition")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Status transition does not follow the pipeline")
	ErrTerminalStatus    = NewDomainError(ErrCodeTerminalStatus, "Order is in a terminal status and cannot advance")
	ErrAdvanceInFlight   = NewDomainError(ErrCodeAdvanceInFlight, "A status advance is already in flight for this order")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)

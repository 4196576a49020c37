package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDuration  ErrorCode = "INVALID_DURATION"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidProject   ErrorCode = "INVALID_PROJECT"

	ErrCodeTimesheetNotFound ErrorCode = "TIMESHEET_NOT_FOUND"
	ErrCodeEntryNotFound     ErrorCode = "ENTRY_NOT_FOUND"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeProjectNotFound   ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeAuditLogNotFound  ErrorCode = "AUDIT_LOG_NOT_FOUND"

	ErrCodeNotOwner          ErrorCode = "NOT_OWNER"
	ErrCodeNotValidator      ErrorCode = "NOT_VALIDATOR"
	ErrCodeOwnerCannotReopen ErrorCode = "OWNER_CANNOT_REOPEN"
	ErrCodeEntryAccessDenied ErrorCode = "ENTRY_ACCESS_DENIED"

	ErrCodeInvalidTimesheetStatus  ErrorCode = "INVALID_TIMESHEET_STATUS"
	ErrCodeEmptySubmission         ErrorCode = "EMPTY_SUBMISSION"
	ErrCodeTimesheetLocked         ErrorCode = "TIMESHEET_LOCKED"
	ErrCodeMissingRejectionReason  ErrorCode = "MISSING_REJECTION_REASON"
	ErrCodeApprovalAlreadyDecided  ErrorCode = "APPROVAL_ALREADY_DECIDED"
	ErrCodeDuplicateTimesheetWeek  ErrorCode = "DUPLICATE_TIMESHEET_WEEK"
	ErrCodeManagerCycle            ErrorCode = "MANAGER_CYCLE"
	ErrCodeDuplicateEmail          ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeSignatureMismatch       ErrorCode = "SIGNATURE_MISMATCH"

	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive        ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrCodeSecondFactorPending ErrorCode = "SECOND_FACTOR_PENDING"
	ErrCodeInvalidTOTPCode     ErrorCode = "INVALID_TOTP_CODE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrTimesheetNotFound = NewNotFoundError("timesheet not found", ErrCodeTimesheetNotFound)
	ErrEntryNotFound     = NewNotFoundError("time entry not found", ErrCodeEntryNotFound)
	ErrUserNotFound      = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrProjectNotFound   = NewNotFoundError("project not found", ErrCodeProjectNotFound)
	ErrAuditLogNotFound  = NewNotFoundError("audit log not found", ErrCodeAuditLogNotFound)

	ErrNotOwner          = NewForbiddenError("only the timesheet owner may perform this action", ErrCodeNotOwner)
	ErrNotValidator      = NewForbiddenError("actor is not an authorized validator for this timesheet", ErrCodeNotValidator)
	ErrOwnerCannotReopen = NewForbiddenError("the timesheet owner may not reopen their own timesheet", ErrCodeOwnerCannotReopen)
	ErrEntryAccessDenied = NewForbiddenError("only the entry owner or an administrator may modify this entry", ErrCodeEntryAccessDenied)

	ErrInvalidTimesheetStatus = NewValidationError("operation not allowed in current timesheet status", ErrCodeInvalidTimesheetStatus)
	ErrEmptySubmission        = NewValidationError("cannot submit a timesheet without entries", ErrCodeEmptySubmission)
	ErrTimesheetLocked        = NewValidationError("timesheet is locked, entries cannot be modified", ErrCodeTimesheetLocked)
	ErrMissingRejectionReason = NewValidationError("a rejection requires a comment", ErrCodeMissingRejectionReason)
	ErrApprovalAlreadyDecided = NewConflictError("no pending approval for this validator and timesheet", ErrCodeApprovalAlreadyDecided)
	ErrManagerCycle           = NewValidationError("manager assignment would create a cycle", ErrCodeManagerCycle)

	ErrInvalidCredentials  = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive        = NewForbiddenError("user account is inactive", ErrCodeUserInactive)
	ErrInvalidToken        = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired        = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrSecondFactorPending = NewForbiddenError("second factor verification required", ErrCodeSecondFactorPending)
	ErrInvalidTOTPCode     = NewUnauthorizedError("invalid one-time code", ErrCodeInvalidTOTPCode)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeOK                 ErrorCode = "OK"
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
	ErrCodeTimeout            ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
)

// Plan / task module error codes
const (
	ErrCodePlanNotFound    ErrorCode = "PLAN_001"
	ErrCodeTaskNotFound    ErrorCode = "PLAN_002"
	ErrCodePlanNoTasks     ErrorCode = "PLAN_003"
	ErrCodePlanNoStartDate ErrorCode = "PLAN_004"
)

// Signoff module error codes
const (
	ErrCodeSignoffNotFound         ErrorCode = "SIGN_001"
	ErrCodeDuplicatePendingSignoff ErrorCode = "SIGN_002"
	ErrCodeInvalidDueDate          ErrorCode = "SIGN_003"
)

// Messaging error codes
const (
	ErrCodePublishFailed ErrorCode = "MSG_001"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodePlanNotFound:    http.StatusNotFound,
	ErrCodeTaskNotFound:    http.StatusNotFound,
	ErrCodePlanNoTasks:     http.StatusNotFound,
	ErrCodePlanNoStartDate: http.StatusUnprocessableEntity,

	ErrCodeSignoffNotFound:         http.StatusNotFound,
	ErrCodeDuplicatePendingSignoff: http.StatusConflict,
	ErrCodeInvalidDueDate:          http.StatusBadRequest,

	ErrCodePublishFailed: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",

	ErrCodePlanNotFound:    "PM plan not found",
	ErrCodeTaskNotFound:    "task not found",
	ErrCodePlanNoTasks:     "no tasks found for PM plan",
	ErrCodePlanNoStartDate: "PM plan has no start date",

	ErrCodeSignoffNotFound:         "task signoff not found",
	ErrCodeDuplicatePendingSignoff: "a pending signoff already exists for this task",
	ErrCodeInvalidDueDate:          "invalid due date",

	ErrCodePublishFailed: "failed to publish event",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// internal/respond/errors.go
//
// Coded error taxonomy for the HTTP boundary.
//
// Context
// -------
// Every failure the runtime can surface to a caller is one of a small,
// closed set of coded errors.  Handlers and middleware return plain
// `error` values; the boundary (respond.Error) unwraps them back to an
// *APIError and renders the matching status code and machine-readable
// code.  Unknown errors collapse to a generic 500 so internal detail
// never leaks.
//
// Two distinctions matter to clients:
//
//   - Unauthorized vs. PermissionDenied — "log in again" vs. "ask an
//     admin".
//   - TenantInvalid / ConfigurationMissing / PermissionNotRegistered are
//     400-class even when the root cause is server misconfiguration.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package respond

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError couples an HTTP status with a stable machine-readable code.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

// WithMessage returns a copy carrying a more specific message.  The code
// and status are preserved so clients can keep matching on them.
func (e *APIError) WithMessage(format string, args ...any) *APIError {
	return &APIError{Status: e.Status, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Canonical errors.  Middleware and handlers wrap or return these
// directly; respond.Error maps anything else to ErrInternal.
var (
	ErrTenantInvalid = &APIError{
		Status: http.StatusBadRequest, Code: "TENANT_INVALID",
		Message: "invalid tenant",
	}
	ErrConfigurationMissing = &APIError{
		Status: http.StatusBadRequest, Code: "TENANT_CONFIGURATION_NOT_FOUND",
		Message: "tenant configuration not found",
	}
	ErrAuthNotConfigured = &APIError{
		Status: http.StatusBadRequest, Code: "AUTHENTICATION_NOT_CONFIGURED",
		Message: "authentication is not configured for this tenant",
	}
	ErrUnauthorized = &APIError{
		Status: http.StatusUnauthorized, Code: "UNAUTHORIZED",
		Message: "authentication credentials were missing or invalid",
	}
	ErrPermissionDenied = &APIError{
		Status: http.StatusForbidden, Code: "PERMISSION_DENIED",
		Message: "you do not have permission to perform this action",
	}
	ErrPermissionNotRegistered = &APIError{
		Status: http.StatusBadRequest, Code: "PERMISSION_NOT_REGISTERED",
		Message: "permission is not registered for this endpoint",
	}
	ErrProvisioningFailed = &APIError{
		Status: http.StatusInternalServerError, Code: "PROVISIONING_FAILED",
		Message: "tenant store provisioning failed",
	}
	ErrNotFound = &APIError{
		Status: http.StatusNotFound, Code: "NOT_FOUND",
		Message: "resource not found",
	}
	ErrBadRequest = &APIError{
		Status: http.StatusBadRequest, Code: "BAD_REQUEST",
		Message: "bad request",
	}
	ErrInternal = &APIError{
		Status: http.StatusInternalServerError, Code: "INTERNAL",
		Message: "internal server error",
	}
)

// AsAPIError unwraps err to an *APIError, or returns ErrInternal.
func AsAPIError(err error) *APIError {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	return ErrInternal
}

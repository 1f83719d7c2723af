package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code and message pair safe to return to clients.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns a persistence error into a client facing code and message.
// Driver detail is never echoed back. context names the resource, e.g. "product".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Internal server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: notFoundMessage(context)}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(err.Error())
	}

	errLower := strings.ToLower(err.Error())

	// postgres 23505 and sqlite UNIQUE failures when translation is unavailable
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "database is locked") ||
		strings.Contains(errLower, "sql: database is closed") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "Database unavailable, please retry later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)
	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email already registered"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func notFoundCode(context string) string {
	switch context {
	case "product":
		return ProductNotFound
	case "user":
		return UserNotFound
	default:
		return ResourceNotFound
	}
}

func notFoundMessage(context string) string {
	switch context {
	case "product":
		return "Product not found"
	case "user":
		return "User not found"
	case "cart":
		return "Cart item not found"
	default:
		return "Resource not found"
	}
}

func defaultMessage(context string) string {
	if context == "" {
		return "Internal server error"
	}
	return "Failed to process " + context
}

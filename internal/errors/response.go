package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope for every non-2xx JSON body.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine readable code, see codes.go
	Message string `json:"message"` // human readable detail
}

// RespondWithError writes the envelope with the given status.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Shorthands for the common statuses

func Unauthorized(c *gin.Context, errorCode string, message string) {
	if errorCode == "" {
		errorCode = AuthUnauthorized
	}
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, errorCode, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ParseAndRespond maps err through ParseError and writes it with a
// status that fits the resulting code.
func ParseAndRespond(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, StatusFor(info.Code), info.Code, info.Message)
}

// StatusFor returns the HTTP status used for an error code.
func StatusFor(code string) int {
	switch code {
	case AuthUnauthorized, AuthInvalidCredentials, AuthTokenExpired, AuthTokenInvalid:
		return http.StatusUnauthorized
	case ValidationInvalidInput, ValidationInvalidID, AuthEmailAlreadyExists, ResourceAlreadyExists:
		return http.StatusBadRequest
	case ResourceNotFound, ProductNotFound, UserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

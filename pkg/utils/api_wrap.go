package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TraceIDKey is the gin context key holding the request trace id.
const TraceIDKey = "trace_id"

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	RespondWithStatus(c, http.StatusOK, data, message)
}

func RespondWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		TraceID: c.GetString(TraceIDKey),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString(TraceIDKey),
	})
}

// HandleServiceError maps service sentinels to an HTTP status. The error is
// attached to the gin context so the request logger records it.
func HandleServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, RecordNotFound):
		RespondError(c, http.StatusNotFound, "Record not found")
	case errors.Is(err, ErrInvalidStatus):
		RespondError(c, http.StatusBadRequest, "Status must be one of: active, overdue, cancelled")
	case errors.Is(err, ErrInvalidRequest):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateRecord):
		RespondError(c, http.StatusConflict, "Record already exists")
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrGatewayNotConfigured):
		RespondError(c, http.StatusInternalServerError, "Payment gateway not configured")
	case errors.Is(err, ErrGatewayError):
		RespondError(c, http.StatusBadGateway, err.Error())
	default:
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

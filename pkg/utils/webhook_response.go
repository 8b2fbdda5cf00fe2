package utils

import (
	"crypto/subtle"
	"errors"
	"net/http"
)

// WebhookStatus maps a reconciliation outcome to the status code returned to
// the payment gateway. Client faults are 4xx and will not be fixed by
// redelivery; everything else is 5xx so the gateway retries.
func WebhookStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrMissingReference),
		errors.Is(err, ErrMalformedReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WebhookBody builds the JSON body for a webhook response.
func WebhookBody(err error) map[string]interface{} {
	if err == nil {
		return map[string]interface{}{"received": true}
	}
	return map[string]interface{}{"error": webhookErrorMessage(err)}
}

func webhookErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPayload):
		return err.Error()
	case errors.Is(err, ErrMissingReference):
		return ErrMissingReference.Error()
	case errors.Is(err, ErrMalformedReference):
		return ErrMalformedReference.Error()
	case errors.Is(err, ErrDataIntegrity):
		return ErrDataIntegrity.Error()
	case errors.Is(err, ErrDatabaseError), errors.Is(err, ErrDuplicateRecord):
		return ErrDatabaseError.Error()
	default:
		return "internal server error"
	}
}

// WebhookTokenMatches reports whether the token sent by the gateway matches
// the configured one. An empty expected token disables the check.
func WebhookTokenMatches(expected, provided string) bool {
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

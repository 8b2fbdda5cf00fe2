package utils

import "errors"

var (
	ErrDatabaseError   = errors.New("database error")
	ErrDuplicateRecord = errors.New("duplicate record")
	RecordNotFound     = errors.New("record not found")

	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidStatus  = errors.New("invalid subscription status")
	ErrInvalidRequest = errors.New("invalid request")

	// Webhook reconciliation.
	ErrInvalidPayload     = errors.New("invalid webhook payload")
	ErrMissingReference   = errors.New("externalReference missing from payment")
	ErrMalformedReference = errors.New("invalid externalReference format, expected company_{ID}_plan_{ID}")
	ErrDataIntegrity      = errors.New("data integrity violation")

	// Payment gateway.
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")
	ErrGatewayError         = errors.New("payment gateway error")
)

package request_models

import "github.com/shopspring/decimal"

// AsaasWebhookRequest is the body Asaas posts for payment events. Only the
// fields the reconciler reads are mapped.
type AsaasWebhookRequest struct {
	Event   string               `json:"event"`
	Payment *AsaasPaymentPayload `json:"payment"`
}

type AsaasPaymentPayload struct {
	ID                string                 `json:"id"`
	Customer          string                 `json:"customer"`
	Value             decimal.Decimal        `json:"value"`
	NetValue          decimal.Decimal        `json:"netValue"`
	BillingType       string                 `json:"billingType"`
	Status            string                 `json:"status"`
	ExternalReference string                 `json:"externalReference"`
	DueDate           string                 `json:"dueDate"`
	Metadata          map[string]interface{} `json:"metadata"`
}

package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"mibe/internal/models/request_models"
	"mibe/pkg/utils"
)

const (
	EventPaymentReceived  = "PAYMENT_RECEIVED"
	EventPaymentConfirmed = "PAYMENT_CONFIRMED"
	EventPaymentOverdue   = "PAYMENT_OVERDUE"
)

// PaymentEvent is one parsed gateway notification. The concrete type is one
// of PaymentReceivedEvent, PaymentOverdueEvent or UnknownEvent.
type PaymentEvent interface {
	Name() string
	paymentEvent()
}

// GatewayPayment carries the payment fields the reconciler reads.
type GatewayPayment struct {
	ID                string
	Value             decimal.Decimal
	ExternalReference string
	// MetadataReference is payment.metadata.externalReference.
	MetadataReference string
	// DueDate is nil when absent or unparseable.
	DueDate *time.Time
}

// PaymentReceivedEvent covers PAYMENT_RECEIVED and PAYMENT_CONFIRMED.
type PaymentReceivedEvent struct {
	Confirmed bool
	Payment   GatewayPayment
}

func (e PaymentReceivedEvent) Name() string {
	if e.Confirmed {
		return EventPaymentConfirmed
	}
	return EventPaymentReceived
}

type PaymentOverdueEvent struct {
	Payment GatewayPayment
}

func (PaymentOverdueEvent) Name() string { return EventPaymentOverdue }

// UnknownEvent is any kind the reconciler does not act on.
type UnknownEvent struct {
	Kind string
}

func (e UnknownEvent) Name() string { return e.Kind }

func (PaymentReceivedEvent) paymentEvent() {}
func (PaymentOverdueEvent) paymentEvent()  {}
func (UnknownEvent) paymentEvent()         {}

// ParsePaymentEvent decodes a webhook body. Structural problems are reported
// as utils.ErrInvalidPayload; reference problems are left to the reconciler.
func ParsePaymentEvent(raw []byte) (PaymentEvent, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty body", utils.ErrInvalidPayload)
	}

	var req request_models.AsaasWebhookRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidPayload, err)
	}

	kind := strings.TrimSpace(req.Event)
	if kind == "" {
		return nil, fmt.Errorf("%w: event is required", utils.ErrInvalidPayload)
	}

	switch kind {
	case EventPaymentReceived, EventPaymentConfirmed:
		p, err := gatewayPayment(req.Payment)
		if err != nil {
			return nil, err
		}
		return PaymentReceivedEvent{Confirmed: kind == EventPaymentConfirmed, Payment: p}, nil
	case EventPaymentOverdue:
		p, err := gatewayPayment(req.Payment)
		if err != nil {
			return nil, err
		}
		return PaymentOverdueEvent{Payment: p}, nil
	default:
		return UnknownEvent{Kind: kind}, nil
	}
}

func gatewayPayment(p *request_models.AsaasPaymentPayload) (GatewayPayment, error) {
	if p == nil {
		return GatewayPayment{}, fmt.Errorf("%w: payment is required", utils.ErrInvalidPayload)
	}
	if strings.TrimSpace(p.ID) == "" {
		return GatewayPayment{}, fmt.Errorf("%w: payment.id is required", utils.ErrInvalidPayload)
	}

	out := GatewayPayment{
		ID:                strings.TrimSpace(p.ID),
		Value:             p.Value,
		ExternalReference: p.ExternalReference,
	}
	if ref, ok := p.Metadata["externalReference"].(string); ok {
		out.MetadataReference = ref
	}
	if due, ok := utils.ParseDate(strings.TrimSpace(p.DueDate)); ok {
		out.DueDate = &due
	}
	return out, nil
}

package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Provider webhook event kinds. The union is closed over the kinds we act on;
// anything else parses into an UnknownEvent and is acknowledged without
// processing, since the provider adds event kinds over time.
const (
	EventTransactionSuccessful     = "transaction.successful"
	EventDedicatedAccountAssigned  = "dedicated_account.assigned"
	EventDedicatedAccountAssignErr = "dedicated_account.assignment_failed"
)

// WebhookEvent is the parsed form of one provider delivery.
// Exactly one of the payload fields is non-nil, selected by Kind;
// for unrecognized kinds all payloads are nil.
type WebhookEvent struct {
	Kind            string
	ChargeSucceeded *ChargeSucceededEvent
	AccountAssigned *AccountAssignedEvent
	AccountFailed   *AccountAssignmentFailedEvent
}

// IsUnknown reports whether the event kind is not one we act on.
func (e *WebhookEvent) IsUnknown() bool {
	return e.ChargeSucceeded == nil && e.AccountAssigned == nil && e.AccountFailed == nil
}

// ChargeSucceededEvent reports a completed inbound payment.
// Amount is in provider minor units. The order id travels in the metadata we
// attached when creating the payment link, which is how the event is
// correlated back to the order.
type ChargeSucceededEvent struct {
	Reference string        `json:"reference"`
	Amount    int64         `json:"amount"`
	Metadata  EventMetadata `json:"metadata"`
}

// EventMetadata is the blob echoed back by the provider.
type EventMetadata struct {
	OrderID uuid.UUID `json:"order_id"`
	CartID  uuid.UUID `json:"cart_id"`
}

// AccountAssignedEvent reports a dedicated virtual account assignment.
type AccountAssignedEvent struct {
	Customer EventCustomer `json:"customer"`
	Account  EventAccount  `json:"dedicated_account"`
}

// AccountAssignmentFailedEvent reports a failed assignment.
type AccountAssignmentFailedEvent struct {
	Customer EventCustomer `json:"customer"`
}

type EventCustomer struct {
	Email        string `json:"email"`
	CustomerCode string `json:"customer_code"`
}

type EventAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankName      string `json:"bank_name"`
}

// webhookEnvelope is the wire discriminator: {"event": "...", "data": {...}}.
type webhookEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ParseWebhookEvent decodes a raw webhook body into the event union.
// The caller must have verified the body's signature first; this function
// never sees unauthenticated input.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode webhook envelope: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("webhook envelope missing event kind")
	}

	ev := &WebhookEvent{Kind: env.Event}
	switch env.Event {
	case EventTransactionSuccessful:
		payload := &ChargeSucceededEvent{}
		if err := json.Unmarshal(env.Data, payload); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Event, err)
		}
		if payload.Metadata.OrderID == uuid.Nil {
			return nil, fmt.Errorf("%s event missing order id metadata", env.Event)
		}
		ev.ChargeSucceeded = payload
	case EventDedicatedAccountAssigned:
		payload := &AccountAssignedEvent{}
		if err := json.Unmarshal(env.Data, payload); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Event, err)
		}
		if payload.Customer.Email == "" {
			return nil, fmt.Errorf("%s event missing customer email", env.Event)
		}
		ev.AccountAssigned = payload
	case EventDedicatedAccountAssignErr:
		payload := &AccountAssignmentFailedEvent{}
		if err := json.Unmarshal(env.Data, payload); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Event, err)
		}
		if payload.Customer.Email == "" {
			return nil, fmt.Errorf("%s event missing customer email", env.Event)
		}
		ev.AccountFailed = payload
	}
	return ev, nil
}

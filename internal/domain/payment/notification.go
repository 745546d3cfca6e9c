package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrMalformedPayload = errors.New("unrecognised payment notification payload")

// Payload is what the webhook body decodes to: either an Envelope or a BareOrder.
type Payload interface {
	payload()
}

// OrderObject is the order representation shared by both payload shapes.
type OrderObject struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	TxnID         string `json:"txn_id"`
	TransactionID string `json:"transaction_id"`
	Amount        Amount `json:"amount"`
}

func (o OrderObject) transactionID() string {
	if o.TxnID != "" {
		return o.TxnID
	}
	return o.TransactionID
}

// Envelope is an event notification with the order nested under content.order or order.
type Envelope struct {
	EventName string
	Order     OrderObject
}

// BareOrder is the order object posted on its own.
type BareOrder struct {
	Order OrderObject
}

func (Envelope) payload()  {}
func (BareOrder) payload() {}

// Amount accepts both JSON numbers and numeric strings.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

type rawEnvelope struct {
	EventName *string      `json:"event_name"`
	Order     *OrderObject `json:"order"`
	Content   *struct {
		Order *OrderObject `json:"order"`
	} `json:"content"`
	OrderID *string `json:"order_id"`
}

// DecodePayload resolves the body to exactly one payload shape.
func DecodePayload(raw []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedPayload
	}

	if hasEscapedNUL(trimmed) {
		return nil, ErrMalformedPayload
	}

	var head rawEnvelope
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	if head.EventName != nil {
		order := head.Order
		if head.Content != nil && head.Content.Order != nil {
			order = head.Content.Order
		}
		if order == nil || strings.TrimSpace(order.OrderID) == "" {
			return nil, ErrMalformedPayload
		}
		return Envelope{EventName: *head.EventName, Order: *order}, nil
	}

	if head.OrderID != nil {
		var order OrderObject
		if err := json.Unmarshal(trimmed, &order); err != nil {
			return nil, errors.Join(ErrMalformedPayload, err)
		}
		if strings.TrimSpace(order.OrderID) == "" || strings.TrimSpace(order.Status) == "" {
			return nil, ErrMalformedPayload
		}
		return BareOrder{Order: order}, nil
	}

	return nil, ErrMalformedPayload
}

// hasEscapedNUL reports whether the JSON text carries a \u0000 escape. Postgres
// jsonb cannot store U+0000, so such a body could never be audited.
func hasEscapedNUL(b []byte) bool {
	for i := 0; i < len(b); {
		j := bytes.Index(b[i:], []byte("u0000"))
		if j < 0 {
			return false
		}
		at := i + j
		slashes := 0
		for k := at - 1; k >= 0 && b[k] == '\\'; k-- {
			slashes++
		}
		if slashes%2 == 1 {
			return true
		}
		i = at + 1
	}
	return false
}

// Notification is the canonical form every payload shape resolves to.
type Notification struct {
	OrderID       string
	Signal        Signal
	TransactionID string
	Amount        Amount
	EventName     string
	// Raw is the original body, kept verbatim for the audit column.
	Raw json.RawMessage
}

// Canonicalize flattens a decoded payload. For envelopes a recognised event
// name is authoritative; otherwise the nested order status is used.
func Canonicalize(p Payload, raw []byte) (Notification, error) {
	switch v := p.(type) {
	case Envelope:
		sig := NewSignal(v.EventName)
		if !sig.Recognized() && v.Order.Status != "" {
			sig = NewSignal(v.Order.Status)
		}
		return Notification{
			OrderID:       strings.TrimSpace(v.Order.OrderID),
			Signal:        sig,
			TransactionID: v.Order.transactionID(),
			Amount:        v.Order.Amount,
			EventName:     v.EventName,
			Raw:           json.RawMessage(raw),
		}, nil
	case BareOrder:
		return Notification{
			OrderID:       strings.TrimSpace(v.Order.OrderID),
			Signal:        NewSignal(v.Order.Status),
			TransactionID: v.Order.transactionID(),
			Amount:        v.Order.Amount,
			Raw:           json.RawMessage(raw),
		}, nil
	default:
		return Notification{}, ErrMalformedPayload
	}
}

func ParseNotification(raw []byte) (Notification, error) {
	p, err := DecodePayload(raw)
	if err != nil {
		return Notification{}, err
	}
	return Canonicalize(p, bytes.TrimSpace(raw))
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
)

const maxResponseBytes = 1 << 20

var errOrderExists = errs.New("gateway order already exists")

// SmartGateway talks to an order/session style hosted payment page API.
// Every call is keyed by the merchant order id, so retries are safe.
type SmartGateway struct {
	baseURL         string
	apiKey          string
	merchantID      string
	clientID        string
	returnURL       string
	http            *http.Client
	maxRetries      uint64
	initialInterval time.Duration
}

func NewSmartGateway(cfg config.GatewayConfig, client *http.Client) *SmartGateway {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &SmartGateway{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		merchantID:      cfg.MerchantID,
		clientID:        cfg.PaymentPageClientID,
		returnURL:       cfg.ReturnURL,
		http:            client,
		maxRetries:      uint64(retries),
		initialInterval: 300 * time.Millisecond,
	}
}

type orderResponse struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func (g *SmartGateway) CreateOrder(ctx context.Context, req shared.CreateOrderRequest) (*shared.OrderResult, error) {
	form := url.Values{}
	form.Set("order_id", req.OrderID.String())
	form.Set("amount", req.Amount.Decimal())
	form.Set("currency", req.Amount.Currency())
	form.Set("customer_id", req.Payer.ID.String())
	form.Set("customer_email", req.Payer.Email)
	form.Set("customer_phone", req.Payer.Phone)
	form.Set("description", req.Description)
	form.Set("udf1", req.Beneficiary.String())
	form.Set("return_url", g.returnURL)

	var out orderResponse
	_, err := g.do(ctx, http.MethodPost, "/orders", "application/x-www-form-urlencoded", []byte(form.Encode()), &out)
	if errs.Is(err, errOrderExists) {
		// A previous attempt reached the gateway; adopt that order.
		st, stErr := g.GetOrderStatus(ctx, req.OrderID)
		if stErr != nil {
			return nil, stErr
		}
		return &shared.OrderResult{GatewayOrderID: gatewayID(st.Raw), Status: st.Status}, nil
	}
	if err != nil {
		return nil, err
	}
	return &shared.OrderResult{GatewayOrderID: out.ID, Status: out.Status}, nil
}

type sessionRequest struct {
	OrderID             string `json:"order_id"`
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	CustomerID          string `json:"customer_id"`
	CustomerEmail       string `json:"customer_email,omitempty"`
	CustomerPhone       string `json:"customer_phone,omitempty"`
	FirstName           string `json:"first_name,omitempty"`
	PaymentPageClientID string `json:"payment_page_client_id"`
	Action              string `json:"action"`
	ReturnURL           string `json:"return_url"`
}

type sessionResponse struct {
	ID           string `json:"id"`
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	PaymentLinks struct {
		Web string `json:"web"`
	} `json:"payment_links"`
}

func (g *SmartGateway) CreatePaymentSession(ctx context.Context, req shared.CreateSessionRequest) (*shared.SessionResult, error) {
	body, err := json.Marshal(sessionRequest{
		OrderID:             req.OrderID.String(),
		Amount:              req.Amount.Decimal(),
		Currency:            req.Amount.Currency(),
		CustomerID:          req.Payer.ID.String(),
		CustomerEmail:       req.Payer.Email,
		CustomerPhone:       req.Payer.Phone,
		FirstName:           req.Payer.Name,
		PaymentPageClientID: g.clientID,
		Action:              "paymentPage",
		ReturnURL:           g.returnURL,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode session request")
	}

	var out sessionResponse
	if _, err := g.do(ctx, http.MethodPost, "/session", "application/json", body, &out); err != nil {
		return nil, err
	}
	if out.PaymentLinks.Web == "" {
		return nil, errs.Mark(errs.New("session response has no payment link"), shared.ErrGatewayRejected)
	}
	return &shared.SessionResult{SessionID: out.ID, PaymentURL: out.PaymentLinks.Web}, nil
}

type statusResponse struct {
	ID      string      `json:"id"`
	OrderID string      `json:"order_id"`
	Status  string      `json:"status"`
	TxnID   string      `json:"txn_id"`
	Amount  json.Number `json:"amount"`
}

func (g *SmartGateway) GetOrderStatus(ctx context.Context, orderID booking.OrderID) (*shared.OrderStatus, error) {
	var out statusResponse
	raw, err := g.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID.String()), "", nil, &out)
	if err != nil {
		return nil, err
	}
	return &shared.OrderStatus{
		OrderID:       out.OrderID,
		Status:        out.Status,
		TransactionID: out.TxnID,
		Amount:        out.Amount.String(),
		Raw:           raw,
	}, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.code, e.body)
}

// do sends one request with bounded exponential retry on transport errors and 5xx.
// 4xx answers are final.
func (g *SmartGateway) do(ctx context.Context, method, path, contentType string, body []byte, out any) (json.RawMessage, error) {
	var raw []byte
	attempt := 0

	op := func() error {
		attempt++
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.SetBasicAuth(g.apiKey, "")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-merchantid", g.merchantID)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := g.http.Do(req)
		if err != nil {
			slog.Warn("gateway request failed", "method", method, "path", path, "attempt", attempt, "error", err.Error())
			return err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			slog.Warn("gateway server error", "method", method, "path", path, "attempt", attempt, "status", resp.StatusCode)
			return &statusError{code: resp.StatusCode, body: truncate(payload)}
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(errs.Mark(&statusError{code: resp.StatusCode, body: truncate(payload)}, shared.ErrGatewayOrderNotFound))
		case resp.StatusCode == http.StatusConflict:
			return backoff.Permanent(errs.Mark(&statusError{code: resp.StatusCode, body: truncate(payload)}, errOrderExists))
		case resp.StatusCode >= http.StatusBadRequest:
			return backoff.Permanent(errs.Mark(&statusError{code: resp.StatusCode, body: truncate(payload)}, shared.ErrGatewayRejected))
		}

		if out != nil {
			if err := json.Unmarshal(payload, out); err != nil {
				return backoff.Permanent(errs.Mark(errs.Wrap(err, "failed to decode gateway response"), shared.ErrGatewayRejected))
			}
		}
		raw = payload
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.initialInterval
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, g.maxRetries), ctx))
	if err != nil {
		if errs.Is(err, shared.ErrGatewayRejected) || errs.Is(err, shared.ErrGatewayOrderNotFound) || errs.Is(err, errOrderExists) {
			return nil, err
		}
		return nil, errs.Mark(errs.Wrapf(err, "%s %s", method, path), shared.ErrGatewayUnavailable)
	}
	return raw, nil
}

func gatewayID(raw json.RawMessage) string {
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v.ID
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

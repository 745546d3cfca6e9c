//go:build unit

package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"mentor-booking/internal/infra/gateway"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/usecase/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveGateway(srv *httptest.Server, retries int) *gateway.SmartGateway {
	return gateway.NewSmartGateway(config.GatewayConfig{
		Mode:                config.GatewayModeLive,
		BaseURL:             srv.URL,
		APIKey:              "key_123",
		MerchantID:          "mentor_merchant",
		PaymentPageClientID: "mentor_client",
		ReturnURL:           "http://localhost/return",
		Timeout:             2 * time.Second,
		MaxRetries:          retries,
	}, srv.Client())
}

func TestSmartGateway_CreateOrder(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "mentor_merchant", r.Header.Get("x-merchantid"))
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_123", user)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		_, _ = io.WriteString(w, `{"id":"ordeh_1","order_id":"MB261016101500ABC123","status":"NEW"}`)
	}))
	defer srv.Close()

	res, err := liveGateway(srv, 0).CreateOrder(context.Background(), newOrderRequest(t, "MB261016101500ABC123"))
	require.NoError(t, err)

	assert.Equal(t, "ordeh_1", res.GatewayOrderID)
	assert.Equal(t, "NEW", res.Status)
	assert.Equal(t, "MB261016101500ABC123", form.Get("order_id"))
	assert.Equal(t, "1500.00", form.Get("amount"))
	assert.Equal(t, "INR", form.Get("currency"))
}

func TestSmartGateway_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"id":"ordeh_2","status":"NEW"}`)
	}))
	defer srv.Close()

	res, err := liveGateway(srv, 3).CreateOrder(context.Background(), newOrderRequest(t, "MB261016101500ABC123"))
	require.NoError(t, err)
	assert.Equal(t, "ordeh_2", res.GatewayOrderID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSmartGateway_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := liveGateway(srv, 1).CreateOrder(context.Background(), newOrderRequest(t, "MB261016101500ABC123"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, shared.ErrGatewayUnavailable))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSmartGateway_ClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error_message":"amount invalid"}`)
	}))
	defer srv.Close()

	_, err := liveGateway(srv, 3).CreateOrder(context.Background(), newOrderRequest(t, "MB261016101500ABC123"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, shared.ErrGatewayRejected))
	assert.False(t, errs.Is(err, shared.ErrGatewayUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}

func TestSmartGateway_ConflictAdoptsExistingOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/orders":
			w.WriteHeader(http.StatusConflict)
		case r.Method == http.MethodGet && r.URL.Path == "/orders/MB261016101500ABC123":
			_, _ = io.WriteString(w, `{"id":"ordeh_3","order_id":"MB261016101500ABC123","status":"PENDING_VBV","amount":1500.00}`)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	res, err := liveGateway(srv, 0).CreateOrder(context.Background(), newOrderRequest(t, "MB261016101500ABC123"))
	require.NoError(t, err)
	assert.Equal(t, "ordeh_3", res.GatewayOrderID)
	assert.Equal(t, "PENDING_VBV", res.Status)
}

func TestSmartGateway_Session(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/session", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "paymentPage", body["action"])
		assert.Equal(t, "mentor_client", body["payment_page_client_id"])
		_, _ = io.WriteString(w, `{"id":"sess_1","payment_links":{"web":"https://pay.example/sess_1"}}`)
	}))
	defer srv.Close()

	req := newOrderRequest(t, "MB261016101500ABC123")
	res, err := liveGateway(srv, 0).CreatePaymentSession(context.Background(), shared.CreateSessionRequest{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Payer:   req.Payer,
	})
	require.NoError(t, err)
	assert.Equal(t, "sess_1", res.SessionID)
	assert.Equal(t, "https://pay.example/sess_1", res.PaymentURL)
}

func TestSmartGateway_GetOrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/MB261016101500ABC123" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"id":"ordeh_1","order_id":"MB261016101500ABC123","status":"CHARGED","txn_id":"txn_9","amount":1500.00}`)
	}))
	defer srv.Close()

	gw := liveGateway(srv, 0)
	req := newOrderRequest(t, "MB261016101500ABC123")

	st, err := gw.GetOrderStatus(context.Background(), req.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "CHARGED", st.Status)
	assert.Equal(t, "txn_9", st.TransactionID)
	assert.Equal(t, "1500.00", st.Amount)
	assert.JSONEq(t, `{"id":"ordeh_1","order_id":"MB261016101500ABC123","status":"CHARGED","txn_id":"txn_9","amount":1500.00}`, string(st.Raw))

	missing := newOrderRequest(t, "MB261016101500ABC124")
	_, err = gw.GetOrderStatus(context.Background(), missing.OrderID)
	assert.True(t, errs.Is(err, shared.ErrGatewayOrderNotFound))
}

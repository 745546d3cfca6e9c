//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/domain/payment"
	"mentor-booking/internal/handler/api"
	resdto "mentor-booking/internal/handler/dto/response"
	"mentor-booking/internal/handler/httperr"
	"mentor-booking/internal/handler/middleware"
	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/testutil/httptest"
	commandsmock "mentor-booking/internal/testutil/mock/commands"
	"mentor-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const (
	webhookURL    = "/api/payments/webhook"
	webhookSecret = "whsec_test"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockSettlement *commandsmock.MockSettlementCommands
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockCtrl = gomock.NewController(s.T())
	s.mockSettlement = commandsmock.NewMockSettlementCommands(s.mockCtrl)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *WebhookHandlerTestSuite) router(secret string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	h := api.NewWebhookHandler(s.mockSettlement, config.WebhookConfig{
		Secret:          secret,
		SignatureHeader: "X-Webhook-Signature",
	})
	r.POST(webhookURL, h.Handle)
	return r
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) TestHandle() {
	body := []byte(`{"event_name":"ORDER_SUCCEEDED","content":{"order":{"order_id":"MB261016101500ABC123","status":"CHARGED","amount":"1500.00"}}}`)
	signed := map[string]string{"X-Webhook-Signature": payment.Sign(webhookSecret, body)}
	applied := &commands.ReconciliationResult{
		Success:       true,
		BookingID:     uuid.New(),
		OrderID:       "MB261016101500ABC123",
		PaymentStatus: booking.PaymentPaid,
		BookingStatus: booking.BookingConfirmed,
		Transition:    booking.TransitionApplied,
	}

	s.Run("success: signed callback is settled", func() {
		s.mockSettlement.EXPECT().HandleCallback(gomock.Any(), body).Return(applied, nil)

		rec := httptest.PerformRawRequest(s.T(), s.router(webhookSecret), http.MethodPost, webhookURL, body, "", signed)

		var resp resdto.WebhookResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal(resdto.WebhookResponse{
			BookingID:     applied.BookingID,
			OrderID:       "MB261016101500ABC123",
			PaymentStatus: "paid",
			BookingStatus: "confirmed",
			Transition:    "applied",
		}, resp)
	})

	s.Run("success: prefixed signature is accepted", func() {
		s.mockSettlement.EXPECT().HandleCallback(gomock.Any(), body).Return(applied, nil)

		rec := httptest.PerformRawRequest(s.T(), s.router(webhookSecret), http.MethodPost, webhookURL, body, "",
			map[string]string{"X-Webhook-Signature": "sha256=" + payment.Sign(webhookSecret, body)})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("success: verification is skipped without a secret", func() {
		s.mockSettlement.EXPECT().HandleCallback(gomock.Any(), body).Return(applied, nil)

		rec := httptest.PerformRawRequest(s.T(), s.router(""), http.MethodPost, webhookURL, body, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: 401 for missing or wrong signatures", func() {
		cases := map[string]map[string]string{
			"missing":      {},
			"wrong secret": {"X-Webhook-Signature": payment.Sign("other", body)},
			"not hex":      {"X-Webhook-Signature": "zzzz"},
		}
		for name, headers := range cases {
			s.Run(name, func() {
				rec := httptest.PerformRawRequest(s.T(), s.router(webhookSecret), http.MethodPost, webhookURL, body, "", headers)
				httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, httperr.CodeSignatureInvalid)
			})
		}
	})

	s.Run("error: 401 when the body was altered after signing", func() {
		tampered := append([]byte{}, body...)
		tampered[len(tampered)-3] = '9'
		rec := httptest.PerformRawRequest(s.T(), s.router(webhookSecret), http.MethodPost, webhookURL, tampered, "", signed)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, httperr.CodeSignatureInvalid)
	})

	s.Run("error: maps settlement errors", func() {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"malformed", errs.Mark(errors.New("no order id"), commands.ErrMalformedCallback), http.StatusBadRequest, httperr.CodeInvalidRequest},
			{"unknown order", commands.ErrBookingNotFound, http.StatusNotFound, httperr.CodeNotFound},
			{"database", errs.Mark(errors.New("conn reset"), commands.ErrDatabaseOperation), http.StatusInternalServerError, httperr.CodeInternal},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockSettlement.EXPECT().HandleCallback(gomock.Any(), body).Return(nil, tc.err)
				rec := httptest.PerformRawRequest(s.T(), s.router(webhookSecret), http.MethodPost, webhookURL, body, "", signed)
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.code)
			})
		}
	})
}

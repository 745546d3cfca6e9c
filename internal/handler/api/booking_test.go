//go:build unit

package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"mentor-booking/internal/domain/booking"
	"mentor-booking/internal/domain/slot"
	"mentor-booking/internal/domain/user"
	"mentor-booking/internal/handler/api"
	resdto "mentor-booking/internal/handler/dto/response"
	"mentor-booking/internal/handler/httperr"
	"mentor-booking/internal/handler/middleware"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/testutil/builder"
	"mentor-booking/internal/testutil/fields"
	"mentor-booking/internal/testutil/httptest"
	commandsmock "mentor-booking/internal/testutil/mock/commands"
	queriesmock "mentor-booking/internal/testutil/mock/queries"
	usecasemock "mentor-booking/internal/testutil/mock/usecase"
	"mentor-booking/internal/usecase"
	"mentor-booking/internal/usecase/commands"
	"mentor-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const bearer = "payer-token"

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	principal    usecase.Principal
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.principal = usecase.Principal{UserID: uuid.New(), Role: user.RoleMentee}

	validator := usecasemock.NewMockTokenValidator(s.mockCtrl)
	validator.EXPECT().ValidateToken(bearer).Return(s.principal, nil).AnyTimes()
	validator.EXPECT().ValidateToken(gomock.Not(bearer)).Return(usecase.Principal{}, errors.New("bad token")).AnyTimes()
	auth := middleware.NewAuthMiddleware(validator)

	h := api.NewBookingHandler(s.mockCommands, s.mockQueries)
	s.router.Use(middleware.ErrorHandler())
	g := s.router.Group("/api/bookings", auth.RequireAuth())
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/:id/payment", h.RetryPayment)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *BookingHandlerTestSuite) TestCreate() {
	url := "/api/bookings"
	b := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.PayerID = s.principal.UserID })
	reqBody := b.BuildCreateRequestDTO()
	domain := b.BuildDomain()
	view := b.BuildView()
	paid := commands.PaymentResult{
		Success:        true,
		GatewayOrderID: "ordeh_1",
		GatewayStatus:  "NEW",
		SessionID:      "sess_1",
		PaymentURL:     "https://pay.example/sess_1",
	}

	s.Run("success: 201 with booking and payment url", func() {
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, in commands.CreateBookingInput) (*commands.CreateBookingResult, error) {
				s.Equal(s.principal.UserID, in.PayerID)
				s.Equal(b.MentorID, in.MentorID)
				s.Equal(b.SlotIDs, in.SlotIDs)
				s.Require().NotNil(in.ExpectedAmountCents)
				s.Equal(int64(150000), *in.ExpectedAmountCents)
				s.Nil(in.IdempotencyKey)
				return &commands.CreateBookingResult{Booking: domain, Payment: paid}, nil
			})
		s.mockQueries.EXPECT().GetByIDSystem(gomock.Any(), domain.ID()).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, bearer)

		var body resdto.CreateBookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(domain.ID(), body.Booking.ID)
		s.Equal("pending", body.Booking.BookingStatus)
		s.Equal("MB261016101500ABC123", body.Booking.OrderID)
		s.Equal("2026-11-02", body.Booking.Slots[0].Date)
		s.Equal("https://pay.example/sess_1", body.Payment.PaymentURL)
		s.False(body.Replayed)
	})

	s.Run("success: idempotency key is forwarded and replays are flagged", func() {
		key := uuid.New()
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, in commands.CreateBookingInput) (*commands.CreateBookingResult, error) {
				s.Require().NotNil(in.IdempotencyKey)
				s.Equal(key, *in.IdempotencyKey)
				return &commands.CreateBookingResult{Booking: domain, Payment: paid, IsReplayed: true}, nil
			})
		s.mockQueries.EXPECT().GetByIDSystem(gomock.Any(), domain.ID()).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, bearer,
			map[string]string{"Idempotency-Key": key.String()})

		var body resdto.CreateBookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.True(body.Replayed)
		httptest.AssertHeaders(s.T(), rec, map[string]string{"Idempotent-Replayed": "true"})
	})

	s.Run("error: 400 for a malformed idempotency key", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, bearer,
			map[string]string{"Idempotency-Key": "not-a-uuid"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, httperr.CodeInvalidRequest)
	})

	s.Run("error: 400 on binding failures", func() {
		cases := []struct {
			name   string
			mutate func(map[string]any)
		}{
			{name: "missing mentor_id", mutate: fields.Field("mentor_id", nil)},
			{name: "missing slot_ids", mutate: fields.Field("slot_ids", nil)},
			{name: "empty slot_ids", mutate: fields.Field("slot_ids", []string{})},
			{name: "slot id not a uuid", mutate: fields.Field("slot_ids", []string{"nope"})},
			{name: "negative amount", mutate: fields.Field("amount_cents", -1)},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, fields.DtoMap(s.T(), reqBody, tc.mutate), bearer)
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, httperr.CodeInvalidRequest)
			})
		}
	})

	s.Run("error: 401 without a valid token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, httperr.CodeUnauthorized)

		rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "forged")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})

	s.Run("error: 409 lists the unavailable slots", func() {
		taken := b.SlotIDs[0]
		conflict := &slot.ConflictError{Unavailable: []slot.Unavailability{{SlotID: taken, Reason: slot.ReasonBooked}}}
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).Return(nil, conflict)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, bearer)
		body := httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, httperr.CodeSlotUnavailable)

		var detail []resdto.SlotUnavailableDetail
		s.Require().NoError(json.Unmarshal(body.Detail, &detail))
		s.Equal([]resdto.SlotUnavailableDetail{{SlotID: taken, Reason: "booked"}}, detail)
	})

	s.Run("error: 502 keeps the reserved booking in detail", func() {
		failed := commands.PaymentResult{Error: "payment gateway unavailable"}
		s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).
			Return(&commands.CreateBookingResult{Booking: domain, Payment: failed}, nil)
		s.mockQueries.EXPECT().GetByIDSystem(gomock.Any(), domain.ID()).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, bearer)
		body := httptest.AssertErrorResponse(s.T(), rec, http.StatusBadGateway, httperr.CodeGatewayFailure)

		var detail resdto.CreateBookingResponse
		s.Require().NoError(json.Unmarshal(body.Detail, &detail))
		s.Equal(domain.ID(), detail.Booking.ID)
		s.Equal("payment gateway unavailable", detail.Payment.Error)
	})

	s.Run("error: maps use case errors", func() {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"validation", errs.Mark(booking.ErrAmountMismatch, commands.ErrInvalidBookingRequest), http.StatusBadRequest, httperr.CodeInvalidRequest},
			{"key reuse", commands.ErrIdempotencyKeyReuse, http.StatusConflict, httperr.CodeIdempotency},
			{"key in flight", commands.ErrIdempotencyInProgress, http.StatusConflict, httperr.CodeIdempotency},
			{"database", errs.Mark(errors.New("conn reset"), commands.ErrDatabaseOperation), http.StatusInternalServerError, httperr.CodeInternal},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).Return(nil, tc.err)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, bearer)
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.code)
			})
		}
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *BookingHandlerTestSuite) TestGet() {
	view := builder.NewBookingBuilder().BuildView()
	url := "/api/bookings/" + view.ID.String()

	s.Run("success: 200", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.principal, view.ID).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, bearer)

		var body resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.ID, body.ID)
		s.Equal(view.MentorName, body.MentorName)
		s.Nil(body.MeetingLink)
		s.Len(body.Slots, 1)
	})

	s.Run("error: 400 for invalid uuid", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings/nope", nil, bearer)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, httperr.CodeInvalidRequest)
	})

	s.Run("error: 404 when missing or not visible", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.principal, view.ID).Return(nil, queries.ErrBookingNotFound)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, bearer)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, httperr.CodeNotFound)
	})

	s.Run("error: 500 on query failure", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.principal, view.ID).Return(nil, errors.New("boom"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, bearer)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, httperr.CodeInternal)
	})
}

// ================================================================================
// TestRetryPayment
// ================================================================================

func (s *BookingHandlerTestSuite) TestRetryPayment() {
	id := uuid.New()
	url := "/api/bookings/" + id.String() + "/payment"

	s.Run("success: 200 with payment url", func() {
		s.mockCommands.EXPECT().RetryPayment(gomock.Any(), s.principal.UserID, id).
			Return(&commands.PaymentResult{Success: true, PaymentURL: "https://pay.example/2"}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, bearer)

		var body resdto.PaymentResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("https://pay.example/2", body.PaymentURL)
	})

	s.Run("error: maps use case errors", func() {
		cases := []struct {
			name   string
			result *commands.PaymentResult
			err    error
			status int
			code   string
		}{
			{"not found", nil, commands.ErrBookingNotFound, http.StatusNotFound, httperr.CodeNotFound},
			{"not the payer", nil, commands.ErrBookingAccessDenied, http.StatusForbidden, httperr.CodeForbidden},
			{"already settled", nil, commands.ErrBookingNotPayable, http.StatusConflict, httperr.CodeNotPayable},
			{"gateway down", &commands.PaymentResult{Error: "timeout"}, errs.Mark(errors.New("timeout"), commands.ErrGatewayFailure), http.StatusBadGateway, httperr.CodeGatewayFailure},
			{"unexpected", nil, errors.New("boom"), http.StatusInternalServerError, httperr.CodeInternal},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().RetryPayment(gomock.Any(), s.principal.UserID, id).Return(tc.result, tc.err)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, bearer)
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.code)
			})
		}
	})
}

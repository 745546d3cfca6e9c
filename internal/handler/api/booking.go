package api

import (
	"errors"
	"net/http"

	"mentor-booking/internal/domain/slot"
	reqdto "mentor-booking/internal/handler/dto/request"
	resdto "mentor-booking/internal/handler/dto/response"
	"mentor-booking/internal/handler/httperr"
	"mentor-booking/internal/handler/middleware"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/usecase/commands"
	"mentor-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerIdempotencyKey = "Idempotency-Key"

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create booking
// @Description Reserve one or more slots of a mentor and open a payment for them
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "UUID that makes retries of this request safe"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing principal"), httperr.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	key, err := idempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeInvalidRequest, "Idempotency-Key must be a UUID", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeInvalidRequest, "Invalid request", nil)
		return
	}

	result, err := h.cmds.CreateBooking(c.Request.Context(), req.ToInput(principal.UserID, key))
	if err != nil {
		abortCreateError(c, err)
		return
	}

	view, err := h.q.GetByIDSystem(c.Request.Context(), result.Booking.ID())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Failed to load booking", nil)
		return
	}

	resp := resdto.CreateBookingResponse{
		Booking:  resdto.FromBookingView(view),
		Payment:  resdto.FromPaymentResult(result.Payment),
		Replayed: result.IsReplayed,
	}
	if result.IsReplayed {
		c.Header("Idempotent-Replayed", "true")
	}
	if !result.Payment.Success {
		// The booking stays pending; the client can retry payment against it.
		httperr.AbortWithError(c, http.StatusBadGateway, errors.New(result.Payment.Error),
			httperr.CodeGatewayFailure, "Booking reserved but payment could not be started", resp)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func abortCreateError(c *gin.Context, err error) {
	var conflict *slot.ConflictError
	switch {
	case errors.As(err, &conflict):
		detail := make([]resdto.SlotUnavailableDetail, len(conflict.Unavailable))
		for i, u := range conflict.Unavailable {
			detail[i] = resdto.SlotUnavailableDetail{SlotID: u.SlotID, Reason: string(u.Reason)}
		}
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeSlotUnavailable, "One or more slots are no longer available", detail)
	case errs.Is(err, commands.ErrInvalidBookingRequest):
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeInvalidRequest, err.Error(), nil)
	case errs.Is(err, commands.ErrIdempotencyKeyReuse):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeIdempotency, "Idempotency-Key was used with a different request", nil)
	case errs.Is(err, commands.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeIdempotency, "A request with this Idempotency-Key is still being processed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
	}
}

// @Summary Get booking
// @Description Get a booking visible to the payer or the mentor
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeInvalidRequest, "Invalid booking id", nil)
		return
	}
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing principal"), httperr.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		if errs.Is(err, queries.ErrBookingNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Booking not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Retry payment
// @Description Open a new payment session for a pending booking, reusing its order id
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.PaymentResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /bookings/{id}/payment [post]
func (h *BookingHandler) RetryPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeInvalidRequest, "Invalid booking id", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing principal"), httperr.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	result, err := h.cmds.RetryPayment(c.Request.Context(), userID, id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resdto.FromPaymentResult(*result))
	case errs.Is(err, commands.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Booking not found", nil)
	case errs.Is(err, commands.ErrBookingAccessDenied):
		httperr.AbortWithError(c, http.StatusForbidden, err, httperr.CodeForbidden, "Only the payer can pay for this booking", nil)
	case errs.Is(err, commands.ErrBookingNotPayable):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeNotPayable, "Booking is no longer awaiting payment", nil)
	case errs.Is(err, commands.ErrGatewayFailure):
		var detail any
		if result != nil {
			detail = resdto.FromPaymentResult(*result)
		}
		httperr.AbortWithError(c, http.StatusBadGateway, err, httperr.CodeGatewayFailure, "Payment could not be started", detail)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
	}
}

func idempotencyKey(c *gin.Context) (*uuid.UUID, error) {
	raw := c.GetHeader(headerIdempotencyKey)
	if raw == "" {
		return nil, nil
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

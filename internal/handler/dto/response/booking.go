package response

import (
	"time"

	"mentor-booking/internal/usecase/commands"
	"mentor-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID             uuid.UUID      `json:"id"`
	PayerID        uuid.UUID      `json:"payerId"`
	MentorID       uuid.UUID      `json:"mentorId"`
	MentorName     string         `json:"mentorName"`
	AmountCents    int64          `json:"amountCents"`
	Currency       string         `json:"currency"`
	BookingStatus  string         `json:"bookingStatus"`
	PaymentStatus  string         `json:"paymentStatus"`
	OrderID        string         `json:"orderId"`
	GatewayOrderID *string        `json:"gatewayOrderId,omitempty"`
	MeetingLink    *string        `json:"meetingLink"`
	SessionStart   time.Time      `json:"sessionStart"`
	SessionEnd     time.Time      `json:"sessionEnd"`
	Slots          []SlotResponse `json:"slots" copier:"-"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type SlotResponse struct {
	ID         uuid.UUID `json:"id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"startTime"`
	EndTime    string    `json:"endTime"`
	PriceCents int64     `json:"priceCents"`
}

type PaymentResponse struct {
	GatewayOrderID string `json:"gatewayOrderId,omitempty"`
	GatewayStatus  string `json:"gatewayStatus,omitempty"`
	SessionID      string `json:"sessionId,omitempty"`
	PaymentURL     string `json:"paymentUrl,omitempty"`
	Error          string `json:"error,omitempty"`
}

type CreateBookingResponse struct {
	Booking  *BookingResponse `json:"booking"`
	Payment  PaymentResponse  `json:"payment"`
	Replayed bool             `json:"replayed"`
}

type WebhookResponse struct {
	BookingID     uuid.UUID `json:"bookingId"`
	OrderID       string    `json:"orderId"`
	PaymentStatus string    `json:"paymentStatus"`
	BookingStatus string    `json:"bookingStatus"`
	Transition    string    `json:"transition"`
}

type SlotUnavailableDetail struct {
	SlotID uuid.UUID `json:"slotId"`
	Reason string    `json:"reason"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	resp := &BookingResponse{}
	// slots are converted by hand for the date format
	_ = copier.Copy(resp, v)
	resp.Slots = make([]SlotResponse, len(v.Slots))
	for i, s := range v.Slots {
		resp.Slots[i] = SlotResponse{
			ID:         s.ID,
			Date:       s.Date.Format(time.DateOnly),
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			PriceCents: s.PriceCents,
		}
	}
	return resp
}

func FromPaymentResult(r commands.PaymentResult) PaymentResponse {
	var resp PaymentResponse
	_ = copier.Copy(&resp, &r)
	return resp
}

func FromReconciliationResult(r *commands.ReconciliationResult) WebhookResponse {
	return WebhookResponse{
		BookingID:     r.BookingID,
		OrderID:       r.OrderID,
		PaymentStatus: r.PaymentStatus.String(),
		BookingStatus: r.BookingStatus.String(),
		Transition:    string(r.Transition),
	}
}

package queries

//go:generate mockgen -source=booking.go -destination=../../testutil/mock/queries/booking_mock.go -package=queriesmock

import (
	"context"
	"time"

	"mentor-booking/internal/infra"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/usecase"
	"mentor-booking/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var ErrBookingNotFound = errs.New("booking not found")

type BookingView struct {
	ID             uuid.UUID         `json:"id"`
	PayerID        uuid.UUID         `json:"payer_id"`
	MentorID       uuid.UUID         `json:"mentor_id"`
	MentorName     string            `json:"mentor_name"`
	AmountCents    int64             `json:"amount_cents"`
	Currency       string            `json:"currency"`
	BookingStatus  string            `json:"booking_status"`
	PaymentStatus  string            `json:"payment_status"`
	OrderID        string            `json:"order_id"`
	GatewayOrderID *string           `json:"gateway_order_id,omitempty"`
	GatewayStatus  *string           `json:"gateway_status,omitempty"`
	MeetingLink    *string           `json:"meeting_link"`
	SessionStart   time.Time         `json:"session_start"`
	SessionEnd     time.Time         `json:"session_end"`
	Slots          []BookingSlotView `json:"slots"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type BookingSlotView struct {
	ID         uuid.UUID `json:"id"`
	Date       time.Time `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	PriceCents int64     `json:"price_cents"`
}

type BookingQueries interface {
	GetByID(ctx context.Context, actor usecase.Principal, id uuid.UUID) (*BookingView, error)
	// GetByIDSystem skips the access check; for read-after-write inside the service.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error)
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*readmodel.BookingRM, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor usecase.Principal, id uuid.UUID) (*BookingView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	// Not-found rather than forbidden so ids of other people's bookings are not confirmed.
	if !actor.CanView(view.PayerID, view.MentorID) {
		return nil, ErrBookingNotFound
	}
	return view, nil
}

func (q *bookingQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	rm, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	var view BookingView
	if err := copier.Copy(&view, rm); err != nil {
		return nil, errs.Wrap(err, "failed to map booking view")
	}
	if view.Slots == nil {
		view.Slots = []BookingSlotView{}
	}
	return &view, nil
}

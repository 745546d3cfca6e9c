//go:build unit || e2e

package builder

import (
	"time"

	"mentor-booking/internal/domain/slot"

	"github.com/google/uuid"
)

type SlotBuilder struct {
	ID         uuid.UUID
	MentorID   uuid.UUID
	Date       time.Time
	StartTime  time.Duration
	EndTime    time.Duration
	IsBooked   bool
	IsActive   bool
	PriceCents int64
}

func NewSlotBuilder() *SlotBuilder {
	return &SlotBuilder{
		ID:         uuid.New(),
		MentorID:   uuid.New(),
		Date:       time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		StartTime:  10 * time.Hour,
		EndTime:    11 * time.Hour,
		IsActive:   true,
		PriceCents: 150000,
	}
}

func (b *SlotBuilder) With(mutate func(*SlotBuilder)) *SlotBuilder {
	mutate(b)
	return b
}

func (b *SlotBuilder) ForMentor(mentorID uuid.UUID) *SlotBuilder {
	b.MentorID = mentorID
	return b
}

// At sets the slot to start at hour h on day for one hour.
func (b *SlotBuilder) At(day time.Time, h int) *SlotBuilder {
	b.Date = day
	b.StartTime = time.Duration(h) * time.Hour
	b.EndTime = b.StartTime + time.Hour
	return b
}

func (b *SlotBuilder) Booked() *SlotBuilder {
	b.IsBooked = true
	return b
}

func (b *SlotBuilder) Inactive() *SlotBuilder {
	b.IsActive = false
	return b
}

func (b *SlotBuilder) BuildDomain() *slot.Slot {
	s, err := slot.Reconstruct(b.ID, b.MentorID, b.Date, b.StartTime, b.EndTime, b.IsBooked, b.IsActive, b.PriceCents)
	if err != nil {
		panic(err)
	}
	return s
}

// Consecutive builds n back-to-back one-hour slots for the same mentor starting at hour h.
func Consecutive(mentorID uuid.UUID, day time.Time, h, n int) []*slot.Slot {
	slots := make([]*slot.Slot, 0, n)
	for i := range n {
		slots = append(slots, NewSlotBuilder().ForMentor(mentorID).At(day, h+i).BuildDomain())
	}
	return slots
}

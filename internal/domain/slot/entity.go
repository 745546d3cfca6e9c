package slot

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidWindow  = errors.New("slot end must be after start")
	ErrNegativePrice  = errors.New("slot price cannot be negative")
	ErrNoSlots        = errors.New("at least one slot is required")
	ErrDuplicateSlot  = errors.New("slot requested more than once")
	ErrMentorRequired = errors.New("mentor id is required")
)

// Slot is one bookable time range on a mentor's schedule. Date is a civil date;
// start and end are offsets from midnight in the schedule's time zone.
type Slot struct {
	id         uuid.UUID
	mentorID   uuid.UUID
	date       time.Time
	startTime  time.Duration
	endTime    time.Duration
	isBooked   bool
	isActive   bool
	priceCents int64
}

func Reconstruct(
	id, mentorID uuid.UUID,
	date time.Time,
	startTime, endTime time.Duration,
	isBooked, isActive bool,
	priceCents int64,
) (*Slot, error) {
	if endTime <= startTime {
		return nil, ErrInvalidWindow
	}
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}
	y, m, d := date.Date()
	return &Slot{
		id:         id,
		mentorID:   mentorID,
		date:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		startTime:  startTime,
		endTime:    endTime,
		isBooked:   isBooked,
		isActive:   isActive,
		priceCents: priceCents,
	}, nil
}

func (s *Slot) ID() uuid.UUID {
	return s.id
}

func (s *Slot) MentorID() uuid.UUID {
	return s.mentorID
}

func (s *Slot) Date() time.Time {
	return s.date
}

func (s *Slot) StartTime() time.Duration {
	return s.startTime
}

func (s *Slot) EndTime() time.Duration {
	return s.endTime
}

func (s *Slot) IsBooked() bool {
	return s.isBooked
}

func (s *Slot) IsActive() bool {
	return s.isActive
}

func (s *Slot) PriceCents() int64 {
	return s.priceCents
}

func (s *Slot) Duration() time.Duration {
	return s.endTime - s.startTime
}

// StartsAt places the slot start on the wall clock of loc.
func (s *Slot) StartsAt(loc *time.Location) time.Time {
	return s.at(s.startTime, loc)
}

func (s *Slot) EndsAt(loc *time.Location) time.Time {
	return s.at(s.endTime, loc)
}

func (s *Slot) at(offset time.Duration, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := s.date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return midnight.Add(offset)
}

// MarkBooked reflects a successful claim on an in-memory copy.
func (s *Slot) MarkBooked() {
	s.isBooked = true
}

// SortChronologically orders slots by (date, start time), then id for a stable result.
func SortChronologically(slots []*Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		if a.startTime != b.startTime {
			return a.startTime < b.startTime
		}
		return a.id.String() < b.id.String()
	})
}

func TotalPriceCents(slots []*Slot) int64 {
	var total int64
	for _, s := range slots {
		total += s.priceCents
	}
	return total
}

// ValidateRequest rejects requests that can never succeed regardless of inventory.
func ValidateRequest(mentorID uuid.UUID, ids []uuid.UUID) error {
	if mentorID == uuid.Nil {
		return ErrMentorRequired
	}
	if len(ids) == 0 {
		return ErrNoSlots
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return ErrDuplicateSlot
		}
		seen[id] = struct{}{}
	}
	return nil
}

// CheckClaimable verifies that every requested id is present in found, belongs to
// mentorID, is active and is not booked. Any failure rejects the whole set.
func CheckClaimable(mentorID uuid.UUID, requested []uuid.UUID, found []*Slot) error {
	byID := make(map[uuid.UUID]*Slot, len(found))
	for _, s := range found {
		byID[s.id] = s
	}

	var unavailable []Unavailability
	for _, id := range requested {
		s, ok := byID[id]
		switch {
		case !ok:
			unavailable = append(unavailable, Unavailability{SlotID: id, Reason: ReasonMissing})
		case s.mentorID != mentorID:
			unavailable = append(unavailable, Unavailability{SlotID: id, Reason: ReasonOtherMentor})
		case !s.isActive:
			unavailable = append(unavailable, Unavailability{SlotID: id, Reason: ReasonInactive})
		case s.isBooked:
			unavailable = append(unavailable, Unavailability{SlotID: id, Reason: ReasonBooked})
		}
	}
	if len(unavailable) > 0 {
		return &ConflictError{Unavailable: unavailable}
	}
	return nil
}

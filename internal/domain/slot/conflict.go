package slot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrSlotUnavailable is the retryable conflict every ConflictError matches.
var ErrSlotUnavailable = errors.New("slot unavailable")

type UnavailableReason string

const (
	ReasonMissing     UnavailableReason = "missing"
	ReasonOtherMentor UnavailableReason = "other_mentor"
	ReasonInactive    UnavailableReason = "inactive"
	ReasonBooked      UnavailableReason = "booked"
	// ReasonRace means the slot looked free but the conditional claim lost to another writer.
	ReasonRace UnavailableReason = "claimed_concurrently"
)

type Unavailability struct {
	SlotID uuid.UUID
	Reason UnavailableReason
}

type ConflictError struct {
	Unavailable []Unavailability
}

func (e *ConflictError) Error() string {
	if len(e.Unavailable) == 0 {
		return ErrSlotUnavailable.Error()
	}
	parts := make([]string, 0, len(e.Unavailable))
	for _, u := range e.Unavailable {
		parts = append(parts, fmt.Sprintf("%s(%s)", u.SlotID, u.Reason))
	}
	return ErrSlotUnavailable.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrSlotUnavailable
}

func (e *ConflictError) SlotIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.Unavailable))
	for _, u := range e.Unavailable {
		ids = append(ids, u.SlotID)
	}
	return ids
}

// RaceConflict reports a claim whose affected-row count fell short.
func RaceConflict(requested []uuid.UUID) *ConflictError {
	unavailable := make([]Unavailability, 0, len(requested))
	for _, id := range requested {
		unavailable = append(unavailable, Unavailability{SlotID: id, Reason: ReasonRace})
	}
	return &ConflictError{Unavailable: unavailable}
}

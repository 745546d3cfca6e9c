package request

import (
	"strings"

	"mentor-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	MentorID uuid.UUID   `json:"mentor_id" binding:"required"`
	SlotIDs  []uuid.UUID `json:"slot_ids" binding:"required,min=1,max=12"`
	// AmountCents is the total shown to the payer; omitted means no check.
	AmountCents *int64            `json:"amount_cents,omitempty" binding:"omitempty,min=0"`
	Metadata    map[string]string `json:"metadata,omitempty" binding:"omitempty,max=20"`
}

func (r CreateBookingRequest) ToInput(payerID uuid.UUID, idempotencyKey *uuid.UUID) commands.CreateBookingInput {
	var metadata map[string]string
	if len(r.Metadata) > 0 {
		metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			if k = strings.TrimSpace(k); k != "" {
				metadata[k] = strings.TrimSpace(v)
			}
		}
	}
	return commands.CreateBookingInput{
		PayerID:             payerID,
		MentorID:            r.MentorID,
		SlotIDs:             r.SlotIDs,
		ExpectedAmountCents: r.AmountCents,
		Metadata:            metadata,
		IdempotencyKey:      idempotencyKey,
	}
}

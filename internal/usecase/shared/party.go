package shared

//go:generate mockgen -source=party.go -destination=../../testutil/mock/shared/party_mock.go -package=sharedmock

import (
	"context"

	"mentor-booking/internal/usecase/readmodel"

	"github.com/google/uuid"
)

// PartyDirectory resolves contact details and calendar grants for payers and mentors.
type PartyDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*readmodel.PartyRM, error)
}

package readstore

import (
	"context"

	"mentor-booking/internal/infra"
	"mentor-booking/internal/infra/db"
	"mentor-booking/internal/pkg/pgconv"
	"mentor-booking/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const partySQL = `
SELECT u.id, u.name, u.email, u.phone,
       c.provider, c.access_token, c.refresh_token, c.token_expiry
FROM users u
LEFT JOIN calendar_credentials c ON c.user_id = u.id
WHERE u.id = $1`

type PartyReadStore struct {
	db db.DBTX
}

func NewPartyReadStore(dbtx db.DBTX) *PartyReadStore {
	return &PartyReadStore{db: dbtx}
}

func (s *PartyReadStore) FindByID(ctx context.Context, id uuid.UUID) (*readmodel.PartyRM, error) {
	var (
		userID                    pgtype.UUID
		rm                        readmodel.PartyRM
		phone                     pgtype.Text
		provider, access, refresh pgtype.Text
		expiry                    pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, partySQL, pgconv.UUIDToPgtype(id)).Scan(
		&userID, &rm.Name, &rm.Email, &phone,
		&provider, &access, &refresh, &expiry,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.NewNotFound("user not found")
		}
		return nil, infra.WrapRepoErr("failed to get party", err)
	}

	rm.UserID = pgconv.UUIDFromPgtype(userID)
	rm.Phone = pgconv.StringPtrFromPgtype(phone)
	if access.Valid && refresh.Valid {
		rm.Calendar = &readmodel.CalendarCredentialRM{
			Provider:     provider.String,
			AccessToken:  access.String,
			RefreshToken: refresh.String,
			Expiry:       pgconv.TimePtrFromPgtype(expiry),
		}
	}
	return &rm, nil
}

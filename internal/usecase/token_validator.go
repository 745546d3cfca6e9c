package usecase

//go:generate mockgen -source=token_validator.go -destination=../testutil/mock/usecase/token_validator_mock.go -package=usecasemock

import (
	"mentor-booking/internal/domain/user"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/pkg/jwt"

	"github.com/google/uuid"
)

// Principal is the authenticated caller as asserted by the identity service.
type Principal struct {
	UserID uuid.UUID
	Role   user.Role
}

// CanView reports whether the principal may read a booking between payer and mentor.
func (p Principal) CanView(payerID, mentorID uuid.UUID) bool {
	return p.Role == user.RoleAdmin || p.UserID == payerID || p.UserID == mentorID
}

type TokenValidator interface {
	ValidateToken(tokenString string) (Principal, error)
}

type jwtTokenValidator struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &jwtTokenValidator{jwtService: jwtService}
}

func (t *jwtTokenValidator) ValidateToken(tokenString string) (Principal, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return Principal{}, err
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return Principal{}, errs.Mark(err, jwt.ErrInvalidToken)
	}

	return Principal{UserID: claims.UserID, Role: role}, nil
}

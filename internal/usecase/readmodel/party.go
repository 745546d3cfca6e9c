package readmodel

import (
	"time"

	"github.com/google/uuid"
)

type PartyRM struct {
	UserID   uuid.UUID
	Name     string
	Email    string
	Phone    *string
	Calendar *CalendarCredentialRM
}

// CalendarCredentialRM is a stored OAuth grant; a nil Calendar on PartyRM means none is connected.
type CalendarCredentialRM struct {
	Provider     string
	AccessToken  string
	RefreshToken string
	Expiry       *time.Time
}

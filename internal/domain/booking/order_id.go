package booking

import (
	"encoding/hex"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"
)

const orderIDPrefix = "MB"

var (
	ErrInvalidOrderID = errors.New("invalid order id")
	orderIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// OrderID is the merchant-side order reference sent to the gateway. It is minted
// once per booking and reused verbatim for every retry.
type OrderID string

// NewOrderID returns MB + UTC yymmddHHMMSS + 6 hex chars of entropy (20 chars).
func NewOrderID(now time.Time, entropy io.Reader) (OrderID, error) {
	var buf [3]byte
	if _, err := io.ReadFull(entropy, buf[:]); err != nil {
		return "", err
	}
	return OrderID(orderIDPrefix + now.UTC().Format("060102150405") + strings.ToUpper(hex.EncodeToString(buf[:]))), nil
}

// ParseOrderID accepts any gateway-safe identifier so older or externally minted ids still resolve.
func ParseOrderID(s string) (OrderID, error) {
	s = strings.TrimSpace(s)
	if !orderIDPattern.MatchString(s) {
		return "", ErrInvalidOrderID
	}
	return OrderID(s), nil
}

func (id OrderID) String() string {
	return string(id)
}

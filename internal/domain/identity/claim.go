package identity

import (
	"errors"
	"strings"
)

type ClaimKind int

const (
	ClaimEmail ClaimKind = iota
	ClaimPhone
)

// Claim is the resolved "which contact point is this request about"
// union. Handlers resolve it once at entry instead of null-checking
// email/phone pairs all the way down.
type Claim struct {
	Kind  ClaimKind
	Value string
}

var ErrAmbiguousClaim = errors.New("exactly one of email or phone must be set")

// ResolveClaim enforces the exactly-one-of rule on a raw email/phone
// pair and normalizes the chosen value.
func ResolveClaim(email, phone string) (Claim, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	phone = strings.TrimSpace(phone)

	if (email == "") == (phone == "") {
		return Claim{}, ErrAmbiguousClaim
	}

	if email != "" {
		return Claim{Kind: ClaimEmail, Value: email}, nil
	}

	return Claim{Kind: ClaimPhone, Value: phone}, nil
}

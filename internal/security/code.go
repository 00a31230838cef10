package security

import (
	"crypto/rand"
	"math/big"
)

const otpDigits = 6

// GenerateOTP returns a 6-digit numeric code drawn uniformly from
// [000000, 999999]. Leading zeros are kept, so the result is always
// exactly six characters.
func GenerateOTP() (string, error) {
	max := big.NewInt(1_000_000)

	n, err := rand.Int(rand.Reader, max)

	if err != nil {
		return "", err
	}

	code := n.String()

	for len(code) < otpDigits {
		code = "0" + code
	}

	return code, nil
}

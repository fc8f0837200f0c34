package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

var otpDigitMax = big.NewInt(10)

// GenerateCode produces a numeric one-time code of the given length. Each
// digit is drawn independently from a cryptographically secure source, so
// leading zeros are as likely as any other digit.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive, got %d", length)
	}

	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, otpDigitMax)
		if err != nil {
			return "", fmt.Errorf("failed to draw otp digit: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

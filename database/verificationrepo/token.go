package verificationrepo

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

// GenerateToken mints a random base32 token of the requested character
// length, adapted from the teacher's utils/otp.go generateSecureOTP.
// The alphabet is base32 (A-Z, 2-7), so even a short token is alphanumeric,
// not numeric.
func GenerateToken(length int) (string, error) {
	numBytes := (length*5 + 7) / 8
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	token := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
	if len(token) > length {
		token = token[:length]
	}
	return token, nil
}

// Package credentials implements password hashing with bcrypt (a CPU-cost
// scheme; it is not memory-hard), the access/refresh JWT mint-and-verify
// pair, storage-side token hashing, and device fingerprinting (§4.7, C2).
// Adapted from the teacher's
// utils/jwt.go (token mint/verify/hash) and its bcrypt.CompareHashAndPassword
// call sites in services/provider/signin.go and services/user/signin.go.
package credentials

import (
	"golang.org/x/crypto/bcrypt"
)

// passwordCost targets roughly 250ms per hash on reference hardware per
// §4.7; bcrypt's cost is logarithmic so this is tuned empirically rather
// than computed.
const passwordCost = 12

// HashPassword hashes a plaintext password with a per-password salt.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword performs a constant-time comparison of a plaintext password
// against its stored bcrypt hash.
func VerifyPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

package credentials

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeviceFingerprint computes a digest of (userAgent, sourceAddr, deviceDescriptor)
// per §4.7, used to bind a minted token to the device that requested it.
func DeviceFingerprint(userAgent, sourceAddr, deviceDescriptor string) string {
	sum := sha256.Sum256([]byte(userAgent + "|" + sourceAddr + "|" + deviceDescriptor))
	return hex.EncodeToString(sum[:])
}

// HashToken computes the deterministic storage-side digest used to look up
// a session by its refresh token without storing the token itself (§4.7
// "hash(token) ... not password hashing"). Adapted from utils.HashToken.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt"

	"caretime/apierr"
	"caretime/models"
)

// AccessClaims is the §4.7 access token claim set: principal id, role,
// email, verification flags, session id, device fingerprint, expiry.
type AccessClaims struct {
	jwt.StandardClaims
	PrincipalID      string             `json:"pid"`
	Role             models.PrincipalRole `json:"role"`
	Email            string             `json:"email"`
	EmailVerified    bool               `json:"emailVerified"`
	PhoneVerified    bool               `json:"phoneVerified"`
	SessionID        string             `json:"sid"`
	DeviceFingerprint string            `json:"dfp"`
}

// RefreshClaims is the §4.7 refresh token claim set: principal id, session
// id, a random token id, device fingerprint, expiry.
type RefreshClaims struct {
	jwt.StandardClaims
	PrincipalID       string `json:"pid"`
	SessionID         string `json:"sid"`
	TokenID           string `json:"tid"`
	DeviceFingerprint string `json:"dfp"`
}

// TokenMinter mints and verifies access/refresh tokens with two independent
// signing secrets, as §4.7 and §6 require.
type TokenMinter struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewTokenMinter constructs a minter from the two configured signing secrets.
func NewTokenMinter(accessSecret, refreshSecret string) *TokenMinter {
	return &TokenMinter{accessSecret: []byte(accessSecret), refreshSecret: []byte(refreshSecret)}
}

// MintAccessToken signs a new access token valid for ttl.
func (m *TokenMinter) MintAccessToken(claims AccessClaims, ttl time.Duration) (string, error) {
	claims.ExpiresAt = time.Now().Add(ttl).Unix()
	claims.IssuedAt = time.Now().Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}

// VerifyAccessToken validates signature and expiry and returns the claims.
func (m *TokenMinter) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.accessSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.New(apierr.KindUnauthorized, "invalid or expired access token")
	}
	return claims, nil
}

// MintRefreshToken signs a new refresh token valid for ttl, generating a
// fresh random token id (§4.7's "token id (random 32 bytes)").
func (m *TokenMinter) MintRefreshToken(principalID, sessionID, deviceFingerprint string, ttl time.Duration) (string, error) {
	tid, err := randomTokenID()
	if err != nil {
		return "", err
	}
	claims := RefreshClaims{
		PrincipalID:       principalID,
		SessionID:         sessionID,
		TokenID:           tid,
		DeviceFingerprint: deviceFingerprint,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.refreshSecret)
}

// VerifyRefreshToken validates signature and expiry and returns the claims.
// It does not by itself check session revocation or hash equality — the
// caller (auth manager) does that against the session store per §4.5 step 2.
func (m *TokenMinter) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.refreshSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.New(apierr.KindUnauthorized, "invalid refresh token")
	}
	return claims, nil
}

func randomTokenID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

package helpers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "gatepass"

var (
	ErrMissingToken = errors.New("authorization token not found")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenIssuer signs admin session tokens and validates them against the
// current key and, during a rotation, the previous one.
type TokenIssuer struct {
	signingKey []byte
	keyID      string
	ttl        time.Duration
	jwks       *keyfunc.JWKS
	now        func() time.Time
}

type SigningKey struct {
	ID     string
	Secret string
}

func NewTokenIssuer(current SigningKey, previous *SigningKey, ttl time.Duration) (*TokenIssuer, error) {
	if current.Secret == "" || current.ID == "" {
		return nil, errors.New("token signing key and key id are required")
	}

	opts := keyfunc.GivenKeyOptions{Algorithm: jwt.SigningMethodHS256.Alg()}
	given := map[string]keyfunc.GivenKey{
		current.ID: keyfunc.NewGivenHMAC([]byte(current.Secret), opts),
	}
	if previous != nil && previous.Secret != "" && previous.ID != current.ID {
		given[previous.ID] = keyfunc.NewGivenHMAC([]byte(previous.Secret), opts)
	}

	return &TokenIssuer{
		signingKey: []byte(current.Secret),
		keyID:      current.ID,
		ttl:        ttl,
		jwks:       keyfunc.NewGiven(given),
		now:        time.Now,
	}, nil
}

// Issue returns a signed admin token for subject and its expiry.
func (ti *TokenIssuer) Issue(subject string) (string, time.Time, error) {
	now := ti.now()
	exp := now.Add(ti.ttl)
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = ti.keyID
	signed, err := token.SignedString(ti.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error signing token: %w", err)
	}
	return signed, exp, nil
}

func (ti *TokenIssuer) Validate(tokenStr string) (*AdminClaims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenStr, &AdminClaims{}, ti.jwks.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearer returns the token from an "Authorization: Bearer <token>"
// header value.
func ExtractBearer(header string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token cannot be parsed or its
// signature does not verify. An expired but otherwise well-formed token
// is not malformed.
var ErrMalformedToken = errors.New("malformed token")

// TokenCodec issues and inspects signed JWTs. The subject claim carries
// the user's email address.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec signing with HMAC-SHA256.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Issue creates a signed token for the given subject with the given
// time-to-live. Extra claims are merged into the payload; reserved
// claims (sub, iat, exp) cannot be overridden.
func (c *TokenCodec) Issue(subject string, extra map[string]any, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ExtractSubject returns the subject claim of the token. The signature
// is verified but expiry is not: an expired token still yields its
// subject. Returns ErrMalformedToken when the token cannot be parsed
// or its signature is invalid.
func (c *TokenCodec) ExtractSubject(tokenString string) (string, error) {
	claims, err := c.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return sub, nil
}

// IsValid reports whether the token is well-formed, carries the given
// subject, and has not expired. An expired token yields (false, nil);
// a token that cannot be parsed yields (false, ErrMalformedToken).
// Subject comparison is case-sensitive.
func (c *TokenCodec) IsValid(tokenString, subject string) (bool, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return false, nil
		}
		return false, err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return false, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return sub == subject, nil
}

func (c *TokenCodec) parse(tokenString string, opts ...jwt.ParserOption) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

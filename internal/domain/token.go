package domain

import "time"

// TokenKind classifies stored tokens. Only bearer tokens exist today.
type TokenKind string

const TokenKindBearer TokenKind = "bearer"

// Token is a persisted access-token record. A record is valid while
// both Expired and Revoked are false.
type Token struct {
	ID        string    `json:"id"`
	Value     string    `json:"value"`
	Kind      TokenKind `json:"kind"`
	Expired   bool      `json:"expired"`
	Revoked   bool      `json:"revoked"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the record is still usable.
func (t *Token) Valid() bool {
	return !t.Expired && !t.Revoked
}

// TokenPair is returned by every authentication operation.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an issued token.
const TokenTTL = 2 * time.Hour

const (
	tokenIssuer   = "shelfmark"
	tokenAudience = "shelfmark-api"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingKey   = errors.New("token signing key is not configured")
)

// Claims represents the JWT claims for shelfmark authentication.
// The subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserName string `json:"userName"`
}

// TokenIssuer signs and verifies HS256 bearer tokens with a process-wide key.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenIssuer.
type TokenOption func(*TokenIssuer)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenIssuer) { t.now = now }
}

// NewTokenIssuer creates a TokenIssuer. An empty secret is an error: the
// process must not serve authenticated routes without a key.
func NewTokenIssuer(secret string, opts ...TokenOption) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrMissingKey
	}

	t := &TokenIssuer{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue creates a signed token for the given user.
func (t *TokenIssuer) Issue(userID, userName string) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserName: userName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses and validates a token string, returning its claims. Every
// failure is reported as ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

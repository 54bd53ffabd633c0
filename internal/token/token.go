// Package token issues and verifies the signed claims tokens that carry
// caller identity between requests. Tokens are stateless: validity is
// determined entirely by the HMAC signature and the embedded expiry.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wanderbook/apiserver/config"
	"github.com/wanderbook/apiserver/types"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong issuer or audience, or past expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded content of a session token.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c Claims) UserID() string {
	return c.Subject
}

// HasRole reports whether the claims carry the named role,
// case-insensitively.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the claims carry the admin role.
func (c Claims) IsAdmin() bool {
	return c.HasRole(types.RoleAdmin)
}

// Codec signs and verifies session tokens with a shared symmetric key.
// All parameters come from runtime configuration.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewCodec constructs a Codec from config.
func NewCodec(cfg config.JWTConfig) (*Codec, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Codec{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
	}, nil
}

// TTL returns the configured token lifetime. The cookie carrier uses it
// so the cookie expires together with the token.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the given user embedding id, email and every
// assigned role. The returned expiry matches the token's exp claim.
func (c *Codec) Issue(user types.User) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(c.ttl)

	claims := Claims{
		Email: user.Email,
		Roles: user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// Verify parses and validates a token string. It returns ErrInvalidToken
// when the signature does not match, the issuer or audience differ from
// the configured values, or the token has expired.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return c.secret, nil
		},
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

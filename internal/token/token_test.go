package token_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderbook/apiserver/config"
	"github.com/wanderbook/apiserver/internal/token"
	"github.com/wanderbook/apiserver/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "wanderbook",
		Audience:   "wanderbook-clients",
		TTLMinutes: 60,
	}
}

func testUser() types.User {
	return types.User{
		ID:    "4f9c2c4e-9f0a-4d2b-8a8f-1c6f51c2a001",
		Email: "ada@example.com",
		Roles: []string{types.RoleUser},
	}
}

func TestNewCodec_requiresSecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Secret = "  "

	_, err := token.NewCodec(cfg)
	require.Error(t, err)
}

func TestIssueVerify_roundTrip(t *testing.T) {
	codec, err := token.NewCodec(testJWTConfig())
	require.NoError(t, err)

	user := testUser()
	signed, expiry, err := codec.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Roles, claims.Roles)
	assert.False(t, claims.IsAdmin())
}

func TestIssue_serializesRoleClaim(t *testing.T) {
	codec, err := token.NewCodec(testJWTConfig())
	require.NoError(t, err)

	signed, _, err := codec.Issue(testUser())
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, []any{types.RoleUser}, body["role"])
	assert.NotContains(t, body, "roles")
}

func TestVerify_rejectsTamperedSignature(t *testing.T) {
	codec, err := token.NewCodec(testJWTConfig())
	require.NoError(t, err)

	signed, _, err := codec.Issue(testUser())
	require.NoError(t, err)

	// Flip the last character of the signature segment.
	last := signed[len(signed)-1]
	replacement := "A"
	if last == 'A' {
		replacement = "B"
	}
	tampered := signed[:len(signed)-1] + replacement

	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_rejectsForeignKey(t *testing.T) {
	codec, err := token.NewCodec(testJWTConfig())
	require.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.Secret = "a-different-secret"
	other, err := token.NewCodec(otherCfg)
	require.NoError(t, err)

	signed, _, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_rejectsWrongIssuer(t *testing.T) {
	issuerCfg := testJWTConfig()
	issuerCfg.Issuer = "someone-else"
	other, err := token.NewCodec(issuerCfg)
	require.NoError(t, err)

	codec, err := token.NewCodec(testJWTConfig())
	require.NoError(t, err)

	signed, _, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_rejectsWrongAudience(t *testing.T) {
	audCfg := testJWTConfig()
	audCfg.Audience = "other-clients"
	other, err := token.NewCodec(audCfg)
	require.NoError(t, err)

	codec, err := token.NewCodec(testJWTConfig())
	require.NoError(t, err)

	signed, _, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_rejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	codec, err := token.NewCodec(cfg)
	require.NoError(t, err)

	// Sign an already-expired token with the codec's own key.
	now := time.Now()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		Email: "ada@example.com",
		Roles: []string{types.RoleUser},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "4f9c2c4e-9f0a-4d2b-8a8f-1c6f51c2a001",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_rejectsGarbage(t *testing.T) {
	codec, err := token.NewCodec(testJWTConfig())
	require.NoError(t, err)

	_, err = codec.Verify("not.a.token")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerify_rejectsEmptySubject(t *testing.T) {
	codec, err := token.NewCodec(testJWTConfig())
	require.NoError(t, err)

	user := testUser()
	user.ID = ""
	signed, _, err := codec.Issue(user)
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestClaims_roleChecksAreCaseInsensitive(t *testing.T) {
	claims := token.Claims{Roles: []string{"Admin"}}
	assert.True(t, claims.HasRole(types.RoleAdmin))
	assert.True(t, claims.IsAdmin())
	assert.False(t, claims.HasRole(strings.ToUpper(types.RoleUser)))
}

package services_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/wanderbook/apiserver/internal/services"
	"github.com/wanderbook/apiserver/internal/token"
	"github.com/wanderbook/apiserver/types"
)

func claimsFor(userID string, roles ...string) token.Claims {
	return token.Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
		},
	}
}

func TestCanMutate(t *testing.T) {
	policy := services.NewPolicy()

	tests := []struct {
		name         string
		caller       token.Claims
		ownerID      string
		requiredRole string
		want         bool
	}{
		{
			name:    "owner may mutate own resource",
			caller:  claimsFor("u1", types.RoleUser),
			ownerID: "u1",
			want:    true,
		},
		{
			name:    "non-owner may not mutate",
			caller:  claimsFor("u2", types.RoleUser),
			ownerID: "u1",
			want:    false,
		},
		{
			name:    "admin may mutate any resource",
			caller:  claimsFor("u2", types.RoleAdmin),
			ownerID: "u1",
			want:    true,
		},
		{
			name:    "admin role match is case-insensitive",
			caller:  claimsFor("u2", "Admin"),
			ownerID: "u1",
			want:    true,
		},
		{
			name:         "required role missing blocks even the owner",
			caller:       claimsFor("u1", types.RoleUser),
			ownerID:      "u1",
			requiredRole: types.RoleAdmin,
			want:         false,
		},
		{
			name:         "unowned resource is role-gated only",
			caller:       claimsFor("u1", types.RoleAdmin),
			requiredRole: types.RoleAdmin,
			want:         true,
		},
		{
			name:   "unowned resource with no required role is open",
			caller: claimsFor("u1"),
			want:   true,
		},
		{
			name:    "caller without roles may still mutate own resource",
			caller:  claimsFor("u1"),
			ownerID: "u1",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.CanMutate(tt.caller, tt.ownerID, tt.requiredRole)
			assert.Equal(t, tt.want, got)
		})
	}
}

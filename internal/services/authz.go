package services

import (
	"github.com/wanderbook/apiserver/internal/token"
	"github.com/wanderbook/apiserver/types"
)

// Policy decides whether a caller may mutate a resource. It is a pure
// function of the caller's claims and the resource's owner, so rules are
// testable without the request pipeline.
type Policy struct{}

func NewPolicy() Policy {
	return Policy{}
}

// CanMutate permits the mutation when the caller carries requiredRole
// (if set), and either owns the resource or carries the admin role.
// Pass an empty ownerID for resources without an ownership concept;
// those are gated by requiredRole alone.
func (Policy) CanMutate(caller token.Claims, ownerID, requiredRole string) bool {
	if requiredRole != "" && !caller.HasRole(requiredRole) {
		return false
	}
	if ownerID == "" {
		return true
	}
	return caller.UserID() == ownerID || caller.HasRole(types.RoleAdmin)
}

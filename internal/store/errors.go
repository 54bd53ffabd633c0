package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint (e.g. registering an email twice).
var ErrDuplicate = errors.New("duplicate record")

// ErrUnknownRole is returned when a user references a role name that is
// not seeded in the roles table.
var ErrUnknownRole = errors.New("unknown role")

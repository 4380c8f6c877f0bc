// Package repository contains the data access layer. Sentinel errors defined
// here let handlers translate storage outcomes into HTTP statuses without
// inspecting driver error strings themselves.
package repository

import "errors"

// ErrEmailExists is returned when a user insert hits the unique index on
// users.email. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a row does not exist or, for ownership-scoped
// mutations, is not owned by the caller. The two cases are deliberately
// indistinguishable so responses never reveal whether a foreign row exists.
var ErrNotFound = errors.New("not found")

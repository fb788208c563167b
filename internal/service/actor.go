package service

import (
	"context"
	"errors"

	"klikpos/internal/apierror"
	"klikpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is the authenticated caller, built by the handler from the JWT
// claims and passed explicitly to every service call.
type Actor struct {
	UserID       uuid.UUID
	Username     string
	Role         string
	POSProfileID *uuid.UUID
}

// Privileged reports whether the actor may act on other users' sessions and
// reconcile a whole day.
func (a Actor) Privileged() bool {
	return a.Role == model.RoleSupervisor || a.Role == model.RoleAdmin
}

// canSeeProfile reports whether records of the given POS profile are visible to a.
// Privileged actors see everything; cashiers see their own profile.
func (a Actor) canSeeProfile(profileID uuid.UUID) bool {
	if a.Privileged() {
		return true
	}
	return a.POSProfileID != nil && *a.POSProfileID == profileID
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// lookupErr turns a repository read error for the named record into
// NotFound or Internal.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(what + " not found")
	}
	return apierror.Internal("load "+what, err)
}

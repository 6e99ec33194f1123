// Package store persists review campaigns and decisions.
//
// Stores return sentinel errors (sentinel.ErrNotFound); services translate
// them into domain errors. RecordDecision overwrites unconditionally: state
// rules live in the service.
package store

import (
	"context"

	inventory "stackwise/internal/inventory/models"
	"stackwise/pkg/domain"
)

// InventoryReader resolves user and application snapshots for the in-memory store.
type InventoryReader interface {
	GetUser(ctx context.Context, id domain.UserID) (*inventory.User, error)
	GetApplication(ctx context.Context, id domain.ApplicationID) (*inventory.Application, error)
}

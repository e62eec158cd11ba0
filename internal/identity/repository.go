package identity

import (
	"context"
	"errors"
)

var (
	// ErrOwnerNotFound is returned when no owner is registered under a tax id.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrDuplicateOwner is returned when the tax id is already registered.
	ErrDuplicateOwner = errors.New("owner already registered")
)

// Repository persists owners keyed by tax id.
type Repository interface {
	Create(ctx context.Context, person Person) error
	FindByTaxID(ctx context.Context, taxID string) (Person, error)
	List(ctx context.Context) ([]Person, error)
}

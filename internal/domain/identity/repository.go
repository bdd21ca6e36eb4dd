package identity

import (
	"context"
)

// Repository defines data access for the device profile.
type Repository interface {
	// Get retrieves the stored profile.
	// Returns ErrIdentityNotFound on first run.
	Get(ctx context.Context) (UserIdentity, error)

	// Put persists the profile.
	Put(ctx context.Context, ident UserIdentity) error
}

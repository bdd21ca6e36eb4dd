package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dakoku-app/dakoku-backend-go/internal/domain/identity"
	"github.com/dakoku-app/dakoku-backend-go/internal/pkg/database"
)

const identityKey = "userInfo"

type identityRow struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type IdentityRepository struct {
	kv *KV
}

func NewIdentityRepository(db *database.DB) identity.Repository {
	return &IdentityRepository{kv: NewKV(db)}
}

// Get implements identity.Repository.
func (r *IdentityRepository) Get(ctx context.Context) (identity.UserIdentity, error) {
	raw, err := r.kv.Get(ctx, identityKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return identity.UserIdentity{}, identity.ErrIdentityNotFound
		}
		return identity.UserIdentity{}, fmt.Errorf("failed to load user identity: %w", err)
	}

	var row identityRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return identity.UserIdentity{}, fmt.Errorf("failed to decode user identity: %w", err)
	}

	return identity.UserIdentity{UserID: row.UserID, UserName: row.UserName}, nil
}

// Put implements identity.Repository.
func (r *IdentityRepository) Put(ctx context.Context, ident identity.UserIdentity) error {
	raw, err := json.Marshal(identityRow{UserID: ident.UserID, UserName: ident.UserName})
	if err != nil {
		return fmt.Errorf("failed to encode user identity: %w", err)
	}

	if err := r.kv.Put(ctx, identityKey, raw); err != nil {
		return fmt.Errorf("failed to store user identity: %w", err)
	}
	return nil
}

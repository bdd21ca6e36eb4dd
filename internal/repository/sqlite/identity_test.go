package sqlite

import (
	"context"
	"testing"

	"github.com/dakoku-app/dakoku-backend-go/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityRepository_Get_FirstRun(t *testing.T) {
	ctx := context.Background()
	repo := NewIdentityRepository(newTestDB(t))

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, identity.ErrIdentityNotFound)
}

func TestIdentityRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewIdentityRepository(newTestDB(t))

	ident := identity.UserIdentity{UserID: "user01", UserName: "あなたの名前"}
	require.NoError(t, repo.Put(ctx, ident))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, ident, got)
}

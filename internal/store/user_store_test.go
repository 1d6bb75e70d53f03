package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/wasteless/internal/domain"
)

func TestUserStoreCreate(t *testing.T) {
	users := NewUserStore(openTestDB(t))
	ctx := context.Background()

	user, err := users.Create(ctx, "u1", "ana@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestUserStoreCreateDuplicateEmail(t *testing.T) {
	users := NewUserStore(openTestDB(t))
	ctx := context.Background()

	_, err := users.Create(ctx, "u1", "ana@example.com", "hash")
	require.NoError(t, err)

	_, err = users.Create(ctx, "u2", "ANA@example.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserStoreGetByEmail(t *testing.T) {
	users := NewUserStore(openTestDB(t))
	ctx := context.Background()

	_, err := users.Create(ctx, "u1", "ana@example.com", "hash")
	require.NoError(t, err)

	user, err := users.GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "hash", user.PasswordHash)

	missing, err := users.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserStoreProfile(t *testing.T) {
	users := NewUserStore(openTestDB(t))
	ctx := context.Background()

	_, err := users.Create(ctx, "u1", "ana@example.com", "hash")
	require.NoError(t, err)

	profile, err := users.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, profile)

	created := time.Date(2026, time.February, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, users.SetProfile(ctx, "u1", domain.Profile{
		Name: "Ana", Email: "ana@example.com", Role: domain.RoleBuyer, CreatedAt: created,
	}))

	profile, err = users.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, domain.RoleBuyer, profile.Role)
	assert.True(t, created.Equal(profile.CreatedAt))

	require.NoError(t, users.SetProfile(ctx, "u1", domain.Profile{
		Name: "Ana B", Email: "ana@example.com", Role: domain.RoleSeller, CreatedAt: created,
	}))
	profile, err = users.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana B", profile.Name)
	assert.Equal(t, domain.RoleSeller, profile.Role)
}

func TestUserStoreProfileRequiresUser(t *testing.T) {
	users := NewUserStore(openTestDB(t))

	err := users.SetProfile(context.Background(), "ghost", domain.Profile{Name: "x", Role: domain.RoleBuyer})
	assert.Error(t, err)
}

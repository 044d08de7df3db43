package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/mocks"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestAuthStateResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		cred     domainauth.Credential
		wantAuth bool
		wantName string
		wantRole domainauth.Role
		purged   bool
	}{
		{
			name:     "complete record",
			cred:     domainauth.Credential{Token: "abc", UserID: "42", UserName: "Kim", Role: domainauth.RoleUser},
			wantAuth: true,
			wantName: "Kim",
			wantRole: domainauth.RoleUser,
		},
		{
			name:     "missing name",
			cred:     domainauth.Credential{Token: "abc", UserID: "42", Role: domainauth.RoleAdmin},
			wantAuth: true,
			wantName: UnknownUserName,
			wantRole: domainauth.RoleAdmin,
		},
		{
			name:     "missing role stays authenticated",
			cred:     domainauth.Credential{Token: "abc", UserID: "42", UserName: "Kim"},
			wantAuth: true,
			wantName: "Kim",
		},
		{
			name:   "identity without token",
			cred:   domainauth.Credential{UserID: "42", UserName: "Kim", Role: domainauth.RoleUser},
			purged: true,
		},
		{
			name: "undefined user id",
			cred: domainauth.Credential{Token: "abc", UserID: "undefined", Role: domainauth.RoleUser},
		},
		{
			name: "empty record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tiers := newTiers(t)
			tiers.store.Write(ctx, tt.cred)

			got := NewAuthStateResolver(AuthStateResolverOptions{}).Resolve(ctx, tiers.store)

			assert.Equal(t, tt.wantAuth, got.Authenticated)
			assert.Equal(t, tt.purged, got.Purged)
			if tt.wantAuth {
				assert.Equal(t, tt.cred.UserID, got.UserID)
				assert.Equal(t, tt.wantName, got.UserName)
				assert.Equal(t, tt.wantRole, got.Role)
				assert.Equal(t, tt.wantRole == domainauth.RoleNone, got.RoleMissing())
			}
			if tt.purged {
				assert.Empty(t, tiers.durableValue(t, domainauth.KeyUserID))
				assert.Empty(t, tiers.durableValue(t, domainauth.KeyUserName))
				assert.Empty(t, tiers.durableValue(t, domainauth.KeyUserRole))
			}
		})
	}
}

func TestAuthStateResolver_PurgesOnlyOrphans(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCredentialStore(ctrl)

	store.EXPECT().Read(gomock.Any()).Return(domainauth.Credential{UserID: "42"})
	store.EXPECT().PurgeOrphans(gomock.Any()).Times(1)

	got := NewAuthStateResolver(AuthStateResolverOptions{}).Resolve(ctx, store)
	assert.True(t, got.Purged)
	assert.False(t, got.Authenticated)
}

func TestAuthStateResolver_TokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("exp is reported", func(t *testing.T) {
		ctx := context.Background()
		exp := now.Add(time.Hour)
		tiers := newTiers(t)
		tiers.store.Write(ctx, domainauth.Credential{Token: signedToken(t, exp), UserID: "42", Role: domainauth.RoleUser})

		got := NewAuthStateResolver(AuthStateResolverOptions{RejectExpired: true, Now: clock}).Resolve(ctx, tiers.store)
		assert.True(t, got.Authenticated)
		assert.True(t, exp.Truncate(time.Second).Equal(got.TokenExpiresAt))
	})

	t.Run("expired token is cleared when rejecting", func(t *testing.T) {
		ctx := context.Background()
		tiers := newTiers(t)
		tiers.store.Write(ctx, domainauth.Credential{
			Token: signedToken(t, now.Add(-time.Minute)), UserID: "42", Role: domainauth.RoleUser,
		})

		got := NewAuthStateResolver(AuthStateResolverOptions{RejectExpired: true, Now: clock}).Resolve(ctx, tiers.store)
		assert.False(t, got.Authenticated)
		assert.True(t, got.Purged)
		assert.Empty(t, tiers.durableValue(t, domainauth.KeyAuthToken))
		assert.Empty(t, tiers.durableValue(t, domainauth.KeyUserID))
	})

	t.Run("expired token is kept when not rejecting", func(t *testing.T) {
		ctx := context.Background()
		tiers := newTiers(t)
		tiers.store.Write(ctx, domainauth.Credential{
			Token: signedToken(t, now.Add(-time.Minute)), UserID: "42", Role: domainauth.RoleUser,
		})

		got := NewAuthStateResolver(AuthStateResolverOptions{Now: clock}).Resolve(ctx, tiers.store)
		assert.True(t, got.Authenticated)
		assert.False(t, got.TokenExpiresAt.IsZero())
	})

	t.Run("opaque token has no expiry", func(t *testing.T) {
		ctx := context.Background()
		tiers := newTiers(t)
		tiers.store.Write(ctx, domainauth.Credential{Token: "abc", UserID: "42", Role: domainauth.RoleUser})

		got := NewAuthStateResolver(AuthStateResolverOptions{RejectExpired: true, Now: clock}).Resolve(ctx, tiers.store)
		assert.True(t, got.Authenticated)
		assert.True(t, got.TokenExpiresAt.IsZero())
	})
}

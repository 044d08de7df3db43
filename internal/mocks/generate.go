// Package mocks provides mock implementations of the ports for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	tier := mocks.NewMockStorageTier(ctrl)
//	tier.EXPECT().Get(gomock.Any(), "authToken").Return("", errors.New("down"))
package mocks

// Generate mock for StorageTier interface from internal/ports package.
// This creates MockStorageTier with methods Get, Set, Delete.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=storage_tier_mock.go github.com/initcareer/init-web/internal/ports StorageTier

// Generate mock for CredentialStore interface from internal/ports package.
// This creates MockCredentialStore with methods Read, Write, Clear, PurgeOrphans.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/initcareer/init-web/internal/ports CredentialStore

package ports

// Package ports defines interfaces (hexagonal ports) for credential and session behavior.
// Implementations live in internal/adapters and internal/credstore; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
)

// CredentialStore reads and writes the Credential Record across the durable and cookie tiers.
// It never returns errors: tier failures degrade to empty reads and dropped writes.
type CredentialStore interface {
	Read(ctx context.Context) domainauth.Credential
	Write(ctx context.Context, cred domainauth.Credential)
	// Clear removes every credential key from every tier. Idempotent.
	Clear(ctx context.Context)
	// PurgeOrphans removes identity fields that linger without a token.
	PurgeOrphans(ctx context.Context)
}

// AuthResolver derives the current auth state from a CredentialStore.
type AuthResolver interface {
	Resolve(ctx context.Context, store CredentialStore) domainauth.Resolution
}

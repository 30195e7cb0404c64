// Package auth validates opaque session tokens at handshake time.
// Tokens are looked up, never parsed; the CRUD/login layer issues them.
package auth

import (
	"context"
	"errors"

	"github.com/parleyhq/parley/internal/domain"
)

// ErrTokenInvalid rejects unknown or expired tokens. The handshake
// answers 403 and the connection is never admitted.
var ErrTokenInvalid = errors.New("token invalid")

// TokenStore resolves a bearer token to the identity it was issued
// for. Resolve is read-only; a token maps to at most one user.
type TokenStore interface {
	Resolve(ctx context.Context, token string) (domain.UserID, error)
	// Issue creates a token for uid, replacing any previously issued
	// one so a user holds at most one valid token at a time.
	Issue(ctx context.Context, uid domain.UserID) (string, error)
	// Revoke invalidates a token. Revoking an unknown token is a no-op.
	Revoke(ctx context.Context, token string) error
}

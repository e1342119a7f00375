// README: Caller identity shared by the token verifiers and the HTTP auth middleware.
package auth

import (
	"context"
	"errors"

	"ridehail/internal/modules/user"
	"ridehail/internal/types"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Principal is the authenticated caller.
type Principal struct {
	UserID types.ID  `json:"user_id"`
	Role   user.Role `json:"role"`
}

// Verifier resolves a bearer token to its Principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// Issuer mints and revokes tokens after a successful login.
type Issuer interface {
	Issue(ctx context.Context, p Principal) (string, error)
	Revoke(ctx context.Context, token string) error
}

// TokenService both issues and verifies tokens.
type TokenService interface {
	Verifier
	Issuer
}

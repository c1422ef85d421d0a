package auth

import "context"

// Service is the authentication boundary. The rest of the system trusts the
// verified (userId, role, accountStatus) triple carried in the token claims
// and never re-verifies credentials.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)

	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// Refresh exchanges a valid refresh token for a new access token with
	// the account's current role and status.
	Refresh(ctx context.Context, refreshToken string) (TokenResponse, error)
}

package in

import (
	"context"

	"hytalepanel/internal/domain"
)

// AuthService guards the panel's HTTP surface and websocket upgrade.
type AuthService interface {
	IsEnabled() bool
	ValidatePassword(ctx context.Context, username, password string) bool
	IssueToken(ctx context.Context, username string) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// Package auth implements the authentication use case for the panel.
package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hytalepanel/internal/domain"
)

// TokenIssuer is the issuer claim for generated tokens.
const TokenIssuer = "hytalepanel"

// DefaultTokenExpiry bounds a panel session.
const DefaultTokenExpiry = 24 * time.Hour

// Config holds the authentication configuration. An empty PasswordHash
// disables authentication entirely: the panel is open, which is the
// expected mode behind a trusted reverse proxy.
type Config struct {
	Username     string
	PasswordHash string // bcrypt hash
	TokenSecret  []byte
	TokenExpiry  time.Duration
}

// Service implements the AuthService interface.
type Service struct {
	config Config
	log    zerowrap.Logger
}

// NewService creates a new auth service.
func NewService(config Config, log zerowrap.Logger) *Service {
	if config.TokenExpiry == 0 {
		config.TokenExpiry = DefaultTokenExpiry
	}
	return &Service{config: config, log: log}
}

// IsEnabled returns whether authentication is enabled.
func (s *Service) IsEnabled() bool {
	return s.config.PasswordHash != ""
}

// ValidatePassword checks if the username and password are valid.
func (s *Service) ValidatePassword(ctx context.Context, username, password string) bool {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "ValidatePassword",
		"username":            username,
	})
	log := zerowrap.FromCtx(ctx)

	// Constant-time username comparison
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.Username)) == 1

	// Bcrypt comparison (already constant-time)
	err := bcrypt.CompareHashAndPassword([]byte(s.config.PasswordHash), []byte(password))
	passwordMatch := err == nil

	if !usernameMatch || !passwordMatch {
		log.Debug().Bool("username_match", usernameMatch).Msg("password validation failed")
		return false
	}

	log.Debug().Msg("password validation successful")
	return true
}

// IssueToken creates a signed session token for the given subject.
func (s *Service) IssueToken(ctx context.Context, username string) (string, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "IssueToken",
		"username":            username,
	})
	log := zerowrap.FromCtx(ctx)

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": username,
		"iss": TokenIssuer,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(s.config.TokenExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.config.TokenSecret)
	if err != nil {
		return "", log.WrapErr(err, "failed to sign token")
	}

	log.Info().Msg("session token issued")
	return signed, nil
}

// ValidateToken validates a session token and returns its claims.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.TokenClaims, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "ValidateToken",
	})
	log := zerowrap.FromCtx(ctx)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.TokenSecret, nil
	}, jwt.WithIssuer(TokenIssuer))
	if err != nil || !token.Valid {
		log.Debug().Err(err).Msg("failed to parse token")
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	if iss, ok := claims["iss"].(string); !ok || iss != TokenIssuer {
		return nil, domain.ErrInvalidToken
	}

	tokenClaims := &domain.TokenClaims{Issuer: TokenIssuer}
	if sub, ok := claims["sub"].(string); ok {
		tokenClaims.Subject = sub
	}
	if iat, ok := claims["iat"].(float64); ok {
		tokenClaims.IssuedAt = int64(iat)
	}
	if exp, ok := claims["exp"].(float64); ok {
		tokenClaims.ExpiresAt = int64(exp)
	}

	if tokenClaims.ExpiresAt > 0 && time.Now().UTC().Unix() > tokenClaims.ExpiresAt {
		log.Debug().Msg("token has expired")
		return nil, domain.ErrInvalidToken
	}

	log.Debug().Str("subject", tokenClaims.Subject).Msg("token validation successful")
	return tokenClaims, nil
}

// HashPassword produces the bcrypt hash stored in configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

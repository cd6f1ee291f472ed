package domain

// TokenClaims are the validated claims of a panel session token.
type TokenClaims struct {
	Subject   string
	Issuer    string
	IssuedAt  int64
	ExpiresAt int64
}

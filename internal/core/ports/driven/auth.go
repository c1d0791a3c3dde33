package driven

import "github.com/custodia-labs/ingest-core/internal/core/domain"

// AuthAdapter handles bearer token cryptographic operations
type AuthAdapter interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}

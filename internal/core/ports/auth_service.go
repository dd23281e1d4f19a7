package ports

import (
	"context"

	"github.com/zetas/barbershop/internal/core/domain"
)

type AuthService interface {
	Login(ctx context.Context, password string) (*domain.AdminSession, error)
}

// SessionVerifier validates admin session tokens.
type SessionVerifier interface {
	Verify(token string) (role string, err error)
}

package ports

import (
	"context"
	"time"

	"github.com/feastflow/feastflow-api/internal/domain"
)

// UserRepository is the credential store: the durable mapping from email to
// account. Implementations must enforce email uniqueness and report it as
// domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, name, email string, passwordHash, passwordSalt []byte, role string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string) (*domain.User, error)
	SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash, passwordSalt []byte) error
	UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

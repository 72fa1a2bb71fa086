package port

import (
	"context"

	"github.com/stockroomhq/stockroom/internal/core/domain"
)

type UserRepository interface {
	// CreateUser persists a new user, domain.ErrEmailTaken if the email exists.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByEmail retrieves a user, domain.ErrUserNotFound when unknown.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int, error)
}

package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/auth-microservice/internal/domain/entity"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

// UserRepository defines the persistence contract for user accounts.
// Create must reject duplicate email/username with the sentinel errors above;
// the storage layer's unique constraints are the source of truth.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// MarkVerified flips is_verified to true and clears the verification code
	// in a single update.
	MarkVerified(ctx context.Context, id string) error
}

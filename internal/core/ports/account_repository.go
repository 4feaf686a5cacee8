package ports

import (
	"context"
	"time"

	"github.com/botlab/robot-access/internal/core/domain"
)

// AccountRepository is the credential store. Every method is a single atomic
// operation against the store.
type AccountRepository interface {
	// FindByUsername returns domain.ErrAccountNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// Insert returns domain.ErrDuplicateUsername when the username is taken.
	Insert(ctx context.Context, acc *domain.Account) (*domain.Account, error)
	// UpdateFields applies a partial update and returns the updated record.
	UpdateFields(ctx context.Context, username string, update domain.AccountUpdate) (*domain.Account, error)
	// CompareAndClearSession clears the stored session token only if it still
	// equals expected. It reports whether the token was cleared.
	CompareAndClearSession(ctx context.Context, username, expected string) (bool, error)
	// FindOverlapping returns an account other than exclude bound to resource
	// whose window intersects w, or domain.ErrAccountNotFound.
	FindOverlapping(ctx context.Context, resource domain.Resource, w domain.Window, exclude string) (*domain.Account, error)
}

// PasswordHasher is the password-hashing collaborator.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Clock lets tests pin the current instant.
type Clock func() time.Time

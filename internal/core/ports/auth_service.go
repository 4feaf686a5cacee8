package ports

import (
	"context"
	"time"

	"github.com/botlab/robot-access/internal/core/domain"
)

// Session is returned by a successful login.
type Session struct {
	Token   string
	Expiry  time.Time
	Account *domain.Account
}

// NewAccountInput carries the fields an administrator supplies.
type NewAccountInput struct {
	Username    string
	DateOfBirth time.Time
	Disabled    bool
	Blacklisted bool
}

// WhoAmI is the caller's own view of its binding.
type WhoAmI struct {
	Username string
	Role     domain.Role
	Resource string
	Window   *domain.Window
}

// SessionAuthority issues and verifies session tokens.
type SessionAuthority interface {
	Authenticate(ctx context.Context, username, password string) (*Session, error)
	Verify(ctx context.Context, token string) (*domain.Identity, error)
	CurrentIdentity(ctx context.Context, token string) (*domain.Account, error)
	// Revalidate performs the CurrentIdentity checks without mutating the store.
	Revalidate(ctx context.Context, token string) (*domain.Account, error)
}

// AccountService groups the account-management operations.
type AccountService interface {
	CreateAccount(ctx context.Context, actor *domain.Account, in NewAccountInput) (*domain.Account, error)
	SetPassword(ctx context.Context, actor *domain.Account, username, newPassword string, dob time.Time) (*domain.Account, error)
	SetBlacklisted(ctx context.Context, actor *domain.Account, username string, flag bool) (*domain.Account, error)
	SetDisabled(ctx context.Context, actor *domain.Account, username string, flag bool) (*domain.Account, error)
	WhoAmI(ctx context.Context, actor *domain.Account) WhoAmI
}

// TimeslotService binds accounts to a robot and a window.
type TimeslotService interface {
	Allocate(ctx context.Context, actor *domain.Account, username string, resource domain.Resource, w domain.Window) (*domain.Account, error)
	Revoke(ctx context.Context, actor *domain.Account, username string) (*domain.Account, error)
}

// SessionObserver is told when an account's live sessions may have become
// stale (new login, disable, blacklist).
type SessionObserver interface {
	SessionsChanged(username string)
}

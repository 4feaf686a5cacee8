package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/policy"
	"github.com/botlab/robot-access/internal/core/ports"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// CreateAccount registers a standard account. The password starts as
// domain.InitialPassword(username) and the window as domain.NeverWindow, so
// nothing can be operated until an allocation happens.
func (s *AuthService) CreateAccount(ctx context.Context, actor *domain.Account, in ports.NewAccountInput) (*domain.Account, error) {
	if !policy.CanManageAccounts(actor) {
		return nil, domain.ErrNotAuthorized
	}
	if !usernamePattern.MatchString(in.Username) {
		return nil, fmt.Errorf("%w: username must be 3-32 characters of letters, digits, '_', '.', '-'", domain.ErrInvalidInput)
	}
	if in.DateOfBirth.IsZero() {
		return nil, fmt.Errorf("%w: date of birth is required", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(domain.InitialPassword(in.Username))
	if err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.repo.Insert(ctx, &domain.Account{
		Username:      in.Username,
		PasswordHash:  hash,
		Role:          domain.RoleStandard,
		Disabled:      in.Disabled,
		Blacklisted:   in.Blacklisted,
		DateOfBirth:   in.DateOfBirth.UTC(),
		BoundResource: domain.ResourceNone,
		Window:        domain.NeverWindow,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Str("actor", actor.Username).Msg("account created")
	return created, nil
}

// SetPassword replaces the password of a standard account. The date of birth
// must match. Managers may reset any standard account, everybody else only
// their own. Privileged credentials are never changed here.
func (s *AuthService) SetPassword(ctx context.Context, actor *domain.Account, username, newPassword string, dob time.Time) (*domain.Account, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthorized
	}
	if newPassword == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	manager := policy.CanManageAccounts(actor)
	if !manager && actor.Username != username {
		return nil, domain.ErrNotAuthorized
	}

	target, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) && !manager {
			return nil, domain.ErrNotAuthorized
		}
		return nil, err
	}
	if target.Privileged() {
		return nil, domain.ErrNotAuthorized
	}
	if !target.SameBirthDate(dob) {
		return nil, domain.ErrNotAuthorized
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateFields(ctx, username, domain.AccountUpdate{PasswordHash: &hash})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Str("actor", actor.Username).Msg("password changed")
	return updated, nil
}

// SetBlacklisted toggles the blacklist flag of a standard account.
func (s *AuthService) SetBlacklisted(ctx context.Context, actor *domain.Account, username string, flag bool) (*domain.Account, error) {
	return s.setFlag(ctx, actor, username, domain.AccountUpdate{Blacklisted: &flag}, flag, "blacklisted")
}

// SetDisabled toggles the disabled flag of a standard account.
func (s *AuthService) SetDisabled(ctx context.Context, actor *domain.Account, username string, flag bool) (*domain.Account, error) {
	return s.setFlag(ctx, actor, username, domain.AccountUpdate{Disabled: &flag}, flag, "disabled")
}

func (s *AuthService) setFlag(ctx context.Context, actor *domain.Account, username string, update domain.AccountUpdate, flag bool, name string) (*domain.Account, error) {
	if !policy.CanManageAccounts(actor) {
		return nil, domain.ErrNotAuthorized
	}

	target, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.Privileged() {
		return nil, domain.ErrNotAuthorized
	}

	updated, err := s.repo.UpdateFields(ctx, username, update)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Str("actor", actor.Username).Bool(name, flag).Msg("account flag changed")
	if flag {
		s.notify(username)
	}
	return updated, nil
}

// WhoAmI reports the caller's binding. Privileged callers see "*" and no
// window; unallocated standard callers see an empty resource.
func (s *AuthService) WhoAmI(_ context.Context, actor *domain.Account) ports.WhoAmI {
	out := ports.WhoAmI{Username: actor.Username, Role: actor.Role}
	if policy.BypassesTimeslot(actor) {
		out.Resource = "*"
		return out
	}
	if actor.BoundResource != domain.ResourceNone {
		out.Resource = string(actor.BoundResource)
		w := actor.Window
		out.Window = &w
	}
	return out
}

// Bootstrap provisions a privileged account named after its role. Existing
// accounts are left untouched; this is the only way privileged credentials
// come into existence.
func (s *AuthService) Bootstrap(ctx context.Context, role domain.Role, password string) (bool, error) {
	if !role.Capabilities().Privileged {
		return false, fmt.Errorf("%w: %s is not a privileged role", domain.ErrInvalidInput, role)
	}
	if password == "" {
		return false, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}

	now := s.now()
	_, err = s.repo.Insert(ctx, &domain.Account{
		Username:     string(role),
		PasswordHash: hash,
		Role:         role,
		Window:       domain.NeverWindow,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrDuplicateUsername) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.log.Info().Str("username", string(role)).Msg("privileged account provisioned")
	return true, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/ports"
)

const defaultTokenTTL = 30 * time.Minute

// AuthOptions tunes the session authority.
type AuthOptions struct {
	TokenTTL time.Duration
	// RetainOnSupersede keeps the stored token of a standard account when a
	// superseded token is presented. By default the stored token is cleared,
	// logging out every holder.
	RetainOnSupersede bool
	Clock             ports.Clock
}

// AuthService is the session authority: it issues and verifies session
// tokens and keeps at most one live session per standard account.
type AuthService struct {
	repo             ports.AccountRepository
	hasher           ports.PasswordHasher
	jwtSecret        []byte
	tokenTTL         time.Duration
	evictOnSupersede bool
	now              ports.Clock
	observer         ports.SessionObserver
	log              zerolog.Logger
}

func NewAuthService(repo ports.AccountRepository, hasher ports.PasswordHasher, jwtSecret string, opts AuthOptions, log zerolog.Logger) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &AuthService{
		repo:             repo,
		hasher:           hasher,
		jwtSecret:        []byte(jwtSecret),
		tokenTTL:         ttl,
		evictOnSupersede: !opts.RetainOnSupersede,
		now:              clock,
		log:              log,
	}
}

// SetObserver registers the component told about possibly stale sessions.
func (s *AuthService) SetObserver(o ports.SessionObserver) {
	s.observer = o
}

// Authenticate checks credentials, issues a token and stores it as the
// account's only valid session.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*ports.Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	acc, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, acc.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if acc.Blocked() {
		return nil, domain.ErrAccountDisabled
	}

	token, expiry, err := s.issueToken(acc)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateFields(ctx, acc.Username, domain.AccountUpdate{SessionToken: &token})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.log.Info().Str("username", acc.Username).Str("role", string(acc.Role)).Msg("session issued")

	if !updated.Privileged() {
		s.notify(updated.Username)
	}

	return &ports.Session{Token: token, Expiry: expiry, Account: updated}, nil
}

// Verify decodes token and enforces the single-session rule for standard
// accounts. Privileged accounts only need a well-formed unexpired token.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	acc, claims, err := s.resolve(ctx, token, true)
	if err != nil {
		return nil, err
	}
	return identityOf(acc, claims, token), nil
}

// CurrentIdentity is Verify plus the account flags check.
func (s *AuthService) CurrentIdentity(ctx context.Context, token string) (*domain.Account, error) {
	return s.current(ctx, token, true)
}

// Revalidate runs the CurrentIdentity checks without ever clearing a stored
// token. Long-lived connections use it to re-check their credential.
func (s *AuthService) Revalidate(ctx context.Context, token string) (*domain.Account, error) {
	return s.current(ctx, token, false)
}

func (s *AuthService) current(ctx context.Context, token string, mutate bool) (*domain.Account, error) {
	acc, _, err := s.resolve(ctx, token, mutate)
	if err != nil {
		return nil, err
	}
	if acc.Blocked() {
		return nil, domain.ErrAccountDisabled
	}
	return acc, nil
}

func (s *AuthService) resolve(ctx context.Context, token string, mutate bool) (*domain.Account, *sessionClaims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, nil, err
	}

	acc, err := s.repo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown account", domain.ErrInvalidToken)
		}
		return nil, nil, err
	}

	if acc.Privileged() || acc.SessionToken == token {
		return acc, claims, nil
	}

	if mutate && s.evictOnSupersede && acc.SessionToken != "" {
		cleared, err := s.repo.CompareAndClearSession(ctx, acc.Username, acc.SessionToken)
		if err != nil {
			s.log.Warn().Err(err).Str("username", acc.Username).Msg("failed to clear superseded session")
		} else if cleared {
			s.log.Warn().Str("username", acc.Username).Msg("concurrent session detected, stored session cleared")
			s.notify(acc.Username)
		}
	}

	return nil, nil, domain.ErrSessionSuperseded
}

func (s *AuthService) notify(username string) {
	if s.observer != nil {
		s.observer.SessionsChanged(username)
	}
}

func identityOf(acc *domain.Account, claims *sessionClaims, token string) *domain.Identity {
	id := &domain.Identity{Username: acc.Username, Role: acc.Role, Token: token}
	if claims.ExpiresAt != nil {
		id.Expiry = claims.ExpiresAt.Time
	}
	return id
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/policy"
	"github.com/botlab/robot-access/internal/core/ports"
)

// TimeslotService binds standard accounts to a robot and a closed window.
type TimeslotService struct {
	repo          ports.AccountRepository
	rejectOverlap bool
	// mu serialises the overlap check with the write when rejectOverlap is set.
	mu       sync.Mutex
	observer ports.SessionObserver
	log      zerolog.Logger
}

// NewTimeslotService returns an allocator. With rejectOverlap false, two
// accounts may hold intersecting windows on the same robot.
func NewTimeslotService(repo ports.AccountRepository, rejectOverlap bool, log zerolog.Logger) *TimeslotService {
	return &TimeslotService{repo: repo, rejectOverlap: rejectOverlap, log: log}
}

// SetObserver registers the component told when a binding changes.
func (s *TimeslotService) SetObserver(o ports.SessionObserver) {
	s.observer = o
}

// Allocate overwrites the target's resource and window.
func (s *TimeslotService) Allocate(ctx context.Context, actor *domain.Account, username string, resource domain.Resource, w domain.Window) (*domain.Account, error) {
	if !policy.CanManageAccounts(actor) {
		return nil, domain.ErrNotAuthorized
	}
	resource, err := domain.ParseResource(string(resource))
	if err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	w = domain.Window{Start: w.Start.UTC(), End: w.End.UTC()}

	target, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.Privileged() {
		return nil, fmt.Errorf("%w: privileged accounts are exempt from timeslots", domain.ErrInvalidInput)
	}

	if s.rejectOverlap {
		s.mu.Lock()
		defer s.mu.Unlock()

		holder, err := s.repo.FindOverlapping(ctx, resource, w, username)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: %s holds %s until %s", domain.ErrOverlappingWindow, holder.Username, resource, holder.Window.End.Format("2006-01-02 15:04"))
		case !errors.Is(err, domain.ErrAccountNotFound):
			return nil, err
		}
	}

	updated, err := s.repo.UpdateFields(ctx, username, domain.AccountUpdate{BoundResource: &resource, Window: &w})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("username", username).
		Str("actor", actor.Username).
		Str("resource", string(resource)).
		Time("window_start", w.Start).
		Time("window_end", w.End).
		Msg("timeslot allocated")

	s.notify(username)
	return updated, nil
}

// Revoke ends the target's access at once: the binding goes back to the
// expired sentinel and the stored session is cleared, so every outstanding
// token of the account stops verifying.
func (s *TimeslotService) Revoke(ctx context.Context, actor *domain.Account, username string) (*domain.Account, error) {
	if !policy.CanManageAccounts(actor) {
		return nil, domain.ErrNotAuthorized
	}

	target, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.Privileged() {
		return nil, fmt.Errorf("%w: privileged accounts are exempt from timeslots", domain.ErrInvalidInput)
	}

	none := domain.ResourceNone
	never := domain.NeverWindow
	cleared := ""
	updated, err := s.repo.UpdateFields(ctx, username, domain.AccountUpdate{
		BoundResource: &none,
		Window:        &never,
		SessionToken:  &cleared,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Str("actor", actor.Username).Msg("timeslot revoked")
	s.notify(username)
	return updated, nil
}

func (s *TimeslotService) notify(username string) {
	if s.observer != nil {
		s.observer.SessionsChanged(username)
	}
}

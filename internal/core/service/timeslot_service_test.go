package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/policy"
)

func slot(startHour, endHour int) domain.Window {
	day := time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC)
	return domain.Window{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestTimeslotService_Allocate_Success(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	seed(repo, "alice", domain.RoleStandard, "pw")
	svc := NewTimeslotService(repo, false, zerolog.Nop())

	w := slot(10, 11)
	updated, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceIoT, w)
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if updated.BoundResource != domain.ResourceIoT || updated.Window != w {
		t.Fatalf("unexpected binding: %+v", updated)
	}

	inside := policy.CanOperate(updated, domain.ResourceIoT, w.Start.Add(30*time.Minute))
	if !inside.Allowed {
		t.Fatalf("expected operation inside the window to be allowed")
	}
}

func TestTimeslotService_Allocate_NormalisesToUTC(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	seed(repo, "alice", domain.RoleStandard, "pw")
	svc := NewTimeslotService(repo, false, zerolog.Nop())

	cet := time.FixedZone("CET", 3600)
	w := domain.Window{
		Start: time.Date(2026, time.April, 6, 11, 0, 0, 0, cet),
		End:   time.Date(2026, time.April, 6, 12, 0, 0, 0, cet),
	}
	updated, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceROS, w)
	if err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if updated.Window.Start.Location() != time.UTC || updated.Window.Start.Hour() != 10 {
		t.Fatalf("expected UTC window, got %v", updated.Window.Start)
	}
}

func TestTimeslotService_Allocate_NonManagerLeavesBindingUnchanged(t *testing.T) {
	repo := newStubAccountRepo()
	alice := seed(repo, "alice", domain.RoleStandard, "pw")
	seed(repo, "bob", domain.RoleStandard, "pw")
	svc := NewTimeslotService(repo, false, zerolog.Nop())

	for _, target := range []string{"alice", "bob"} {
		if _, err := svc.Allocate(context.Background(), alice, target, domain.ResourceROS, slot(9, 17)); !errors.Is(err, domain.ErrNotAuthorized) {
			t.Fatalf("expected ErrNotAuthorized, got %v", err)
		}
		acc := repo.get(target)
		if acc.BoundResource != domain.ResourceNone || acc.Window != domain.NeverWindow {
			t.Fatalf("binding of %s changed: %+v", target, acc)
		}
	}
}

func TestTimeslotService_Allocate_InvalidInput(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	seed(repo, "alice", domain.RoleStandard, "pw")
	svc := NewTimeslotService(repo, false, zerolog.Nop())

	tests := []struct {
		name     string
		username string
		resource domain.Resource
		window   domain.Window
		want     error
	}{
		{"unknown_resource", "alice", domain.Resource("arm"), slot(9, 10), domain.ErrInvalidInput},
		{"empty_resource", "alice", domain.ResourceNone, slot(9, 10), domain.ErrInvalidInput},
		{"inverted_window", "alice", domain.ResourceROS, slot(10, 9), domain.ErrInvalidInput},
		{"zero_window", "alice", domain.ResourceROS, domain.Window{}, domain.ErrInvalidInput},
		{"privileged_target", "admin", domain.ResourceROS, slot(9, 10), domain.ErrInvalidInput},
		{"unknown_target", "ghost", domain.ResourceROS, slot(9, 10), domain.ErrAccountNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Allocate(context.Background(), admin, tt.username, tt.resource, tt.window); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTimeslotService_Allocate_InstantWindow(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	seed(repo, "alice", domain.RoleStandard, "pw")
	svc := NewTimeslotService(repo, false, zerolog.Nop())

	w := slot(9, 9)
	if _, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceROS, w); err != nil {
		t.Fatalf("single-instant window should be accepted: %v", err)
	}
}

func TestTimeslotService_OverlapAllowedByDefault(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	seed(repo, "alice", domain.RoleStandard, "pw")
	seed(repo, "bob", domain.RoleStandard, "pw")
	svc := NewTimeslotService(repo, false, zerolog.Nop())

	if _, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceROS, slot(9, 11)); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if _, err := svc.Allocate(context.Background(), admin, "bob", domain.ResourceROS, slot(10, 12)); err != nil {
		t.Fatalf("bob: %v", err)
	}
}

func TestTimeslotService_RejectOverlap(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	seed(repo, "alice", domain.RoleStandard, "pw")
	seed(repo, "bob", domain.RoleStandard, "pw")
	svc := NewTimeslotService(repo, true, zerolog.Nop())

	if _, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceROS, slot(9, 11)); err != nil {
		t.Fatalf("alice: %v", err)
	}

	// closed intervals: touching at 11:00 overlaps
	if _, err := svc.Allocate(context.Background(), admin, "bob", domain.ResourceROS, slot(11, 12)); !errors.Is(err, domain.ErrOverlappingWindow) {
		t.Fatalf("expected ErrOverlappingWindow, got %v", err)
	}
	if _, err := svc.Allocate(context.Background(), admin, "bob", domain.ResourceIoT, slot(9, 11)); err != nil {
		t.Fatalf("other robot should be free: %v", err)
	}
	// re-allocating the holder never conflicts with itself
	if _, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceROS, slot(10, 12)); err != nil {
		t.Fatalf("self re-allocation failed: %v", err)
	}
}

func TestTimeslotService_RejectOverlap_Concurrent(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	names := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	for _, n := range names {
		seed(repo, n, domain.RoleStandard, "pw")
	}
	svc := NewTimeslotService(repo, true, zerolog.Nop())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for _, n := range names {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			if _, err := svc.Allocate(context.Background(), admin, n, domain.ResourceROS, slot(9, 10)); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()

	if granted != 1 {
		t.Fatalf("expected exactly one grant, got %d", granted)
	}
}

func TestTimeslotService_Revoke(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	alice := seed(repo, "alice", domain.RoleStandard, "pw")
	svc := NewTimeslotService(repo, false, zerolog.Nop())

	if _, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceROS, slot(9, 17)); err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if _, err := svc.Revoke(context.Background(), alice, "alice"); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	revoked, err := svc.Revoke(context.Background(), admin, "alice")
	if err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if revoked.BoundResource != domain.ResourceNone || revoked.Window != domain.NeverWindow {
		t.Fatalf("unexpected binding after revoke: %+v", revoked)
	}
	d := policy.CanOperate(revoked, domain.ResourceROS, slot(12, 12).Start)
	if !errors.Is(d.Err(), domain.ErrUnallocated) {
		t.Fatalf("expected ErrUnallocated after revoke, got %v", d.Err())
	}
}

func TestTimeslotService_Revoke_EndsLiveSession(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	seed(repo, "alice", domain.RoleStandard, "pw")
	auth := newAuthSvc(repo, AuthOptions{})
	obs := &recordingObserver{}
	svc := NewTimeslotService(repo, false, zerolog.Nop())
	svc.SetObserver(obs)

	if _, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceROS, slot(9, 17)); err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	token := login(t, auth, "alice", "pw")
	before := obs.count()

	if _, err := svc.Revoke(context.Background(), admin, "alice"); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}

	if got := repo.get("alice").SessionToken; got != "" {
		t.Fatalf("expected stored session to be cleared, got %q", got)
	}
	if obs.count() != before+1 {
		t.Fatalf("expected revoke to notify the observer once, got %d", obs.count()-before)
	}
	if _, err := auth.CurrentIdentity(context.Background(), token); !errors.Is(err, domain.ErrSessionSuperseded) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestTimeslotService_Allocate_NotifiesObserver(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	seed(repo, "alice", domain.RoleStandard, "pw")
	obs := &recordingObserver{}
	svc := NewTimeslotService(repo, false, zerolog.Nop())
	svc.SetObserver(obs)

	if _, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceIoT, slot(9, 10)); err != nil {
		t.Fatalf("Allocate returned error: %v", err)
	}
	if obs.count() != 1 || obs.names[0] != "alice" {
		t.Fatalf("expected one notification for alice, got %v", obs.names)
	}

	// Rejected allocations change nothing and stay silent.
	if _, err := svc.Allocate(context.Background(), admin, "alice", domain.ResourceIoT, slot(10, 9)); err == nil {
		t.Fatalf("expected inverted window to fail")
	}
	if obs.count() != 1 {
		t.Fatalf("expected no notification for a failed allocation, got %d", obs.count())
	}
}

func TestTimeslotService_Revoke_PrivilegedTarget(t *testing.T) {
	repo := newStubAccountRepo()
	admin := seed(repo, "admin", domain.RoleAdmin, "pw")
	seed(repo, "root", domain.RoleRoot, "pw")
	obs := &recordingObserver{}
	svc := NewTimeslotService(repo, false, zerolog.Nop())
	svc.SetObserver(obs)

	if _, err := svc.Revoke(context.Background(), admin, "root"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Revoke(context.Background(), admin, "ghost"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if obs.count() != 0 {
		t.Fatalf("expected no notifications, got %v", obs.names)
	}
}

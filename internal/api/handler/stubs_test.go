package handler

import (
	"context"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/api/middleware"
	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/ports"
)

type stubAuthority struct {
	authenticateFn func(ctx context.Context, username, password string) (*ports.Session, error)
}

func (s *stubAuthority) Authenticate(ctx context.Context, username, password string) (*ports.Session, error) {
	return s.authenticateFn(ctx, username, password)
}

func (s *stubAuthority) Verify(context.Context, string) (*domain.Identity, error) {
	return nil, domain.ErrInvalidToken
}

func (s *stubAuthority) CurrentIdentity(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrInvalidToken
}

func (s *stubAuthority) Revalidate(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrInvalidToken
}

type stubAccounts struct {
	createFn      func(ctx context.Context, actor *domain.Account, in ports.NewAccountInput) (*domain.Account, error)
	setPasswordFn func(ctx context.Context, actor *domain.Account, username, pw string, dob time.Time) (*domain.Account, error)
	blacklistFn   func(ctx context.Context, actor *domain.Account, username string, flag bool) (*domain.Account, error)
	disableFn     func(ctx context.Context, actor *domain.Account, username string, flag bool) (*domain.Account, error)
	whoAmIFn      func(ctx context.Context, actor *domain.Account) ports.WhoAmI
}

func (s *stubAccounts) CreateAccount(ctx context.Context, actor *domain.Account, in ports.NewAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubAccounts) SetPassword(ctx context.Context, actor *domain.Account, username, pw string, dob time.Time) (*domain.Account, error) {
	return s.setPasswordFn(ctx, actor, username, pw, dob)
}

func (s *stubAccounts) SetBlacklisted(ctx context.Context, actor *domain.Account, username string, flag bool) (*domain.Account, error) {
	return s.blacklistFn(ctx, actor, username, flag)
}

func (s *stubAccounts) SetDisabled(ctx context.Context, actor *domain.Account, username string, flag bool) (*domain.Account, error) {
	return s.disableFn(ctx, actor, username, flag)
}

func (s *stubAccounts) WhoAmI(ctx context.Context, actor *domain.Account) ports.WhoAmI {
	return s.whoAmIFn(ctx, actor)
}

type stubTimeslots struct {
	allocateFn func(ctx context.Context, actor *domain.Account, username string, r domain.Resource, w domain.Window) (*domain.Account, error)
	revokeFn   func(ctx context.Context, actor *domain.Account, username string) (*domain.Account, error)
}

func (s *stubTimeslots) Allocate(ctx context.Context, actor *domain.Account, username string, r domain.Resource, w domain.Window) (*domain.Account, error) {
	return s.allocateFn(ctx, actor, username, r, w)
}

func (s *stubTimeslots) Revoke(ctx context.Context, actor *domain.Account, username string) (*domain.Account, error) {
	return s.revokeFn(ctx, actor, username)
}

type stubPusher struct {
	pushFn func(ctx context.Context, r domain.Resource, filename string, body io.Reader) error
}

func (s *stubPusher) Push(ctx context.Context, r domain.Resource, filename string, body io.Reader) error {
	return s.pushFn(ctx, r, filename, body)
}

type published struct {
	kind     domain.TelemetryKind
	resource domain.Resource
	text     string
}

type recordingPublisher struct {
	events []published
}

func (p *recordingPublisher) PublishOutput(r domain.Resource, text string) {
	p.events = append(p.events, published{domain.TelemetryOutput, r, text})
}

func (p *recordingPublisher) PublishFault(r domain.Resource, text string) {
	p.events = append(p.events, published{domain.TelemetryFault, r, text})
}

var rootAccount = &domain.Account{Username: "root", Role: domain.RoleRoot}

var aliceAccount = &domain.Account{
	Username:      "alice",
	Role:          domain.RoleStandard,
	DateOfBirth:   time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
	BoundResource: domain.ResourceNone,
	Window:        domain.NeverWindow,
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// withAccount simulates a request that already passed the Auth middleware.
func withAccount(c echo.Context, acc *domain.Account) echo.Context {
	c.Set(middleware.AccountKey, acc)
	return c
}

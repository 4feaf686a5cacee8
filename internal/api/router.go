package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/botlab/robot-access/internal/api/handler"
	"github.com/botlab/robot-access/internal/api/middleware"
	"github.com/botlab/robot-access/internal/core/ports"

	_ "github.com/botlab/robot-access/docs"
)

// Deps are the collaborators the HTTP surface is wired to.
type Deps struct {
	Log       zerolog.Logger
	Authority ports.SessionAuthority
	Accounts  ports.AccountService
	Timeslots ports.TimeslotService
	Publisher ports.TelemetryPublisher
	Pusher    ports.CodePusher
	// Stream serves the streaming handshake at GET /ws.
	Stream    http.Handler
	DeviceKey string
	Readiness map[string]handler.Pinger
	Clock     func() time.Time
	// Registerer receives the HTTP request metrics. Nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "robot_access",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/ws"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Authority, d.Accounts)
	accountHandler := handler.NewAccountHandler(d.Accounts)
	timeslotHandler := handler.NewTimeslotHandler(d.Timeslots)
	robotHandler := handler.NewRobotHandler(d.Pusher, d.Publisher)

	auth := middleware.Auth(d.Authority)
	manager := middleware.RequireManager()
	operate := middleware.RequireResource(d.Clock)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	v1 := e.Group("/v1")
	v1.GET("/me", authHandler.Me, auth)

	// --- Accounts ---
	v1.POST("/accounts", accountHandler.Create, auth, manager)
	v1.POST("/accounts/:username/password", accountHandler.SetPassword, auth)
	v1.POST("/accounts/:username/blacklist", accountHandler.Blacklist, auth, manager)
	v1.POST("/accounts/:username/disable", accountHandler.Disable, auth, manager)
	v1.PUT("/accounts/:username/timeslot", timeslotHandler.Allocate, auth, manager)
	v1.DELETE("/accounts/:username/timeslot", timeslotHandler.Revoke, auth, manager)

	// --- Robots ---
	v1.GET("/robots/:resource/access", robotHandler.Access, auth, operate)
	v1.POST("/robots/:resource/code", robotHandler.PushCode, auth, operate)

	device := middleware.DeviceKey(d.DeviceKey)
	v1.POST("/robots/:resource/output", robotHandler.Output, device)
	v1.POST("/robots/:resource/fault", robotHandler.Fault, device)

	// --- Streaming ---
	if d.Stream != nil {
		e.GET("/ws", echo.WrapHandler(d.Stream))
	}

	// --- Ops (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/ports"
)

// RobotHandler serves resource operations and the inbound telemetry relays.
type RobotHandler struct {
	pusher    ports.CodePusher
	publisher ports.TelemetryPublisher
}

func NewRobotHandler(pusher ports.CodePusher, publisher ports.TelemetryPublisher) *RobotHandler {
	return &RobotHandler{pusher: pusher, publisher: publisher}
}

// Access reports that the caller may operate the robot right now. Denials are
// produced by the RequireResource middleware.
//
// @Summary      Probe robot access
// @Tags         robots
// @Produce      json
// @Security     BearerAuth
// @Param        resource  path      string  true  "ros or iot"
// @Success      200       {object}  accessResponse
// @Failure      403       {object}  ErrorBody
// @Router       /v1/robots/{resource}/access [get]
func (h *RobotHandler) Access(c echo.Context) error {
	r, err := ctxResource(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accessResponse{Resource: string(r), Allowed: true})
}

// PushCode forwards an uploaded program to the robot.
//
// @Summary      Push code
// @Tags         robots
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        resource  path      string  true  "ros or iot"
// @Param        file      formData  file    true  "Program"
// @Success      200       {object}  pushResponse
// @Failure      400       {object}  ErrorBody
// @Failure      403       {object}  ErrorBody
// @Failure      502       {object}  ErrorBody
// @Router       /v1/robots/{resource}/code [post]
func (h *RobotHandler) PushCode(c echo.Context) error {
	r, err := ctxResource(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: file is required", domain.ErrInvalidInput)
	}
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("%w: unreadable upload", domain.ErrInvalidInput)
	}
	defer src.Close()

	name := filepath.Base(fh.Filename)
	if err := h.pusher.Push(c.Request().Context(), r, name, src); err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			return err
		}
		return echo.NewHTTPError(http.StatusBadGateway, "robot unreachable").SetInternal(err)
	}
	return c.JSON(http.StatusOK, pushResponse{Resource: string(r), Filename: name})
}

// Output relays a line the robot printed to every subscribed stream.
//
// @Summary      Relay robot output
// @Tags         robots
// @Accept       json
// @Param        resource      path    string            true  "ros or iot"
// @Param        X-Device-Key  header  string            false "Shared device key"
// @Param        body          body    telemetryRequest  true  "Line"
// @Success      202
// @Failure      400  {object}  ErrorBody
// @Failure      403  {object}  ErrorBody
// @Router       /v1/robots/{resource}/output [post]
func (h *RobotHandler) Output(c echo.Context) error {
	return h.relay(c, h.publisher.PublishOutput)
}

// Fault relays an error the robot raised to every subscribed stream.
//
// @Summary      Relay robot fault
// @Tags         robots
// @Accept       json
// @Param        resource      path    string            true  "ros or iot"
// @Param        X-Device-Key  header  string            false "Shared device key"
// @Param        body          body    telemetryRequest  true  "Error text"
// @Success      202
// @Failure      400  {object}  ErrorBody
// @Failure      403  {object}  ErrorBody
// @Router       /v1/robots/{resource}/fault [post]
func (h *RobotHandler) Fault(c echo.Context) error {
	return h.relay(c, h.publisher.PublishFault)
}

func (h *RobotHandler) relay(c echo.Context, publish func(domain.Resource, string)) error {
	r, err := domain.ParseResource(c.Param("resource"))
	if err != nil {
		return err
	}
	var req telemetryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	publish(r, req.Text)
	return c.NoContent(http.StatusAccepted)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/api/metrics"
	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/ports"
)

type TimeslotHandler struct {
	timeslots ports.TimeslotService
}

func NewTimeslotHandler(timeslots ports.TimeslotService) *TimeslotHandler {
	return &TimeslotHandler{timeslots: timeslots}
}

// Allocate binds an account to a robot for a closed time window.
//
// @Summary      Allocate timeslot
// @Tags         timeslots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string           true  "Account"
// @Param        body      body      allocateRequest  true  "Resource and window (RFC 3339)"
// @Success      200       {object}  accountResponse
// @Failure      400       {object}  ErrorBody
// @Failure      403       {object}  ErrorBody
// @Failure      409       {object}  ErrorBody
// @Router       /v1/accounts/{username}/timeslot [put]
func (h *TimeslotHandler) Allocate(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req allocateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	w := domain.Window{Start: req.Start, End: req.End}
	updated, err := h.timeslots.Allocate(c.Request().Context(), actor, c.Param("username"), domain.Resource(req.Resource), w)
	if err != nil {
		metrics.TimeslotAllocationsTotal.WithLabelValues(domain.KindOf(err)).Inc()
		return err
	}
	metrics.TimeslotAllocationsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, toAccountResponse(updated))
}

// Revoke ends an account's access immediately.
//
// @Summary      Revoke timeslot
// @Tags         timeslots
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Account"
// @Success      200       {object}  accountResponse
// @Failure      400       {object}  ErrorBody
// @Failure      403       {object}  ErrorBody
// @Failure      404       {object}  ErrorBody
// @Router       /v1/accounts/{username}/timeslot [delete]
func (h *TimeslotHandler) Revoke(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	updated, err := h.timeslots.Revoke(c.Request().Context(), actor, c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(updated))
}

package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/ports"
)

// AccountHandler exposes account management.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create registers a standard account whose initial password is its username.
//
// @Summary      Create account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "New account"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  ErrorBody
// @Failure      403   {object}  ErrorBody
// @Failure      409   {object}  ErrorBody
// @Router       /v1/accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req createAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return fmt.Errorf("%w: date_of_birth", domain.ErrInvalidInput)
	}

	created, err := h.accounts.CreateAccount(c.Request().Context(), actor, ports.NewAccountInput{
		Username:    req.Username,
		DateOfBirth: dob,
		Disabled:    req.Disabled,
		Blacklisted: req.Blacklisted,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAccountResponse(created))
}

// SetPassword replaces a standard account's password. The date of birth acts
// as the second factor.
//
// @Summary      Set password
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string              true  "Account"
// @Param        body      body      setPasswordRequest  true  "New password"
// @Success      200       {object}  accountResponse
// @Failure      400       {object}  ErrorBody
// @Failure      403       {object}  ErrorBody
// @Router       /v1/accounts/{username}/password [post]
func (h *AccountHandler) SetPassword(c echo.Context) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req setPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return fmt.Errorf("%w: date_of_birth", domain.ErrInvalidInput)
	}

	updated, err := h.accounts.SetPassword(c.Request().Context(), actor, c.Param("username"), req.Password, dob)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(updated))
}

// Blacklist sets or clears the blacklist flag.
//
// @Summary      Blacklist account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string       true  "Account"
// @Param        body      body      flagRequest  true  "Flag value"
// @Success      200       {object}  accountResponse
// @Failure      403       {object}  ErrorBody
// @Failure      404       {object}  ErrorBody
// @Router       /v1/accounts/{username}/blacklist [post]
func (h *AccountHandler) Blacklist(c echo.Context) error {
	return h.setFlag(c, h.accounts.SetBlacklisted)
}

// Disable sets or clears the disabled flag.
//
// @Summary      Disable account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string       true  "Account"
// @Param        body      body      flagRequest  true  "Flag value"
// @Success      200       {object}  accountResponse
// @Failure      403       {object}  ErrorBody
// @Failure      404       {object}  ErrorBody
// @Router       /v1/accounts/{username}/disable [post]
func (h *AccountHandler) Disable(c echo.Context) error {
	return h.setFlag(c, h.accounts.SetDisabled)
}

type flagSetter func(ctx context.Context, actor *domain.Account, username string, flag bool) (*domain.Account, error)

func (h *AccountHandler) setFlag(c echo.Context, set flagSetter) error {
	actor, err := ctxAccount(c)
	if err != nil {
		return err
	}
	var req flagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := set(c.Request().Context(), actor, c.Param("username"), *req.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(updated))
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/api/metrics"
	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/ports"
)

type AuthHandler struct {
	authority ports.SessionAuthority
	accounts  ports.AccountService
}

func NewAuthHandler(authority ports.SessionAuthority, accounts ports.AccountService) *AuthHandler {
	return &AuthHandler{authority: authority, accounts: accounts}
}

// Login authenticates a user and returns a session token. A new login for a
// standard account invalidates its previous token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  ErrorBody
// @Failure      401   {object}  ErrorBody
// @Failure      403   {object}  ErrorBody
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := h.authority.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(domain.KindOf(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.Expiry,
		Username:  sess.Account.Username,
		Role:      string(sess.Account.Role),
	})
}

// Me reports the caller's resource binding.
//
// @Summary      Who am I
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  whoAmIResponse
// @Failure      401  {object}  ErrorBody
// @Router       /v1/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	acc, err := ctxAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWhoAmIResponse(h.accounts.WhoAmI(c.Request().Context(), acc)))
}

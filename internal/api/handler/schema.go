package handler

import (
	"time"

	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/ports"
)

const dateLayout = "2006-01-02"

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

type windowResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type whoAmIResponse struct {
	Username string          `json:"username"`
	Role     string          `json:"role"`
	Resource string          `json:"resource"`
	Window   *windowResponse `json:"window,omitempty"`
}

type createAccountRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Disabled    bool   `json:"disabled"`
	Blacklisted bool   `json:"blacklisted"`
}

type setPasswordRequest struct {
	Password    string `json:"password" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

type flagRequest struct {
	Value *bool `json:"value" validate:"required"`
}

type allocateRequest struct {
	Resource string    `json:"resource" validate:"required,oneof=ros iot"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type accountResponse struct {
	Username      string          `json:"username"`
	Role          string          `json:"role"`
	Disabled      bool            `json:"disabled"`
	Blacklisted   bool            `json:"blacklisted"`
	DateOfBirth   string          `json:"date_of_birth,omitempty"`
	BoundResource string          `json:"bound_resource"`
	Window        *windowResponse `json:"window,omitempty"`
}

type telemetryRequest struct {
	Text string `json:"text" validate:"required"`
}

type accessResponse struct {
	Resource string `json:"resource"`
	Allowed  bool   `json:"allowed"`
}

type pushResponse struct {
	Resource string `json:"resource"`
	Filename string `json:"filename"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	resp := accountResponse{
		Username:      a.Username,
		Role:          string(a.Role),
		Disabled:      a.Disabled,
		Blacklisted:   a.Blacklisted,
		BoundResource: string(a.BoundResource),
	}
	if !a.DateOfBirth.IsZero() {
		resp.DateOfBirth = a.DateOfBirth.Format(dateLayout)
	}
	if a.BoundResource != domain.ResourceNone {
		resp.Window = &windowResponse{Start: a.Window.Start, End: a.Window.End}
	}
	return resp
}

func toWhoAmIResponse(w ports.WhoAmI) whoAmIResponse {
	resp := whoAmIResponse{Username: w.Username, Role: string(w.Role), Resource: w.Resource}
	if w.Window != nil {
		resp.Window = &windowResponse{Start: w.Window.Start, End: w.Window.End}
	}
	return resp
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// ErrorBody is the canonical error envelope for all API errors.
type ErrorBody struct {
	Error       string     `json:"error"`
	Message     string     `json:"message"`
	Resource    string     `json:"resource,omitempty"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
}

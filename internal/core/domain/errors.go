package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnknownSubject     = errors.New("token has no subject")
	ErrSessionSuperseded  = errors.New("session superseded by a newer login")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrWrongResource      = errors.New("allocated to a different resource")
	ErrOutsideWindow      = errors.New("outside the allocated timeslot")
	ErrUnallocated        = errors.New("no resource or timeslot allocated")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrOverlappingWindow  = errors.New("timeslot overlaps another allocation")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStoreUnavailable   = errors.New("credential store unavailable")
)

// Machine-readable error kinds exposed at the HTTP and streaming boundaries.
const (
	KindInvalidCredentials = "invalid_credentials"
	KindAccountDisabled    = "account_disabled"
	KindInvalidToken       = "invalid_token"
	KindUnknownSubject     = "unknown_subject"
	KindSessionSuperseded  = "session_superseded"
	KindNotAuthorized      = "not_authorized"
	KindWrongResource      = "wrong_resource"
	KindOutsideWindow      = "outside_window"
	KindUnallocated        = "unallocated"
	KindDuplicateUsername  = "duplicate_username"
	KindAccountNotFound    = "account_not_found"
	KindOverlappingWindow  = "overlapping_window"
	KindInvalidInput       = "invalid_input"
	KindStoreUnavailable   = "store_unavailable"
	KindInternal           = "internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrAccountDisabled, KindAccountDisabled},
	{ErrInvalidToken, KindInvalidToken},
	{ErrUnknownSubject, KindUnknownSubject},
	{ErrSessionSuperseded, KindSessionSuperseded},
	{ErrNotAuthorized, KindNotAuthorized},
	{ErrWrongResource, KindWrongResource},
	{ErrOutsideWindow, KindOutsideWindow},
	{ErrUnallocated, KindUnallocated},
	{ErrDuplicateUsername, KindDuplicateUsername},
	{ErrAccountNotFound, KindAccountNotFound},
	{ErrOverlappingWindow, KindOverlappingWindow},
	{ErrInvalidInput, KindInvalidInput},
	{ErrStoreUnavailable, KindStoreUnavailable},
}

// KindOf returns the machine-readable kind of err, or KindInternal when err
// does not wrap any of the domain sentinels.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// DenialError is returned when the policy engine refuses a resource operation.
// Window is only meaningful for ErrOutsideWindow.
type DenialError struct {
	Reason   error
	Resource Resource
	Window   Window
}

func (e *DenialError) Error() string {
	if errors.Is(e.Reason, ErrOutsideWindow) {
		return fmt.Sprintf("%s: %s to %s", e.Reason, e.Window.Start.Format(time.RFC3339), e.Window.End.Format(time.RFC3339))
	}
	if errors.Is(e.Reason, ErrWrongResource) && e.Resource != ResourceNone {
		return fmt.Sprintf("%s: you are allocated a timeslot for %s", e.Reason, e.Resource)
	}
	return e.Reason.Error()
}

func (e *DenialError) Unwrap() error { return e.Reason }

// StoreError wraps a persistence fault so driver types never cross the
// repository boundary.
func StoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

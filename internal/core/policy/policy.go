// Package policy answers the three access questions asked about an already
// resolved account. It has no side effects and never touches the store.
package policy

import (
	"time"

	"github.com/botlab/robot-access/internal/core/domain"
)

// Decision is the outcome of CanOperate. Denial is nil when Allowed.
type Decision struct {
	Allowed bool
	Denial  *domain.DenialError
}

// Err returns the denial as an error, or nil.
func (d Decision) Err() error {
	if d.Allowed || d.Denial == nil {
		return nil
	}
	return d.Denial
}

// IsPrivileged reports whether acc is root, developer or admin.
func IsPrivileged(acc *domain.Account) bool {
	return acc != nil && acc.Role.Capabilities().Privileged
}

// CanManageAccounts gates account creation, blacklisting, disabling and
// timeslot allocation.
func CanManageAccounts(acc *domain.Account) bool {
	return acc != nil && acc.Role.Capabilities().ManagesAccounts
}

// BypassesTimeslot reports whether acc is exempt from window/resource checks.
func BypassesTimeslot(acc *domain.Account) bool {
	return acc != nil && acc.Role.Capabilities().BypassesTimeslot
}

// CanOperate decides whether acc may act on resource at instant now.
// A resource mismatch is reported before a window mismatch.
func CanOperate(acc *domain.Account, resource domain.Resource, now time.Time) Decision {
	if BypassesTimeslot(acc) {
		return Decision{Allowed: true}
	}
	if acc == nil || acc.BoundResource == domain.ResourceNone {
		return deny(domain.ErrUnallocated, domain.ResourceNone, domain.Window{})
	}
	if acc.BoundResource != resource {
		return deny(domain.ErrWrongResource, acc.BoundResource, domain.Window{})
	}
	if !acc.Window.Contains(now) {
		return deny(domain.ErrOutsideWindow, acc.BoundResource, acc.Window)
	}
	return Decision{Allowed: true}
}

func deny(reason error, bound domain.Resource, w domain.Window) Decision {
	return Decision{Denial: &domain.DenialError{Reason: reason, Resource: bound, Window: w}}
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Resource names one of the shared robots.
type Resource string

const (
	ResourceNone Resource = ""
	ResourceROS  Resource = "ros"
	ResourceIoT  Resource = "iot"
)

// Resources lists every robot the lab exposes.
func Resources() []Resource {
	return []Resource{ResourceROS, ResourceIoT}
}

// ParseResource normalises s and fails with ErrInvalidInput for unknown robots.
func ParseResource(s string) (Resource, error) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case ResourceROS, ResourceIoT:
		return r, nil
	}
	return ResourceNone, fmt.Errorf("%w: unknown resource %q", ErrInvalidInput, s)
}

// NeverWindow is the sentinel stamped on new and revoked accounts: a single
// instant in the past, so no check can ever fall inside it.
var NeverWindow = Window{
	Start: time.Date(2024, time.October, 3, 12, 30, 0, 0, time.UTC),
	End:   time.Date(2024, time.October, 3, 12, 30, 0, 0, time.UTC),
}

// Window is a closed time interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether the two closed intervals share at least one instant.
func (w Window) Overlaps(o Window) bool {
	return !w.Start.After(o.End) && !o.Start.After(w.End)
}

// Validate rejects inverted or zero intervals.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: window bounds are required", ErrInvalidInput)
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: window ends before it starts", ErrInvalidInput)
	}
	return nil
}

package domain

import "time"

// TelemetryKind distinguishes console output from raised errors.
type TelemetryKind string

const (
	TelemetryOutput TelemetryKind = "output"
	TelemetryFault  TelemetryKind = "fault"
)

// TelemetryEvent is a line a robot printed or an error it raised.
type TelemetryEvent struct {
	Resource   Resource
	Kind       TelemetryKind
	Text       string
	ReceivedAt time.Time
}

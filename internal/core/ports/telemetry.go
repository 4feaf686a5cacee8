package ports

import (
	"context"
	"io"

	"github.com/botlab/robot-access/internal/core/domain"
)

// TelemetrySink receives robot output and faults for fan-out.
type TelemetrySink interface {
	Broadcast(event domain.TelemetryEvent)
}

// TelemetryPublisher is the inbound relay used by the device collaborator.
type TelemetryPublisher interface {
	PublishOutput(resource domain.Resource, text string)
	PublishFault(resource domain.Resource, text string)
}

// CodePusher delivers a program to a robot.
type CodePusher interface {
	Push(ctx context.Context, resource domain.Resource, filename string, body io.Reader) error
}

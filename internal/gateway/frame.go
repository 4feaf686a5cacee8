package gateway

import "github.com/botlab/robot-access/internal/core/domain"

// Frame types sent to clients.
const (
	FrameConnected  = "connected"
	FrameSubscribed = "subscribed"
	FrameOutput     = "output"
	FrameFault      = "fault"
	FrameError      = "error"
)

// Frame is the JSON envelope of every message written to a client.
type Frame struct {
	Type      string   `json:"type"`
	Resource  string   `json:"resource,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	Data      string   `json:"data,omitempty"`
}

func telemetryFrame(e domain.TelemetryEvent) Frame {
	t := FrameOutput
	if e.Kind == domain.TelemetryFault {
		t = FrameFault
	}
	return Frame{Type: t, Resource: string(e.Resource), Data: e.Text}
}

func errorFrame(err error) Frame {
	msg := "internal error"
	if kind := domain.KindOf(err); kind != domain.KindInternal {
		msg = err.Error()
	}
	return Frame{Type: FrameError, Kind: domain.KindOf(err), Data: msg}
}

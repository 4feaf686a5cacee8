package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/ports"
)

const defaultChannelPrefix = "robot"

// TelemetryRelay feeds robot output published on Redis into a
// TelemetryPublisher. Robots publish plain text on
// <prefix>:<resource>:output and <prefix>:<resource>:fault.
type TelemetryRelay struct {
	client    *redis.Client
	prefix    string
	publisher ports.TelemetryPublisher
	log       zerolog.Logger
}

// NewTelemetryRelay wraps client. An empty prefix falls back to "robot".
func NewTelemetryRelay(client *redis.Client, prefix string, publisher ports.TelemetryPublisher, log zerolog.Logger) *TelemetryRelay {
	if prefix == "" {
		prefix = defaultChannelPrefix
	}
	return &TelemetryRelay{client: client, prefix: prefix, publisher: publisher, log: log}
}

// Patterns lists the channel patterns the relay listens on.
func (r *TelemetryRelay) Patterns() []string {
	return []string{
		r.prefix + ":*:" + string(domain.TelemetryOutput),
		r.prefix + ":*:" + string(domain.TelemetryFault),
	}
}

// Run subscribes and forwards messages until ctx is cancelled.
func (r *TelemetryRelay) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, r.Patterns()...)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	r.log.Info().Strs("patterns", r.Patterns()).Msg("telemetry relay subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(msg.Channel, msg.Payload)
		}
	}
}

func (r *TelemetryRelay) forward(channel, payload string) {
	resource, kind, err := r.parseChannel(channel)
	if err != nil {
		r.log.Warn().Err(err).Str("channel", channel).Msg("dropping telemetry message")
		return
	}
	switch kind {
	case domain.TelemetryOutput:
		r.publisher.PublishOutput(resource, payload)
	case domain.TelemetryFault:
		r.publisher.PublishFault(resource, payload)
	}
}

// parseChannel splits <prefix>:<resource>:<kind>.
func (r *TelemetryRelay) parseChannel(channel string) (domain.Resource, domain.TelemetryKind, error) {
	rest, ok := strings.CutPrefix(channel, r.prefix+":")
	if !ok {
		return domain.ResourceNone, "", fmt.Errorf("unexpected channel %q", channel)
	}
	name, kind, ok := strings.Cut(rest, ":")
	if !ok {
		return domain.ResourceNone, "", fmt.Errorf("unexpected channel %q", channel)
	}
	resource, err := domain.ParseResource(name)
	if err != nil {
		return domain.ResourceNone, "", err
	}
	switch k := domain.TelemetryKind(kind); k {
	case domain.TelemetryOutput, domain.TelemetryFault:
		return resource, k, nil
	}
	return domain.ResourceNone, "", fmt.Errorf("unknown telemetry kind %q", kind)
}

package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/botlab/robot-access/internal/api/metrics"
	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes robot telemetry to a fixed set of workers using
// consistent hashing on the resource, so lines printed by one robot reach
// clients in the order they were relayed.
type Dispatcher struct {
	workers []chan domain.TelemetryEvent
	sink    ports.TelemetrySink
	now     func() time.Time
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.TelemetrySink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.TelemetryEvent, numWorkers),
		sink:    sink,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.TelemetryEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// PublishOutput enqueues a line the robot printed.
func (d *Dispatcher) PublishOutput(resource domain.Resource, text string) {
	d.Enqueue(domain.TelemetryEvent{Resource: resource, Kind: domain.TelemetryOutput, Text: text})
}

// PublishFault enqueues an error the robot raised.
func (d *Dispatcher) PublishFault(resource domain.Resource, text string) {
	d.Enqueue(domain.TelemetryEvent{Resource: resource, Kind: domain.TelemetryFault, Text: text})
}

// Enqueue hands an event to the worker responsible for its resource. It never
// blocks: when that worker's channel is full the event is dropped, counted and
// false is returned.
func (d *Dispatcher) Enqueue(event domain.TelemetryEvent) bool {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = d.now()
	}
	idx := d.shardIndex(event.Resource)
	select {
	case d.workers[idx] <- event:
	default:
		metrics.TelemetryEventsDroppedTotal.WithLabelValues(string(event.Resource)).Inc()
		d.log.Warn().
			Str("resource", string(event.Resource)).
			Int("worker_id", idx).
			Msg("telemetry queue full, event dropped")
		return false
	}
	metrics.TelemetryQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return true
}

// shardIndex maps a resource deterministically to a worker index.
func (d *Dispatcher) shardIndex(resource domain.Resource) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(resource))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.TelemetryEvent) {
	depth := metrics.TelemetryQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.sink.Broadcast(event)
			metrics.TelemetryEventsTotal.WithLabelValues(string(event.Resource), string(event.Kind)).Inc()
			d.log.Debug().
				Str("resource", string(event.Resource)).
				Str("kind", string(event.Kind)).
				Int("worker_id", id).
				Msg("telemetry relayed")
		}
	}
}

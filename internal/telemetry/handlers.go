package telemetry

import (
	"errors"
	"fmt"

	"github.com/SFSPlayer-sys/gosfs/internal/dispatcher"
	"github.com/SFSPlayer-sys/gosfs/internal/flight"
	"github.com/SFSPlayer-sys/gosfs/internal/influx"
	"github.com/SFSPlayer-sys/gosfs/internal/storage"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
)

// Event types routed through the dispatcher.
const (
	EventFlightStart = "flight.start"
	EventFlightEnd   = "flight.end"
	EventSample      = "sample"
	EventImpact      = "impact"
)

const defaultBufferSize = 1000

// ErrPayload is returned when an event carries the wrong payload type.
var ErrPayload = errors.New("unexpected event payload")

// Sinks are the consumers of recorder events.
type Sinks struct {
	Storage    storage.Backend
	Influx     *influx.Manager // nil disables the InfluxDB sink
	Flight     *flight.Context
	BufferSize int
}

// RegisterHandlers wires recorder events to the sinks. Flight start and end run
// synchronously so the caller sees the assigned ID and any export error; samples
// and impacts are buffered.
func RegisterHandlers(d *dispatcher.Dispatcher, sinks Sinks) {
	size := sinks.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}

	d.Register(EventFlightStart, func(e dispatcher.Event) (any, error) {
		f, ok := e.Payload.(*core.Flight)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrPayload, e.Payload)
		}
		if err := sinks.Storage.StartFlight(f); err != nil {
			return nil, err
		}
		return f, nil
	}, dispatcher.Logged())

	d.Register(EventFlightEnd, func(e dispatcher.Event) (any, error) {
		f, ok := e.Payload.(*core.Flight)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrPayload, e.Payload)
		}
		return f, sinks.Storage.EndFlight(f)
	}, dispatcher.Logged())

	d.Register(EventSample, func(e dispatcher.Event) (any, error) {
		s, ok := e.Payload.(*core.Sample)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrPayload, e.Payload)
		}
		err := sinks.Storage.RecordSample(s)
		if sinks.Influx != nil {
			err = errors.Join(err, sinks.Influx.WriteSample(sinks.Flight.GetFlight(), s))
		}
		return nil, err
	}, dispatcher.Buffered(size))

	d.Register(EventImpact, func(e dispatcher.Event) (any, error) {
		i, ok := e.Payload.(*core.Impact)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrPayload, e.Payload)
		}
		err := sinks.Storage.RecordImpact(i)
		if sinks.Influx != nil {
			err = errors.Join(err, sinks.Influx.WriteImpact(sinks.Flight.GetFlight(), i))
		}
		return nil, err
	}, dispatcher.Buffered(size))
}

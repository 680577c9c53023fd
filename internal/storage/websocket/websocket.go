// Package websocket streams flight data as JSON envelopes to a WebSocket server.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/storage"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	"github.com/SFSPlayer-sys/gosfs/pkg/streaming"
)

const defaultAckTimeout = 10 * time.Second

// Config holds WebSocket backend configuration.
type Config struct {
	URL        string
	Secret     string
	AckTimeout time.Duration
	Logger     *slog.Logger
}

// Backend streams flight data over WebSocket.
// Flight start and end wait for a server ack; samples and impacts are fire-and-forget.
type Backend struct {
	conn         *connection
	cfg          Config
	nextFlightID atomic.Uint64
	flightID     atomic.Uint64
	samples      atomic.Uint64
}

// New creates a new WebSocket storage backend.
func New(cfg Config) *Backend {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	return &Backend{
		conn: newConnection(cfg.Logger.With("component", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// Dropped returns how many messages were discarded because the send buffer was full.
func (b *Backend) Dropped() uint64 {
	return b.conn.dropped.Load()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	env, err := streaming.NewEnvelope(msgType, payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartFlight assigns the next local flight ID, sends start_flight and waits for server ack.
func (b *Backend) StartFlight(f *core.Flight) error {
	f.ID = uint(b.nextFlightID.Add(1))

	data, err := marshalEnvelope(streaming.TypeStartFlight, streaming.StartFlightPayload{Flight: f})
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	b.flightID.Store(uint64(f.ID))
	b.samples.Store(0)

	return b.conn.sendAndWait(data, streaming.TypeStartFlight, b.cfg.AckTimeout)
}

// EndFlight sends end_flight and waits for server ack.
func (b *Backend) EndFlight(f *core.Flight) error {
	id := uint(b.flightID.Load())
	if id == 0 {
		return storage.ErrNoFlight
	}

	end := time.Now()
	if f != nil && !f.EndTime.IsZero() {
		end = f.EndTime
	}
	data, err := marshalEnvelope(streaming.TypeEndFlight, streaming.EndFlightPayload{
		FlightID: id,
		Samples:  uint(b.samples.Load()),
		EndUnix:  end.Unix(),
	})
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndFlight, b.cfg.AckTimeout)

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()
	b.flightID.Store(0)

	return err
}

// RecordSample streams a sample of the active flight.
func (b *Backend) RecordSample(s *core.Sample) error {
	id := uint(b.flightID.Load())
	if id == 0 {
		return storage.ErrNoFlight
	}
	s.FlightID = id
	b.samples.Add(1)
	return b.sendEnvelope(streaming.TypeSample, s)
}

// RecordImpact streams an impact prediction of the active flight.
func (b *Backend) RecordImpact(i *core.Impact) error {
	id := uint(b.flightID.Load())
	if id == 0 {
		return storage.ErrNoFlight
	}
	i.FlightID = id
	return b.sendEnvelope(streaming.TypeImpact, i)
}

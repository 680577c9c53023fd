package flight

import (
	"log/slog"
	"sync"

	"github.com/SFSPlayer-sys/gosfs/pkg/core"
)

// Context holds the flight currently being recorded
type Context struct {
	mu      sync.RWMutex
	flight  *core.Flight
	samples uint
}

const idleName = "No flight recording"

// NewContext creates a new Context with no active flight
func NewContext() *Context {
	return &Context{
		flight: &core.Flight{Name: idleName},
	}
}

// Clear drops the current flight
func (fc *Context) Clear() {
	fc.SetFlight(&core.Flight{Name: idleName})
}

// Active reports whether a flight with an assigned ID is being recorded
func (fc *Context) Active() bool {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.flight.ID != 0
}

// GetFlight returns the current flight
func (fc *Context) GetFlight() *core.Flight {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.flight
}

// SetFlight replaces the current flight and resets the sample counter
func (fc *Context) SetFlight(f *core.Flight) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.flight = f
	fc.samples = 0
}

// NextSeq reserves the sequence number of the next sample
func (fc *Context) NextSeq() uint {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.samples++
	return fc.samples
}

// Samples is the number of sequence numbers handed out for the current flight
func (fc *Context) Samples() uint {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.samples
}

// LogAttrs returns the flight attributes attached to every log record.
func (fc *Context) LogAttrs() []slog.Attr {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return []slog.Attr{
		slog.String("flight", fc.flight.Name),
		slog.Uint64("flightId", uint64(fc.flight.ID)),
	}
}

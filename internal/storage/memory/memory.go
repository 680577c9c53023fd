// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/internal/storage"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
)

// ErrNoFlight is returned when recording without an active flight.
var ErrNoFlight = storage.ErrNoFlight

// Backend stores flight data in memory and exports it to a file when the flight ends
type Backend struct {
	cfg    config.MemoryConfig
	flight *core.Flight

	samples []core.Sample
	impacts []core.Impact

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg: cfg,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartFlight begins recording a new flight
func (b *Backend) StartFlight(f *core.Flight) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	f.ID = b.idCounter
	b.flight = f

	b.samples = nil
	b.impacts = nil

	return nil
}

// EndFlight finalizes and exports the flight data
func (b *Backend) EndFlight(f *core.Flight) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.flight == nil {
		return ErrNoFlight
	}
	if f != nil {
		b.flight = f
	}

	return b.export()
}

// RecordSample stores a sample of the active flight
func (b *Backend) RecordSample(s *core.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.flight == nil {
		return ErrNoFlight
	}
	s.FlightID = b.flight.ID
	b.samples = append(b.samples, *s)
	return nil
}

// RecordImpact stores an impact prediction of the active flight
func (b *Backend) RecordImpact(i *core.Impact) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.flight == nil {
		return ErrNoFlight
	}
	i.FlightID = b.flight.ID
	b.impacts = append(b.impacts, *i)
	return nil
}

// Samples returns a copy of the recorded samples
func (b *Backend) Samples() []core.Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.Sample(nil), b.samples...)
}

// Impacts returns a copy of the recorded impact predictions
func (b *Backend) Impacts() []core.Impact {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.Impact(nil), b.impacts...)
}

// ExportedFilePath returns the path of the last export, or "" before the first flight ends
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

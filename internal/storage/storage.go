// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/SFSPlayer-sys/gosfs/pkg/core"
)

// ErrNoFlight is returned when recording without an active flight.
var ErrNoFlight = errors.New("no active flight")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Flight management (StartFlight assigns ID to the passed pointer)
	StartFlight(f *core.Flight) error
	EndFlight(f *core.Flight) error

	// Recording
	RecordSample(s *core.Sample) error
	RecordImpact(i *core.Impact) error
}

// Exporter is an optional interface for backends that write one file per flight.
type Exporter interface {
	ExportedFilePath() string
}

// ExportMetadata summarizes a finished flight for logs and CLI output.
type ExportMetadata struct {
	FlightName string
	RocketName string
	PlanetCode string
	Duration   float64 // seconds
	Samples    int
	Tag        string
}

// MetadataFor builds ExportMetadata from a flight and its sample count.
func MetadataFor(f *core.Flight, samples int) ExportMetadata {
	return ExportMetadata{
		FlightName: f.Name,
		RocketName: f.RocketName,
		PlanetCode: f.PlanetCode,
		Duration:   f.Duration().Seconds(),
		Samples:    samples,
		Tag:        f.Tag,
	}
}

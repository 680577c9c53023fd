// pkg/core/flight.go
package core

import (
	"time"

	"github.com/SFSPlayer-sys/gosfs/pkg/ballistics"
)

// Vec2 is a planet-centric world position or velocity.
type Vec2 = ballistics.Vec2

// Flight is one recording session of a single rocket.
type Flight struct {
	ID             uint          `json:"id"`
	Name           string        `json:"name"`
	Rocket         string        `json:"rocket,omitempty"` // reference used to query the server; empty is the controlled rocket
	RocketName     string        `json:"rocketName"`
	PlanetCode     string        `json:"planetCode"`
	ServerVersion  string        `json:"serverVersion,omitempty"`
	StartTime      time.Time     `json:"startTime"`
	EndTime        time.Time     `json:"endTime"`
	SampleInterval time.Duration `json:"sampleInterval"`
	Tag            string        `json:"tag,omitempty"`
}

// Duration is the wall-clock length of the flight, or zero while it is still running.
func (f *Flight) Duration() time.Duration {
	if f.EndTime.IsZero() {
		return 0
	}
	return f.EndTime.Sub(f.StartTime)
}

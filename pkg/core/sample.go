// pkg/core/sample.go
package core

import "time"

// Sample is the rocket state read at one tick of the recorder.
// FlightID references Flight.ID.
type Sample struct {
	FlightID        uint           `json:"flightId"`
	Seq             uint           `json:"seq"`
	Time            time.Time      `json:"time"`
	WorldTime       float64        `json:"worldTime"`
	PlanetCode      string         `json:"planetCode"`
	Position        Vec2           `json:"position"`
	Velocity        Vec2           `json:"velocity"`
	Altitude        float64        `json:"altitude"`
	Rotation        float64        `json:"rotation"`
	AngularVelocity float64        `json:"angularVelocity"`
	Throttle        float64        `json:"throttle"`
	RCS             bool           `json:"rcs"`
	Mass            float64        `json:"mass"`
	Thrust          float64        `json:"thrust"`
	TWR             float64        `json:"twr"`
	Raw             map[string]any `json:"raw,omitempty"`
}

// Impact is the predicted surface crossing computed from one sample.
type Impact struct {
	FlightID   uint      `json:"flightId"`
	Seq        uint      `json:"seq"`
	Time       time.Time `json:"time"`
	PlanetCode string    `json:"planetCode"`
	Hit        bool      `json:"hit"`
	Point      Vec2      `json:"point"`
	Steps      int       `json:"steps"`
	FlightTime float64   `json:"flightTime"` // seconds until impact
}

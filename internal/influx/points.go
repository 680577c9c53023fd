package influx

import (
	"strconv"

	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

func flightTags(p *influxdb2_write.Point, flight *core.Flight, planet string) {
	if flight != nil {
		p.AddTag("flight", flight.Name)
		p.AddTag("flightId", strconv.FormatUint(uint64(flight.ID), 10))
		if flight.RocketName != "" {
			p.AddTag("rocket", flight.RocketName)
		}
	}
	if planet != "" {
		p.AddTag("planet", planet)
	}
}

// SamplePoint converts a sample to a rocket_state point.
func SamplePoint(flight *core.Flight, s *core.Sample) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement("rocket_state").SetTime(s.Time)
	flightTags(p, flight, s.PlanetCode)
	p.AddField("seq", int64(s.Seq)).
		AddField("worldTime", s.WorldTime).
		AddField("x", s.Position.X).
		AddField("y", s.Position.Y).
		AddField("vx", s.Velocity.X).
		AddField("vy", s.Velocity.Y).
		AddField("speed", s.Velocity.Len()).
		AddField("altitude", s.Altitude).
		AddField("rotation", s.Rotation).
		AddField("angularVelocity", s.AngularVelocity).
		AddField("throttle", s.Throttle).
		AddField("rcs", s.RCS).
		AddField("mass", s.Mass).
		AddField("thrust", s.Thrust).
		AddField("twr", s.TWR)
	return p
}

// ImpactPoint converts an impact prediction to an impact_prediction point.
// Misses carry only the hit flag and step count.
func ImpactPoint(flight *core.Flight, i *core.Impact) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement("impact_prediction").SetTime(i.Time)
	flightTags(p, flight, i.PlanetCode)
	p.AddField("seq", int64(i.Seq)).
		AddField("hit", i.Hit).
		AddField("steps", i.Steps)
	if i.Hit {
		p.AddField("x", i.Point.X).
			AddField("y", i.Point.Y).
			AddField("timeToImpact", i.FlightTime)
	}
	return p
}

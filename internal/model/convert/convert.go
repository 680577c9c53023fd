package convert

import (
	"encoding/json"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/geo"
	"github.com/SFSPlayer-sys/gosfs/internal/model"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
)

// FlightToCore converts a GORM Flight to a core.Flight.
func FlightToCore(m model.Flight) core.Flight {
	f := core.Flight{
		ID:             m.ID,
		Name:           m.Name,
		Rocket:         m.Rocket,
		RocketName:     m.RocketName,
		PlanetCode:     m.PlanetCode,
		ServerVersion:  m.ServerVersion,
		StartTime:      m.StartTime,
		SampleInterval: time.Duration(m.SampleIntervalMs) * time.Millisecond,
		Tag:            m.Tag,
	}
	if m.EndTime.Valid {
		f.EndTime = m.EndTime.Time
	}
	return f
}

// SampleToCore converts a GORM Sample to a core.Sample.
func SampleToCore(m model.Sample) core.Sample {
	var raw map[string]any
	if len(m.Raw) > 0 {
		_ = json.Unmarshal(m.Raw, &raw)
	}
	return core.Sample{
		FlightID:        m.FlightID,
		Seq:             m.Seq,
		Time:            m.Time,
		WorldTime:       m.WorldTime,
		PlanetCode:      m.PlanetCode,
		Position:        geo.Vec2FromPoint(m.Position),
		Velocity:        core.Vec2{X: m.VelocityX, Y: m.VelocityY},
		Altitude:        m.Altitude,
		Rotation:        m.Rotation,
		AngularVelocity: m.AngularVelocity,
		Throttle:        m.Throttle,
		RCS:             m.RCS,
		Mass:            m.Mass,
		Thrust:          m.Thrust,
		TWR:             m.TWR,
		Raw:             raw,
	}
}

// ImpactToCore converts a GORM ImpactPrediction to a core.Impact.
func ImpactToCore(m model.ImpactPrediction) core.Impact {
	return core.Impact{
		FlightID:   m.FlightID,
		Seq:        m.Seq,
		Time:       m.Time,
		PlanetCode: m.PlanetCode,
		Hit:        m.Hit,
		Point:      geo.Vec2FromPoint(m.Point),
		Steps:      m.Steps,
		FlightTime: m.FlightTime,
	}
}

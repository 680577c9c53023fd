// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"database/sql"
	"encoding/json"

	"github.com/SFSPlayer-sys/gosfs/internal/geo"
	"github.com/SFSPlayer-sys/gosfs/internal/model"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// rawToJSON converts a decoded response map to datatypes.JSON for DB storage.
func rawToJSON(raw map[string]any) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToFlight converts a core.Flight to a GORM model.Flight.
func CoreToFlight(f core.Flight) model.Flight {
	m := model.Flight{
		Name:             f.Name,
		Rocket:           f.Rocket,
		RocketName:       f.RocketName,
		PlanetCode:       f.PlanetCode,
		ServerVersion:    f.ServerVersion,
		StartTime:        f.StartTime,
		SampleIntervalMs: uint(f.SampleInterval.Milliseconds()),
		Tag:              f.Tag,
	}
	m.ID = f.ID
	if !f.EndTime.IsZero() {
		m.EndTime = sql.NullTime{Time: f.EndTime, Valid: true}
	}
	return m
}

// CoreToSample converts a core.Sample to a GORM model.Sample.
func CoreToSample(s core.Sample) model.Sample {
	return model.Sample{
		Time:            s.Time,
		FlightID:        s.FlightID,
		Seq:             s.Seq,
		WorldTime:       s.WorldTime,
		PlanetCode:      s.PlanetCode,
		Position:        geo.PointFromVec2(s.Position),
		VelocityX:       s.Velocity.X,
		VelocityY:       s.Velocity.Y,
		Altitude:        s.Altitude,
		Rotation:        s.Rotation,
		AngularVelocity: s.AngularVelocity,
		Throttle:        s.Throttle,
		RCS:             s.RCS,
		Mass:            s.Mass,
		Thrust:          s.Thrust,
		TWR:             s.TWR,
		Raw:             rawToJSON(s.Raw),
	}
}

// CoreToImpact converts a core.Impact to a GORM model.ImpactPrediction.
// Misses are stored with an empty point.
func CoreToImpact(i core.Impact) model.ImpactPrediction {
	m := model.ImpactPrediction{
		Time:       i.Time,
		FlightID:   i.FlightID,
		Seq:        i.Seq,
		PlanetCode: i.PlanetCode,
		Hit:        i.Hit,
		Steps:      i.Steps,
		FlightTime: i.FlightTime,
	}
	if i.Hit {
		m.Point = geo.PointFromVec2(i.Point)
	} else {
		m.Point = geom.NewEmptyPoint(geom.DimXY)
	}
	return m
}

// PathToFlightPath builds the trajectory row of a flight from its sample positions.
func PathToFlightPath(flightID uint, path []core.Vec2) model.FlightPath {
	ls := geo.LineStringFromPath(path)
	return model.FlightPath{
		FlightID: flightID,
		Path:     ls,
		Points:   uint(ls.Coordinates().Length()),
		Length:   ls.Length(),
	}
}

package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/SFSPlayer-sys/gosfs/pkg/ballistics"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// GEO POINTS
// Game positions are planet-centric cartesian coordinates, stored as XY points with no SRID.
// Geometry data is stored in the WKB format, which is a binary representation of the geometry data.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PointFromVec2 converts a world position to a geom.Point
func PointFromVec2(v core.Vec2) geom.Point {
	if !v.IsFinite() {
		return geom.NewEmptyPoint(geom.DimXY)
	}
	pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: v.X, Y: v.Y}, Type: geom.DimXY})
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY)
	}
	return pt
}

// Vec2FromPoint converts a geom.Point back to a world position. Empty points give the zero vector.
func Vec2FromPoint(p geom.Point) core.Vec2 {
	xy, ok := p.XY()
	if !ok {
		return core.Vec2{}
	}
	return core.Vec2{X: xy.X, Y: xy.Y}
}

// ParseVec2 parses "x,y" into a world position
func ParseVec2(coords string) (core.Vec2, error) {
	parts := strings.Split(coords, ",")
	if len(parts) != 2 {
		return core.Vec2{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.Vec2{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.Vec2{}, ErrInvalidCoordinates
	}
	return core.Vec2{X: x, Y: y}, nil
}

// Longitude is the angle of a position around the planet center in [0, 360).
func Longitude(pos core.Vec2) float64 {
	return ballistics.DirectionDegrees(pos)
}

// AltitudeAbove is the distance of pos above a sphere of the given radius. Negative when inside.
func AltitudeAbove(pos core.Vec2, radius float64) float64 {
	return pos.Len() - radius
}

// SurfaceArc is the distance along the surface between the ground tracks of a and b.
func SurfaceArc(a, b core.Vec2, radius float64) float64 {
	d := math.Abs(Longitude(a) - Longitude(b))
	if d > 180 {
		d = 360 - d
	}
	return ballistics.Radians(d) * radius
}

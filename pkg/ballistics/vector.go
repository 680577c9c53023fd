// Package ballistics holds the small vector, angle and orbit helpers used by the
// calculation API, plus the impact-point predictor.
package ballistics

import "math"

// Vec2 is a 2D vector in world units. Positions are relative to the planet center.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v*k.
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Len2 returns the squared length.
func (v Vec2) Len2() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len returns the Euclidean length.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// IsFinite reports whether both components are finite numbers.
func (v Vec2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// NormalizeDegrees maps an angle in degrees onto [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DirectionDegrees returns the heading of v measured counterclockwise from +X, in [0, 360).
func DirectionDegrees(v Vec2) float64 {
	return NormalizeDegrees(Degrees(math.Atan2(v.Y, v.X)))
}

// NormalDegrees returns the direction perpendicular (counterclockwise) to a heading.
func NormalDegrees(directionDeg float64) float64 {
	return NormalizeDegrees(directionDeg + 90)
}

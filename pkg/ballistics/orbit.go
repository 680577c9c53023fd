package ballistics

import "math"

// GravParameter returns the standard gravitational parameter mu = g*R^2 of a body
// with surface gravity g and radius R.
func GravParameter(surfaceGravity, radius float64) float64 {
	return surfaceGravity * radius * radius
}

// OrbitalPeriod returns the period of an orbit with the given semi-major axis around a
// body with gravitational parameter mu (Kepler's third law). ok is false for
// non-positive or non-finite inputs.
func OrbitalPeriod(semiMajorAxis, mu float64) (period float64, ok bool) {
	if !isFinite(semiMajorAxis) || !isFinite(mu) || semiMajorAxis <= 0 || mu <= 0 {
		return 0, false
	}
	return 2 * math.Pi * math.Sqrt(semiMajorAxis*semiMajorAxis*semiMajorAxis/mu), true
}

package ballistics

import "math"

// Integrator selects the stepping scheme used by PredictImpact.
type Integrator int

const (
	// Euler advances position with the current velocity, then velocity with the
	// acceleration at the old position.
	Euler Integrator = iota
	// VelocityVerlet uses half-step velocities and is stable at larger steps.
	VelocityVerlet
)

func (i Integrator) String() string {
	switch i {
	case Euler:
		return "euler"
	case VelocityVerlet:
		return "verlet"
	default:
		return "unknown"
	}
}

// ParseIntegrator maps "euler" and "verlet" to an Integrator. Anything else is Euler.
func ParseIntegrator(s string) Integrator {
	switch s {
	case "verlet", "velocity-verlet", "velocityVerlet":
		return VelocityVerlet
	default:
		return Euler
	}
}

const (
	DefaultStep     = 0.02
	DefaultMaxSteps = 100000

	// escapeFactor bounds the simulation at escapeFactor*R from the planet center.
	escapeFactor = 1e6
)

// Params describes a ballistic body around a single point-mass planet at the origin.
type Params struct {
	Position     Vec2
	Velocity     Vec2
	PlanetRadius float64
	Gravity      float64 // surface gravity

	// Step is the integration step in seconds; non-positive means DefaultStep.
	Step float64
	// MaxSteps is the step budget; zero means DefaultMaxSteps, negative means none.
	MaxSteps   int
	Integrator Integrator

	// Observe, when set, is called after every completed step that did not hit.
	Observe func(step int, pos, vel Vec2)
}

// Impact is the predicted surface crossing.
type Impact struct {
	Point Vec2    `json:"point"`
	Steps int     `json:"steps"`
	Time  float64 `json:"time"`
}

// PredictImpact integrates the body forward until it crosses the planet surface.
// ok is false when the body escapes past 1e6 planet radii, the step budget runs out,
// or the inputs are unusable (non-positive radius, non-finite values).
func PredictImpact(p Params) (Impact, bool) {
	R := p.PlanetRadius
	if !isFinite(R) || R <= 0 || !isFinite(p.Gravity) || !p.Position.IsFinite() || !p.Velocity.IsFinite() {
		return Impact{}, false
	}

	dt := p.Step
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = DefaultStep
	}
	maxSteps := p.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	R2 := R * R
	mu := GravParameter(p.Gravity, R)
	maxD2 := escapeFactor * escapeFactor * R2

	pos, vel := p.Position, p.Velocity
	if pos.Len2() <= R2 {
		return Impact{Point: pos}, true
	}

	acc := gravity(pos, mu)
	for i := 0; i < maxSteps; i++ {
		var next, half Vec2
		switch p.Integrator {
		case VelocityVerlet:
			half = vel.Add(acc.Scale(0.5 * dt))
			next = pos.Add(half.Scale(dt))
		default:
			next = pos.Add(vel.Scale(dt))
		}

		d2 := next.Len2()
		if d2 <= R2 {
			s := crossing(pos, next, R2)
			return Impact{
				Point: pos.Add(next.Sub(pos).Scale(s)),
				Steps: i + 1,
				Time:  (float64(i) + s) * dt,
			}, true
		}
		if d2 > maxD2 || math.IsNaN(d2) {
			return Impact{}, false
		}

		accNext := gravity(next, mu)
		switch p.Integrator {
		case VelocityVerlet:
			vel = half.Add(accNext.Scale(0.5 * dt))
		default:
			vel = vel.Add(acc.Scale(dt))
		}
		pos, acc = next, accNext

		if p.Observe != nil {
			p.Observe(i+1, pos, vel)
		}
	}
	return Impact{}, false
}

// gravity returns a = -mu*r/|r|^3.
func gravity(r Vec2, mu float64) Vec2 {
	d2 := r.Len2()
	d := math.Sqrt(d2)
	return r.Scale(-mu / (d * d2))
}

// crossing solves |a + s(b-a)|^2 = R^2 for the smallest s in [0,1]. When the
// quadratic gives nothing usable the segment end (s=1) is returned.
func crossing(a, b Vec2, R2 float64) float64 {
	d := b.Sub(a)
	A := d.Len2()
	B := 2 * a.Dot(d)
	C := a.Len2() - R2
	if A <= 0 {
		return 1
	}
	disc := B*B - 4*A*C
	if disc < 0 {
		return 1
	}
	sq := math.Sqrt(disc)
	best := math.Inf(1)
	for _, s := range [2]float64{(-B - sq) / (2 * A), (-B + sq) / (2 * A)} {
		if s >= 0 && s <= 1 && s < best {
			best = s
		}
	}
	if math.IsInf(best, 1) {
		return 1
	}
	return best
}

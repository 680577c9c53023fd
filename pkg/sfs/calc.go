package sfs

import (
	"context"
	"errors"

	"github.com/SFSPlayer-sys/gosfs/pkg/ballistics"
)

// CalcAPI derives angles, periods and impact predictions from info responses.
type CalcAPI struct {
	info *InfoAPI
}

func NewCalcAPI(info *InfoAPI) *CalcAPI {
	return &CalcAPI{info: info}
}

// VelocityInfo combines the velocity of a rocket in cartesian and polar form.
type VelocityInfo struct {
	Magnitude float64 `json:"magnitude"`
	Direction float64 `json:"direction"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
}

// OrbitInfo holds whichever orbital elements the server reported.
type OrbitInfo struct {
	Period      *float64 `json:"period,omitempty"`
	Apoapsis    *float64 `json:"apoapsis,omitempty"`
	Periapsis   *float64 `json:"periapsis,omitempty"`
	TrueAnomaly *float64 `json:"trueAnomaly,omitempty"`
}

// AngleInfo holds the angles of a rocket in degrees; fields the server could not supply are nil.
type AngleInfo struct {
	VelocityDirection *float64 `json:"velocity_direction,omitempty"`
	NormalAngle       *float64 `json:"normal_angle,omitempty"`
	PositionAngle     *float64 `json:"position_angle,omitempty"`
	Rotation          *float64 `json:"rotation,omitempty"`
}

// RocketVelocityComponents reads location.velocity of /rocket.
func (c *CalcAPI) RocketVelocityComponents(ctx context.Context, rocket Ref) (Vec2, error) {
	save, err := c.info.RocketSave(ctx, rocket)
	if err != nil {
		return Vec2{}, err
	}
	return velocityOf(save)
}

func velocityOf(save Object) (Vec2, error) {
	vx, err := floatField(save, "velocity.x", "location", "velocity", "x")
	if err != nil {
		return Vec2{}, err
	}
	vy, err := floatField(save, "velocity.y", "location", "velocity", "y")
	if err != nil {
		return Vec2{}, err
	}
	return Vec2{X: vx, Y: vy}, nil
}

// RocketVelocityMagnitude returns |v|.
func (c *CalcAPI) RocketVelocityMagnitude(ctx context.Context, rocket Ref) (float64, error) {
	v, err := c.RocketVelocityComponents(ctx, rocket)
	if err != nil {
		return 0, err
	}
	return v.Len(), nil
}

// RocketVelocityDirection returns the heading of the velocity in [0, 360).
func (c *CalcAPI) RocketVelocityDirection(ctx context.Context, rocket Ref) (float64, error) {
	v, err := c.RocketVelocityComponents(ctx, rocket)
	if err != nil {
		return 0, err
	}
	return ballistics.DirectionDegrees(v), nil
}

func (c *CalcAPI) RocketVelocityInfo(ctx context.Context, rocket Ref) (VelocityInfo, error) {
	v, err := c.RocketVelocityComponents(ctx, rocket)
	if err != nil {
		return VelocityInfo{}, err
	}
	return VelocityInfo{
		Magnitude: v.Len(),
		Direction: ballistics.DirectionDegrees(v),
		VX:        v.X,
		VY:        v.Y,
	}, nil
}

// RocketNormalAngle is the velocity direction turned 90 degrees counterclockwise.
func (c *CalcAPI) RocketNormalAngle(ctx context.Context, rocket Ref) (float64, error) {
	dir, err := c.RocketVelocityDirection(ctx, rocket)
	if err != nil {
		return 0, err
	}
	return ballistics.NormalDegrees(dir), nil
}

// RocketPositionAngle is the angle from the planet center to the rocket, from /rocket_sim position.
func (c *CalcAPI) RocketPositionAngle(ctx context.Context, rocket Ref) (float64, error) {
	sim, err := c.info.RocketSim(ctx, rocket)
	if err != nil {
		return 0, err
	}
	return positionAngle(sim)
}

func positionAngle(sim Object) (float64, error) {
	x, err := floatField(sim, "position.x", "position", "x")
	if err != nil {
		return 0, err
	}
	y, err := floatField(sim, "position.y", "position", "y")
	if err != nil {
		return 0, err
	}
	return ballistics.DirectionDegrees(Vec2{X: x, Y: y}), nil
}

func (c *CalcAPI) RocketOrbitPeriod(ctx context.Context, rocket Ref) (float64, error) {
	sim, err := c.info.RocketSim(ctx, rocket)
	if err != nil {
		return 0, err
	}
	return floatField(sim, "period", "orbit", "period")
}

// RocketOrbitInfo fails with ErrNoValue only when none of the elements are present.
func (c *CalcAPI) RocketOrbitInfo(ctx context.Context, rocket Ref) (OrbitInfo, error) {
	sim, err := c.info.RocketSim(ctx, rocket)
	if err != nil {
		return OrbitInfo{}, err
	}
	orbit, err := objectField(sim, "orbit", "orbit")
	if err != nil {
		return OrbitInfo{}, err
	}
	info := OrbitInfo{
		Period:      optional(floatField(orbit, "period", "period")),
		Apoapsis:    optional(floatField(orbit, "apoapsis", "apoapsis")),
		Periapsis:   optional(floatField(orbit, "periapsis", "periapsis")),
		TrueAnomaly: optional(floatField(orbit, "trueAnomaly", "trueAnomaly")),
	}
	if info == (OrbitInfo{}) {
		return info, noValue("orbit")
	}
	return info, nil
}

// RocketAngleInfo collects velocity direction, normal angle, position angle and rotation.
func (c *CalcAPI) RocketAngleInfo(ctx context.Context, rocket Ref) (AngleInfo, error) {
	save, err := c.info.RocketSave(ctx, rocket)
	if err != nil {
		return AngleInfo{}, err
	}
	sim, err := c.info.RocketSim(ctx, rocket)
	if err != nil {
		return AngleInfo{}, err
	}

	var info AngleInfo
	if v, err := velocityOf(save); err == nil {
		dir := ballistics.DirectionDegrees(v)
		info.VelocityDirection = Float(dir)
		info.NormalAngle = Float(ballistics.NormalDegrees(dir))
	}
	info.PositionAngle = optional(positionAngle(sim))
	info.Rotation = optional(floatField(sim, "rotation", "rotation"))

	if info == (AngleInfo{}) {
		return info, noValue("angles")
	}
	return info, nil
}

func optional(f float64, err error) *float64 {
	if err != nil {
		return nil
	}
	return &f
}

// PlanetOrbitPeriod computes T = 2*pi*sqrt(a^3/mu) for a planet, with mu = g*R^2 of its parent.
func (c *CalcAPI) PlanetOrbitPeriod(ctx context.Context, codename string) (float64, error) {
	p, err := c.info.Planet(ctx, codename)
	if err != nil {
		return 0, err
	}
	a, err := floatField(p, "semiMajorAxis", "orbit", "semiMajorAxis")
	if err != nil {
		return 0, err
	}
	parentCode, err := stringField(p, "parent", "parent")
	if err != nil || parentCode == "" {
		return 0, noValue("parent")
	}
	parent, err := c.info.Planet(ctx, parentCode)
	if err != nil {
		return 0, err
	}
	R, err := floatField(parent, "radius", "radius")
	if err != nil {
		return 0, err
	}
	g, err := floatField(parent, "gravity", "gravity")
	if err != nil {
		return 0, err
	}
	T, ok := ballistics.OrbitalPeriod(a, ballistics.GravParameter(g, R))
	if !ok {
		return 0, noValue("period")
	}
	return T, nil
}

// ImpactPoint runs the impact predictor on caller-supplied state.
func (c *CalcAPI) ImpactPoint(p ballistics.Params) (ballistics.Impact, bool) {
	return ballistics.PredictImpact(p)
}

// ImpactOptions tunes PredictRocketImpact. Zero values use the predictor defaults.
type ImpactOptions struct {
	Step       float64
	MaxSteps   int
	Integrator ballistics.Integrator
}

// ImpactPrediction is the outcome of PredictRocketImpact together with the inputs used.
type ImpactPrediction struct {
	Impact       ballistics.Impact `json:"impact"`
	Hit          bool              `json:"hit"`
	PlanetCode   string            `json:"planetCode"`
	Position     Vec2              `json:"position"`
	Velocity     Vec2              `json:"velocity"`
	PlanetRadius float64           `json:"planetRadius"`
	Gravity      float64           `json:"gravity"`
}

// PredictRocketImpact reads the rocket state and its parent planet from the server and
// predicts where it will hit the surface. Hit is false when it never does.
func (c *CalcAPI) PredictRocketImpact(ctx context.Context, rocket Ref, opts ImpactOptions) (ImpactPrediction, error) {
	save, err := c.info.RocketSave(ctx, rocket)
	if err != nil {
		return ImpactPrediction{}, err
	}
	sim, err := c.info.RocketSim(ctx, rocket)
	if err != nil {
		return ImpactPrediction{}, err
	}
	return c.PredictFrom(ctx, save, sim, opts)
}

// PredictFrom runs the prediction on /rocket and /rocket_sim responses the caller already
// fetched. Only the parent planet is requested.
func (c *CalcAPI) PredictFrom(ctx context.Context, save, sim Object, opts ImpactOptions) (ImpactPrediction, error) {
	var pred ImpactPrediction
	x, err := floatField(save, "position.x", "location", "position", "x")
	if err != nil {
		return pred, err
	}
	y, err := floatField(save, "position.y", "location", "position", "y")
	if err != nil {
		return pred, err
	}
	vel, err := velocityOf(save)
	if err != nil {
		return pred, err
	}
	pred.Position = Vec2{X: x, Y: y}
	pred.Velocity = vel

	code, err := stringField(sim, "parentPlanetCode", "parentPlanetCode")
	if err != nil && !errors.Is(err, ErrNoValue) {
		return pred, err
	}
	planet, err := c.info.Planet(ctx, code)
	if err != nil {
		return pred, err
	}
	if pred.PlanetRadius, err = floatField(planet, "radius", "radius"); err != nil {
		return pred, err
	}
	if pred.Gravity, err = floatField(planet, "gravity", "gravity"); err != nil {
		return pred, err
	}
	pred.PlanetCode = code
	if pred.PlanetCode == "" {
		pred.PlanetCode, _ = stringField(planet, "codeName", "codeName")
	}

	pred.Impact, pred.Hit = ballistics.PredictImpact(ballistics.Params{
		Position:     pred.Position,
		Velocity:     pred.Velocity,
		PlanetRadius: pred.PlanetRadius,
		Gravity:      pred.Gravity,
		Step:         opts.Step,
		MaxSteps:     opts.MaxSteps,
		Integrator:   opts.Integrator,
	})
	return pred, nil
}

package sfs

import (
	"context"
	"fmt"

	"github.com/SFSPlayer-sys/gosfs/pkg/ballistics"
)

// Vec2 is a world-space 2D vector.
type Vec2 = ballistics.Vec2

// ValuesAPI pulls single fields out of info responses. Fields that are missing or cannot
// be converted return ErrNoValue.
type ValuesAPI struct {
	info *InfoAPI
}

func NewValuesAPI(info *InfoAPI) *ValuesAPI {
	return &ValuesAPI{info: info}
}

func noValue(field string) error {
	return fmt.Errorf("%w: %s", ErrNoValue, field)
}

func floatField(obj Object, name string, keys ...string) (float64, error) {
	v, ok := lookup(obj, keys...)
	if !ok {
		return 0, noValue(name)
	}
	f, ok := asFloat(v)
	if !ok {
		return 0, noValue(name)
	}
	return f, nil
}

func stringField(obj Object, name string, keys ...string) (string, error) {
	v, ok := lookup(obj, keys...)
	if !ok {
		return "", noValue(name)
	}
	s, ok := asString(v)
	if !ok {
		return "", noValue(name)
	}
	return s, nil
}

func objectField(obj Object, name string, keys ...string) (Object, error) {
	v, _ := lookup(obj, keys...)
	o, ok := v.(Object)
	if !ok {
		return nil, noValue(name)
	}
	return o, nil
}

// simThenSave reads a float from /rocket_sim and falls back to /rocket.
func (v *ValuesAPI) simThenSave(ctx context.Context, rocket Ref, simKey, saveKey string) (float64, error) {
	sim, err := v.info.RocketSim(ctx, rocket)
	if err != nil {
		return 0, err
	}
	if f, err := floatField(sim, simKey, simKey); err == nil {
		return f, nil
	}
	save, err := v.info.RocketSave(ctx, rocket)
	if err != nil {
		return 0, err
	}
	return floatField(save, simKey, saveKey)
}

func (v *ValuesAPI) simFloat(ctx context.Context, rocket Ref, keys ...string) (float64, error) {
	sim, err := v.info.RocketSim(ctx, rocket)
	if err != nil {
		return 0, err
	}
	return floatField(sim, keys[len(keys)-1], keys...)
}

func (v *ValuesAPI) otherFloat(ctx context.Context, rocket Ref, key string) (float64, error) {
	other, err := v.info.Other(ctx, rocket)
	if err != nil {
		return 0, err
	}
	return floatField(other, key, key)
}

func (v *ValuesAPI) planetFloat(ctx context.Context, codename string, keys ...string) (float64, error) {
	p, err := v.info.Planet(ctx, codename)
	if err != nil {
		return 0, err
	}
	return floatField(p, keys[len(keys)-1], keys...)
}

func (v *ValuesAPI) versionString(ctx context.Context, key string) (string, error) {
	ver, err := v.info.Version(ctx)
	if err != nil {
		return "", err
	}
	return stringField(ver, key, key)
}

// RocketName reads /rocket_sim name, falling back to /rocket rocketName.
func (v *ValuesAPI) RocketName(ctx context.Context, rocket Ref) (string, error) {
	sim, err := v.info.RocketSim(ctx, rocket)
	if err != nil {
		return "", err
	}
	if s, err := stringField(sim, "name", "name"); err == nil {
		return s, nil
	}
	save, err := v.info.RocketSave(ctx, rocket)
	if err != nil {
		return "", err
	}
	return stringField(save, "name", "rocketName")
}

// RocketID is the scene index of the rocket.
func (v *ValuesAPI) RocketID(ctx context.Context, rocket Ref) (int, error) {
	sim, err := v.info.RocketSim(ctx, rocket)
	if err != nil {
		return 0, err
	}
	raw, _ := lookup(sim, "id")
	id, ok := asInt(raw)
	if !ok {
		return 0, noValue("id")
	}
	return id, nil
}

// RocketAltitude is the height above terrain.
func (v *ValuesAPI) RocketAltitude(ctx context.Context, rocket Ref) (float64, error) {
	return v.simThenSave(ctx, rocket, "height", "height")
}

// RocketPosition is location.position of /rocket, relative to the parent planet.
func (v *ValuesAPI) RocketPosition(ctx context.Context, rocket Ref) (Vec2, error) {
	save, err := v.info.RocketSave(ctx, rocket)
	if err != nil {
		return Vec2{}, err
	}
	pos, err := objectField(save, "position", "location", "position")
	if err != nil {
		return Vec2{}, err
	}
	if _, ok := pos["x"]; !ok {
		return Vec2{}, noValue("position.x")
	}
	if _, ok := pos["y"]; !ok {
		return Vec2{}, noValue("position.y")
	}
	x, _ := asFloat(pos["x"])
	y, _ := asFloat(pos["y"])
	return Vec2{X: x, Y: y}, nil
}

func (v *ValuesAPI) RocketRotation(ctx context.Context, rocket Ref) (float64, error) {
	return v.simThenSave(ctx, rocket, "rotation", "rotation")
}

// RocketLongitude is the planet-centric angle of the rocket in [0, 360).
func (v *ValuesAPI) RocketLongitude(ctx context.Context, rocket Ref) (float64, error) {
	save, err := v.info.RocketSave(ctx, rocket)
	if err != nil {
		return 0, err
	}
	deg, err := floatField(save, "AngleDegrees", "location", "position", "AngleDegrees")
	if err != nil {
		return 0, err
	}
	return ballistics.NormalizeDegrees(deg), nil
}

func (v *ValuesAPI) RocketAngularVelocity(ctx context.Context, rocket Ref) (float64, error) {
	return v.simFloat(ctx, rocket, "angularVelocity")
}

// RocketThrottle is in 0..1.
func (v *ValuesAPI) RocketThrottle(ctx context.Context, rocket Ref) (float64, error) {
	return v.simThenSave(ctx, rocket, "throttle", "throttlePercent")
}

// RocketRCSOn reads /rocket_sim rcs, falling back to /rocket RCS.
func (v *ValuesAPI) RocketRCSOn(ctx context.Context, rocket Ref) (bool, error) {
	sim, err := v.info.RocketSim(ctx, rocket)
	if err != nil {
		return false, err
	}
	if raw, ok := sim["rcs"]; ok {
		return truthy(raw), nil
	}
	save, err := v.info.RocketSave(ctx, rocket)
	if err != nil {
		return false, err
	}
	if raw, ok := save["RCS"]; ok {
		return truthy(raw), nil
	}
	return false, noValue("rcs")
}

// RocketOrbit returns the orbit object of /rocket_sim (apoapsis, periapsis, period, trueAnomaly).
func (v *ValuesAPI) RocketOrbit(ctx context.Context, rocket Ref) (Object, error) {
	sim, err := v.info.RocketSim(ctx, rocket)
	if err != nil {
		return nil, err
	}
	return objectField(sim, "orbit", "orbit")
}

func (v *ValuesAPI) RocketOrbitApoapsis(ctx context.Context, rocket Ref) (float64, error) {
	return v.simFloat(ctx, rocket, "orbit", "apoapsis")
}

func (v *ValuesAPI) RocketOrbitPeriapsis(ctx context.Context, rocket Ref) (float64, error) {
	return v.simFloat(ctx, rocket, "orbit", "periapsis")
}

func (v *ValuesAPI) RocketOrbitPeriod(ctx context.Context, rocket Ref) (float64, error) {
	return v.simFloat(ctx, rocket, "orbit", "period")
}

func (v *ValuesAPI) RocketOrbitTrueAnomaly(ctx context.Context, rocket Ref) (float64, error) {
	return v.simFloat(ctx, rocket, "orbit", "trueAnomaly")
}

// RocketParentPlanetCode is the codename of the body whose SOI the rocket is in.
func (v *ValuesAPI) RocketParentPlanetCode(ctx context.Context, rocket Ref) (string, error) {
	sim, err := v.info.RocketSim(ctx, rocket)
	if err != nil {
		return "", err
	}
	return stringField(sim, "parentPlanetCode", "parentPlanetCode")
}

func (v *ValuesAPI) OtherTargetAngle(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "targetAngle")
}

func (v *ValuesAPI) OtherQuicksaves(ctx context.Context, rocket Ref) ([]any, error) {
	other, err := v.info.Other(ctx, rocket)
	if err != nil {
		return nil, err
	}
	list, ok := other["quicksaves"].([]any)
	if !ok {
		return nil, noValue("quicksaves")
	}
	return list, nil
}

func (v *ValuesAPI) OtherNavTarget(ctx context.Context, rocket Ref) (any, error) {
	other, err := v.info.Other(ctx, rocket)
	if err != nil {
		return nil, err
	}
	t, ok := other["navTarget"]
	if !ok || t == nil {
		return nil, noValue("navTarget")
	}
	return t, nil
}

func (v *ValuesAPI) OtherTimewarpSpeed(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "timewarpSpeed")
}

func (v *ValuesAPI) OtherWorldTime(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "worldTime")
}

func (v *ValuesAPI) OtherSceneName(ctx context.Context, rocket Ref) (string, error) {
	other, err := v.info.Other(ctx, rocket)
	if err != nil {
		return "", err
	}
	return stringField(other, "sceneName", "sceneName")
}

func (v *ValuesAPI) OtherTransferWindowDeltaV(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "transferWindowDeltaV")
}

func (v *ValuesAPI) OtherMissionStatus(ctx context.Context, rocket Ref) (any, error) {
	other, err := v.info.Other(ctx, rocket)
	if err != nil {
		return nil, err
	}
	s, ok := other["missionStatus"]
	if !ok || s == nil {
		return nil, noValue("missionStatus")
	}
	return s, nil
}

func (v *ValuesAPI) OtherMass(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "mass")
}

func (v *ValuesAPI) OtherThrust(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "thrust")
}

func (v *ValuesAPI) OtherMaxThrust(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "maxThrust")
}

// OtherTWR is the thrust-to-weight ratio.
func (v *ValuesAPI) OtherTWR(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "TWR")
}

func (v *ValuesAPI) OtherDistToApoapsis(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "distToApoapsis")
}

func (v *ValuesAPI) OtherDistToPeriapsis(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "distToPeriapsis")
}

func (v *ValuesAPI) OtherTimeToApoapsis(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "timeToApoapsis")
}

func (v *ValuesAPI) OtherTimeToPeriapsis(ctx context.Context, rocket Ref) (float64, error) {
	return v.otherFloat(ctx, rocket, "timeToPeriapsis")
}

func (v *ValuesAPI) OtherInertiaInfo(ctx context.Context, rocket Ref) (Object, error) {
	other, err := v.info.Other(ctx, rocket)
	if err != nil {
		return nil, err
	}
	return objectField(other, "inertia", "inertia")
}

func (v *ValuesAPI) PlanetRadius(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "radius")
}

// PlanetGravity is the surface gravity.
func (v *ValuesAPI) PlanetGravity(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "gravity")
}

// PlanetSOI is the sphere-of-influence radius.
func (v *ValuesAPI) PlanetSOI(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "SOI")
}

func (v *ValuesAPI) PlanetHasAtmosphere(ctx context.Context, codename string) (bool, error) {
	p, err := v.info.Planet(ctx, codename)
	if err != nil {
		return false, err
	}
	raw, ok := p["hasAtmosphere"]
	if !ok {
		return false, noValue("hasAtmosphere")
	}
	return truthy(raw), nil
}

func (v *ValuesAPI) PlanetAtmosphereHeight(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "atmosphereHeight")
}

// PlanetParent is the codename of the body this planet orbits.
func (v *ValuesAPI) PlanetParent(ctx context.Context, codename string) (string, error) {
	p, err := v.info.Planet(ctx, codename)
	if err != nil {
		return "", err
	}
	return stringField(p, "parent", "parent")
}

func (v *ValuesAPI) PlanetOrbit(ctx context.Context, codename string) (Object, error) {
	p, err := v.info.Planet(ctx, codename)
	if err != nil {
		return nil, err
	}
	return objectField(p, "orbit", "orbit")
}

func (v *ValuesAPI) PlanetOrbitEccentricity(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "orbit", "eccentricity")
}

func (v *ValuesAPI) PlanetOrbitSemiMajorAxis(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "orbit", "semiMajorAxis")
}

func (v *ValuesAPI) PlanetOrbitArgumentOfPeriapsis(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "orbit", "argumentOfPeriapsis")
}

func (v *ValuesAPI) PlanetOrbitCurrentTrueAnomaly(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "orbit", "currentTrueAnomaly")
}

func (v *ValuesAPI) PlanetOrbitCurrentRadius(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "orbit", "currentRadius")
}

func (v *ValuesAPI) PlanetOrbitCurrentVelocity(ctx context.Context, codename string) (float64, error) {
	return v.planetFloat(ctx, codename, "orbit", "currentVelocity")
}

func (v *ValuesAPI) SFSControlVersion(ctx context.Context) (string, error) {
	return v.versionString(ctx, "version")
}

func (v *ValuesAPI) SFSControlBuildDate(ctx context.Context) (string, error) {
	return v.versionString(ctx, "buildDate")
}

func (v *ValuesAPI) SFSControlAPIVersion(ctx context.Context) (string, error) {
	return v.versionString(ctx, "apiVersion")
}

// SFSControlFullInfo returns the whole /version object.
func (v *ValuesAPI) SFSControlFullInfo(ctx context.Context) (Object, error) {
	return v.info.Version(ctx)
}

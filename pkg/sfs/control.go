package sfs

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ControlAPI issues POST /control commands.
type ControlAPI struct {
	http *HTTPClient
}

// NewControlAPI creates a ControlAPI on top of an existing transport.
func NewControlAPI(h *HTTPClient) *ControlAPI {
	return &ControlAPI{http: h}
}

type controlRequest struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// Control sends {"method": method, "args": args}. A response object holding only a
// "result" key is unwrapped to that value.
func (c *ControlAPI) Control(ctx context.Context, method string, args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	res, err := c.http.PostJSON(ctx, "/control", controlRequest{Method: method, Args: args})
	if err != nil {
		return nil, err
	}
	if obj, ok := res.(Object); ok && len(obj) == 1 {
		if v, ok := obj["result"]; ok {
			return v, nil
		}
	}
	return res, nil
}

// Call is Control with an explicit argument list. nil sends an empty list.
func (c *ControlAPI) Call(ctx context.Context, method string, args []any) (any, error) {
	return c.Control(ctx, method, args...)
}

// Invoke calls a control method by a loosely spelled name ("use_part", "usePart",
// "UsePart"...). Candidates from MethodCandidates are tried in order until the server
// answers with something other than an "Unknown method" string.
func (c *ControlAPI) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	var last any = "Error: Unknown method"
	for _, m := range MethodCandidates(name) {
		res, err := c.Control(ctx, m, args...)
		if err != nil {
			return nil, err
		}
		if s, ok := res.(string); ok && strings.Contains(s, "Unknown method") {
			last = s
			continue
		}
		return res, nil
	}
	return last, fmt.Errorf("%w: %s", ErrUnknownMethod, name)
}

// MethodCandidates lists the spellings Invoke tries for name, without duplicates:
// as-is, first letter upper, PascalCase and camelCase from snake_case, lower, UPPER,
// then the capitalized and PascalCase forms of the lowered name.
func MethodCandidates(name string) []string {
	opts := []string{name}
	if name != "" {
		opts = append(opts, upperFirst(name))
	}
	if strings.Contains(name, "_") {
		if parts := splitSnake(name); len(parts) > 0 {
			opts = append(opts, pascal(parts))
			opts = append(opts, strings.ToLower(parts[0])+pascal(parts[1:]))
		}
	}
	lower := strings.ToLower(name)
	opts = append(opts, lower, strings.ToUpper(name))
	if lower != name {
		opts = append(opts, upperFirst(lower))
		if strings.Contains(lower, "_") {
			if parts := splitSnake(lower); len(parts) > 0 {
				opts = append(opts, pascal(parts))
			}
		}
	}

	seen := make(map[string]struct{}, len(opts))
	out := opts[:0]
	for _, s := range opts {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func splitSnake(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, "_") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func pascal(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(capitalize(p))
	}
	return b.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Float returns a pointer to v, for optional numeric arguments.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for optional flags.
func Bool(v bool) *bool { return &v }

func optFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optBool(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (c *ControlAPI) SetThrottle(ctx context.Context, value float64, rocket Ref) (any, error) {
	return c.Control(ctx, "SetThrottle", value, rocket.arg())
}

func (c *ControlAPI) SetRCS(ctx context.Context, on bool, rocket Ref) (any, error) {
	return c.Control(ctx, "SetRCS", on, rocket.arg())
}

func (c *ControlAPI) Stage(ctx context.Context, rocket Ref) (any, error) {
	return c.Control(ctx, "Stage", rocket.arg())
}

// Rotate points the rocket at a mode ("Prograde", "Target", ...) or an absolute angle,
// plus offset degrees.
func (c *ControlAPI) Rotate(ctx context.Context, modeOrAngle any, offset float64, rocket Ref) (any, error) {
	switch modeOrAngle.(type) {
	case string, float64, float32, int, int32, int64:
	default:
		return nil, fmt.Errorf("%w: rotate target %T", ErrInvalidArgument, modeOrAngle)
	}
	return c.Control(ctx, "Rotate", modeOrAngle, offset, rocket.arg())
}

func (c *ControlAPI) StopRotate(ctx context.Context, rocket Ref, stopCoroutine bool) (any, error) {
	return c.Control(ctx, "StopRotate", rocket.arg(), stopCoroutine)
}

func (c *ControlAPI) SetRotation(ctx context.Context, angle float64, rocket Ref) (any, error) {
	return c.Control(ctx, "SetRotation", angle, rocket.arg())
}

// RcsThrust fires RCS in direction ("up", "down", "left", "right") for seconds.
func (c *ControlAPI) RcsThrust(ctx context.Context, direction string, seconds float64, rocket Ref) (any, error) {
	return c.Control(ctx, "RcsThrust", direction, seconds, rocket.arg())
}

func (c *ControlAPI) SetMainEngineOn(ctx context.Context, on bool, rocket Ref) (any, error) {
	return c.Control(ctx, "SetMainEngineOn", on, rocket.arg())
}

func (c *ControlAPI) UsePart(ctx context.Context, partID int, rocket Ref) (any, error) {
	return c.Control(ctx, "UsePart", partID, rocket.arg())
}

func (c *ControlAPI) Launch(ctx context.Context) (any, error) {
	return c.Control(ctx, "Launch")
}

func (c *ControlAPI) SwitchRocket(ctx context.Context, rocket Ref) (any, error) {
	return c.Control(ctx, "SwitchRocket", rocket.value())
}

func (c *ControlAPI) RenameRocket(ctx context.Context, rocket Ref, newName string) (any, error) {
	return c.Control(ctx, "RenameRocket", rocket.value(), newName)
}

// SetTarget selects a navigation target by name or index.
func (c *ControlAPI) SetTarget(ctx context.Context, target Ref) (any, error) {
	return c.Control(ctx, "SetTarget", target.value())
}

func (c *ControlAPI) ClearTarget(ctx context.Context) (any, error) {
	return c.Control(ctx, "ClearTarget")
}

// Build loads a blueprint into the build scene.
func (c *ControlAPI) Build(ctx context.Context, blueprintInfo string) (any, error) {
	return c.Control(ctx, "Build", blueprintInfo)
}

func (c *ControlAPI) ClearBlueprint(ctx context.Context) (any, error) {
	return c.Control(ctx, "ClearBlueprint")
}

func (c *ControlAPI) SwitchToBuild(ctx context.Context) (any, error) {
	return c.Control(ctx, "SwitchToBuild")
}

func (c *ControlAPI) ClearDebris(ctx context.Context) (any, error) {
	return c.Control(ctx, "ClearDebris")
}

func (c *ControlAPI) AddStage(ctx context.Context, index int, partIDs []int, rocket Ref) (any, error) {
	if partIDs == nil {
		partIDs = []int{}
	}
	return c.Control(ctx, "AddStage", index, partIDs, rocket.arg())
}

func (c *ControlAPI) RemoveStage(ctx context.Context, index int, rocket Ref) (any, error) {
	return c.Control(ctx, "RemoveStage", index, rocket.arg())
}

// OrbitOptions holds the optional arguments of SetOrbit. Nil fields are sent as null.
type OrbitOptions struct {
	Eccentricity     *float64
	TrueAnomaly      *float64
	Counterclockwise *bool
	PlanetCode       string
	Rocket           Ref
}

func (c *ControlAPI) SetOrbit(ctx context.Context, radius float64, o OrbitOptions) (any, error) {
	return c.Control(ctx, "SetOrbit", radius,
		optFloat(o.Eccentricity), optFloat(o.TrueAnomaly), optBool(o.Counterclockwise),
		optString(o.PlanetCode), o.Rocket.arg())
}

// StateOptions holds the fields SetState may overwrite. Nil fields keep their value.
type StateOptions struct {
	X, Y            *float64
	VX, VY          *float64
	AngularVelocity *float64
	BlueprintJSON   string
	Rocket          Ref
}

func (c *ControlAPI) SetState(ctx context.Context, s StateOptions) (any, error) {
	return c.Control(ctx, "SetState",
		optFloat(s.X), optFloat(s.Y), optFloat(s.VX), optFloat(s.VY),
		optFloat(s.AngularVelocity), optString(s.BlueprintJSON), s.Rocket.arg())
}

// DeleteRocket removes a rocket; Current deletes the controlled one.
func (c *ControlAPI) DeleteRocket(ctx context.Context, rocket Ref) (any, error) {
	return c.Control(ctx, "DeleteRocket", rocket.value())
}

// CreateRocketOptions holds the optional arguments of CreateRocket.
type CreateRocketOptions struct {
	Name       string
	X, Y       *float64
	VX, VY, VR *float64
}

func (c *ControlAPI) CreateRocket(ctx context.Context, planetCode, blueprintJSON string, o CreateRocketOptions) (any, error) {
	return c.Control(ctx, "CreateRocket", planetCode, blueprintJSON, optString(o.Name),
		optFloat(o.X), optFloat(o.Y), optFloat(o.VX), optFloat(o.VY), optFloat(o.VR))
}

func (c *ControlAPI) TransferFuel(ctx context.Context, fromTankID, toTankID int, rocket Ref) (any, error) {
	return c.Control(ctx, "TransferFuel", fromTankID, toTankID, rocket.arg())
}

func (c *ControlAPI) StopFuelTransfer(ctx context.Context, rocket Ref) (any, error) {
	return c.Control(ctx, "StopFuelTransfer", rocket.arg())
}

func (c *ControlAPI) WheelControl(ctx context.Context, enable *bool, turnAxis *float64, rocket Ref) (any, error) {
	return c.Control(ctx, "WheelControl", optBool(enable), optFloat(turnAxis), rocket.arg())
}

func (c *ControlAPI) SetTimewarp(ctx context.Context, speed float64, realtimePhysics, showMessage *bool) (any, error) {
	return c.Control(ctx, "SetTimewarp", speed, optBool(realtimePhysics), optBool(showMessage))
}

func (c *ControlAPI) TimewarpPlus(ctx context.Context) (any, error) {
	return c.Control(ctx, "TimewarpPlus")
}

func (c *ControlAPI) TimewarpMinus(ctx context.Context) (any, error) {
	return c.Control(ctx, "TimewarpMinus")
}

// SwitchMapView toggles the map when on is nil.
func (c *ControlAPI) SwitchMapView(ctx context.Context, on *bool) (any, error) {
	return c.Control(ctx, "SwitchMapView", optBool(on))
}

func (c *ControlAPI) Track(ctx context.Context, target Ref) (any, error) {
	return c.Control(ctx, "Track", target.value())
}

func (c *ControlAPI) Unfocus(ctx context.Context) (any, error) {
	return c.Control(ctx, "Unfocus")
}

func (c *ControlAPI) SetCheat(ctx context.Context, cheatName string, value bool) (any, error) {
	return c.Control(ctx, "SetCheat", cheatName, value)
}

func (c *ControlAPI) Revert(ctx context.Context, revertType string) (any, error) {
	return c.Control(ctx, "Revert", revertType)
}

func (c *ControlAPI) CompleteChallenge(ctx context.Context, challengeID string) (any, error) {
	return c.Control(ctx, "CompleteChallenge", challengeID)
}

func (c *ControlAPI) WaitForWindow(ctx context.Context, mode string, parameter *float64) (any, error) {
	return c.Control(ctx, "WaitForWindow", optString(mode), optFloat(parameter))
}

func (c *ControlAPI) ShowToast(ctx context.Context, toast string) (any, error) {
	return c.Control(ctx, "ShowToast", toast)
}

func (c *ControlAPI) LogMessage(ctx context.Context, msgType, message string) (any, error) {
	return c.Control(ctx, "LogMessage", msgType, message)
}

func (c *ControlAPI) QuicksaveManager(ctx context.Context, operation, name string) (any, error) {
	return c.Control(ctx, "QuicksaveManager", optString(operation), optString(name))
}

// SetMapIconColor takes an "r,g,b,a" or hex color string.
func (c *ControlAPI) SetMapIconColor(ctx context.Context, rgba string, rocket Ref) (any, error) {
	return c.Control(ctx, "SetMapIconColor", rgba, rocket.arg())
}

func (c *ControlAPI) GetRocketInfo(ctx context.Context, rocket Ref) (any, error) {
	return c.Control(ctx, "GetRocketInfo", rocket.arg())
}

func (c *ControlAPI) GetRocketList(ctx context.Context) (any, error) {
	return c.Control(ctx, "GetRocketList")
}

func (c *ControlAPI) GetWorldInfo(ctx context.Context) (any, error) {
	return c.Control(ctx, "GetWorldInfo")
}

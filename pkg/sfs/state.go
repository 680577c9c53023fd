package sfs

// RocketState is a decoded snapshot of one rocket built from the /rocket, /rocket_sim
// and /other responses. Fields the server did not report are zero.
type RocketState struct {
	Name             string  `json:"name"`
	ParentPlanetCode string  `json:"parentPlanetCode"`
	Position         Vec2    `json:"position"`
	Velocity         Vec2    `json:"velocity"`
	Altitude         float64 `json:"altitude"`
	Rotation         float64 `json:"rotation"`
	AngularVelocity  float64 `json:"angularVelocity"`
	Throttle         float64 `json:"throttle"`
	RCS              bool    `json:"rcs"`
	Mass             float64 `json:"mass"`
	Thrust           float64 `json:"thrust"`
	TWR              float64 `json:"twr"`
	WorldTime        float64 `json:"worldTime"`
}

// DecodeRocketState applies the same sim-then-save fallbacks as ValuesAPI to responses
// the caller already holds. Any of the three objects may be nil.
func DecodeRocketState(save, sim, other Object) RocketState {
	var st RocketState

	st.Name = firstString(sim, save, []string{"name"}, []string{"rocketName"})
	st.ParentPlanetCode, _ = stringField(sim, "parentPlanetCode", "parentPlanetCode")

	st.Position.X, _ = floatField(save, "position.x", "location", "position", "x")
	st.Position.Y, _ = floatField(save, "position.y", "location", "position", "y")
	st.Velocity, _ = velocityOf(save)

	st.Altitude = firstFloat(sim, save, []string{"height"}, []string{"height"})
	st.Rotation = firstFloat(sim, save, []string{"rotation"}, []string{"rotation"})
	st.Throttle = firstFloat(sim, save, []string{"throttle"}, []string{"throttlePercent"})
	st.AngularVelocity, _ = floatField(sim, "angularVelocity", "angularVelocity")

	if raw, ok := sim["rcs"]; ok {
		st.RCS = truthy(raw)
	} else if raw, ok := save["RCS"]; ok {
		st.RCS = truthy(raw)
	}

	st.Mass, _ = floatField(other, "mass", "mass")
	st.Thrust, _ = floatField(other, "thrust", "thrust")
	st.TWR, _ = floatField(other, "TWR", "TWR")
	st.WorldTime, _ = floatField(other, "worldTime", "worldTime")
	return st
}

func firstFloat(primary, fallback Object, primaryKeys, fallbackKeys []string) float64 {
	if f, err := floatField(primary, "", primaryKeys...); err == nil {
		return f
	}
	f, _ := floatField(fallback, "", fallbackKeys...)
	return f
}

func firstString(primary, fallback Object, primaryKeys, fallbackKeys []string) string {
	if s, err := stringField(primary, "", primaryKeys...); err == nil {
		return s
	}
	s, _ := stringField(fallback, "", fallbackKeys...)
	return s
}

package streaming

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SFSPlayer-sys/gosfs/pkg/core"
)

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(TypeSample, core.Sample{FlightID: 3, Altitude: 120})
	require.NoError(t, err)
	assert.Equal(t, TypeSample, env.Type)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "sample", decoded.Type)
	assert.Equal(t, 3.0, decoded.Payload["flightId"])
	assert.Equal(t, 120.0, decoded.Payload["altitude"])
}

func TestNewEnvelope_Unmarshalable(t *testing.T) {
	_, err := NewEnvelope(TypeImpact, map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

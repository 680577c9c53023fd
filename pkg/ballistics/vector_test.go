package ballistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{360, 0},
		{450, 90},
		{-90, 270},
		{-360, 0},
		{-1e-15, 0},
	}
	for _, tt := range tests {
		got := NormalizeDegrees(tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "NormalizeDegrees(%v)", tt.in)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Less(t, got, 360.0)
	}
}

func TestDirectionDegrees(t *testing.T) {
	assert.InDelta(t, 0, DirectionDegrees(Vec2{X: 1}), 1e-12)
	assert.InDelta(t, 90, DirectionDegrees(Vec2{Y: 1}), 1e-12)
	assert.InDelta(t, 180, DirectionDegrees(Vec2{X: -1}), 1e-12)
	assert.InDelta(t, 270, DirectionDegrees(Vec2{Y: -1}), 1e-12)
	assert.InDelta(t, 45, DirectionDegrees(Vec2{X: 3, Y: 3}), 1e-12)
}

func TestNormalDegrees(t *testing.T) {
	assert.InDelta(t, 90, NormalDegrees(0), 1e-12)
	assert.InDelta(t, 0, NormalDegrees(270), 1e-12)
	assert.InDelta(t, 10, NormalDegrees(280), 1e-12)
}

func TestVec2(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	assert.Equal(t, 5.0, v.Len())
	assert.Equal(t, 25.0, v.Len2())
	assert.Equal(t, Vec2{X: 4, Y: 6}, v.Add(Vec2{X: 1, Y: 2}))
	assert.Equal(t, Vec2{X: 2, Y: 2}, v.Sub(Vec2{X: 1, Y: 2}))
	assert.Equal(t, Vec2{X: 6, Y: 8}, v.Scale(2))
	assert.Equal(t, 11.0, v.Dot(Vec2{X: 1, Y: 2}))
	assert.True(t, v.IsFinite())
	assert.False(t, Vec2{X: math.NaN()}.IsFinite())
}

func TestOrbitalPeriod(t *testing.T) {
	mu := GravParameter(testGravity, testRadius)
	assert.InDelta(t, testGravity*testRadius*testRadius, mu, 1e-3)

	a := 700000.0
	got, ok := OrbitalPeriod(a, mu)
	assert.True(t, ok)
	assert.InDelta(t, 2*math.Pi*math.Sqrt(a*a*a/mu), got, 1e-9)

	_, ok = OrbitalPeriod(0, mu)
	assert.False(t, ok)
	_, ok = OrbitalPeriod(a, 0)
	assert.False(t, ok)
	_, ok = OrbitalPeriod(math.Inf(1), mu)
	assert.False(t, ok)
}

package geo

import (
	"testing"

	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineStringFromPath(t *testing.T) {
	path := []core.Vec2{{X: 100, Y: 200}, {X: 300, Y: 400}, {X: 500, Y: 600}}
	ls := LineStringFromPath(path)

	seq := ls.Coordinates()
	require.Equal(t, 3, seq.Length())
	assert.Equal(t, 100.0, seq.GetXY(0).X)
	assert.Equal(t, 600.0, seq.GetXY(2).Y)
	assert.Equal(t, path, PathFromLineString(ls))
}

func TestLineStringFromPath_TooShort(t *testing.T) {
	assert.True(t, LineStringFromPath(nil).IsEmpty())
	assert.True(t, LineStringFromPath([]core.Vec2{{X: 1, Y: 1}}).IsEmpty())
	assert.Nil(t, PathFromLineString(LineStringFromPath(nil)))
}

func TestLineStringFromPath_Length(t *testing.T) {
	ls := LineStringFromPath([]core.Vec2{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 10}})
	assert.InDelta(t, 11.0, ls.Length(), 1e-9)
}

func TestLineStringFromPath_Stationary(t *testing.T) {
	ls := LineStringFromPath([]core.Vec2{{X: 5, Y: 5}, {X: 5, Y: 5}})
	assert.True(t, ls.IsEmpty())
}

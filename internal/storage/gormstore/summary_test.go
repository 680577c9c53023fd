package gormstore

import (
	"testing"
	"time"

	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaries(t *testing.T) {
	b := newTestBackend(t)

	ended := testFlight()
	require.NoError(t, b.StartFlight(ended))
	for i, p := range []core.Vec2{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 6, Y: 8}} {
		require.NoError(t, b.RecordSample(&core.Sample{Seq: uint(i + 1), Time: ended.StartTime, Position: p}))
	}
	require.NoError(t, b.RecordImpact(&core.Impact{Seq: 1, Time: ended.StartTime, Hit: true}))
	ended.EndTime = ended.StartTime.Add(3 * time.Second)
	require.NoError(t, b.EndFlight(ended))

	open := testFlight()
	open.Name = "Still flying"
	open.StartTime = ended.StartTime.Add(time.Hour)
	require.NoError(t, b.StartFlight(open))
	require.NoError(t, b.Flush())

	summaries, err := Summaries(b.DB())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	first := summaries[0]
	assert.Equal(t, "Suborbital hop", first.Flight.Name)
	assert.Equal(t, int64(3), first.Samples)
	assert.Equal(t, int64(1), first.Impacts)
	assert.Equal(t, []core.Vec2{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 6, Y: 8}}, first.Path)
	assert.InDelta(t, 10.0, first.Length, 1e-9)

	second := summaries[1]
	assert.Equal(t, "Still flying", second.Flight.Name)
	assert.Zero(t, second.Samples)
	assert.Nil(t, second.Path)
}

func TestSummaries_Empty(t *testing.T) {
	summaries, err := Summaries(newTestBackend(t).DB())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

package influx

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFlight = &core.Flight{ID: 3, Name: "Hop", RocketName: "Probe"}

func TestSamplePoint(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &core.Sample{
		Seq:        5,
		Time:       ts,
		PlanetCode: "Earth",
		Position:   core.Vec2{X: 3, Y: 4},
		Velocity:   core.Vec2{X: 6, Y: 8},
		Altitude:   120,
		RCS:        true,
	}

	line := influxdb2_write.PointToLineProtocol(SamplePoint(testFlight, s), time.Nanosecond)

	assert.Contains(t, line, "rocket_state,")
	assert.Contains(t, line, "flight=Hop")
	assert.Contains(t, line, "flightId=3")
	assert.Contains(t, line, "planet=Earth")
	assert.Contains(t, line, "rocket=Probe")
	assert.Contains(t, line, "speed=10")
	assert.Contains(t, line, "altitude=120")
	assert.Contains(t, line, "rcs=true")
	assert.Contains(t, line, "seq=5i")
}

func TestImpactPoint(t *testing.T) {
	hit := &core.Impact{Seq: 2, Hit: true, Point: core.Vec2{X: 1, Y: 2}, Steps: 40, FlightTime: 0.8}
	line := influxdb2_write.PointToLineProtocol(ImpactPoint(testFlight, hit), time.Nanosecond)
	assert.Contains(t, line, "impact_prediction,")
	assert.Contains(t, line, "hit=true")
	assert.Contains(t, line, "timeToImpact=0.8")

	miss := &core.Impact{Seq: 3, Steps: 100000}
	line = influxdb2_write.PointToLineProtocol(ImpactPoint(nil, miss), time.Nanosecond)
	assert.Contains(t, line, "hit=false")
	assert.NotContains(t, line, "timeToImpact")
	assert.NotContains(t, line, "flight=")
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{Enabled: false}, zerolog.Nop(), "")
	err := m.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, m.IsValid)
}

func TestConnect_UnreachableUsesBackup(t *testing.T) {
	srv := httptest.NewServer(nil)
	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	srv.Close()

	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(config.InfluxConfig{
		Enabled:  true,
		Protocol: "http",
		Host:     host,
		Port:     port,
		Org:      "sfs-metrics",
	}, zerolog.Nop(), backup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	require.NoError(t, m.WriteSample(testFlight, &core.Sample{Seq: 1, Time: time.Now()}))
	require.NoError(t, m.WriteImpact(testFlight, &core.Impact{Seq: 1, Time: time.Now()}))
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "\n\n", "backup must hold one record per line")
	lines := bytes.Split(bytes.TrimSuffix(data, []byte("\n")), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("rocket_state,")))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("impact_prediction,")))
}

func TestWritePoint_NoBackend(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	err := m.WritePoint(TelemetryBucket, influxdb2_write.NewPointWithMeasurement("x").AddField("v", 1))
	require.Error(t, err)
	assert.NoError(t, m.Close())
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/internal/flight"
	"github.com/SFSPlayer-sys/gosfs/internal/logging"
	"github.com/SFSPlayer-sys/gosfs/internal/storage/memory"
	sqlitestorage "github.com/SFSPlayer-sys/gosfs/internal/storage/sqlite"
	wsstorage "github.com/SFSPlayer-sys/gosfs/internal/storage/websocket"
	"github.com/SFSPlayer-sys/gosfs/pkg/ballistics"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	"github.com/SFSPlayer-sys/gosfs/pkg/sfs"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

type fakeServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fs.mu.Lock()
		fs.requests = append(fs.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		fs.mu.Unlock()

		var resp any
		switch r.URL.Path {
		case "/version":
			resp = map[string]any{"version": "1.5.0"}
		case "/rocket":
			resp = map[string]any{"location": map[string]any{
				"position": map[string]any{"x": 0.0, "y": 1100.0},
				"velocity": map[string]any{"x": 0.0, "y": -10.0},
			}}
		case "/rocket_sim":
			resp = map[string]any{"name": "Hopper", "parentPlanetCode": "Earth", "height": 100.0}
		case "/other":
			resp = map[string]any{"mass": 10.0}
		case "/planet":
			resp = map[string]any{"codeName": "Earth", "radius": 1000.0, "gravity": 9.8}
		case "/control":
			resp = map[string]any{"result": "ok"}
		case "/draw":
			resp = map[string]any{"result": "cleared"}
		case "/screenshot":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("\x89PNGfake"))
			return
		default:
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) last() recordedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.requests[len(fs.requests)-1]
}

func newTestApp(t *testing.T, fs *fakeServer) (*app, *bytes.Buffer) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(fs.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	var out bytes.Buffer
	logManager := logging.NewSlogManager()
	logManager.Setup(io.Discard, "error", nil)
	return &app{
		client:       sfs.New(sfs.WithHost(host), sfs.WithPort(port), sfs.WithoutWarmup()),
		out:          &out,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		logManager:   logManager,
		zlog:         zerolog.Nop(),
		flight:       flight.NewContext(),
		sessionStart: time.Now(),
	}, &out
}

func TestParseArgs(t *testing.T) {
	got := parseArgs([]string{"1.5", "true", `{"a":1}`, "Main Engine", `"quoted"`, "null"})
	assert.Equal(t, []any{1.5, true, map[string]any{"a": 1.0}, "Main Engine", "quoted", nil}, got)
	assert.Empty(t, parseArgs(nil))
}

func TestHttpToWS(t *testing.T) {
	assert.Equal(t, "ws://localhost:5000", httpToWS("http://localhost:5000/"))
	assert.Equal(t, "wss://example.com/api", httpToWS("https://example.com/api"))
	assert.Equal(t, "ws://already", httpToWS("ws://already"))
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = parseDuration("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	_, err = parseDuration("-1")
	assert.ErrorIs(t, err, errUsage)
	_, err = parseDuration("soon")
	assert.ErrorIs(t, err, errUsage)
}

func TestRunCommand_Version(t *testing.T) {
	fs := newFakeServer(t)
	a, out := newTestApp(t, fs)

	require.NoError(t, a.runCommand(context.Background(), []string{"version"}))
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "1.5.0", got["version"])
}

func TestRunCommand_RocketByRef(t *testing.T) {
	fs := newFakeServer(t)
	a, _ := newTestApp(t, fs)

	require.NoError(t, a.runCommand(context.Background(), []string{"rocket", "2"}))
	req := fs.last()
	assert.Equal(t, "/rocket_sim", req.Path)
	assert.Contains(t, req.Query, "rocketIdOrName=2")
}

func TestRunCommand_Control(t *testing.T) {
	fs := newFakeServer(t)
	a, out := newTestApp(t, fs)

	require.NoError(t, a.runCommand(context.Background(), []string{"control", "SetThrottle", "0.5"}))
	req := fs.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/control", req.Path)
	assert.JSONEq(t, `{"method":"SetThrottle","args":[0.5]}`, string(req.Body))
	assert.Equal(t, "\"ok\"\n", out.String())
}

func TestRunCommand_ClearDraw(t *testing.T) {
	fs := newFakeServer(t)
	a, _ := newTestApp(t, fs)

	require.NoError(t, a.runCommand(context.Background(), []string{"clear-draw"}))
	assert.JSONEq(t, `{"cmd":"clear"}`, string(fs.last().Body))
}

func TestRunCommand_Impact(t *testing.T) {
	fs := newFakeServer(t)
	a, out := newTestApp(t, fs)

	require.NoError(t, a.runCommand(context.Background(), []string{"impact"}))
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, true, got["hit"])
	assert.Equal(t, "Earth", got["planetCode"])
}

func TestRunCommand_Screenshot(t *testing.T) {
	fs := newFakeServer(t)
	a, out := newTestApp(t, fs)

	path := filepath.Join(t.TempDir(), "shots", "frame.png")
	require.NoError(t, a.runCommand(context.Background(), []string{"screenshot", path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNGfake"), data)
	assert.Contains(t, out.String(), "saved 8 bytes")
}

func TestRunCommand_Usage(t *testing.T) {
	fs := newFakeServer(t)
	a, out := newTestApp(t, fs)

	assert.ErrorIs(t, a.runCommand(context.Background(), nil), errUsage)
	assert.ErrorIs(t, a.runCommand(context.Background(), []string{"launch"}), errUsage)
	assert.ErrorIs(t, a.runCommand(context.Background(), []string{"control"}), errUsage)
	assert.ErrorIs(t, a.runCommand(context.Background(), []string{"screenshot"}), errUsage)

	require.NoError(t, a.runCommand(context.Background(), []string{"help"}))
	assert.Contains(t, out.String(), "usage: sfsctl")
}

func TestRunCommand_ServerError(t *testing.T) {
	fs := newFakeServer(t)
	a, _ := newTestApp(t, fs)

	err := a.runCommand(context.Background(), []string{"rockets"})
	var statusErr *sfs.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestRecord_MemoryBackend(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	outDir := t.TempDir()
	viper.Set("storage.memory.outputDir", outDir)
	viper.Set("storage.memory.compressOutput", false)
	viper.Set("telemetry.interval", "10ms")
	viper.Set("telemetry.predictImpact", true)

	fs := newFakeServer(t)
	a, out := newTestApp(t, fs)

	require.NoError(t, a.runCommand(context.Background(), []string{"record", "0.1"}))

	dec := json.NewDecoder(bytes.NewReader(out.Bytes()[bytes.IndexByte(out.Bytes(), '{'):]))
	var summary map[string]any
	require.NoError(t, dec.Decode(&summary))
	assert.Equal(t, "Hopper", summary["rocket"])
	assert.Equal(t, "Earth", summary["planet"])

	path, ok := summary["file"].(string)
	require.True(t, ok)
	assert.Equal(t, outDir, filepath.Dir(path))

	export, err := memory.ReadExport(path)
	require.NoError(t, err)
	assert.NotEmpty(t, export.Samples)
	assert.NotEmpty(t, export.Impacts)
	assert.False(t, a.flight.Active())
}

func TestCreateStorageBackend(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	viper.Set("stream.url", "http://localhost:5000")
	logManager := logging.NewSlogManager()
	start := time.Now()

	b, err := createStorageBackend(config.StorageConfig{Type: "memory"}, start, logManager, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = createStorageBackend(config.StorageConfig{}, start, logManager, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	viper.Set("db.host", "127.0.0.1")
	viper.Set("db.port", "1")
	b, err = createStorageBackend(config.StorageConfig{Type: "postgres", SQLite: config.SQLiteConfig{OutputDir: t.TempDir()}}, start, logManager, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &sqlitestorage.Backend{}, b, "unreachable postgres falls back to sqlite")

	b, err = createStorageBackend(config.StorageConfig{Type: "sqlite", SQLite: config.SQLiteConfig{OutputDir: t.TempDir()}}, start, logManager, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &sqlitestorage.Backend{}, b)

	b, err = createStorageBackend(config.StorageConfig{Type: "websocket"}, start, logManager, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &wsstorage.Backend{}, b)

	_, err = createStorageBackend(config.StorageConfig{Type: "mongo"}, start, logManager, zerolog.Nop())
	assert.Error(t, err)
}

func TestCreateStorageBackend_WebsocketNeedsURL(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()

	_, err := createStorageBackend(config.StorageConfig{Type: "websocket"}, time.Now(), logging.NewSlogManager(), zerolog.Nop())
	assert.Error(t, err)
}

func TestImpactOptions(t *testing.T) {
	assert.Equal(t, ballistics.VelocityVerlet, impactOptions(config.TelemetryConfig{Integrator: "verlet"}).Integrator)
	assert.Equal(t, ballistics.Euler, impactOptions(config.TelemetryConfig{}).Integrator)
}

func TestListFlights(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	b, err := sqlitestorage.New(sqlitestorage.Config{DumpPath: sqlitestorage.DumpPathFor(dir, start)}, logging.NewSlogManager())
	require.NoError(t, err)
	require.NoError(t, b.Init())

	f := &core.Flight{Name: "Orbit test", RocketName: "Hopper", PlanetCode: "Earth", StartTime: start}
	require.NoError(t, b.StartFlight(f))
	require.NoError(t, b.RecordSample(&core.Sample{Seq: 1, Time: start, Position: core.Vec2{X: 0, Y: 0}}))
	require.NoError(t, b.RecordSample(&core.Sample{Seq: 2, Time: start, Position: core.Vec2{X: 3, Y: 4}}))
	f.EndTime = start.Add(90 * time.Second)
	require.NoError(t, b.EndFlight(f))
	require.NoError(t, b.Close())

	listing, err := listFlights(dir)
	require.NoError(t, err)
	require.Len(t, listing, 1)

	got := listing[0]
	assert.Equal(t, sqlitestorage.DumpPathFor(dir, start), got.File)
	assert.Equal(t, "Orbit test", got.Name)
	assert.Equal(t, int64(2), got.Samples)
	assert.Equal(t, 2, got.PathPoints)
	assert.InDelta(t, 5.0, got.PathLength, 1e-9)
	assert.Equal(t, "1m30s", got.Duration)
}

func TestListFlights_MissingDir(t *testing.T) {
	_, err := listFlights(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRunCommand_FlightsEmptyDir(t *testing.T) {
	fs := newFakeServer(t)
	a, out := newTestApp(t, fs)

	require.NoError(t, a.runCommand(context.Background(), []string{"flights", t.TempDir()}))
	assert.Equal(t, "[]\n", out.String())
}

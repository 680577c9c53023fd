package telemetry

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/internal/dispatcher"
	"github.com/SFSPlayer-sys/gosfs/internal/flight"
	"github.com/SFSPlayer-sys/gosfs/internal/logging"
	"github.com/SFSPlayer-sys/gosfs/internal/storage/memory"
	"github.com/SFSPlayer-sys/gosfs/pkg/sfs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// gameServer serves fixed rocket state for a rocket falling straight onto Earth.
type gameServer struct {
	*httptest.Server

	mu     sync.Mutex
	hits   map[string]int
	failAt map[string]bool
}

func newGameServer(t *testing.T) *gameServer {
	t.Helper()
	gs := &gameServer{hits: map[string]int{}, failAt: map[string]bool{}}

	routes := map[string]any{
		"/rocket": map[string]any{
			"rocketName": "Hopper",
			"location": map[string]any{
				"position": map[string]any{"x": 0.0, "y": 1100.0},
				"velocity": map[string]any{"x": 0.0, "y": -10.0},
			},
		},
		"/rocket_sim": map[string]any{
			"name":             "Hopper",
			"parentPlanetCode": "Earth",
			"height":           100.0,
			"rotation":         90.0,
			"angularVelocity":  0.5,
			"throttle":         0.8,
			"rcs":              true,
		},
		"/other":   map[string]any{"mass": 10.0, "thrust": 50.0, "TWR": 1.2, "worldTime": 42.0},
		"/planet":  map[string]any{"codeName": "Earth", "radius": 1000.0, "gravity": 9.8},
		"/version": map[string]any{"version": "1.5.0"},
	}

	gs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gs.mu.Lock()
		gs.hits[r.URL.Path]++
		fail := gs.failAt[r.URL.Path]
		gs.mu.Unlock()

		body, ok := routes[r.URL.Path]
		if !ok || fail {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(gs.Close)
	return gs
}

func (gs *gameServer) fail(path string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.failAt[path] = true
}

func (gs *gameServer) count(path string) int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.hits[path]
}

func (gs *gameServer) client(t *testing.T) *sfs.Client {
	t.Helper()
	host, portStr, err := net.SplitHostPort(gs.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return sfs.New(sfs.WithHost(host), sfs.WithPort(port), sfs.WithoutWarmup())
}

type harness struct {
	server     *gameServer
	sampler    *Sampler
	backend    *memory.Backend
	dispatcher *dispatcher.Dispatcher
	flight     *flight.Context
}

func newHarness(t *testing.T, cfg config.TelemetryConfig) *harness {
	t.Helper()
	gs := newGameServer(t)

	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(d.Close)

	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir(), Format: "json"})
	require.NoError(t, backend.Init())

	fc := flight.NewContext()
	RegisterHandlers(d, Sinks{Storage: backend, Flight: fc})

	s := NewSampler(Dependencies{
		Client:     gs.client(t),
		Dispatcher: d,
		Flight:     fc,
		Config:     cfg,
	})
	t.Cleanup(s.Stop)

	return &harness{server: gs, sampler: s, backend: backend, dispatcher: d, flight: fc}
}

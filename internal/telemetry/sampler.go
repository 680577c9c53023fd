// Package telemetry samples a rocket from the SFSControl server on a fixed interval
// and routes samples and impact predictions through the dispatcher.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/internal/dispatcher"
	"github.com/SFSPlayer-sys/gosfs/internal/flight"
	"github.com/SFSPlayer-sys/gosfs/internal/logging"
	"github.com/SFSPlayer-sys/gosfs/internal/storage"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	"github.com/SFSPlayer-sys/gosfs/pkg/sfs"

	"golang.org/x/sync/errgroup"
)

// ErrFlightActive is returned by StartFlight while another flight is recording.
var ErrFlightActive = errors.New("flight already recording")

// Dependencies holds all dependencies for the sampler
type Dependencies struct {
	Client        *sfs.Client
	Dispatcher    *dispatcher.Dispatcher
	Flight        *flight.Context
	LogManager    *logging.SlogManager
	Config        config.TelemetryConfig
	ImpactOptions sfs.ImpactOptions
}

// Sampler polls one rocket while a flight is recording
type Sampler struct {
	deps   Dependencies
	rocket sfs.Ref

	isRunning bool
	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}

	failures atomic.Uint64
}

// NewSampler creates a new sampler. An empty Config.Rocket samples the controlled rocket.
func NewSampler(deps Dependencies) *Sampler {
	if deps.Config.Interval <= 0 {
		deps.Config.Interval = time.Second
	}
	if deps.Flight == nil {
		deps.Flight = flight.NewContext()
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	rocket := sfs.Current
	if deps.Config.Rocket != "" {
		rocket = sfs.ParseRef(deps.Config.Rocket)
	}
	return &Sampler{
		deps:   deps,
		rocket: rocket,
	}
}

func (s *Sampler) logger() *slog.Logger {
	return s.deps.LogManager.Logger().With("component", "telemetry")
}

// IsRunning returns whether the sampling goroutine is running
func (s *Sampler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Failures is the number of ticks whose sample could not be read.
func (s *Sampler) Failures() uint64 {
	return s.failures.Load()
}

// StartFlight reads the rocket name and parent planet, then announces a new flight.
// The storage backend assigns the flight ID.
func (s *Sampler) StartFlight(ctx context.Context, name string) (*core.Flight, error) {
	if s.deps.Flight.Active() {
		return nil, ErrFlightActive
	}

	var sim sfs.Object
	var version string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sim, err = s.deps.Client.Info.RocketSim(gctx, s.rocket)
		return err
	})
	g.Go(func() error {
		v, err := s.deps.Client.Values.SFSControlVersion(gctx)
		if err != nil {
			s.logger().Debug("server version unavailable", "error", err)
			return nil
		}
		version = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read rocket %s: %w", s.rocket, err)
	}

	st := sfs.DecodeRocketState(nil, sim, nil)
	now := time.Now()
	if name == "" {
		rocketName := st.Name
		if rocketName == "" {
			rocketName = "flight"
		}
		name = fmt.Sprintf("%s %s", rocketName, now.Format("2006-01-02 15:04:05"))
	}

	f := &core.Flight{
		Name:           name,
		Rocket:         s.deps.Config.Rocket,
		RocketName:     st.Name,
		PlanetCode:     st.ParentPlanetCode,
		ServerVersion:  version,
		StartTime:      now,
		SampleInterval: s.deps.Config.Interval,
		Tag:            s.deps.Config.Tag,
	}
	if _, err := s.deps.Dispatcher.Dispatch(dispatcher.Event{Type: EventFlightStart, Payload: f, Timestamp: now}); err != nil {
		return nil, fmt.Errorf("failed to start flight: %w", err)
	}
	s.deps.Flight.SetFlight(f)

	s.logger().Info("Flight started", "flight", f.Name, "flightId", f.ID, "rocket", f.RocketName, "planet", f.PlanetCode)
	return f, nil
}

// SampleOnce reads the rocket state, dispatches a sample and, when enabled, an impact
// prediction. A failed prediction is logged and yields a nil impact.
func (s *Sampler) SampleOnce(ctx context.Context) (*core.Sample, *core.Impact, error) {
	if !s.deps.Flight.Active() {
		return nil, nil, storage.ErrNoFlight
	}

	var save, sim, other sfs.Object
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		save, err = s.deps.Client.Info.RocketSave(gctx, s.rocket)
		return err
	})
	g.Go(func() error {
		var err error
		sim, err = s.deps.Client.Info.RocketSim(gctx, s.rocket)
		return err
	})
	g.Go(func() error {
		var err error
		other, err = s.deps.Client.Info.Other(gctx, s.rocket)
		if err != nil {
			// mass, thrust and world time stay zero
			s.logger().Debug("other info unavailable", "error", err)
			other = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to read rocket state: %w", err)
	}

	st := sfs.DecodeRocketState(save, sim, other)
	f := s.deps.Flight.GetFlight()
	now := time.Now()

	sample := &core.Sample{
		FlightID:        f.ID,
		Seq:             s.deps.Flight.NextSeq(),
		Time:            now,
		WorldTime:       st.WorldTime,
		PlanetCode:      st.ParentPlanetCode,
		Position:        st.Position,
		Velocity:        st.Velocity,
		Altitude:        st.Altitude,
		Rotation:        st.Rotation,
		AngularVelocity: st.AngularVelocity,
		Throttle:        st.Throttle,
		RCS:             st.RCS,
		Mass:            st.Mass,
		Thrust:          st.Thrust,
		TWR:             st.TWR,
		Raw:             map[string]any{"rocket": save, "rocket_sim": sim, "other": other},
	}
	if _, err := s.deps.Dispatcher.Dispatch(dispatcher.Event{Type: EventSample, Payload: sample, Timestamp: now}); err != nil {
		return sample, nil, fmt.Errorf("failed to dispatch sample: %w", err)
	}

	if !s.deps.Config.PredictImpact {
		return sample, nil, nil
	}

	pred, err := s.deps.Client.Calc.PredictFrom(ctx, save, sim, s.deps.ImpactOptions)
	if err != nil {
		s.logger().Warn("impact prediction failed", "seq", sample.Seq, "error", err)
		return sample, nil, nil
	}
	impact := &core.Impact{
		FlightID:   f.ID,
		Seq:        sample.Seq,
		Time:       now,
		PlanetCode: pred.PlanetCode,
		Hit:        pred.Hit,
		Steps:      pred.Impact.Steps,
	}
	if pred.Hit {
		impact.Point = pred.Impact.Point
		impact.FlightTime = pred.Impact.Time
	}
	if _, err := s.deps.Dispatcher.Dispatch(dispatcher.Event{Type: EventImpact, Payload: impact, Timestamp: now}); err != nil {
		return sample, impact, fmt.Errorf("failed to dispatch impact: %w", err)
	}
	return sample, impact, nil
}

// Start starts the sampling goroutine
func (s *Sampler) Start() error {
	if !s.deps.Flight.Active() {
		return storage.ErrNoFlight
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.isRunning = true
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.logger()
		logger.Debug("Starting sampler goroutine", "interval", s.deps.Config.Interval)

		ticker := time.NewTicker(s.deps.Config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, _, err := s.SampleOnce(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					s.failures.Add(1)
					logger.Warn("sample failed", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the sampling goroutine and waits for it to exit
func (s *Sampler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// EndFlight stops sampling, waits for queued events to reach the sinks, then closes the flight.
func (s *Sampler) EndFlight(ctx context.Context) (*core.Flight, error) {
	s.Stop()
	if !s.deps.Flight.Active() {
		return nil, storage.ErrNoFlight
	}

	if err := s.deps.Dispatcher.Flush(ctx); err != nil {
		s.logger().Warn("events still queued at flight end", "error", err)
	}

	f := s.deps.Flight.GetFlight()
	samples := s.deps.Flight.Samples()
	f.EndTime = time.Now()
	_, err := s.deps.Dispatcher.Dispatch(dispatcher.Event{Type: EventFlightEnd, Payload: f, Timestamp: f.EndTime})
	s.deps.Flight.Clear()
	if err != nil {
		return f, fmt.Errorf("failed to end flight: %w", err)
	}

	meta := storage.MetadataFor(f, int(samples))
	s.logger().Info("Flight ended", "flight", meta.FlightName, "duration", meta.Duration, "samples", meta.Samples)
	return f, nil
}

// Record runs a whole flight: start, sample until ctx is done or d elapses (d <= 0 waits
// for ctx only), then end.
func (s *Sampler) Record(ctx context.Context, name string, d time.Duration) (*core.Flight, error) {
	if _, err := s.StartFlight(ctx, name); err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		return nil, err
	}

	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-ctx.Done():
	case <-timeout:
	}

	endCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.EndFlight(endCtx)
}

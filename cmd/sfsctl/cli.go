package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/internal/database"
	"github.com/SFSPlayer-sys/gosfs/internal/dispatcher"
	"github.com/SFSPlayer-sys/gosfs/internal/influx"
	"github.com/SFSPlayer-sys/gosfs/internal/logging"
	"github.com/SFSPlayer-sys/gosfs/internal/storage"
	"github.com/SFSPlayer-sys/gosfs/internal/storage/gormstore"
	"github.com/SFSPlayer-sys/gosfs/internal/telemetry"
	"github.com/SFSPlayer-sys/gosfs/pkg/ballistics"
	"github.com/SFSPlayer-sys/gosfs/pkg/sfs"

	"github.com/spf13/viper"
)

var errUsage = errors.New("invalid usage")

const usage = `usage: sfsctl <command> [args]

commands:
  version                  SFSControl server version info
  rocket [ref]             /rocket_sim of the controlled rocket, or by index/name
  rockets                  all rockets in the scene
  planet [code]            planet info, the current planet when code is empty
  planets                  all planets
  other [ref]              timewarp, target and derived flight values
  control <Method> [args]  call a control method; args are JSON, else strings
  screenshot <file>        save the current frame
  impact [ref]             predict where the rocket hits its parent planet
  clear-draw               remove everything drawn in the scene
  record [seconds]         record telemetry until interrupted or for a duration
  flights [dir]            list flights in the SQLite dumps of dir
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// runCommand maps one subcommand onto the client and prints the result as JSON.
func (a *app) runCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	var (
		result any
		err    error
	)
	switch cmd {
	case "version":
		result, err = a.client.Info.Version(ctx)
	case "rocket":
		result, err = a.client.Info.RocketSim(ctx, sfs.ParseRef(argAt(rest, 0)))
	case "rockets":
		result, err = a.client.Info.Rockets(ctx)
	case "planet":
		result, err = a.client.Info.Planet(ctx, argAt(rest, 0))
	case "planets":
		result, err = a.client.Info.Planets(ctx)
	case "other":
		result, err = a.client.Info.Other(ctx, sfs.ParseRef(argAt(rest, 0)))
	case "control":
		if len(rest) == 0 {
			return fmt.Errorf("%w: control needs a method name", errUsage)
		}
		result, err = a.client.Invoke(ctx, rest[0], parseArgs(rest[1:])...)
	case "screenshot":
		if len(rest) == 0 {
			return fmt.Errorf("%w: screenshot needs an output file", errUsage)
		}
		return a.screenshot(ctx, rest[0])
	case "impact":
		result, err = a.client.Calc.PredictRocketImpact(ctx, sfs.ParseRef(argAt(rest, 0)), impactOptions(config.GetTelemetryConfig()))
	case "clear-draw":
		result, err = a.client.Draw.Clear(ctx)
	case "record":
		return a.record(ctx, rest)
	case "flights":
		dir := argAt(rest, 0)
		if dir == "" {
			dir = config.GetStorageConfig().SQLite.OutputDir
		}
		result, err = listFlights(dir)
	case "help", "-h", "--help":
		printUsage(a.out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	if err != nil {
		return err
	}
	return printJSON(a.out, result)
}

// parseArgs decodes each control argument as JSON; anything that is not valid JSON is
// passed as a plain string.
func parseArgs(raw []string) []any {
	out := make([]any, 0, len(raw))
	for _, s := range raw {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			out = append(out, s)
			continue
		}
		out = append(out, v)
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func (a *app) screenshot(ctx context.Context, path string) error {
	img, err := a.client.Screenshot(ctx)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, img, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	fmt.Fprintf(a.out, "saved %d bytes to %s\n", len(img), path)
	return nil
}

func impactOptions(cfg config.TelemetryConfig) sfs.ImpactOptions {
	return sfs.ImpactOptions{Integrator: ballistics.ParseIntegrator(cfg.Integrator)}
}

// flightListing is one stored flight as printed by the flights command.
type flightListing struct {
	File       string    `json:"file"`
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	RocketName string    `json:"rocketName"`
	PlanetCode string    `json:"planetCode"`
	StartTime  time.Time `json:"startTime"`
	Duration   string    `json:"duration,omitempty"`
	Samples    int64     `json:"samples"`
	Impacts    int64     `json:"impacts"`
	PathPoints int       `json:"pathPoints"`
	PathLength float64   `json:"pathLength"`
}

// listFlights reads the flights stored in every SQLite dump of dir.
func listFlights(dir string) ([]flightListing, error) {
	paths, err := database.GetBackupDBPaths(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	out := []flightListing{}
	for _, path := range paths {
		db, err := database.GetSqliteDBStandalone(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		summaries, err := gormstore.Summaries(db)
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		for _, s := range summaries {
			l := flightListing{
				File:       path,
				ID:         s.Flight.ID,
				Name:       s.Flight.Name,
				RocketName: s.Flight.RocketName,
				PlanetCode: s.Flight.PlanetCode,
				StartTime:  s.Flight.StartTime,
				Samples:    s.Samples,
				Impacts:    s.Impacts,
				PathPoints: len(s.Path),
				PathLength: s.Length,
			}
			if d := s.Flight.Duration(); d > 0 {
				l.Duration = d.String()
			}
			out = append(out, l)
		}
	}
	return out, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("%w: record duration must be a non-negative number of seconds, got %q", errUsage, s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// record samples the rocket into the configured storage backend until ctx is done or the
// optional duration elapses.
func (a *app) record(ctx context.Context, args []string) error {
	d, err := parseDuration(argAt(args, 0))
	if err != nil {
		return err
	}

	backend, err := createStorageBackend(config.GetStorageConfig(), a.sessionStart, a.logManager, a.zlog)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			a.logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	var influxManager *influx.Manager
	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		backupPath := filepath.Join(viper.GetString("logsDir"),
			fmt.Sprintf("influx_backup_%s.log.gzip", a.sessionStart.Format("20060102_150405")))
		influxManager = influx.NewManager(influxCfg, a.zlog, backupPath)
		if err := influxManager.Connect(ctx); err != nil {
			a.logger.Warn("InfluxDB disabled", "error", err)
			influxManager = nil
		} else {
			defer func() { _ = influxManager.Close() }()
		}
	}

	disp, err := dispatcher.New(logging.NewDispatcherLogger(a.zlog))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer disp.Close()

	telemetry.RegisterHandlers(disp, telemetry.Sinks{
		Storage: backend,
		Influx:  influxManager,
		Flight:  a.flight,
	})

	telemetryCfg := config.GetTelemetryConfig()
	sampler := telemetry.NewSampler(telemetry.Dependencies{
		Client:        a.client,
		Dispatcher:    disp,
		Flight:        a.flight,
		LogManager:    a.logManager,
		Config:        telemetryCfg,
		ImpactOptions: impactOptions(telemetryCfg),
	})

	if d > 0 {
		fmt.Fprintf(a.out, "recording for %s\n", d)
	} else {
		fmt.Fprintln(a.out, "recording, press Ctrl+C to stop")
	}

	f, err := sampler.Record(ctx, "", d)
	if err != nil {
		return err
	}
	if a.otel != nil {
		if err := a.otel.Flush(context.Background()); err != nil {
			a.logger.Warn("Failed to flush OpenTelemetry logs", "error", err)
		}
	}

	summary := map[string]any{
		"flight":   f.Name,
		"flightId": f.ID,
		"rocket":   f.RocketName,
		"planet":   f.PlanetCode,
		"duration": f.Duration().String(),
		"failures": sampler.Failures(),
	}
	if exp, ok := backend.(storage.Exporter); ok {
		if path := exp.ExportedFilePath(); path != "" {
			summary["file"] = path
		}
	}
	return printJSON(a.out, summary)
}

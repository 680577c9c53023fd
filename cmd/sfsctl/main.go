// Command sfsctl queries and controls a running Spaceflight Simulator through the
// SFSControl mod, and records rocket telemetry to the configured storage backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/internal/flight"
	"github.com/SFSPlayer-sys/gosfs/internal/logging"
	intOtel "github.com/SFSPlayer-sys/gosfs/internal/otel"
	"github.com/SFSPlayer-sys/gosfs/pkg/sfs"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Version and BuildDate can be set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

const appName = "sfsctl"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 2
	}

	sessionStart := time.Now()
	configDir := os.Getenv("SFSCTL_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	cfgErr := config.Load(configDir)

	a, cleanup, err := newApp(sessionStart)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer cleanup()

	if cfgErr != nil {
		a.logger.Debug("Using default configuration", "dir", configDir, "error", cfgErr)
	}
	a.logger.Debug("Starting", "version", Version, "buildDate", BuildDate, "server", a.client.BaseURL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.runCommand(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			return 2
		}
		return 1
	}
	return 0
}

// newApp wires logging, OpenTelemetry and the SFSControl client from the loaded config.
func newApp(sessionStart time.Time) (*app, func(), error) {
	level := viper.GetString("logLevel")
	logsDir := viper.GetString("logsDir")

	var logOut io.Writer
	var closers []func()
	if f, err := logging.OpenLogFile(logsDir, appName, sessionStart); err == nil {
		logOut = f
		closers = append(closers, func() { _ = f.Close() })
	} else {
		fmt.Fprintln(os.Stderr, "warning: logging to console:", err)
	}

	otelCfg := config.GetOTelConfig()
	var otelOut io.Writer
	if otelCfg.Enabled {
		if f, err := logging.OpenLogFile(logsDir, appName+".otel", sessionStart); err == nil {
			otelOut = f
			closers = append(closers, func() { _ = f.Close() })
		}
	}
	provider, err := intOtel.New(intOtel.FromConfig(otelCfg, Version, otelOut))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up OpenTelemetry: %w", err)
	}

	fc := flight.NewContext()
	logManager := logging.NewSlogManager()
	logManager.SetContextProvider(fc.LogAttrs)

	gl := config.GetGraylogConfig()
	if gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address)
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		} else {
			logManager.SetGraylog(w)
			closers = append(closers, func() { _ = w.Close() })
		}
	}
	logManager.Setup(logOut, level, provider.LoggerProvider())
	logger := logManager.Logger()

	srv := config.GetServerConfig()
	client := sfs.New(
		sfs.WithHost(srv.Host),
		sfs.WithPort(srv.Port),
		sfs.WithTimeout(srv.Timeout),
		sfs.WithLogger(logger.With("component", "sfs")),
		sfs.WithoutWarmup(),
	)

	a := &app{
		client:       client,
		out:          os.Stdout,
		logger:       logger,
		logManager:   logManager,
		zlog:         logging.NewZerolog(logOut, level),
		flight:       fc,
		otel:         provider,
		sessionStart: sessionStart,
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logManager.Flush(ctx); err != nil {
			logger.Warn("Failed to flush logs", "error", err)
		}
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("Failed to shut down OpenTelemetry", "error", err)
		}
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return a, cleanup, nil
}

// app carries what subcommands need.
type app struct {
	client       *sfs.Client
	out          io.Writer
	logger       *slog.Logger
	logManager   *logging.SlogManager
	zlog         zerolog.Logger
	flight       *flight.Context
	otel         *intOtel.Provider
	sessionStart time.Time
}

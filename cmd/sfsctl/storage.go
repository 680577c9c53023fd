package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/internal/database"
	"github.com/SFSPlayer-sys/gosfs/internal/logging"
	"github.com/SFSPlayer-sys/gosfs/internal/storage"
	"github.com/SFSPlayer-sys/gosfs/internal/storage/gormstore"
	"github.com/SFSPlayer-sys/gosfs/internal/storage/memory"
	sqlitestorage "github.com/SFSPlayer-sys/gosfs/internal/storage/sqlite"
	wsstorage "github.com/SFSPlayer-sys/gosfs/internal/storage/websocket"

	"github.com/rs/zerolog"
)

func createStorageBackend(storageCfg config.StorageConfig, sessionStart time.Time, logManager *logging.SlogManager, zlog zerolog.Logger) (storage.Backend, error) {
	logger := logManager.Logger()

	switch storageCfg.Type {
	case "postgres":
		mgr := database.NewManager(config.GetDBConfig(), zlog)
		if err := mgr.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if mgr.ShouldSaveLocal {
			// Postgres is unreachable; record to a dumped SQLite file instead
			_ = mgr.Close()
			logger.Warn("Postgres unavailable, falling back to SQLite storage")
			return newSQLiteBackend(storageCfg, sessionStart, logManager)
		}
		logger.Info("Postgres storage backend initialized")
		return gormstore.New(gormstore.Dependencies{
			DB:         mgr.DB,
			LogManager: logManager,
		}), nil

	case "sqlite":
		return newSQLiteBackend(storageCfg, sessionStart, logManager)

	case "websocket":
		streamCfg := config.GetStreamConfig()
		if streamCfg.URL == "" {
			return nil, fmt.Errorf("storage.type is websocket but stream.url is empty")
		}
		wsURL := httpToWS(streamCfg.URL)
		logger.Info("WebSocket storage backend initialized", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:    wsURL,
			Secret: streamCfg.Secret,
			Logger: logger,
		}), nil

	case "memory", "":
		logger.Info("Memory storage backend initialized")
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

func newSQLiteBackend(storageCfg config.StorageConfig, sessionStart time.Time, logManager *logging.SlogManager) (storage.Backend, error) {
	backend, err := sqlitestorage.New(sqlitestorage.Config{
		DumpInterval: storageCfg.SQLite.DumpInterval,
		DumpPath:     sqlitestorage.DumpPathFor(storageCfg.SQLite.OutputDir, sessionStart),
	}, logManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
	}
	logManager.Logger().Info("SQLite storage backend initialized", "dumpPath", backend.ExportedFilePath())
	return backend, nil
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}

// internal/storage/memory/memory_test.go
package memory

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/internal/storage"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
)

// Verify Backend implements storage.Backend interface
var _ storage.Backend = (*Backend)(nil)

// Verify Backend implements storage.Exporter interface
var _ storage.Exporter = (*Backend)(nil)

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
		Format:         "yaml",
	}
	b := New(cfg)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if !b.cfg.CompressOutput {
		t.Error("expected CompressOutput=true")
	}
	if b.ExportedFilePath() != "" {
		t.Error("expected no export path before first flight")
	}
}

func TestInitAndClose(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestStartFlight_AssignsIDAndResets(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})

	first := &core.Flight{Name: "First", StartTime: time.Now()}
	if err := b.StartFlight(first); err != nil {
		t.Fatalf("StartFlight failed: %v", err)
	}
	if first.ID != 1 {
		t.Errorf("expected ID=1, got %d", first.ID)
	}
	_ = b.RecordSample(&core.Sample{Seq: 1})
	_ = b.RecordImpact(&core.Impact{Seq: 1})

	second := &core.Flight{Name: "Second", StartTime: time.Now()}
	_ = b.StartFlight(second)
	if second.ID != 2 {
		t.Errorf("expected ID=2, got %d", second.ID)
	}
	if len(b.Samples()) != 0 || len(b.Impacts()) != 0 {
		t.Error("expected collections to be reset")
	}
}

func TestRecord_WithoutFlight(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.RecordSample(&core.Sample{}); !errors.Is(err, ErrNoFlight) {
		t.Errorf("expected ErrNoFlight, got %v", err)
	}
	if err := b.RecordImpact(&core.Impact{}); !errors.Is(err, ErrNoFlight) {
		t.Errorf("expected ErrNoFlight, got %v", err)
	}
	if err := b.EndFlight(nil); !errors.Is(err, ErrNoFlight) {
		t.Errorf("expected ErrNoFlight, got %v", err)
	}
}

func TestRecord_StampsFlightID(t *testing.T) {
	b := New(config.MemoryConfig{})
	f := &core.Flight{Name: "Stamp"}
	_ = b.StartFlight(f)

	s := &core.Sample{Seq: 1, FlightID: 99}
	i := &core.Impact{Seq: 1}
	_ = b.RecordSample(s)
	_ = b.RecordImpact(i)

	if s.FlightID != f.ID || b.Samples()[0].FlightID != f.ID {
		t.Errorf("sample not stamped with flight ID %d", f.ID)
	}
	if i.FlightID != f.ID || b.Impacts()[0].FlightID != f.ID {
		t.Errorf("impact not stamped with flight ID %d", f.ID)
	}
}

func TestConcurrentRecording(t *testing.T) {
	b := New(config.MemoryConfig{})
	_ = b.StartFlight(&core.Flight{Name: "Concurrent"})

	var wg sync.WaitGroup
	for n := 0; n < 100; n++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = b.RecordSample(&core.Sample{Seq: uint(n)})
		}(n)
		go func(n int) {
			defer wg.Done()
			_ = b.RecordImpact(&core.Impact{Seq: uint(n)})
		}(n)
	}
	wg.Wait()

	if len(b.Samples()) != 100 {
		t.Errorf("expected 100 samples, got %d", len(b.Samples()))
	}
	if len(b.Impacts()) != 100 {
		t.Errorf("expected 100 impacts, got %d", len(b.Impacts()))
	}
}

// Package gormstore implements the storage.Backend interface using GORM
// with internal queues and a background DB writer goroutine.
package gormstore

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/config"
	"github.com/SFSPlayer-sys/gosfs/internal/database"
	"github.com/SFSPlayer-sys/gosfs/internal/logging"
	"github.com/SFSPlayer-sys/gosfs/internal/model"
	"github.com/SFSPlayer-sys/gosfs/internal/model/convert"
	"github.com/SFSPlayer-sys/gosfs/internal/queue"
	"github.com/SFSPlayer-sys/gosfs/internal/storage"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"

	"gorm.io/gorm"
)

const (
	defaultFlushInterval = 2 * time.Second
	defaultQueueLimit    = 100_000
	batchSize            = 1000
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB // when nil, Init connects to postgres using DBConfig
	DBConfig      config.DBConfig
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
	QueueLimit    int
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps     Dependencies
	samples  *queue.Queue[model.Sample]
	impacts  *queue.Queue[model.ImpactPrediction]
	flightID atomic.Uint64

	// dbMu serializes DB access between the writer goroutine and callers
	dbMu      sync.Mutex
	stopChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	if deps.QueueLimit <= 0 {
		deps.QueueLimit = defaultQueueLimit
	}
	return &Backend{
		deps: deps,
	}
}

// DB returns the underlying connection, nil before Init.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init creates internal queues, runs schema migration, and starts the DB writer goroutine.
// If no DB was injected via Dependencies, it creates its own postgres connection.
func (b *Backend) Init() error {
	b.samples = queue.NewBounded[model.Sample](b.deps.QueueLimit)
	b.impacts = queue.NewBounded[model.ImpactPrediction](b.deps.QueueLimit)
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})

	if b.deps.DB == nil {
		db, err := database.GetPostgresDBStandalone(b.deps.DBConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	b.deps.LogManager.WriteLog("gormstore:Init", "Migrating schema", "INFO")
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	go b.writerLoop()
	return nil
}

// Close stops the DB writer goroutine after a final flush.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	b.closeOnce.Do(func() {
		close(b.stopChan)
		<-b.done
	})
	return nil
}

// StartFlight inserts the flight row and makes it the target of queued records.
func (b *Backend) StartFlight(f *core.Flight) error {
	gormFlight := convert.CoreToFlight(*f)

	b.dbMu.Lock()
	err := b.deps.DB.Create(&gormFlight).Error
	b.dbMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to insert new flight: %w", err)
	}

	// Assign DB-generated ID back to core type
	f.ID = gormFlight.ID
	b.flightID.Store(uint64(gormFlight.ID))
	return nil
}

// EndFlight flushes queued records, stores the end time and writes the flight path.
func (b *Backend) EndFlight(f *core.Flight) error {
	id := uint(b.flightID.Load())
	if id == 0 {
		return storage.ErrNoFlight
	}
	if err := b.Flush(); err != nil {
		return err
	}

	b.dbMu.Lock()
	defer b.dbMu.Unlock()
	db := b.deps.DB

	if f != nil && !f.EndTime.IsZero() {
		if err := db.Model(&model.Flight{}).Where("id = ?", id).Update("end_time", f.EndTime).Error; err != nil {
			return fmt.Errorf("failed to update flight end time: %w", err)
		}
	}

	var rows []model.Sample
	if err := db.Where("flight_id = ?", id).Order("seq").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load flight samples: %w", err)
	}
	path := make([]core.Vec2, 0, len(rows))
	for _, row := range rows {
		path = append(path, convert.SampleToCore(row).Position)
	}

	flightPath := convert.PathToFlightPath(id, path)
	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flight_id = ?", id).Delete(&model.FlightPath{}).Error; err != nil {
			return err
		}
		return tx.Create(&flightPath).Error
	}); err != nil {
		return fmt.Errorf("failed to write flight path: %w", err)
	}

	b.deps.LogManager.WriteLog("gormstore:EndFlight",
		fmt.Sprintf("Flight %d closed with %d samples, path length %.1f", id, flightPath.Points, flightPath.Length), "INFO")
	b.flightID.Store(0)
	return nil
}

// RecordSample converts and queues a sample of the active flight.
func (b *Backend) RecordSample(s *core.Sample) error {
	id := uint(b.flightID.Load())
	if id == 0 {
		return storage.ErrNoFlight
	}
	s.FlightID = id
	if dropped := b.samples.Push(convert.CoreToSample(*s)); dropped > 0 {
		b.deps.LogManager.WriteLog("gormstore:RecordSample", fmt.Sprintf("Sample queue full, dropped %d", dropped), "WARN")
	}
	return nil
}

// RecordImpact converts and queues an impact prediction of the active flight.
func (b *Backend) RecordImpact(i *core.Impact) error {
	id := uint(b.flightID.Load())
	if id == 0 {
		return storage.ErrNoFlight
	}
	i.FlightID = id
	if dropped := b.impacts.Push(convert.CoreToImpact(*i)); dropped > 0 {
		b.deps.LogManager.WriteLog("gormstore:RecordImpact", fmt.Sprintf("Impact queue full, dropped %d", dropped), "WARN")
	}
	return nil
}

// Flush writes every queued record now.
func (b *Backend) Flush() error {
	b.dbMu.Lock()
	defer b.dbMu.Unlock()
	return b.flush()
}

// flush drains both queues. Caller holds dbMu.
func (b *Backend) flush() error {
	log := b.deps.LogManager.WriteLog
	return errors.Join(
		writeQueue(b.deps.DB, b.samples, "samples", log),
		writeQueue(b.deps.DB, b.impacts, "impact predictions", log),
	)
}

// Pending returns the number of queued samples and impacts not yet written.
func (b *Backend) Pending() (samples, impacts int) {
	return b.samples.Len(), b.impacts.Len()
}

// Samples loads the stored samples of a flight ordered by seq.
func (b *Backend) Samples(flightID uint) ([]core.Sample, error) {
	b.dbMu.Lock()
	defer b.dbMu.Unlock()

	var rows []model.Sample
	if err := b.deps.DB.Where("flight_id = ?", flightID).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]core.Sample, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert.SampleToCore(row))
	}
	return out, nil
}

// Impacts loads the stored impact predictions of a flight ordered by seq.
func (b *Backend) Impacts(flightID uint) ([]core.Impact, error) {
	b.dbMu.Lock()
	defer b.dbMu.Unlock()

	var rows []model.ImpactPrediction
	if err := b.deps.DB.Where("flight_id = ?", flightID).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]core.Impact, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert.ImpactToCore(row))
	}
	return out, nil
}

// Flight loads a stored flight by ID.
func (b *Backend) Flight(flightID uint) (core.Flight, error) {
	b.dbMu.Lock()
	defer b.dbMu.Unlock()

	var row model.Flight
	if err := b.deps.DB.First(&row, flightID).Error; err != nil {
		return core.Flight{}, err
	}
	return convert.FlightToCore(row), nil
}

// FlightPath loads the trajectory written when the flight ended.
func (b *Backend) FlightPath(flightID uint) (model.FlightPath, error) {
	b.dbMu.Lock()
	defer b.dbMu.Unlock()

	var row model.FlightPath
	err := b.deps.DB.Where("flight_id = ?", flightID).First(&row).Error
	return row, err
}

// writeQueue writes all items from a queue to the database in batches, one transaction each.
// A failed batch is put back at the head of the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string)) error {
	for !q.Empty() {
		items := q.PopN(batchSize)
		if err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&items).Error
		}); err != nil {
			log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
			q.PushFront(items...)
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// writerLoop periodically drains queues into the DB until Close.
func (b *Backend) writerLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			if err := b.Flush(); err != nil {
				b.deps.LogManager.WriteLog(":DB:WRITER:", fmt.Sprintf("Final flush failed: %v", err), "ERROR")
			}
			return
		case <-ticker.C:
			_ = b.Flush()
		}
	}
}

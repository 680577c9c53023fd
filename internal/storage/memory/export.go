// internal/storage/memory/export.go
package memory

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SFSPlayer-sys/gosfs/internal/geo"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	"gopkg.in/yaml.v3"
)

// Export formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FlightExport is the root structure of an exported flight file
type FlightExport struct {
	Name             string       `json:"name" yaml:"name"`
	Rocket           string       `json:"rocket,omitempty" yaml:"rocket,omitempty"`
	RocketName       string       `json:"rocketName" yaml:"rocketName"`
	PlanetCode       string       `json:"planetCode" yaml:"planetCode"`
	ServerVersion    string       `json:"serverVersion,omitempty" yaml:"serverVersion,omitempty"`
	Tag              string       `json:"tag,omitempty" yaml:"tag,omitempty"`
	StartTime        time.Time    `json:"startTime" yaml:"startTime"`
	EndTime          time.Time    `json:"endTime" yaml:"endTime"`
	SampleIntervalMs int64        `json:"sampleIntervalMs" yaml:"sampleIntervalMs"`
	Duration         float64      `json:"duration" yaml:"duration"`
	PathLength       float64      `json:"pathLength" yaml:"pathLength"`
	Samples          []SampleJSON `json:"samples" yaml:"samples"`
	Impacts          []ImpactJSON `json:"impacts" yaml:"impacts"`
}

// SampleJSON is one exported sample
type SampleJSON struct {
	Seq             uint      `json:"seq" yaml:"seq"`
	Time            time.Time `json:"time" yaml:"time"`
	WorldTime       float64   `json:"worldTime" yaml:"worldTime"`
	PlanetCode      string    `json:"planetCode" yaml:"planetCode"`
	Position        core.Vec2 `json:"position" yaml:"position"`
	Velocity        core.Vec2 `json:"velocity" yaml:"velocity"`
	Altitude        float64   `json:"altitude" yaml:"altitude"`
	Rotation        float64   `json:"rotation" yaml:"rotation"`
	AngularVelocity float64   `json:"angularVelocity" yaml:"angularVelocity"`
	Throttle        float64   `json:"throttle" yaml:"throttle"`
	RCS             bool      `json:"rcs" yaml:"rcs"`
	Mass            float64   `json:"mass" yaml:"mass"`
	Thrust          float64   `json:"thrust" yaml:"thrust"`
	TWR             float64   `json:"twr" yaml:"twr"`
}

// ImpactJSON is one exported impact prediction
type ImpactJSON struct {
	Seq        uint       `json:"seq" yaml:"seq"`
	Time       time.Time  `json:"time" yaml:"time"`
	PlanetCode string     `json:"planetCode" yaml:"planetCode"`
	Hit        bool       `json:"hit" yaml:"hit"`
	Point      *core.Vec2 `json:"point,omitempty" yaml:"point,omitempty"`
	Steps      int        `json:"steps" yaml:"steps"`
	FlightTime float64    `json:"flightTime,omitempty" yaml:"flightTime,omitempty"`
}

// exportFileName builds "<name>_<start>.<format>[.gz]" with spaces and colons replaced.
func exportFileName(f *core.Flight, format string, compress bool) string {
	name := f.Name
	if name == "" {
		name = "flight"
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	timestamp := f.StartTime.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.%s", name, timestamp, format)
	if compress {
		filename += ".gz"
	}
	return filename
}

func normalizeFormat(format string) string {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// export writes the flight data to OutputDir. Caller holds the lock.
func (b *Backend) export() error {
	data := b.buildExport()
	format := normalizeFormat(b.cfg.Format)

	outputPath := filepath.Join(b.cfg.OutputDir, exportFileName(b.flight, format, b.cfg.CompressOutput))

	// Ensure output directory exists
	if b.cfg.OutputDir != "" {
		if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := writeExport(outputPath, data, format, b.cfg.CompressOutput); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() FlightExport {
	f := b.flight
	export := FlightExport{
		Name:             f.Name,
		Rocket:           f.Rocket,
		RocketName:       f.RocketName,
		PlanetCode:       f.PlanetCode,
		ServerVersion:    f.ServerVersion,
		Tag:              f.Tag,
		StartTime:        f.StartTime.UTC(),
		EndTime:          f.EndTime.UTC(),
		SampleIntervalMs: f.SampleInterval.Milliseconds(),
		Duration:         f.Duration().Seconds(),
		Samples:          make([]SampleJSON, 0, len(b.samples)),
		Impacts:          make([]ImpactJSON, 0, len(b.impacts)),
	}

	path := make([]core.Vec2, 0, len(b.samples))
	for _, s := range b.samples {
		export.Samples = append(export.Samples, SampleJSON{
			Seq:             s.Seq,
			Time:            s.Time.UTC(),
			WorldTime:       s.WorldTime,
			PlanetCode:      s.PlanetCode,
			Position:        s.Position,
			Velocity:        s.Velocity,
			Altitude:        s.Altitude,
			Rotation:        s.Rotation,
			AngularVelocity: s.AngularVelocity,
			Throttle:        s.Throttle,
			RCS:             s.RCS,
			Mass:            s.Mass,
			Thrust:          s.Thrust,
			TWR:             s.TWR,
		})
		path = append(path, s.Position)
	}
	export.PathLength = geo.LineStringFromPath(path).Length()

	for _, i := range b.impacts {
		ij := ImpactJSON{
			Seq:        i.Seq,
			Time:       i.Time.UTC(),
			PlanetCode: i.PlanetCode,
			Hit:        i.Hit,
			Steps:      i.Steps,
		}
		if i.Hit {
			p := i.Point
			ij.Point = &p
			ij.FlightTime = i.FlightTime
		}
		export.Impacts = append(export.Impacts, ij)
	}

	return export
}

func encode(w io.Writer, data FlightExport, format string) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	return json.NewEncoder(w).Encode(data)
}

func writeExport(path string, data FlightExport, format string, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if !compress {
		return encode(f, data, format)
	}

	gzWriter := gzip.NewWriter(f)
	if err := encode(gzWriter, data, format); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

// ReadExport loads an exported flight file. Format and compression follow the file extension.
func ReadExport(path string) (FlightExport, error) {
	var export FlightExport

	raw, err := os.ReadFile(path)
	if err != nil {
		return export, err
	}

	name := path
	if strings.HasSuffix(name, ".gz") {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return export, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		raw, err = io.ReadAll(zr)
		if err != nil {
			return export, fmt.Errorf("failed to decompress: %w", err)
		}
		name = strings.TrimSuffix(name, ".gz")
	}

	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &export)
	default:
		err = json.Unmarshal(raw, &export)
	}
	if err != nil {
		return export, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return export, nil
}

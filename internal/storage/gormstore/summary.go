package gormstore

import (
	"errors"

	"github.com/SFSPlayer-sys/gosfs/internal/geo"
	"github.com/SFSPlayer-sys/gosfs/internal/model"
	"github.com/SFSPlayer-sys/gosfs/internal/model/convert"
	"github.com/SFSPlayer-sys/gosfs/pkg/core"

	"gorm.io/gorm"
)

// Summary is a stored flight with its sample count and trajectory.
// Path is nil for flights that never ended.
type Summary struct {
	Flight  core.Flight
	Samples int64
	Impacts int64
	Path    []core.Vec2
	Length  float64
}

// Summaries reads every flight in db, oldest first.
func Summaries(db *gorm.DB) ([]Summary, error) {
	var flights []model.Flight
	if err := db.Order("start_time").Find(&flights).Error; err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(flights))
	for _, f := range flights {
		s := Summary{Flight: convert.FlightToCore(f)}
		if err := db.Model(&model.Sample{}).Where("flight_id = ?", f.ID).Count(&s.Samples).Error; err != nil {
			return nil, err
		}
		if err := db.Model(&model.ImpactPrediction{}).Where("flight_id = ?", f.ID).Count(&s.Impacts).Error; err != nil {
			return nil, err
		}

		var fp model.FlightPath
		err := db.Where("flight_id = ?", f.ID).First(&fp).Error
		switch {
		case err == nil:
			s.Path = geo.PathFromLineString(fp.Path)
			s.Length = fp.Length
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

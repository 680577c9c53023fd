package geo

import (
	"github.com/SFSPlayer-sys/gosfs/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// LineStringFromPath converts an ordered list of positions into a geom.LineString.
// Fewer than two distinct points give an empty line string.
func LineStringFromPath(path []core.Vec2) geom.LineString {
	flatCoords := make([]float64, 0, len(path)*2)
	for _, p := range path {
		if !p.IsFinite() {
			continue
		}
		flatCoords = append(flatCoords, p.X, p.Y)
	}
	if !hasDistinctPoints(flatCoords) {
		return geom.LineString{}
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}
	}
	return ls
}

func hasDistinctPoints(flat []float64) bool {
	for i := 2; i+1 < len(flat); i += 2 {
		if flat[i] != flat[0] || flat[i+1] != flat[1] {
			return true
		}
	}
	return false
}

// PathFromLineString converts a geom.LineString back into positions
func PathFromLineString(ls geom.LineString) []core.Vec2 {
	seq := ls.Coordinates()
	if seq.Length() == 0 {
		return nil
	}
	path := make([]core.Vec2, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		pt := seq.GetXY(i)
		path[i] = core.Vec2{X: pt.X, Y: pt.Y}
	}
	return path
}

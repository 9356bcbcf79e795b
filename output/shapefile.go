package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"

	"github.com/threedi/leakdetector/detector"
)

// LayerName is the base name of the obstacle segment layer.
const LayerName = "final_obstacle_segments"

// segmentRecord is one row of the obstacle segment layer. DBF field names
// are limited to ten characters.
type segmentRecord struct {
	geom.MultiLineString
	ID         int
	CrestLevel float64
	Length     float64
	FlowLines  string
}

// WriteShapefile writes segs as a polyline shapefile at path (the .shp
// file; the .shx and .dbf files are written next to it).
func WriteShapefile(path string, segs []detector.Segment) error {
	enc, err := shp.NewEncoder(path, segmentRecord{})
	if err != nil {
		return fmt.Errorf("failed to create shapefile %s: %w", path, err)
	}
	defer enc.Close()
	for _, s := range segs {
		rec := segmentRecord{
			MultiLineString: s.Geometry,
			ID:              s.ID,
			CrestLevel:      s.Crest,
			Length:          s.Length,
			FlowLines:       joinInts(s.FlowLines),
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode segment %d: %w", s.ID, err)
		}
	}
	return nil
}

// WKT renders ml as well-known text.
func WKT(ml geom.MultiLineString) string {
	if len(ml) == 0 {
		return "MULTILINESTRING EMPTY"
	}
	var b strings.Builder
	b.WriteString("MULTILINESTRING (")
	for i, l := range ml {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, p := range l {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
		}
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

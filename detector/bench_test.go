package detector_test

import (
	"context"
	"testing"

	"github.com/threedi/leakdetector/dem"
	"github.com/threedi/leakdetector/detector"
	"github.com/threedi/leakdetector/topology"
)

// BenchmarkIdentifyObstacles_Diagonal runs a full detection over a
// 256×256 raster with a diagonal dike and 16-pixel cells.
func BenchmarkIdentifyObstacles_Diagonal(b *testing.B) {
	const size, cell = 256, 16
	data := make([]float64, size*size)
	for i := 0; i < size; i++ {
		data[i*size+i] = 2
	}
	raster, err := dem.NewGrid(size, size, data)
	if err != nil {
		b.Fatal(err)
	}
	grid, err := topology.NewGrid(topology.UniformCells(size, size, cell))
	if err != nil {
		b.Fatal(err)
	}
	d, err := detector.New(grid, raster, nil)
	if err != nil {
		b.Fatal(err)
	}
	ids := grid.CellIDs()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := d.IdentifyObstacles(context.Background(), ids); err != nil {
			b.Fatal(err)
		}
	}
}

package peaks_test

import (
	"fmt"

	"github.com/threedi/leakdetector/peaks"
)

// ExampleFindMaxima detects a three-pixel wall in an edge profile.
func ExampleFindMaxima() {
	profile := []float64{0, 0, 0, 5, 5, 5, 0, 0, 0}

	for _, p := range peaks.FindMaxima(profile, peaks.Options{MinProminence: 4}) {
		fmt.Printf("peak [%d,%d] height=%.1f prominence=%.1f\n", p.Start, p.End, p.Height, p.Prominence())
	}
	fmt.Println(len(peaks.FindMaxima(profile, peaks.Options{MinProminence: 6})))
	// Output:
	// peak [3,5] height=5.0 prominence=5.0
	// 0
}

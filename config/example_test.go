package config_test

import (
	"fmt"

	"github.com/threedi/leakdetector/config"
)

func ExampleTuningConfig() {
	cfg := config.EmptyTuningConfig()
	cfg.SetSearchPrecision(2.5)
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(cfg.GetMinPeakProminence(), cfg.GetSearchPrecision(), cfg.GetMinObstacleHeight(), cfg.GetFlatnessTolerance())
	// Output: 0.1 2.5 0.05 0
}

// Package config loads the tuning parameters of a detection run from JSON.
//
// Every field is optional; the Get* accessors fall back to built-in
// defaults for fields the file omits, so partial configs are safe.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Built-in defaults used when a field is omitted.
const (
	DefaultMinPeakProminence = 0.1
	DefaultSearchPrecision   = 1.0
	DefaultMinObstacleHeight = 0.05
	DefaultFlatnessTolerance = 0.0
)

// TuningConfig holds the parameters of one detection run.
type TuningConfig struct {
	// Peak finding
	MinPeakProminence *float64 `json:"min_peak_prominence,omitempty"`
	FlatnessTolerance *float64 `json:"flatness_tolerance,omitempty"`

	// Linking
	SearchPrecision   *float64 `json:"search_precision,omitempty"` // world units
	MinObstacleHeight *float64 `json:"min_obstacle_height,omitempty"`

	// Execution
	Workers *int `json:"workers,omitempty"` // 0 or omitted means runtime.NumCPU()

	// Selection; both empty means every cell of the grid.
	CellIDs     []int `json:"cell_ids,omitempty"`
	FlowLineIDs []int `json:"flowline_ids,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to its
// built-in default.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		MinPeakProminence: ptrFloat64(DefaultMinPeakProminence),
		FlatnessTolerance: ptrFloat64(DefaultFlatnessTolerance),
		SearchPrecision:   ptrFloat64(DefaultSearchPrecision),
		MinObstacleHeight: ptrFloat64(DefaultMinObstacleHeight),
		Workers:           ptrInt(runtime.NumCPU()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
// All failures wrap ErrInvalidConfig.
func (c *TuningConfig) Validate() error {
	nonNegative := []struct {
		name string
		v    *float64
	}{
		{"min_peak_prominence", c.MinPeakProminence},
		{"flatness_tolerance", c.FlatnessTolerance},
		{"search_precision", c.SearchPrecision},
		{"min_obstacle_height", c.MinObstacleHeight},
	}
	for _, f := range nonNegative {
		if f.v != nil && !(*f.v >= 0) {
			return fmt.Errorf("%w: %s must be non-negative, got %f", ErrInvalidConfig, f.name, *f.v)
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, *c.Workers)
	}
	for _, id := range c.CellIDs {
		if id <= 0 {
			return fmt.Errorf("%w: cell_ids must be positive, got %d", ErrInvalidConfig, id)
		}
	}
	for _, id := range c.FlowLineIDs {
		if id <= 0 {
			return fmt.Errorf("%w: flowline_ids must be positive, got %d", ErrInvalidConfig, id)
		}
	}
	return nil
}

// GetMinPeakProminence returns the min_peak_prominence value or the default.
func (c *TuningConfig) GetMinPeakProminence() float64 {
	if c.MinPeakProminence == nil {
		return DefaultMinPeakProminence
	}
	return *c.MinPeakProminence
}

// GetFlatnessTolerance returns the flatness_tolerance value or the default.
func (c *TuningConfig) GetFlatnessTolerance() float64 {
	if c.FlatnessTolerance == nil {
		return DefaultFlatnessTolerance
	}
	return *c.FlatnessTolerance
}

// GetSearchPrecision returns the search_precision value or the default.
func (c *TuningConfig) GetSearchPrecision() float64 {
	if c.SearchPrecision == nil {
		return DefaultSearchPrecision
	}
	return *c.SearchPrecision
}

// GetMinObstacleHeight returns the min_obstacle_height value or the default.
func (c *TuningConfig) GetMinObstacleHeight() float64 {
	if c.MinObstacleHeight == nil {
		return DefaultMinObstacleHeight
	}
	return *c.MinObstacleHeight
}

// GetWorkers returns the worker count, defaulting to runtime.NumCPU().
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.NumCPU()
	}
	return *c.Workers
}

// SetMinPeakProminence sets min_peak_prominence.
func (c *TuningConfig) SetMinPeakProminence(v float64) { c.MinPeakProminence = ptrFloat64(v) }

// SetSearchPrecision sets search_precision.
func (c *TuningConfig) SetSearchPrecision(v float64) { c.SearchPrecision = ptrFloat64(v) }

// SetMinObstacleHeight sets min_obstacle_height.
func (c *TuningConfig) SetMinObstacleHeight(v float64) { c.MinObstacleHeight = ptrFloat64(v) }

// SetWorkers sets workers.
func (c *TuningConfig) SetWorkers(n int) { c.Workers = ptrInt(n) }

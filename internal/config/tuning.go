package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the tunable constants of the analytics engine. Every
// field is optional; the Get* accessors fall back to the documented defaults
// for fields that are not set.
type TuningConfig struct {
	// Standings slicing
	StandingsBuffer       *int `json:"standings_buffer,omitempty"`
	NumNonClassDrivers    *int `json:"num_non_class_drivers,omitempty"`
	MinPlayerClassDrivers *int `json:"min_player_class_drivers,omitempty"`
	NumTopDrivers         *int `json:"num_top_drivers,omitempty"`

	// Relative window
	RelativeBuffer *int `json:"relative_buffer,omitempty"`

	// Speed smoothing. Intervals are simulated seconds.
	SpeedWindow             *int     `json:"speed_window,omitempty"`
	SpeedUpdateIntervalSecs *float64 `json:"speed_update_interval_secs,omitempty"`

	// Pace smoothing
	PaceWindow             *int     `json:"pace_window,omitempty"`
	PaceUpdateIntervalSecs *float64 `json:"pace_update_interval_secs,omitempty"`
	PaceOutlierThreshold   *float64 `json:"pace_outlier_threshold,omitempty"` // in standard deviations
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to its
// default value.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		StandingsBuffer:         ptrInt(3),
		NumNonClassDrivers:      ptrInt(3),
		MinPlayerClassDrivers:   ptrInt(10),
		NumTopDrivers:           ptrInt(3),
		RelativeBuffer:          ptrInt(3),
		SpeedWindow:             ptrInt(5),
		SpeedUpdateIntervalSecs: ptrFloat64(0.1),
		PaceWindow:              ptrInt(5),
		PaceUpdateIntervalSecs:  ptrFloat64(1.0),
		PaceOutlierThreshold:    ptrFloat64(1.0),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
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
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	nonNegative := []struct {
		name string
		v    *int
	}{
		{"standings_buffer", c.StandingsBuffer},
		{"num_non_class_drivers", c.NumNonClassDrivers},
		{"min_player_class_drivers", c.MinPlayerClassDrivers},
		{"num_top_drivers", c.NumTopDrivers},
		{"relative_buffer", c.RelativeBuffer},
	}
	for _, f := range nonNegative {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", f.name, *f.v)
		}
	}

	if c.SpeedWindow != nil && *c.SpeedWindow < 1 {
		return fmt.Errorf("speed_window must be at least 1, got %d", *c.SpeedWindow)
	}
	if c.PaceWindow != nil && *c.PaceWindow < 1 {
		return fmt.Errorf("pace_window must be at least 1, got %d", *c.PaceWindow)
	}

	if c.SpeedUpdateIntervalSecs != nil && *c.SpeedUpdateIntervalSecs < 0 {
		return fmt.Errorf("speed_update_interval_secs must be non-negative, got %f", *c.SpeedUpdateIntervalSecs)
	}
	if c.PaceUpdateIntervalSecs != nil && *c.PaceUpdateIntervalSecs < 0 {
		return fmt.Errorf("pace_update_interval_secs must be non-negative, got %f", *c.PaceUpdateIntervalSecs)
	}
	if c.PaceOutlierThreshold != nil && *c.PaceOutlierThreshold <= 0 {
		return fmt.Errorf("pace_outlier_threshold must be positive, got %f", *c.PaceOutlierThreshold)
	}

	return nil
}

// GetStandingsBuffer returns the standings_buffer value or the default.
func (c *TuningConfig) GetStandingsBuffer() int {
	if c.StandingsBuffer == nil {
		return 3
	}
	return *c.StandingsBuffer
}

// GetNumNonClassDrivers returns the num_non_class_drivers value or the default.
func (c *TuningConfig) GetNumNonClassDrivers() int {
	if c.NumNonClassDrivers == nil {
		return 3
	}
	return *c.NumNonClassDrivers
}

// GetMinPlayerClassDrivers returns the min_player_class_drivers value or the default.
func (c *TuningConfig) GetMinPlayerClassDrivers() int {
	if c.MinPlayerClassDrivers == nil {
		return 10
	}
	return *c.MinPlayerClassDrivers
}

// GetNumTopDrivers returns the num_top_drivers value or the default.
func (c *TuningConfig) GetNumTopDrivers() int {
	if c.NumTopDrivers == nil {
		return 3
	}
	return *c.NumTopDrivers
}

// GetRelativeBuffer returns the relative_buffer value or the default.
func (c *TuningConfig) GetRelativeBuffer() int {
	if c.RelativeBuffer == nil {
		return 3
	}
	return *c.RelativeBuffer
}

// GetSpeedWindow returns the speed_window value or the default.
func (c *TuningConfig) GetSpeedWindow() int {
	if c.SpeedWindow == nil {
		return 5
	}
	return *c.SpeedWindow
}

// GetSpeedUpdateIntervalSecs returns the speed_update_interval_secs value or the default.
func (c *TuningConfig) GetSpeedUpdateIntervalSecs() float64 {
	if c.SpeedUpdateIntervalSecs == nil {
		return 0.1
	}
	return *c.SpeedUpdateIntervalSecs
}

// GetPaceWindow returns the pace_window value or the default.
func (c *TuningConfig) GetPaceWindow() int {
	if c.PaceWindow == nil {
		return 5
	}
	return *c.PaceWindow
}

// GetPaceUpdateIntervalSecs returns the pace_update_interval_secs value or the default.
func (c *TuningConfig) GetPaceUpdateIntervalSecs() float64 {
	if c.PaceUpdateIntervalSecs == nil {
		return 1.0
	}
	return *c.PaceUpdateIntervalSecs
}

// GetPaceOutlierThreshold returns the pace_outlier_threshold value or the default.
func (c *TuningConfig) GetPaceOutlierThreshold() float64 {
	if c.PaceOutlierThreshold == nil {
		return 1.0
	}
	return *c.PaceOutlierThreshold
}

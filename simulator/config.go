package simulator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sibexico/HexPager/swaplog"
)

// Swap log formats
const (
	SwapLogText   = "text"
	SwapLogBinary = "binary"
	SwapLogNone   = "none"
)

// Invalid page policies
const (
	OnInvalidAbort = "abort"
	OnInvalidSkip  = "skip"
)

// DotEnvFile is read by LoadConfigFromEnv when present
const DotEnvFile = ".env"

// Config holds simulator configuration
type Config struct {
	// Memory geometry
	NumFrames int `json:"num_frames"` // Physical frames
	NumPages  int `json:"num_pages"`  // Pages in the virtual address space

	// Swap log
	SwapLogPath        string `json:"swap_log_path"`        // Where swap-outs are recorded
	SwapLogFormat      string `json:"swap_log_format"`      // text, binary, or none
	SwapLogCompression string `json:"swap_log_compression"` // Block compression for binary logs (none, snappy, lz4)

	// Run behaviour
	OnInvalidPage   string `json:"on_invalid_page"`  // abort or skip
	CheckInvariants bool   `json:"check_invariants"` // Verify engine state after every step

	// Output
	ColorOutput   bool   `json:"color_output"`   // Colour progress lines
	EnableMetrics bool   `json:"enable_metrics"` // Collect and log run metrics
	LogLevel      string `json:"log_level"`      // Log level (debug, info, warn, error)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		NumFrames:          3,
		NumPages:           8,
		SwapLogPath:        "swap_simulated.txt",
		SwapLogFormat:      SwapLogText,
		SwapLogCompression: "none",
		OnInvalidPage:      OnInvalidAbort,
		CheckInvariants:    false,
		ColorOutput:        true,
		EnableMetrics:      true,
		LogLevel:           "info",
	}
}

// LoadConfigFromFile loads configuration from a JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	err = json.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigFromEnv loads configuration from environment variables.
// A .env file in the working directory is loaded first; variables already
// set in the environment win over it.
func LoadConfigFromEnv() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}

	config := DefaultConfig()
	config.ApplyEnv()
	return config, nil
}

// ApplyEnv overrides fields with any FIFOSIM_* environment variables set.
// Unparseable numbers are ignored.
func (c *Config) ApplyEnv() {
	if val := os.Getenv("FIFOSIM_NUM_FRAMES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.NumFrames = n
		}
	}

	if val := os.Getenv("FIFOSIM_NUM_PAGES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.NumPages = n
		}
	}

	if val := os.Getenv("FIFOSIM_SWAP_LOG_PATH"); val != "" {
		c.SwapLogPath = val
	}

	if val := os.Getenv("FIFOSIM_SWAP_LOG_FORMAT"); val != "" {
		c.SwapLogFormat = val
	}

	if val := os.Getenv("FIFOSIM_SWAP_LOG_COMPRESSION"); val != "" {
		c.SwapLogCompression = val
	}

	if val := os.Getenv("FIFOSIM_ON_INVALID_PAGE"); val != "" {
		c.OnInvalidPage = val
	}

	if val := os.Getenv("FIFOSIM_CHECK_INVARIANTS"); val != "" {
		c.CheckInvariants = val == "true" || val == "1"
	}

	if val := os.Getenv("FIFOSIM_COLOR_OUTPUT"); val != "" {
		c.ColorOutput = val == "true" || val == "1"
	}

	if val := os.Getenv("FIFOSIM_ENABLE_METRICS"); val != "" {
		c.EnableMetrics = val == "true" || val == "1"
	}

	if val := os.Getenv("FIFOSIM_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
}

// SaveToFile saves the configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.NumFrames <= 0 {
		return fmt.Errorf("number of frames must be greater than 0")
	}

	if c.NumPages <= 0 {
		return fmt.Errorf("number of pages must be greater than 0")
	}

	switch c.SwapLogFormat {
	case SwapLogText, SwapLogBinary:
		if c.SwapLogPath == "" {
			return fmt.Errorf("swap log path cannot be empty when swap log format is %s", c.SwapLogFormat)
		}
	case SwapLogNone:
	default:
		return fmt.Errorf("invalid swap log format: %s (must be text, binary, or none)", c.SwapLogFormat)
	}

	if _, err := swaplog.ParseCompression(c.SwapLogCompression); err != nil {
		return err
	}

	if c.OnInvalidPage != OnInvalidAbort && c.OnInvalidPage != OnInvalidSkip {
		return fmt.Errorf("invalid page policy: %s (must be abort or skip)", c.OnInvalidPage)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

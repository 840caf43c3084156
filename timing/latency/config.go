package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for each opcode and the capacity of
// every reservation-station pool.
type TimingConfig struct {
	// AddLatency is the execution latency of ADD.D. Default: 2 cycles.
	AddLatency uint64 `json:"add_latency"`

	// SubLatency is the execution latency of SUB.D. Default: 2 cycles.
	SubLatency uint64 `json:"sub_latency"`

	// MulLatency is the execution latency of MUL.D. Default: 10 cycles.
	MulLatency uint64 `json:"mul_latency"`

	// DivLatency is the execution latency of DIV.D. Default: 40 cycles.
	DivLatency uint64 `json:"div_latency"`

	// LoadLatency is the latency of L.D, including address calculation.
	// Default: 2 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency of S.D address calculation.
	// Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// AdderStations is the number of reservation stations for ADD.D and
	// SUB.D. Default: 3.
	AdderStations int `json:"adder_stations"`

	// MultiplierStations is the number of reservation stations for MUL.D
	// and DIV.D. Default: 2.
	MultiplierStations int `json:"multiplier_stations"`

	// LoadBuffers is the number of load buffers. Default: 2.
	LoadBuffers int `json:"load_buffers"`

	// StoreBuffers is the number of store buffers. Default: 2.
	StoreBuffers int `json:"store_buffers"`
}

// DefaultTimingConfig returns a TimingConfig with the textbook default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		AddLatency:         2,
		SubLatency:         2,
		MulLatency:         10,
		DivLatency:         40,
		LoadLatency:        2,
		StoreLatency:       1,
		AdderStations:      3,
		MultiplierStations: 2,
		LoadBuffers:        2,
		StoreBuffers:       2,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latencies and pool capacities are > 0.
func (c *TimingConfig) Validate() error {
	if c.AddLatency == 0 {
		return fmt.Errorf("add_latency must be > 0")
	}
	if c.SubLatency == 0 {
		return fmt.Errorf("sub_latency must be > 0")
	}
	if c.MulLatency == 0 {
		return fmt.Errorf("mul_latency must be > 0")
	}
	if c.DivLatency == 0 {
		return fmt.Errorf("div_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.AdderStations <= 0 {
		return fmt.Errorf("adder_stations must be > 0")
	}
	if c.MultiplierStations <= 0 {
		return fmt.Errorf("multiplier_stations must be > 0")
	}
	if c.LoadBuffers <= 0 {
		return fmt.Errorf("load_buffers must be > 0")
	}
	if c.StoreBuffers <= 0 {
		return fmt.Errorf("store_buffers must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}

// Package config loads fragmentation and reassembly settings from JSON files
// or generic maps, applying defaults and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/localrivet/fragwire/reassembly"
)

// ReassemblySettings mirrors reassembly.Config in file-friendly units.
type ReassemblySettings struct {
	TimeoutMs               int `mapstructure:"timeoutMs" json:"timeoutMs"`
	MaxConcurrentBatches    int `mapstructure:"maxConcurrentBatches" json:"maxConcurrentBatches"`
	MaxTotalReassemblyBytes int `mapstructure:"maxTotalReassemblyBytes" json:"maxTotalReassemblyBytes"`
}

// Timeout returns the per-batch deadline as a duration.
func (s ReassemblySettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// Settings holds the tunables for one fragwire endpoint.
type Settings struct {
	// FragmentSize caps each data fragment's payload slice in bytes.
	FragmentSize int `mapstructure:"fragmentSize" json:"fragmentSize"`

	// FragmentThreshold is the payload size above which messages are
	// fragmented; payloads of exactly this size are sent complete.
	FragmentThreshold int `mapstructure:"fragmentThreshold" json:"fragmentThreshold"`

	Reassembly ReassemblySettings `mapstructure:"reassembly" json:"reassembly"`
}

// Default returns the settings used when nothing is configured. Sizes stay
// under common data-channel frame caps (~16KB).
func Default() Settings {
	return Settings{
		FragmentSize:      15 * 1024,
		FragmentThreshold: 15 * 1024,
		Reassembly: ReassemblySettings{
			TimeoutMs:               int(reassembly.DefaultTimeout / time.Millisecond),
			MaxConcurrentBatches:    reassembly.DefaultMaxConcurrentBatches,
			MaxTotalReassemblyBytes: reassembly.DefaultMaxTotalBytes,
		},
	}
}

// FromMap decodes a generic map (e.g. a parsed JSON document) onto the
// default settings and validates the result.
func FromMap(m map[string]interface{}) (Settings, error) {
	s := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &s,
		ErrorUnused: true,
	})
	if err != nil {
		return Settings{}, fmt.Errorf("failed to build settings decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads a JSON settings file.
func Load(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return FromMap(m)
}

// Validate rejects settings that would misconfigure the framer or the
// reassembler.
func (s Settings) Validate() error {
	if s.FragmentSize <= 0 {
		return fmt.Errorf("fragmentSize must be positive, got %d", s.FragmentSize)
	}
	if s.FragmentThreshold <= 0 {
		return fmt.Errorf("fragmentThreshold must be positive, got %d", s.FragmentThreshold)
	}
	if s.Reassembly.TimeoutMs <= 0 {
		return fmt.Errorf("reassembly.timeoutMs must be positive, got %d", s.Reassembly.TimeoutMs)
	}
	if s.Reassembly.MaxConcurrentBatches <= 0 {
		return fmt.Errorf("reassembly.maxConcurrentBatches must be positive, got %d", s.Reassembly.MaxConcurrentBatches)
	}
	if s.Reassembly.MaxTotalReassemblyBytes <= 0 {
		return fmt.Errorf("reassembly.maxTotalReassemblyBytes must be positive, got %d", s.Reassembly.MaxTotalReassemblyBytes)
	}
	return nil
}

// ReassemblyConfig converts the settings into a reassembly.Config. Callbacks
// and timer capability are left for the caller to attach.
func (s Settings) ReassemblyConfig() reassembly.Config {
	return reassembly.Config{
		Timeout:              s.Reassembly.Timeout(),
		MaxConcurrentBatches: s.Reassembly.MaxConcurrentBatches,
		MaxTotalBytes:        s.Reassembly.MaxTotalReassemblyBytes,
	}
}

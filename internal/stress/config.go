package stress

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation error from Config.Validate.
var ErrInvalidConfig = errors.New("stress: invalid config")

// Config describes one producer/consumer run.
type Config struct {
	// Capacity bounds the queue. Zero runs against the unbounded queue.
	Capacity int `yaml:"capacity"`

	// Producers and Consumers are the number of goroutines on each side.
	Producers int `yaml:"producers"`
	Consumers int `yaml:"consumers"`

	// Items is how many values each producer pushes.
	Items int `yaml:"items"`

	// SampleEvery is the interval at which the queue length is sampled.
	// Zero samples as fast as possible.
	SampleEvery time.Duration `yaml:"sampleEvery"`
}

// DefaultConfig returns a small contended run on a bounded queue.
func DefaultConfig() Config {
	return Config{
		Capacity:    16,
		Producers:   4,
		Consumers:   4,
		Items:       10_000,
		SampleEvery: 100 * time.Microsecond,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Capacity < 0:
		return fmt.Errorf("%w: capacity %d is negative", ErrInvalidConfig, c.Capacity)
	case c.Producers < 1:
		return fmt.Errorf("%w: need at least one producer, got %d", ErrInvalidConfig, c.Producers)
	case c.Consumers < 1:
		return fmt.Errorf("%w: need at least one consumer, got %d", ErrInvalidConfig, c.Consumers)
	case c.Items < 0:
		return fmt.Errorf("%w: items %d is negative", ErrInvalidConfig, c.Items)
	case c.SampleEvery < 0:
		return fmt.Errorf("%w: sample interval %s is negative", ErrInvalidConfig, c.SampleEvery)
	}
	return nil
}

// Total is the number of values pushed (and popped) by the run.
func (c Config) Total() int { return c.Producers * c.Items }

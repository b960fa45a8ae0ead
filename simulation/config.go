//go:build !solution

package simulation

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"gitlab.com/slon/rwsem/rwcoord"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

// Config описывает один прогон симуляции
type Config struct {
	Readers    int           `yaml:"readers"`
	Writers    int           `yaml:"writers"`
	MaxReaders int           `yaml:"max_readers"`
	ReadDelay  time.Duration `yaml:"read_delay"`
	// WriterFirst запускает писателей раньше читателей
	WriterFirst bool `yaml:"writer_first"`
}

func DefaultConfig() Config {
	return Config{
		Readers:    10,
		Writers:    5,
		MaxReaders: rwcoord.DefaultMaxReaders,
	}
}

// LoadConfig reads YAML config from path on top of DefaultConfig.
// Empty path or empty file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) == 0 {
		return config, nil
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	switch {
	case c.MaxReaders < 1:
		return fmt.Errorf("%w: max_readers must be positive, got %d", ErrInvalidConfig, c.MaxReaders)
	case c.Readers < 0:
		return fmt.Errorf("%w: readers must not be negative, got %d", ErrInvalidConfig, c.Readers)
	case c.Writers < 0:
		return fmt.Errorf("%w: writers must not be negative, got %d", ErrInvalidConfig, c.Writers)
	case c.ReadDelay < 0:
		return fmt.Errorf("%w: read_delay must not be negative, got %s", ErrInvalidConfig, c.ReadDelay)
	}
	return nil
}

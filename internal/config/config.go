package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/saeidalz13/battleship-heatmap/models/game"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "CONFIG_PATH"
	EnvLogLevel   = "LOG_LEVEL"

	DefaultPath = "config.yaml"
)

type Config struct {
	GridSize             int    `yaml:"grid_size"`
	Ships                []int  `yaml:"ships"`
	TurnCap              int    `yaml:"turn_cap"`
	Seed                 int64  `yaml:"seed"` // 0 = time based
	MaxPlacementAttempts int    `yaml:"max_placement_attempts"`
	MaxGridSize          int    `yaml:"max_grid_size"`
	LogLevel             string `yaml:"log_level"`
}

func Default() Config {
	gc := game.DefaultConfig()
	return Config{
		GridSize:             gc.GridSize,
		Ships:                gc.Ships,
		TurnCap:              gc.TurnCap,
		MaxPlacementAttempts: gc.MaxPlacementAttempts,
		MaxGridSize:          gc.MaxGridSize,
		LogLevel:             "info",
	}
}

// Load reads the YAML file at path on top of the defaults. A missing
// file is not an error. LOG_LEVEL overrides the file.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug("config file not found; using defaults", "path", path)
	case err != nil:
		return Config{}, err
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Path is CONFIG_PATH or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

func (c Config) Validate() error {
	if err := c.Game().Validate(); err != nil {
		return err
	}
	if c.MaxGridSize < 0 {
		return fmt.Errorf("max_grid_size cannot be negative: %d", c.MaxGridSize)
	}
	if c.MaxPlacementAttempts < 0 {
		return fmt.Errorf("max_placement_attempts cannot be negative: %d", c.MaxPlacementAttempts)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c Config) Game() game.Config {
	return game.Config{
		GridSize:             c.GridSize,
		Ships:                append([]int(nil), c.Ships...),
		TurnCap:              c.TurnCap,
		MaxPlacementAttempts: c.MaxPlacementAttempts,
		MaxGridSize:          c.MaxGridSize,
	}
}

// Level is only meaningful on a validated config.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

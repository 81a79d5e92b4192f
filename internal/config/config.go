// Package config loads phaseplay settings.
//
// Player and journal settings come from an optional config file and
// PHASEPLAY_ environment overrides (viper). Logging settings come from the
// environment only.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/phaseplay/internal/player"
)

// EnvPrefix prefixes every environment override, e.g.
// PHASEPLAY_PLAYER_STOP_POLICY=clear.
const EnvPrefix = "PHASEPLAY"

// Defaults.
const (
	DefaultStopPolicy  = "keep"
	DefaultTickRate    = 60
	DefaultJournalPath = "phaseplay.db"
)

// Config holds application configuration.
type Config struct {
	Player  PlayerConfig  `mapstructure:"player"`
	Journal JournalConfig `mapstructure:"journal"`
}

// PlayerConfig holds playback settings.
type PlayerConfig struct {
	// StartPhase overrides the timeline's own start phase when set.
	StartPhase string `mapstructure:"start_phase"`

	// DebugPhase is the phase editor tooling plays by default.
	DebugPhase string `mapstructure:"debug_phase"`

	// StopPolicy is "keep" or "clear".
	StopPolicy string `mapstructure:"stop_policy"`

	// TickRate is the frame rate, in ticks per second, of run and preview.
	TickRate int `mapstructure:"tick_rate"`
}

// JournalConfig holds sqlite settings.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from file and env.
//
// The file is path when set, else $PHASEPLAY_CONFIG, else phaseplay.toml
// or phaseplay.yaml in the working directory. A named file must exist; a
// searched-for file is optional.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("player.start_phase", "")
	v.SetDefault("player.debug_phase", "")
	v.SetDefault("player.stop_policy", DefaultStopPolicy)
	v.SetDefault("player.tick_rate", DefaultTickRate)
	v.SetDefault("journal.path", DefaultJournalPath)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("phaseplay")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks setting values.
func (c Config) Validate() error {
	if _, ok := player.ParseStopPolicy(c.Player.StopPolicy); !ok {
		return fmt.Errorf("player.stop_policy must be keep or clear, got %q", c.Player.StopPolicy)
	}
	if c.Player.TickRate <= 0 {
		return fmt.Errorf("player.tick_rate must be positive, got %d", c.Player.TickRate)
	}
	return nil
}

// Policy returns the parsed stop policy. Call after Validate.
func (c PlayerConfig) Policy() player.StopPolicy {
	p, _ := player.ParseStopPolicy(c.StopPolicy)
	return p
}

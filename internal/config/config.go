// Package config loads the engine configuration: rule variants, bot tuning, logging and the
// paths of the card catalog and the match history store.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/gwentx/internal/bot"
	"github.com/peterkuimelis/gwentx/internal/game"
)

// Config is the top-level YAML document.
type Config struct {
	Rules   RulesConfig `yaml:"rules" json:"rules"`
	Bot     bot.Tuning  `yaml:"bot" json:"bot"`
	Log     LogConfig   `yaml:"log" json:"log"`
	Catalog string      `yaml:"catalog" json:"catalog,omitempty"` // card catalog path, empty for the built-in one
	Store   string      `yaml:"store" json:"store,omitempty"`     // SQLite match history, empty disables it
}

// RulesConfig mirrors game.Rules with YAML-friendly scope names.
type RulesConfig struct {
	Lives                  int    `yaml:"lives" json:"lives"`
	InitialHand            int    `yaml:"initial_hand" json:"initial_hand"`
	RedrawMax              int    `yaml:"redraw_max" json:"redraw_max"`
	WeatherScope           string `yaml:"weather_scope" json:"weather_scope"` // all_rows, card_lane
	HornScope              string `yaml:"horn_scope" json:"horn_scope"`       // all_rows, card_lane
	HornMultiplier         int    `yaml:"horn_multiplier" json:"horn_multiplier"`
	TightBond              bool   `yaml:"tight_bond" json:"tight_bond"`
	MoraleBoost            bool   `yaml:"morale_boost" json:"morale_boost"`
	HeroesIgnoreRowEffects bool   `yaml:"heroes_ignore_row_effects" json:"heroes_ignore_row_effects"`
	MedicMode              string `yaml:"medic_mode" json:"medic_mode"` // most_recent, choose
	MaxRounds              int    `yaml:"max_rounds" json:"max_rounds"`
	MinUnits               int    `yaml:"min_units" json:"min_units"`
	MaxSpecials            int    `yaml:"max_specials" json:"max_specials"`
}

// LogConfig configures operational logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, console
}

// DefaultConfig returns the standard rules, the default bot and info-level JSON logs.
func DefaultConfig() *Config {
	r := game.DefaultRules()
	return &Config{
		Rules: RulesConfig{
			Lives:                  r.Lives,
			InitialHand:            r.InitialHand,
			RedrawMax:              r.RedrawMax,
			WeatherScope:           r.WeatherScope.String(),
			HornScope:              r.HornScope.String(),
			HornMultiplier:         r.HornMultiplier,
			TightBond:              r.TightBond,
			MoraleBoost:            r.MoraleBoost,
			HeroesIgnoreRowEffects: r.HeroesIgnoreRowEffects,
			MedicMode:              r.MedicMode.String(),
			MaxRounds:              r.MaxRounds,
			MinUnits:               r.MinUnits,
			MaxSpecials:            r.MaxSpecials,
		},
		Bot: bot.DefaultTuning,
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML config over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GWENTX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("GWENTX_CATALOG"); v != "" {
		c.Catalog = v
	}
	if v := os.Getenv("GWENTX_STORE"); v != "" {
		c.Store = v
	}
}

// Validate checks every enumerated value and the numeric ranges.
func (c *Config) Validate() error {
	if _, err := c.Rules.Build(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log format %q (valid: json, console)", c.Log.Format)
	}
	return nil
}

// Build converts the YAML rules into game.Rules.
func (r RulesConfig) Build() (game.Rules, error) {
	weather, err := game.ParseScope(r.WeatherScope)
	if err != nil {
		return game.Rules{}, fmt.Errorf("rules.weather_scope: %w", err)
	}
	horn, err := game.ParseScope(r.HornScope)
	if err != nil {
		return game.Rules{}, fmt.Errorf("rules.horn_scope: %w", err)
	}
	medic, err := game.ParseMedicMode(r.MedicMode)
	if err != nil {
		return game.Rules{}, fmt.Errorf("rules.medic_mode: %w", err)
	}
	if r.Lives < 0 || r.InitialHand < 0 || r.RedrawMax < 0 || r.HornMultiplier < 0 || r.MaxRounds < 0 {
		return game.Rules{}, fmt.Errorf("rules: counts must not be negative")
	}
	return game.Rules{
		Lives:                  r.Lives,
		InitialHand:            r.InitialHand,
		RedrawMax:              r.RedrawMax,
		WeatherScope:           weather,
		HornScope:              horn,
		HornMultiplier:         r.HornMultiplier,
		TightBond:              r.TightBond,
		MoraleBoost:            r.MoraleBoost,
		HeroesIgnoreRowEffects: r.HeroesIgnoreRowEffects,
		MedicMode:              medic,
		MaxRounds:              r.MaxRounds,
		MinUnits:               r.MinUnits,
		MaxSpecials:            r.MaxSpecials,
	}, nil
}

// GameRules returns the validated rules. Load has already checked them.
func (c *Config) GameRules() game.Rules {
	r, err := c.Rules.Build()
	if err != nil {
		return game.DefaultRules()
	}
	return r
}

// NewLogger builds the operational zap logger. verbose forces debug level.
func (l LogConfig) NewLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if l.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

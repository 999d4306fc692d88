package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/peterkuimelis/gwentx/internal/bot"
	"github.com/peterkuimelis/gwentx/internal/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gwentx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfigMatchesDefaultRules(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, game.DefaultRules(), cfg.GameRules())
	assert.Equal(t, bot.DefaultTuning, cfg.Bot)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GWENTX_LOG_LEVEL", "")
	t.Setenv("GWENTX_CATALOG", "")
	t.Setenv("GWENTX_STORE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Setenv("GWENTX_LOG_LEVEL", "")
	t.Setenv("GWENTX_CATALOG", "")
	t.Setenv("GWENTX_STORE", "")

	path := writeConfig(t, `
rules:
  weather_scope: card_lane
  horn_scope: card_lane
  medic_mode: choose
  heroes_ignore_row_effects: true
  lives: 3
bot:
  pass_when_ahead: 0.9
log:
  level: debug
  format: console
store: history.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	rules := cfg.GameRules()
	assert.Equal(t, game.ScopeCardLane, rules.WeatherScope)
	assert.Equal(t, game.ScopeCardLane, rules.HornScope)
	assert.Equal(t, game.MedicChoose, rules.MedicMode)
	assert.True(t, rules.HeroesIgnoreRowEffects)
	assert.Equal(t, 3, rules.Lives)
	assert.Equal(t, game.DefaultInitialHand, rules.InitialHand, "unset keys keep their defaults")
	assert.True(t, rules.TightBond)

	assert.Equal(t, 0.9, cfg.Bot.PassWhenAhead)
	assert.Equal(t, bot.DefaultTuning.PlayWhenBehind, cfg.Bot.PlayWhenBehind)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "history.db", cfg.Store)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"weather scope":  "rules:\n  weather_scope: everywhere\n",
		"medic mode":     "rules:\n  medic_mode: random\n",
		"negative lives": "rules:\n  lives: -1\n",
		"log level":      "log:\n  level: loud\n",
		"log format":     "log:\n  format: xml\n",
		"malformed":      "rules: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GWENTX_LOG_LEVEL", "warn")
	t.Setenv("GWENTX_CATALOG", "/tmp/cards.yaml")
	t.Setenv("GWENTX_STORE", "/tmp/history.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/cards.yaml", cfg.Catalog)
	assert.Equal(t, "/tmp/history.db", cfg.Store)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("GWENTX_LOG_LEVEL", "")
	t.Setenv("GWENTX_CATALOG", "")
	t.Setenv("GWENTX_STORE", "")

	cfg := DefaultConfig()
	cfg.Rules.HornScope = "card_lane"
	cfg.Bot.RedrawBelow = 5
	path := filepath.Join(t.TempDir(), "nested", "gwentx.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestNewLogger(t *testing.T) {
	l, err := LogConfig{Level: "warn", Format: "console"}.NewLogger(false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel), "debug is off at warn")

	l, err = LogConfig{Level: "warn"}.NewLogger(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel), "verbose forces debug")

	_, err = LogConfig{Level: "loud"}.NewLogger(false)
	assert.Error(t, err)
}

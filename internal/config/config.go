// Package config loads the JSON configuration from the XDG config directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/checkersplay/internal/board"
	"github.com/hailam/checkersplay/internal/engine"
)

var (
	cfgFile = "checkersplay/config.json"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s", e.err)
}

type EngineConfig struct {
	MemoSizeMB int            `json:"memo_size_mb"`
	RetainMemo bool           `json:"retain_memo"`
	Threads    int            `json:"threads"`
	Seed       uint64         `json:"seed"`
	Weights    engine.Weights `json:"weights"`
}

// BotProfile is a named opponent strength.
type BotProfile struct {
	Depth      int     `json:"depth"`
	Blunder    float64 `json:"blunder"`
	MoveTimeMS int     `json:"move_time_ms"`
}

type BoardConfig struct {
	Size int `json:"size"`
}

type TrainingConfig struct {
	Enabled  bool   `json:"enabled"`
	Capacity int    `json:"capacity"`
	StoreDir string `json:"store_dir"` // empty = XDG data dir
}

type LogConfig struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

type Config struct {
	Engine   EngineConfig          `json:"engine"`
	Bots     map[string]BotProfile `json:"bots"`
	Board    BoardConfig           `json:"board"`
	Training TrainingConfig        `json:"training"`
	Log      LogConfig             `json:"log"`
}

// DefaultConfig returns the built-in configuration. Bot profiles mirror the
// engine difficulties.
func DefaultConfig() Config {
	opts := engine.DefaultOptions()
	bots := make(map[string]BotProfile)
	for d, limits := range engine.DifficultySettings {
		bots[d.String()] = BotProfile{Depth: limits.Depth, Blunder: limits.Blunder}
	}
	return Config{
		Engine: EngineConfig{
			MemoSizeMB: opts.MemoSizeMB,
			Threads:    opts.Threads,
			Weights:    opts.Weights,
		},
		Bots:     bots,
		Board:    BoardConfig{Size: 8},
		Training: TrainingConfig{Capacity: 100000},
		Log:      LogConfig{Level: "info", Pretty: true},
	}
}

// InitConfig loads the user's config file if there is one, over the defaults.
func InitConfig() (*Config, error) {
	config := DefaultConfig()
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Load reads an explicit config file over the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if err := readCfgFile(path, &config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if _, err := board.GeometryFor(c.Board.Size); err != nil {
		return &InvalidConfig{fmt.Sprintf("board size %d is not supported", c.Board.Size)}
	}
	if c.Engine.MemoSizeMB < 1 {
		return &InvalidConfig{"engine.memo_size_mb must be at least 1"}
	}
	if c.Engine.Threads < 1 {
		return &InvalidConfig{"engine.threads must be at least 1"}
	}
	if c.Engine.Weights.Piece <= 0 || c.Engine.Weights.King <= 0 {
		return &InvalidConfig{"piece and king weights must be positive"}
	}
	if len(c.Bots) == 0 {
		return &InvalidConfig{"at least one bot profile is required"}
	}
	for _, name := range c.BotNames() {
		bot := c.Bots[name]
		if bot.Depth <= 0 || bot.Depth >= engine.MaxPly {
			return &InvalidConfig{fmt.Sprintf("bot %q: depth %d out of range", name, bot.Depth)}
		}
		if math.IsNaN(bot.Blunder) || bot.Blunder < 0 || bot.Blunder > 1 {
			return &InvalidConfig{fmt.Sprintf("bot %q: blunder %v outside [0, 1]", name, bot.Blunder)}
		}
		if bot.MoveTimeMS < 0 {
			return &InvalidConfig{fmt.Sprintf("bot %q: negative move time", name)}
		}
	}
	if c.Training.Capacity < 0 {
		return &InvalidConfig{"training.capacity must not be negative"}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return &InvalidConfig{fmt.Sprintf("unknown log level %q", c.Log.Level)}
	}
	return nil
}

// EngineOptions converts the engine section.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		MemoSizeMB: c.Engine.MemoSizeMB,
		RetainMemo: c.Engine.RetainMemo,
		Threads:    c.Engine.Threads,
		Seed:       c.Engine.Seed,
		Weights:    c.Engine.Weights,
	}
}

// BotNames returns the configured profile names in sorted order.
func (c *Config) BotNames() []string {
	names := make([]string, 0, len(c.Bots))
	for name := range c.Bots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bot returns the search limits of a named profile.
func (c *Config) Bot(name string) (engine.SearchLimits, error) {
	bot, ok := c.Bots[name]
	if !ok {
		return engine.SearchLimits{}, fmt.Errorf("unknown bot %q", name)
	}
	return engine.SearchLimits{
		Depth:    bot.Depth,
		Blunder:  bot.Blunder,
		MoveTime: time.Duration(bot.MoveTimeMS) * time.Millisecond,
	}, nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Save writes the config to the user's XDG config directory.
func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

// SaveTo writes the config to an explicit path.
func (c *Config) SaveTo(path string) error {
	return saveCfgFile(path, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s: %w", filePath, err)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}

// SetupLogging configures the global zerolog logger. Pretty output goes
// through a console writer.
func (c *Config) SetupLogging(w io.Writer) {
	zerolog.SetGlobalLevel(c.LogLevel())
	if c.Log.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

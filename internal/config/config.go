package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/levels"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/states"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/qtable"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. HEXUS_TRAINING_EPISODES
const EnvPrefix = "HEXUS"

// Config holds all configuration for the application
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Training TrainingConfig `mapstructure:"training"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GameConfig holds game setup
type GameConfig struct {
	Level              string        `mapstructure:"level"`
	LevelsFile         string        `mapstructure:"levels_file"` // empty uses the built-in levels
	TrainedTeam        string        `mapstructure:"trained_team"`
	Teams              []string      `mapstructure:"teams"`
	Rotation           string        `mapstructure:"rotation"`
	RoundStartingUnits int           `mapstructure:"round_starting_units"`
	Units              UnitsConfig   `mapstructure:"units"`
	Rewards            RewardsConfig `mapstructure:"rewards"`
}

// UnitsConfig holds the units placed on each tile when a board is built
type UnitsConfig struct {
	Team    int `mapstructure:"team"`
	Neutral int `mapstructure:"neutral"`
}

// RewardsConfig holds the learning signal values
type RewardsConfig struct {
	Win     float64 `mapstructure:"win"`
	Lose    float64 `mapstructure:"lose"`
	Ongoing float64 `mapstructure:"ongoing"`
}

// AgentConfig holds learning hyperparameters
type AgentConfig struct {
	LearningRate float64 `mapstructure:"learning_rate"`
	Discount     float64 `mapstructure:"discount"`
	Epsilon      float64 `mapstructure:"epsilon"`
}

// TrainingConfig holds episode loop settings
type TrainingConfig struct {
	Episodes     int   `mapstructure:"episodes"`
	Workers      int   `mapstructure:"workers"`
	MaxSteps     int   `mapstructure:"max_steps"`
	Seed         int64 `mapstructure:"seed"`
	EvalEpisodes int   `mapstructure:"eval_episodes"`
}

// StorageConfig holds value table storage settings
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	BusyRetries uint   `mapstructure:"busy_retries"`
	BusyDelayMS int    `mapstructure:"busy_delay_ms"`
	// BusyTimeoutMS is how long SQLite waits on a lock per attempt
	BusyTimeoutMS int `mapstructure:"busy_timeout_ms"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
	Events bool   `mapstructure:"events"` // log game events at debug level
	// ProgressIntervalS is the seconds between progress reports, 0 disables them
	ProgressIntervalS int `mapstructure:"progress_interval_s"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("game.level", levels.DefaultLevel)
	v.SetDefault("game.levels_file", "")
	v.SetDefault("game.trained_team", "B")
	v.SetDefault("game.teams", []string{"B", "R", "O", "P"})
	v.SetDefault("game.rotation", states.PolicySingle)
	v.SetDefault("game.round_starting_units", 2)
	v.SetDefault("game.units.team", 2)
	v.SetDefault("game.units.neutral", 1)
	v.SetDefault("game.rewards.win", 1.0)
	v.SetDefault("game.rewards.lose", -1.0)
	v.SetDefault("game.rewards.ongoing", 0.0)

	v.SetDefault("agent.learning_rate", 0.25)
	v.SetDefault("agent.discount", 0.9)
	v.SetDefault("agent.epsilon", 0.5)

	v.SetDefault("training.episodes", 1000)
	v.SetDefault("training.workers", 4)
	v.SetDefault("training.max_steps", 2000)
	v.SetDefault("training.seed", 1)
	v.SetDefault("training.eval_episodes", 100)

	v.SetDefault("storage.driver", qtable.DriverSQLite)
	v.SetDefault("storage.path", "hexus.db")
	v.SetDefault("storage.busy_retries", 5)
	v.SetDefault("storage.busy_delay_ms", 50)
	v.SetDefault("storage.busy_timeout_ms", 5000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.events", false)
	v.SetDefault("logging.progress_interval_s", 30)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/hexus")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		// Only a missing file falls back to defaults
		return fmt.Errorf("error reading config file: %w", err)
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// LoadEnvironmentConfig merges config.<env>.yaml from the directory of the
// loaded config file, or the working directory when none was loaded
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	if used := v.ConfigFileUsed(); used != "" {
		envFile = filepath.Join(filepath.Dir(used), envFile)
	}

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	return Validate(cfg)
}

// Set overrides one key at runtime, e.g. from a command line flag. The
// current config is only replaced when the result is valid.
func Set(key string, value interface{}) error {
	v.Set(key, value)
	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode config after setting %s: %w", key, err)
	}
	if err := Validate(next); err != nil {
		return err
	}
	cfg = next
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. A change that
// fails to decode or validate is reported and the previous values kept.
func WatchConfig(onChange func(*Config), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		if err := Validate(next); err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		cfg = next
		if onChange != nil {
			onChange(next)
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.Level == "" {
		return fmt.Errorf("game.level must be set")
	}
	if _, err := c.Game.Trained(); err != nil {
		return err
	}
	if _, err := c.Game.TurnOrder(); err != nil {
		return err
	}
	if _, err := states.ParsePolicy(c.Game.Rotation); err != nil {
		return fmt.Errorf("game.rotation: %w", err)
	}
	if c.Game.RoundStartingUnits < 1 {
		return fmt.Errorf("game.round_starting_units must be at least 1")
	}
	if c.Game.Units.Team < 1 || c.Game.Units.Neutral < 1 {
		return fmt.Errorf("game.units must be at least 1")
	}

	if c.Agent.LearningRate <= 0 || c.Agent.LearningRate > 1 {
		return fmt.Errorf("agent.learning_rate must be in (0, 1]")
	}
	if c.Agent.Discount < 0 || c.Agent.Discount > 1 {
		return fmt.Errorf("agent.discount must be between 0 and 1")
	}
	if c.Agent.Epsilon < 0 || c.Agent.Epsilon > 1 {
		return fmt.Errorf("agent.epsilon must be between 0 and 1")
	}

	if c.Training.Episodes < 0 || c.Training.EvalEpisodes < 0 {
		return fmt.Errorf("training episode counts must be non-negative")
	}
	if c.Training.Workers < 1 {
		return fmt.Errorf("training.workers must be at least 1")
	}
	if c.Training.MaxSteps < 0 {
		return fmt.Errorf("training.max_steps must be non-negative")
	}

	switch c.Storage.Driver {
	case qtable.DriverMemory:
	case qtable.DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", qtable.DriverSQLite)
		}
	default:
		return fmt.Errorf("storage.driver: %w: %q", qtable.ErrUnknownDriver, c.Storage.Driver)
	}
	if c.Storage.BusyDelayMS < 0 {
		return fmt.Errorf("storage.busy_delay_ms must be non-negative")
	}
	if c.Storage.BusyTimeoutMS < 0 {
		return fmt.Errorf("storage.busy_timeout_ms must be non-negative")
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.ProgressIntervalS < 0 {
		return fmt.Errorf("logging.progress_interval_s must be non-negative")
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json")
	}
	return nil
}

// Trained returns the trained team
func (g GameConfig) Trained() (core.Team, error) {
	return parsePlayer("game.trained_team", g.TrainedTeam)
}

// TurnOrder returns the configured teams in order
func (g GameConfig) TurnOrder() ([]core.Team, error) {
	if len(g.Teams) == 0 {
		return nil, fmt.Errorf("game.teams must not be empty")
	}
	teams := make([]core.Team, 0, len(g.Teams))
	for _, s := range g.Teams {
		t, err := parsePlayer("game.teams", s)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func parsePlayer(key, s string) (core.Team, error) {
	if len(s) != 1 {
		return core.TeamNone, fmt.Errorf("%s: %q is not a team letter", key, s)
	}
	t, err := core.ParseTeam(strings.ToUpper(s)[0])
	if err != nil {
		return core.TeamNone, fmt.Errorf("%s: %w", key, err)
	}
	if !t.IsPlayer() {
		return core.TeamNone, fmt.Errorf("%s: %q is not a playing team", key, s)
	}
	return t, nil
}

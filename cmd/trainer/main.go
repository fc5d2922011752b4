package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/agent"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/levels"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/states"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/monitoring"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/qtable"
)

const (
	modeTrain = "train"
	modeEval  = "eval"
	modeBoth  = "train+eval"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	env := flag.String("env", "", "Environment overlay, merges config.<env>.yaml")
	mode := flag.String("mode", modeTrain, "train, eval or train+eval")
	level := flag.String("level", "", "Board level (empty to use config default)")
	episodes := flag.Int("episodes", -1, "Training episodes (-1 to use config default)")
	evalEpisodes := flag.Int("eval-episodes", -1, "Evaluation episodes (-1 to use config default)")
	workers := flag.Int("workers", -1, "Parallel episodes (-1 to use config default)")
	seed := flag.Int64("seed", -1, "Run seed (-1 to use config default)")
	db := flag.String("db", "", "Value table file (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (empty to use config default)")
	render := flag.Bool("render", false, "Print the board of one greedy game when done")
	listLevels := flag.Bool("list-levels", false, "List available levels and exit")
	watch := flag.Bool("watch", false, "Reload the config file on change")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(*env); err != nil {
		log.Fatal().Err(err).Msg("Failed to load environment config")
	}

	overrides := map[string]interface{}{}
	if *level != "" {
		overrides["game.level"] = *level
	}
	if *episodes >= 0 {
		overrides["training.episodes"] = *episodes
	}
	if *evalEpisodes >= 0 {
		overrides["training.eval_episodes"] = *evalEpisodes
	}
	if *workers >= 0 {
		overrides["training.workers"] = *workers
	}
	if *seed >= 0 {
		overrides["training.seed"] = *seed
	}
	if *db != "" {
		overrides["storage.path"] = *db
	}
	if *logLevel != "" {
		overrides["logging.level"] = *logLevel
	}
	for key, value := range overrides {
		if err := config.Set(key, value); err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("Invalid flag value")
		}
	}

	cfg := config.Get()
	setupLogging(cfg.Logging)

	registry, err := levels.Load(cfg.Game.LevelsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load levels")
	}
	if *listLevels {
		fmt.Println(strings.Join(registry.Names(), "\n"))
		return
	}

	if *watch && config.ConfigFilePath() != "" {
		config.WatchConfig(func(c *config.Config) {
			setupLogging(c.Logging)
			log.Info().Str("file", config.ConfigFilePath()).Msg("Config reloaded; logging settings applied, run settings apply on next start")
		}, func(err error) {
			log.Warn().Err(err).Msg("Ignoring config change")
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, registry, *mode, *render); err != nil {
		log.Fatal().Err(err).Msg("Run failed")
	}
}

func run(ctx context.Context, cfg *config.Config, registry *levels.Registry, mode string, render bool) error {
	lvl, err := registry.Get(cfg.Game.Level)
	if err != nil {
		return err
	}
	newEngine, err := engineFactory(cfg, lvl)
	if err != nil {
		return err
	}

	store, err := qtable.Open(ctx, qtable.Options{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyRetries: cfg.Storage.BusyRetries,
		BusyDelay:   time.Duration(cfg.Storage.BusyDelayMS) * time.Millisecond,
		BusyTimeout: time.Duration(cfg.Storage.BusyTimeoutMS) * time.Millisecond,
	}, log.Logger)
	if err != nil {
		return fmt.Errorf("open value table: %w", err)
	}
	table := qtable.New(store, log.Logger)
	defer func() {
		if err := table.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close value table")
		}
	}()

	player := agent.New(agent.Config{
		LearningRate: cfg.Agent.LearningRate,
		Discount:     cfg.Agent.Discount,
		Epsilon:      cfg.Agent.Epsilon,
	}, log.Logger)

	trainer, err := agent.NewTrainer(agent.TrainerConfig{
		Episodes:     cfg.Training.Episodes,
		Workers:      cfg.Training.Workers,
		MaxSteps:     cfg.Training.MaxSteps,
		Seed:         cfg.Training.Seed,
		EvalEpisodes: cfg.Training.EvalEpisodes,
	}, player, table, newEngine, log.Logger)
	if err != nil {
		return err
	}

	progress := monitoring.NewProgress(time.Duration(cfg.Logging.ProgressIntervalS)*time.Second, log.Logger)
	progress.Start(ctx)
	trainer.SetObserver(progress)

	log.Info().
		Str("board_level", lvl.Name).
		Str("mode", mode).
		Str("trained_team", cfg.Game.TrainedTeam).
		Str("rotation", cfg.Game.Rotation).
		Str("storage", cfg.Storage.Driver).
		Int("workers", cfg.Training.Workers).
		Msg("Starting")

	switch mode {
	case modeTrain:
		_, err = trainer.Train(ctx)
	case modeEval:
		err = evaluate(ctx, trainer)
	case modeBoth:
		if _, err = trainer.Train(ctx); err == nil {
			err = evaluate(ctx, trainer)
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return err
	}

	if n, err := table.Len(ctx); err == nil {
		log.Info().Int("rows", n).Msg("Value table size")
	}

	if render {
		return renderGreedyGame(ctx, newEngine, player, table, cfg.Training)
	}
	return nil
}

func evaluate(ctx context.Context, trainer *agent.Trainer) error {
	summary, err := trainer.Evaluate(ctx)
	if err != nil {
		return err
	}
	fmt.Println("win rates over", summary.Episodes, "greedy games:")
	for _, team := range core.Teams {
		fmt.Printf("  %s %.3f\n", team, summary.WinRate(team))
	}
	fmt.Printf("  draw %.3f\n", summary.DrawRate())
	return nil
}

// engineFactory builds engines that share one event bus
func engineFactory(cfg *config.Config, lvl levels.Level) (agent.EngineFactory, error) {
	trained, err := cfg.Game.Trained()
	if err != nil {
		return nil, err
	}
	teams, err := cfg.Game.TurnOrder()
	if err != nil {
		return nil, err
	}
	rotation, err := states.ParsePolicy(cfg.Game.Rotation)
	if err != nil {
		return nil, err
	}
	rewards := experience.RewardConfig{
		WinGame:  cfg.Game.Rewards.Win,
		LoseGame: cfg.Game.Rewards.Lose,
		Ongoing:  cfg.Game.Rewards.Ongoing,
	}

	bus := events.NewEventBus(log.Logger)
	if cfg.Logging.Events {
		sub := subscribers.NewLoggerSubscriber("event_logger", log.Logger, zerolog.DebugLevel)
		sub.SetEventFilter([]string{events.TypeGameWon, events.TypeGameReset, events.TypeTurnRotated})
		bus.Subscribe(sub)
	}

	return func(ctx context.Context, gameID string) (*game.Engine, error) {
		return game.NewEngine(ctx, game.GameConfig{
			GameID:             gameID,
			Level:              lvl,
			Teams:              teams,
			TrainedTeam:        trained,
			Rotation:           rotation,
			RoundStartingUnits: cfg.Game.RoundStartingUnits,
			TeamUnits:          cfg.Game.Units.Team,
			NeutralUnits:       cfg.Game.Units.Neutral,
			Rewards:            &rewards,
			EventBus:           bus,
			Logger:             log.Logger,
		})
	}, nil
}

func renderGreedyGame(ctx context.Context, newEngine agent.EngineFactory, player *agent.Agent, table *qtable.Table, training config.TrainingConfig) error {
	e, err := newEngine(ctx, "render")
	if err != nil {
		return err
	}
	fmt.Println(e.Render())

	rng := rand.New(rand.NewSource(agent.EpisodeSeed(training.Seed, "render", 0)))
	res, err := player.PlayEpisode(ctx, e, table, rng, agent.EpisodeOptions{MaxSteps: training.MaxSteps})
	if err != nil {
		return err
	}
	fmt.Println(e.Render())
	fmt.Printf("winner=%s steps=%d rounds=%d truncated=%t\n", res.Winner, res.Steps, res.Rounds, res.Truncated)
	return nil
}

func setupLogging(c config.LoggingConfig) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})
}

package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/levels"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/mapgen"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/rules"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/states"
	"github.com/rs/zerolog"
)

var ErrInvalidConfig = errors.New("invalid game config")

// Defaults applied by the initializer to zero-valued GameConfig fields
const (
	DefaultRoundStartingUnits = 2
	DefaultTeamUnits          = 2
	DefaultNeutralUnits       = 1
)

// GameConfig describes one game. Zero values take the defaults above.
type GameConfig struct {
	GameID string
	Level  levels.Level

	// Teams is the turn order. The trained team is moved to the front so
	// it always makes the first move.
	Teams       []core.Team
	TrainedTeam core.Team
	Rotation    states.RotationPolicy

	RoundStartingUnits int
	TeamUnits          int
	NeutralUnits       int
	Rewards            *experience.RewardConfig

	// EventBus is shared with the caller when set
	EventBus *events.EventBus
	Logger   zerolog.Logger
}

// NewEngine builds an engine for cfg
func NewEngine(ctx context.Context, cfg GameConfig) (*Engine, error) {
	return NewEngineInitializer(cfg).Initialize(ctx)
}

// EngineInitializer handles the initialization of a game engine
type EngineInitializer struct {
	config GameConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg GameConfig) *EngineInitializer {
	return &EngineInitializer{
		config: cfg,
		logger: cfg.Logger.With().Str("component", "GameEngine").Logger(),
	}
}

// Initialize creates and initializes a new game engine
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled")
		return nil, ctx.Err()
	default:
	}

	ei.setupDefaults()
	if err := ei.validate(); err != nil {
		return nil, err
	}

	board, err := ei.generateMap()
	if err != nil {
		return nil, fmt.Errorf("map generation failed: %w", err)
	}

	engine, err := ei.createEngine(board)
	if err != nil {
		return nil, fmt.Errorf("state machine initialization failed: %w", err)
	}

	engine.eventBus.Publish(events.NewGameResetEvent(engine.gameID, ei.config.Level.Name, board.Len()))
	ei.logger.Debug().
		Str("game_id", engine.gameID).
		Str("board_level", ei.config.Level.Name).
		Int("tiles", board.Len()).
		Str("trained_team", engine.trained.String()).
		Str("rotation", engine.stateMachine.Policy().Name()).
		Msg("Engine created successfully")

	return engine, nil
}

// setupDefaults sets up default values for missing configuration
func (ei *EngineInitializer) setupDefaults() {
	cfg := &ei.config
	if cfg.GameID == "" {
		cfg.GameID = uuid.NewString()
	}
	if len(cfg.Teams) == 0 {
		cfg.Teams = core.Teams
	}
	if cfg.TrainedTeam == core.TeamNone {
		cfg.TrainedTeam = core.TeamBlue
	}
	if cfg.Rotation == nil {
		cfg.Rotation = states.SinglePolicy{}
	}
	if cfg.RoundStartingUnits <= 0 {
		cfg.RoundStartingUnits = DefaultRoundStartingUnits
	}
	if cfg.TeamUnits <= 0 {
		cfg.TeamUnits = DefaultTeamUnits
	}
	if cfg.NeutralUnits <= 0 {
		cfg.NeutralUnits = DefaultNeutralUnits
	}
	if cfg.Rewards == nil {
		rewards := experience.DefaultRewardConfig()
		cfg.Rewards = &rewards
	}
	if cfg.EventBus == nil {
		cfg.EventBus = events.NewEventBus(ei.logger)
	}
}

func (ei *EngineInitializer) validate() error {
	if !ei.config.TrainedTeam.IsPlayer() {
		return fmt.Errorf("%w: trained team %q is not a playing team", ErrInvalidConfig, ei.config.TrainedTeam)
	}
	for _, t := range ei.config.Teams {
		if !t.IsPlayer() {
			return fmt.Errorf("%w: turn order contains %q", ErrInvalidConfig, t)
		}
	}
	return nil
}

func (ei *EngineInitializer) generateMap() (*core.Board, error) {
	mapCfg := ei.config.Level.MapConfig(ei.config.TeamUnits, ei.config.NeutralUnits)
	return mapgen.NewGenerator(mapCfg, ei.logger).GenerateMap()
}

// turnOrder puts the trained team first and keeps the rest in order
func (ei *EngineInitializer) turnOrder() []core.Team {
	order := []core.Team{ei.config.TrainedTeam}
	for _, t := range ei.config.Teams {
		if t != ei.config.TrainedTeam {
			order = append(order, t)
		}
	}
	return order
}

// createEngine creates the engine with all its components
func (ei *EngineInitializer) createEngine(board *core.Board) (*Engine, error) {
	cfg := ei.config
	logger := ei.logger.With().Str("game_id", cfg.GameID).Logger()

	gameContext := states.NewGameContext(cfg.GameID, ei.logger)
	stateMachine, err := states.NewStateMachine(gameContext, ei.turnOrder(), cfg.Rotation, cfg.EventBus)
	if err != nil {
		return nil, err
	}

	return &Engine{
		gameID:             cfg.GameID,
		level:              cfg.Level,
		initial:            board,
		board:              board.Clone(),
		trained:            cfg.TrainedTeam,
		roundStartingUnits: cfg.RoundStartingUnits,
		budget:             cfg.RoundStartingUnits,
		winner:             core.TeamNone,
		rewards:            *cfg.Rewards,
		legalMoves:         rules.NewLegalMoveCalculator(),
		winChecker:         rules.NewWinConditionChecker(logger),
		replenisher:        NewReplenishmentManager(cfg.EventBus, cfg.GameID, logger),
		stateMachine:       stateMachine,
		eventBus:           cfg.EventBus,
		logger:             logger,
	}, nil
}

package subscribers

import (
	"encoding/json"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/events"
	"github.com/rs/zerolog"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // nil logs every type
	devMode         bool            // also attach the event as JSON
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (empty means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent logs the event at the subscriber's level
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	logEvent := ls.logger.WithLevel(ls.logLevel).
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp())

	switch e := event.(type) {
	case *events.MoveAppliedEvent:
		logEvent.
			Str("team", e.Team.String()).
			Str("from", e.From.Key()).
			Str("to", e.To.Key()).
			Str("outcome", e.Outcome.String()).
			Int("moved_units", e.MovedUnits).
			Str("target_team", e.TargetTeam.String()).
			Int("target_units", e.TargetUnits)

	case *events.RoundAdvancedEvent:
		logEvent.
			Str("team", e.Team.String()).
			Int("round", e.Round).
			Int("budget", e.Budget).
			Int("tiles", e.Tiles)

	case *events.TurnRotatedEvent:
		logEvent.
			Str("from", e.From.String()).
			Str("to", e.To.String()).
			Int("round", e.Round).
			Str("reason", e.Reason)

	case *events.GameWonEvent:
		logEvent.
			Str("winner", e.Winner.String()).
			Int("rounds", e.Rounds).
			Int("moves", e.Moves)

	case *events.GameResetEvent:
		logEvent.
			Str("board_level", e.Level).
			Int("tiles", e.Tiles)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Game event")
}

package experience

import (
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
)

// RewardConfig holds configurable reward values
type RewardConfig struct {
	WinGame  float64 `mapstructure:"win_game"`
	LoseGame float64 `mapstructure:"lose_game"`
	Ongoing  float64 `mapstructure:"ongoing"`
}

// DefaultRewardConfig returns the default reward configuration
func DefaultRewardConfig() RewardConfig {
	return RewardConfig{
		WinGame:  1.0,
		LoseGame: -1.0,
		Ongoing:  0.0,
	}
}

// CalculateReward returns the learning signal for trained: WinGame if it
// won, LoseGame if another team won or trained holds neither tiles nor
// units, Ongoing otherwise.
func CalculateReward(board *core.Board, winner core.Team, hasWinner bool, trained core.Team, config RewardConfig) float64 {
	if hasWinner {
		if winner == trained {
			return config.WinGame
		}
		return config.LoseGame
	}
	if IsEliminated(board, trained) {
		return config.LoseGame
	}
	return config.Ongoing
}

// IsEliminated reports whether team holds no tiles and no units
func IsEliminated(board *core.Board, team core.Team) bool {
	return len(board.TeamTiles(team)) == 0 && board.TeamUnits(team) == 0
}

package rules

import "github.com/redplanetgames/terraforming-backend/internal/entity"

// StandardAction is a rule a player may invoke once per turn outside the
// normal card-play mechanism. Actions that place tiles report their candidate
// positions through ValidPlacements; Act rejects positions not among them.
type StandardAction interface {
	Name() string
	CanAct(game *entity.Game, player *entity.Player) bool
	ValidPlacements(game *entity.Game, player *entity.Player) []int
	Act(game *entity.Game, player *entity.Player, position int) error
}

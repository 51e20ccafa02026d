package rules

import (
	"fmt"
	"slices"

	"github.com/redplanetgames/terraforming-backend/internal/apperror"
	"github.com/redplanetgames/terraforming-backend/internal/entity"
)

// ConvertPlants trades eight plants for a greenery tile and one step on the
// oxygen track. Raising oxygen grants a terraform rating, which is taxed
// while a taxing policy rules; at the oxygen ceiling no step happens and no
// tax is due.
type ConvertPlants struct{}

func (that ConvertPlants) Name() string { return "convert_plants" }

func (that ConvertPlants) CanAct(game *entity.Game, player *entity.Player) bool {
	if player.Plants < entity.PlantCost {
		return false
	}

	if len(that.ValidPlacements(game, player)) == 0 {
		return false
	}

	if game.OxygenLevel >= entity.MaxOxygenLevel {
		return true
	}

	return player.Megacredits >= game.RatingTax
}

// ValidPlacements prefers empty spaces adjacent to the player's own tiles;
// only when none exist may the greenery go on any empty space.
func (that ConvertPlants) ValidPlacements(game *entity.Game, player *entity.Player) []int {
	var adjacent, empty []int

	for _, tile := range game.Board {
		if tile.Type != entity.SpaceEmpty {
			continue
		}

		empty = append(empty, tile.Position)

		for _, neighbor := range game.Neighbors(tile.Position) {
			owned := game.Board[neighbor]
			if owned.OwnerID == player.ID && owned.Type != entity.SpaceEmpty {
				adjacent = append(adjacent, tile.Position)
				break
			}
		}
	}

	if len(adjacent) > 0 {
		return adjacent
	}

	return empty
}

func (that ConvertPlants) Act(game *entity.Game, player *entity.Player, position int) error {
	if player.Plants < entity.PlantCost {
		return apperror.ErrNotEnoughPlants
	}

	// checked up front so a failed payment can't leave a half-applied action
	if game.OxygenLevel < entity.MaxOxygenLevel && player.Megacredits < game.RatingTax {
		return apperror.ErrCannotAffordTax
	}

	if !slices.Contains(that.ValidPlacements(game, player), position) {
		return fmt.Errorf("%w: position %d", apperror.ErrNoValidPlacement, position)
	}

	if err := game.PlaceTile(player.ID, position, entity.TileGreenery); err != nil {
		return fmt.Errorf("failed to place greenery: %w", err)
	}

	player.Plants -= entity.PlantCost

	if err := game.RaiseOxygen(player); err != nil {
		return fmt.Errorf("failed to raise oxygen: %w", err)
	}

	return nil
}

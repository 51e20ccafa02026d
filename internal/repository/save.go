package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redplanetgames/terraforming-backend/internal/entity"
)

var ErrSaveNotFound = errors.New("save not found")

// SaveRepository persists immutable game-state snapshots. Each snapshot gets
// a sequential save id scoped to its game, starting at 0.
type SaveRepository interface {
	SaveGame(ctx context.Context, game *entity.Game) (int, error)
	GetGameVersion(ctx context.Context, gameID string, saveID int) (*entity.Game, error)
	GetSaveIDs(ctx context.Context, gameID string) ([]int, error)
	CleanSaves(ctx context.Context, gameID string) (int, error)
	GetGames(ctx context.Context) ([]string, error)
	GetPlayerCount(ctx context.Context, gameID string) (int, error)
	SaveGameResults(ctx context.Context, game *entity.Game) error
}

type dbSave struct {
	conn *sql.DB

	// mu guards nextSaveID, the authoritative per-game counter. Ids are
	// never derived from row counts: pruning leaves holes, MAX does not.
	mu         sync.Mutex
	nextSaveID map[string]int
}

func NewSaveRepository(conn *sql.DB) SaveRepository {
	return &dbSave{
		conn:       conn,
		nextSaveID: make(map[string]int),
	}
}

// SaveGame appends a snapshot of game under the next sequential save id and
// returns that id. The first save of a game also registers its summary row.
func (that *dbSave) SaveGame(ctx context.Context, game *entity.Game) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	saveID, err := that.nextIDLocked(ctx, game.ID)
	if err != nil {
		return 0, fmt.Errorf("could not assign save id: %w", err)
	}

	game.LastSaveID = saveID

	state, err := json.Marshal(game)
	if err != nil {
		return 0, fmt.Errorf("could not marshal game: %w", err)
	}

	query := `INSERT INTO game_saves (game_id, save_id, state) VALUES (?, ?, ?)`
	if _, err = that.conn.ExecContext(ctx, query, game.ID, saveID, string(state)); err != nil {
		return 0, fmt.Errorf("failed to insert save: %w", err)
	}

	if saveID == 0 {
		query = `INSERT INTO game_results (game_id, players, generation) VALUES (?, ?, ?)
			ON CONFLICT (game_id) DO NOTHING`
		if _, err = that.conn.ExecContext(ctx, query, game.ID, len(game.Players), game.Generation); err != nil {
			return 0, fmt.Errorf("failed to insert game summary: %w", err)
		}
	}

	that.nextSaveID[game.ID] = saveID + 1

	return saveID, nil
}

func (that *dbSave) nextIDLocked(ctx context.Context, gameID string) (int, error) {
	if next, ok := that.nextSaveID[gameID]; ok {
		return next, nil
	}

	var next int
	query := `SELECT COALESCE(MAX(save_id) + 1, 0) FROM game_saves WHERE game_id = ?`
	if err := that.conn.QueryRowContext(ctx, query, gameID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to seed save counter: %w", err)
	}

	return next, nil
}

func (that *dbSave) GetGameVersion(ctx context.Context, gameID string, saveID int) (*entity.Game, error) {
	var state string

	query := `SELECT state FROM game_saves WHERE game_id = ? AND save_id = ?`
	err := that.conn.QueryRowContext(ctx, query, gameID, saveID).Scan(&state)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSaveNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get save: %w", err)
	}

	var game entity.Game
	if err = json.Unmarshal([]byte(state), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

func (that *dbSave) GetSaveIDs(ctx context.Context, gameID string) ([]int, error) {
	query := `SELECT save_id FROM game_saves WHERE game_id = ? ORDER BY save_id`

	rows, err := that.conn.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get save ids: %w", err)
	}
	defer rows.Close()

	var saveIDs []int
	for rows.Next() {
		var saveID int
		if err = rows.Scan(&saveID); err != nil {
			return nil, fmt.Errorf("failed to scan save id: %w", err)
		}
		saveIDs = append(saveIDs, saveID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read save ids: %w", err)
	}

	return saveIDs, nil
}

// CleanSaves deletes every save of gameID except the ones with the minimum
// and maximum save id, and reports how many rows went away. Min and max are
// read inside the same transaction as the delete, so a save appended
// concurrently gets a higher id and survives. Re-running is a no-op.
func (that *dbSave) CleanSaves(ctx context.Context, gameID string) (int, error) {
	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var minID, maxID sql.NullInt64

	query := `SELECT MIN(save_id), MAX(save_id) FROM game_saves WHERE game_id = ?`
	if err = tx.QueryRowContext(ctx, query, gameID).Scan(&minID, &maxID); err != nil {
		return 0, fmt.Errorf("failed to get save bounds: %w", err)
	}

	if !minID.Valid {
		return 0, nil
	}

	query = `DELETE FROM game_saves WHERE game_id = ? AND save_id > ? AND save_id < ?`
	result, err := tx.ExecContext(ctx, query, gameID, minID.Int64, maxID.Int64)
	if err != nil {
		return 0, fmt.Errorf("failed to delete saves: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted saves: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return int(deleted), nil
}

func (that *dbSave) GetGames(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT game_id FROM game_saves ORDER BY game_id`

	rows, err := that.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	defer rows.Close()

	var gameIDs []string
	for rows.Next() {
		var gameID string
		if err = rows.Scan(&gameID); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}
		gameIDs = append(gameIDs, gameID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read game ids: %w", err)
	}

	return gameIDs, nil
}

func (that *dbSave) GetPlayerCount(ctx context.Context, gameID string) (int, error) {
	var players int

	query := `SELECT players FROM game_results WHERE game_id = ?`
	err := that.conn.QueryRowContext(ctx, query, gameID).Scan(&players)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrGameNotFound
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get player count: %w", err)
	}

	return players, nil
}

func (that *dbSave) SaveGameResults(ctx context.Context, game *entity.Game) error {
	scores := make(map[string]int, len(game.Players))
	for _, player := range game.Players {
		scores[player.ID] = player.Score
	}

	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("could not marshal scores: %w", err)
	}

	query := `INSERT INTO game_results (game_id, players, generation, scores, finished_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (game_id) DO UPDATE SET
			players = excluded.players,
			generation = excluded.generation,
			scores = excluded.scores,
			finished_at = excluded.finished_at`
	if _, err = that.conn.ExecContext(ctx, query, game.ID, len(game.Players), game.Generation, string(scoresJSON)); err != nil {
		return fmt.Errorf("failed to save game results: %w", err)
	}

	return nil
}

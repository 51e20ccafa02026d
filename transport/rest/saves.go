package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/redplanetgames/terraforming-backend/internal/entity"
	"github.com/redplanetgames/terraforming-backend/internal/repository"
)

type saveReader interface {
	GetGames(ctx context.Context) ([]string, error)
	GetSaveIDs(ctx context.Context, gameID string) ([]int, error)
	GetGameVersion(ctx context.Context, gameID string, saveID int) (*entity.Game, error)
	GetPlayerCount(ctx context.Context, gameID string) (int, error)
}

// SavesHandler is the read-only surface over stored snapshots, meant for
// replay and debugging.
type SavesHandler struct {
	logger *slog.Logger
	saves  saveReader
}

func NewSavesHandler(logger *slog.Logger, saves saveReader) *SavesHandler {
	return &SavesHandler{
		logger: logger.With("component", "rest"),
		saves:  saves,
	}
}

func (that *SavesHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /games", that.ListGames)
	mux.HandleFunc("GET /games/{id}/saves", that.ListSaves)
	mux.HandleFunc("GET /games/{id}/saves/{saveID}", that.GetSave)
	mux.HandleFunc("GET /games/{id}/players", that.GetPlayerCount)
}

// ListGames responds with the ids of every game that has at least one
// stored snapshot.
func (that *SavesHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	gameIDs, err := that.saves.GetGames(r.Context())
	if err != nil {
		that.internalError(w, "failed to list games", err)
		return
	}

	if gameIDs == nil {
		gameIDs = []string{}
	}

	that.writeJSON(w, gameIDs)
}

func (that *SavesHandler) ListSaves(w http.ResponseWriter, r *http.Request) {
	saveIDs, err := that.saves.GetSaveIDs(r.Context(), r.PathValue("id"))
	if err != nil {
		that.internalError(w, "failed to list saves", err)
		return
	}

	if saveIDs == nil {
		saveIDs = []int{}
	}

	that.writeJSON(w, saveIDs)
}

func (that *SavesHandler) GetSave(w http.ResponseWriter, r *http.Request) {
	saveID, err := strconv.Atoi(r.PathValue("saveID"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	game, err := that.saves.GetGameVersion(r.Context(), r.PathValue("id"), saveID)
	if errors.Is(err, repository.ErrSaveNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		that.internalError(w, "failed to get save", err)
		return
	}

	that.writeJSON(w, game)
}

func (that *SavesHandler) GetPlayerCount(w http.ResponseWriter, r *http.Request) {
	players, err := that.saves.GetPlayerCount(r.Context(), r.PathValue("id"))
	if errors.Is(err, repository.ErrGameNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		that.internalError(w, "failed to get player count", err)
		return
	}

	that.writeJSON(w, map[string]int{"players": players})
}

func (that *SavesHandler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *SavesHandler) internalError(w http.ResponseWriter, msg string, err error) {
	that.logger.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

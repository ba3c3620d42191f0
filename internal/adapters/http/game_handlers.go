package http

import (
	"fmt"
	"net/http"

	"gitlab.com/timkado/api/game-catalog-service/internal/application"
	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

func ListGamesHandler(catalog *application.CatalogService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := catalog.GetAll(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(r.Context(), w, logger, http.StatusOK, games)
	}
}

func GetGameHandler(catalog *application.CatalogService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		game, err := catalog.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(r.Context(), w, logger, http.StatusOK, game)
	}
}

// GamesByCategoryHandler answers 204 when the category has no games.
func GamesByCategoryHandler(catalog *application.CatalogService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := catalog.GetByCategory(r.Context(), r.PathValue("category"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		if len(games) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(r.Context(), w, logger, http.StatusOK, games)
	}
}

func CreateGameHandler(catalog *application.CatalogService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, ok := decodeGame(w, r, logger)
		if !ok {
			return
		}
		created, err := catalog.Create(r.Context(), game)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/api/games/%d", created.ID))
		writeJSON(r.Context(), w, logger, http.StatusCreated, created)
	}
}

func UpdateGameHandler(catalog *application.CatalogService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		game, ok := decodeGame(w, r, logger)
		if !ok {
			return
		}
		updated, err := catalog.Update(r.Context(), id, game)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(r.Context(), w, logger, http.StatusOK, updated)
	}
}

func DeleteGameHandler(catalog *application.CatalogService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := catalog.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// InvalidateCacheHandler drops every catalog cache entry.
func InvalidateCacheHandler(catalog *application.CatalogService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog.InvalidateAll(r.Context())
		writeJSON(r.Context(), w, logger, http.StatusOK, MessageResponse{Message: "Catalog cache invalidated"})
	}
}

func decodeGame(w http.ResponseWriter, r *http.Request, logger domain.Logger) (domain.Game, bool) {
	var game domain.Game
	if !decodeJSON(w, r, logger, &game) {
		return game, false
	}
	if fields := game.Validate(); fields != nil {
		domain.NewErrorResponse(domain.ErrBadRequest, "Invalid game payload", "").WithFields(fields).WriteJSON(w, http.StatusBadRequest)
		return game, false
	}
	return game, true
}

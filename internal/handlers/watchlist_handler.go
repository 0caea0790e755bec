package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/investalk/backend/internal/models"
	"github.com/investalk/backend/internal/services"
	"github.com/investalk/backend/internal/utils"
	"github.com/investalk/backend/internal/websocket"
)

// WatchlistHandler handles favorite-stock requests
type WatchlistHandler struct {
	watchlistService *services.WatchlistService
	wsHub            *websocket.Hub
}

func NewWatchlistHandler(watchlistService *services.WatchlistService, wsHub *websocket.Hub) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
		wsHub:            wsHub,
	}
}

func (h *WatchlistHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/user/favorite-stocks", h.GetFavoriteStocks).Methods("GET")
	router.HandleFunc("/user/favorite-stocks", h.AddFavoriteStock).Methods("POST")
	router.HandleFunc("/user/favorite-stocks/{symbol}", h.UpdateDesiredPrice).Methods("PUT")
	router.HandleFunc("/user/favorite-stocks/{symbol}", h.RemoveFavoriteStock).Methods("DELETE")
}

// GetFavoriteStocks returns the user's watchlist enriched with market data
func (h *WatchlistHandler) GetFavoriteStocks(w http.ResponseWriter, r *http.Request) {
	principal, err := utils.GetPrincipalFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stocks, err := h.watchlistService.List(r.Context(), principal.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stocks)
}

// AddFavoriteStock adds a symbol to the user's watchlist
func (h *WatchlistHandler) AddFavoriteStock(w http.ResponseWriter, r *http.Request) {
	principal, err := utils.GetPrincipalFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Symbol       string   `json:"symbol"`
		DesiredPrice *float64 `json:"desiredPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	favorite, err := h.watchlistService.Add(r.Context(), principal.ID, req.Symbol, req.DesiredPrice)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.broadcast("added", principal.ID, favorite.Symbol, favorite.DesiredPrice)
	writeJSON(w, http.StatusCreated, favorite)
}

// UpdateDesiredPrice updates the target price for a watched symbol
func (h *WatchlistHandler) UpdateDesiredPrice(w http.ResponseWriter, r *http.Request) {
	principal, err := utils.GetPrincipalFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	symbol := mux.Vars(r)["symbol"]

	var req struct {
		DesiredPrice *float64 `json:"desiredPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.watchlistService.UpdatePrice(r.Context(), principal.ID, symbol, req.DesiredPrice); err != nil {
		writeServiceError(w, err)
		return
	}

	h.broadcast("updated", principal.ID, services.NormalizeSymbol(symbol), req.DesiredPrice)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Desired price updated"})
}

// RemoveFavoriteStock removes a symbol from the user's watchlist
func (h *WatchlistHandler) RemoveFavoriteStock(w http.ResponseWriter, r *http.Request) {
	principal, err := utils.GetPrincipalFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	symbol := mux.Vars(r)["symbol"]

	if err := h.watchlistService.Remove(r.Context(), principal.ID, symbol); err != nil {
		writeServiceError(w, err)
		return
	}

	h.broadcast("removed", principal.ID, services.NormalizeSymbol(symbol), nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Symbol removed from watchlist"})
}

func (h *WatchlistHandler) broadcast(action string, userID uint, symbol string, desiredPrice *float64) {
	if h.wsHub == nil {
		return
	}
	h.wsHub.Broadcast(models.Message{
		Type: "watchlist",
		Content: models.WatchlistEvent{
			Action:       action,
			UserID:       userID,
			Symbol:       symbol,
			DesiredPrice: desiredPrice,
		},
	})
}

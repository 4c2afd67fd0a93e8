package handler

import (
	"net/http"

	"github.com/Learnmade/livechallenge/internal/app/service"
	"github.com/Learnmade/livechallenge/internal/common"

	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(ls *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.globalLeaderboard)
}

// RegisterChallengeRoutes mounts the per-challenge ranking on the challenge tree.
func (h *LeaderboardHandler) RegisterChallengeRoutes(r chi.Router) {
	r.Get("/{language}/{index}/leaderboard", h.challengeLeaderboard)
}

func (h *LeaderboardHandler) globalLeaderboard(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	period := r.URL.Query().Get("period")

	entries, err := h.leaderboardService.Global(r.Context(), language, period)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func (h *LeaderboardHandler) challengeLeaderboard(w http.ResponseWriter, r *http.Request) {
	language, index, ok := ChallengeParams(w, r)
	if !ok {
		return
	}

	entries, err := h.leaderboardService.ForChallenge(r.Context(), language, index)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

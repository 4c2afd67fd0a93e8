package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Learnmade/livechallenge/internal/api/middleware"
	"github.com/Learnmade/livechallenge/internal/app/service"
	"github.com/Learnmade/livechallenge/internal/common"

	"github.com/go-chi/chi/v5"
)

type BattleHandler struct {
	battleService     *service.BattleService
	submissionService *service.SubmissionService
}

func NewBattleHandler(bs *service.BattleService, ss *service.SubmissionService) *BattleHandler {
	return &BattleHandler{battleService: bs, submissionService: ss}
}

func (h *BattleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listBattles)
	r.Get("/{battleSlug}/leaderboard", h.battleLeaderboard)
}

// RegisterSubmitRoutes is mounted behind auth and the submission limiter.
func (h *BattleHandler) RegisterSubmitRoutes(r chi.Router) {
	r.Post("/{battleSlug}/submit", h.submitBattle)
}

func (h *BattleHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/battles", h.createBattle)
}

func (h *BattleHandler) listBattles(w http.ResponseWriter, r *http.Request) {
	battles, err := h.battleService.ListActive(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"battles": battles,
	})
}

func (h *BattleHandler) battleLeaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := h.battleService.Standings(r.Context(), chi.URLParam(r, "battleSlug"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"standings": standings,
	})
}

func (h *BattleHandler) submitBattle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	submission, err := h.submissionService.SubmitBattle(r.Context(), userID, chi.URLParam(r, "battleSlug"), req.Code)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submission)
}

func (h *BattleHandler) createBattle(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	battle, err := h.battleService.CreateBattle(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, battle)
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Learnmade/livechallenge/internal/api/middleware"
	"github.com/Learnmade/livechallenge/internal/app/service"
	"github.com/Learnmade/livechallenge/internal/common"

	"github.com/go-chi/chi/v5"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
}

func NewChallengeHandler(cs *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: cs}
}

func (h *ChallengeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listChallenges)
	r.Get("/{language}/{index}", h.getChallenge)
}

// RegisterAdminRoutes is mounted under the admin router; the auth and host
// gates live there.
func (h *ChallengeHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/challenges", h.createChallenge)
}

func (h *ChallengeHandler) listChallenges(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	language := r.URL.Query().Get("language")

	challenges, err := h.challengeService.ListChallenges(r.Context(), language, page, pageSize)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"challenges": challenges,
	})
}

func (h *ChallengeHandler) getChallenge(w http.ResponseWriter, r *http.Request) {
	language, index, ok := ChallengeParams(w, r)
	if !ok {
		return
	}
	role, _ := middleware.GetUserRoleFromContext(r.Context())

	challenge, err := h.challengeService.GetChallenge(r.Context(), language, index, role)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, challenge)
}

func (h *ChallengeHandler) createChallenge(w http.ResponseWriter, r *http.Request) {
	var req service.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	challenge, err := h.challengeService.CreateChallenge(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, challenge)
}

// ChallengeParams pulls the {language}/{index} pair every challenge-scoped
// route uses; it writes the 400 itself so callers can just bail.
func ChallengeParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	language := chi.URLParam(r, "language")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || language == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid challenge reference")
		return "", 0, false
	}
	return language, index, true
}

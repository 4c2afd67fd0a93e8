package handler

import (
	"net/http"

	"github.com/Learnmade/livechallenge/internal/app/service"
	"github.com/Learnmade/livechallenge/internal/common"

	"github.com/go-chi/chi/v5"
)

type ParticipantHandler struct {
	participantService *service.ParticipantService
}

func NewParticipantHandler(ps *service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantService: ps}
}

// RegisterChallengeRoutes mounts the live-presence view on the challenge tree.
func (h *ParticipantHandler) RegisterChallengeRoutes(r chi.Router) {
	r.Get("/{language}/{index}/participants", h.activeParticipants)
}

// RegisterAdminRoutes mounts the host-only removal endpoint.
func (h *ParticipantHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/challenges/{language}/{index}/participants/{userID}", h.removeParticipant)
}

func (h *ParticipantHandler) activeParticipants(w http.ResponseWriter, r *http.Request) {
	language, index, ok := ChallengeParams(w, r)
	if !ok {
		return
	}

	participants, err := h.participantService.Active(r.Context(), language, index)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"participants": participants,
	})
}

func (h *ParticipantHandler) removeParticipant(w http.ResponseWriter, r *http.Request) {
	language, index, ok := ChallengeParams(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "userID")

	if err := h.participantService.Remove(r.Context(), language, index, userID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"removed": userID})
}

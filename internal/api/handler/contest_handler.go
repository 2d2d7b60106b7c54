package handler

import (
	"encoding/json"
	"gitgud_server/internal/api/middleware"
	"gitgud_server/internal/app/service"
	"gitgud_server/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contestService *service.ContestService
}

func NewContestHandler(cs *service.ContestService) *ContestHandler {
	return &ContestHandler{contestService: cs}
}

func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listContests)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Put("/{contestID}/participation", h.setParticipation)
	})
}

func (h *ContestHandler) listContests(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	contests, err := h.contestService.ListContests(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contests)
}

type setParticipationRequest struct {
	Participated bool `json:"participated"`
}

func (h *ContestHandler) setParticipation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req setParticipationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.contestService.SetParticipation(r.Context(), chi.URLParam(r, "contestID"), userID, req.Participated); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

package handler

import (
	"encoding/json"
	"gitgud_server/internal/api/middleware"
	"gitgud_server/internal/app/service"
	"gitgud_server/internal/common"
	"gitgud_server/internal/domain/model"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ImportHandler struct {
	importService *service.ImportService
}

func NewImportHandler(is *service.ImportService) *ImportHandler {
	return &ImportHandler{importService: is}
}

// RegisterSolveRoutes exposes the raw per-platform adapter output, mirroring
// the shape the settings page consumes.
func (h *ImportHandler) RegisterSolveRoutes(r chi.Router) {
	r.Get("/codeforces/user-solves", h.userSolves(model.PlatformCodeforces))
	r.Get("/kattis/user-solves", h.userSolves(model.PlatformKattis))
}

// RegisterImportRoutes wires the authenticated import pipeline.
func (h *ImportHandler) RegisterImportRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/{platform}", h.runImport)
}

type userSolvesResponse struct {
	Success        bool                  `json:"success"`
	SolvedProblems []model.SolvedProblem `json:"solvedProblems"`
}

func (h *ImportHandler) userSolves(p model.Platform) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.URL.Query().Get("username")
		if username == "" {
			common.RespondWithError(w, http.StatusBadRequest, "No username provided")
			return
		}

		solves, err := h.importService.FetchUserSolves(r.Context(), p, username)
		if err != nil {
			common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
			return
		}
		if solves == nil {
			solves = []model.SolvedProblem{}
		}
		common.RespondWithJSON(w, http.StatusOK, userSolvesResponse{Success: true, SolvedProblems: solves})
	}
}

type runImportRequest struct {
	Username string `json:"username"`
}

// runImport always answers 200: success and failure alike are expressed in
// the ImportResult body, which is the pipeline's caller-facing contract.
func (h *ImportHandler) runImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	p := model.Platform(chi.URLParam(r, "platform"))
	if !p.Valid() {
		common.RespondWithError(w, http.StatusBadRequest, "Unsupported platform: "+string(p))
		return
	}

	var req runImportRequest
	if r.Body != nil {
		// An empty or absent body means "use the saved handle".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result := h.importService.Import(r.Context(), userID, p, req.Username)
	common.RespondWithJSON(w, http.StatusOK, result)
}

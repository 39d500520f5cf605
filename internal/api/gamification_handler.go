package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/mediqa-api/internal/service/gamification"
)

// GamificationHandler handles engagement and achievement API requests.
type GamificationHandler struct {
	service   gamification.Service
	validator *validator.Validate
}

// NewGamificationHandler creates a new GamificationHandler.
func NewGamificationHandler(service gamification.Service) *GamificationHandler {
	return &GamificationHandler{
		service:   service,
		validator: validator.New(),
	}
}

// RecordActivity handles POST /activity: one engagement event for the
// authenticated user.
func (h *GamificationHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.RecordActivity(r.Context(), userID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddPoints handles POST /points: a direct point grant for the
// authenticated user.
func (h *GamificationHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req AddPointsRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.service.AddPoints(r.Context(), userID, req.Amount); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unlock handles POST /achievements/{id}/unlock: an event achievement
// observed by an external collaborator.
func (h *GamificationHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	achievementID, err := strconv.Atoi(urlParam(r, "id"))
	if err != nil || achievementID <= 0 {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid achievement ID")
		return
	}

	granted, err := h.service.Unlock(r.Context(), userID, achievementID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UnlockResponse{
		AchievementID: achievementID,
		Granted:       granted,
	})
}

// ListAchievements handles GET /achievements: the authenticated user's
// earned achievements.
func (h *GamificationHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	earned, err := h.service.GetUserAchievements(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	resp := make([]EarnedAchievementResponse, 0, len(earned))
	for _, e := range earned {
		resp = append(resp, NewEarnedAchievementResponse(e))
	}

	RespondWithJSON(w, r, http.StatusOK, resp)
}

// Leaderboard handles GET /leaderboard.
func (h *GamificationHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.service.GetLeaderboard(r.Context(), limit)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, LeaderboardResponse{Entries: entries})
}

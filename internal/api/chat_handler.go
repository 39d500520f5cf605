package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/mediqa-api/internal/generation"
	"github.com/phrazzld/mediqa-api/internal/platform/logger"
	"github.com/phrazzld/mediqa-api/internal/retrieval"
	"github.com/phrazzld/mediqa-api/internal/service/gamification"
)

// ChatHandler answers questions grounded in the reference document.
// The generator may be nil when no LLM is configured; the endpoint then
// reports the feature as unavailable.
type ChatHandler struct {
	index        *retrieval.Index
	generator    generation.Generator
	gamification gamification.Service
	validator    *validator.Validate
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(
	index *retrieval.Index,
	generator generation.Generator,
	gamificationService gamification.Service,
) *ChatHandler {
	return &ChatHandler{
		index:        index,
		generator:    generator,
		gamification: gamificationService,
		validator:    validator.New(),
	}
}

// Chat handles POST /chat. Answering a question counts as an engagement
// event for the caller.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if h.index == nil {
		RespondWithError(w, r, http.StatusServiceUnavailable, "Reference document not available")
		return
	}
	if h.generator == nil {
		RespondWithError(w, r, http.StatusServiceUnavailable, "Answer generation not configured")
		return
	}

	var req ChatRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	documentContext := h.index.GenerateContext(req.Query)

	answer, err := h.generator.GenerateAnswer(r.Context(), req.Query, documentContext)
	if err != nil {
		RespondWithErrorAndLog(w, r, http.StatusBadGateway, "Failed to generate answer", err)
		return
	}

	// Best effort: an activity bookkeeping failure must not lose the
	// answer we already generated.
	if err := h.gamification.RecordActivity(r.Context(), userID); err != nil {
		log := logger.FromContextOrDefault(r.Context(), slog.Default())
		log.Warn("failed to record chat activity",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}

	RespondWithJSON(w, r, http.StatusOK, ChatResponse{
		Answer:  answer,
		Context: documentContext,
	})
}

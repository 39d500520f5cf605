package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/mediqa-api/internal/domain"
	"github.com/phrazzld/mediqa-api/internal/service/review"
)

// ReviewHandler handles flashcard API requests.
type ReviewHandler struct {
	service   review.Service
	validator *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service review.Service) *ReviewHandler {
	return &ReviewHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateCard handles POST /cards.
func (h *ReviewHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	var req CreateCardRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	card, err := h.service.CreateCard(r.Context(), req.Topic, req.Question, req.Answer, req.Difficulty)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, card)
}

// ReviewCard handles POST /cards/{id}/review.
func (h *ReviewHandler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	cardID, err := getPathUUID(r, "id")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req ReviewCardRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	progress, err := h.service.ReviewCard(r.Context(), userID, cardID, *req.Quality)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewProgressResponse(progress))
}

// DueCards handles GET /cards/due.
func (h *ReviewHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	cards, err := h.service.GetDueCards(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	if cards == nil {
		cards = []*domain.Flashcard{}
	}

	RespondWithJSON(w, r, http.StatusOK, cards)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cancer-not-cancer/api/internal/api/middleware"
	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common"

	"github.com/go-chi/chi/v5"
)

type RatingHandler struct {
	ratingService *service.RatingService
}

func NewRatingHandler(ratingService *service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

func (h *RatingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/archive", h.archive)
}

func (h *RatingHandler) archive(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if _, err := h.ratingService.SubmitRating(r.Context(), user.ID, clientIP(r), req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/api/middleware"
	service "github.com/aaravmahajanofficial/apparel-commerce-platform/internal/services"
	"github.com/aaravmahajanofficial/apparel-commerce-platform/internal/utils/response"
)

type RecommendationHandler struct {
	recommendationService service.RecommendationService
}

func NewRecommendationHandler(recommendationService service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// GetRecommendations returns catalog products similar to the named one, as
// scored by the external recommendation service.
func (h *RecommendationHandler) GetRecommendations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		name := r.URL.Query().Get("name")

		products, err := h.recommendationService.GetRecommendations(r.Context(), name)
		if err != nil {
			logger.Error("Failed to fetch recommendations", slog.String("name", name), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, products)
	}
}

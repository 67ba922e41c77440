package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abupet/reco-engine/internal/models"
	"github.com/abupet/reco-engine/internal/service"
	"github.com/abupet/reco-engine/internal/utils"
)

// RecommendationHandler handles recommendation HTTP requests
type RecommendationHandler struct {
	recommendationService *service.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler instance
func NewRecommendationHandler(recommendationService *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationService: recommendationService,
	}
}

func queryFromRequest(c *gin.Context) *service.RecommendationQuery {
	return &service.RecommendationQuery{
		OwnerID:     c.Query("ownerId"),
		PetID:       c.Query("petId"),
		Context:     c.Query("context"),
		ServiceType: c.Query("serviceType"),
	}
}

// GetRecommendation handles GET /api/v1/recommendations. Responds 200 with
// the selection, or 204 when nothing is eligible.
func (h *RecommendationHandler) GetRecommendation(c *gin.Context) {
	selection, err := h.recommendationService.GetRecommendation(c.Request.Context(), queryFromRequest(c))
	if err != nil {
		utils.SendBadRequestError(c, "Invalid recommendation request", err.Error())
		return
	}
	if selection == nil {
		utils.SendNoContentResponse(c)
		return
	}
	utils.SendOKResponse(c, selection)
}

// PreviewRecommendation handles GET /internal/api/v1/recommendations/preview.
// Operator-only; skips preference checks but never the vet veto.
func (h *RecommendationHandler) PreviewRecommendation(c *gin.Context) {
	selection, err := h.recommendationService.PreviewRecommendation(c.Request.Context(), queryFromRequest(c))
	if err != nil {
		utils.SendBadRequestError(c, "Invalid preview request", err.Error())
		return
	}
	if selection == nil {
		utils.SendNoContentResponse(c)
		return
	}
	utils.SendOKResponse(c, selection)
}

// CreateImpression handles POST /api/v1/impressions
func (h *RecommendationHandler) CreateImpression(c *gin.Context) {
	var request models.ImpressionCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	event, err := h.recommendationService.RecordImpression(c.Request.Context(), &request)
	if err != nil {
		if strings.Contains(err.Error(), "failed to record") {
			utils.SendInternalServerError(c, "Failed to record impression", err.Error())
			return
		}
		utils.SendValidationError(c, err.Error())
		return
	}

	utils.SendCreatedResponse(c, event)
}

package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abupet/reco-engine/internal/models"
	"github.com/abupet/reco-engine/internal/service"
	"github.com/abupet/reco-engine/internal/utils"
)

// ConsentHandler handles owner consent HTTP requests
type ConsentHandler struct {
	consentService *service.ConsentService
}

// NewConsentHandler creates a new consent handler instance
func NewConsentHandler(consentService *service.ConsentService) *ConsentHandler {
	return &ConsentHandler{
		consentService: consentService,
	}
}

// UpsertConsent handles PUT /api/v1/owners/:ownerId/consents
func (h *ConsentHandler) UpsertConsent(c *gin.Context) {
	ownerID := c.Param("ownerId")

	var request models.ConsentUpsertRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	record, err := h.consentService.UpsertConsent(c.Request.Context(), ownerID, &request, c.GetHeader("X-Changed-By"))
	if err != nil {
		if strings.Contains(err.Error(), "failed to") {
			utils.SendInternalServerError(c, "Failed to store consent", err.Error())
			return
		}
		utils.SendValidationError(c, err.Error())
		return
	}

	utils.SendOKResponse(c, record)
}

// ListConsents handles GET /api/v1/owners/:ownerId/consents
func (h *ConsentHandler) ListConsents(c *gin.Context) {
	ownerID := c.Param("ownerId")

	response, err := h.consentService.ListConsents(c.Request.Context(), ownerID)
	if err != nil {
		if strings.Contains(err.Error(), "failed to") {
			utils.SendInternalServerError(c, "Failed to list consents", err.Error())
			return
		}
		utils.SendValidationError(c, err.Error())
		return
	}

	utils.SendOKResponse(c, response)
}

// ListConsentAudit handles GET /api/v1/owners/:ownerId/consents/audit
func (h *ConsentHandler) ListConsentAudit(c *gin.Context) {
	ownerID := c.Param("ownerId")

	audits, err := h.consentService.ListAudit(c.Request.Context(), ownerID)
	if err != nil {
		if strings.Contains(err.Error(), "failed to") {
			utils.SendInternalServerError(c, "Failed to list consent audit", err.Error())
			return
		}
		utils.SendValidationError(c, err.Error())
		return
	}

	utils.SendOKResponse(c, gin.H{
		"ownerId": ownerID,
		"audits":  audits,
	})
}

package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abupet/reco-engine/internal/dao"
	"github.com/abupet/reco-engine/internal/engine"
	"github.com/abupet/reco-engine/internal/models"
	"github.com/abupet/reco-engine/pkg/utils"
)

// RecommendationService exposes the selection pipeline and impression
// recording to the API layer
type RecommendationService struct {
	engine        *engine.Engine
	impressionDAO *dao.ImpressionDAO
	logger        *logrus.Logger
}

// NewRecommendationService creates a new recommendation service instance
func NewRecommendationService(
	eng *engine.Engine,
	impressionDAO *dao.ImpressionDAO,
	logger *logrus.Logger,
) *RecommendationService {
	return &RecommendationService{
		engine:        eng,
		impressionDAO: impressionDAO,
		logger:        logger,
	}
}

// RecommendationQuery is the validated form of a recommendation request
type RecommendationQuery struct {
	OwnerID     string
	PetID       string
	Context     string
	ServiceType string
}

func (q *RecommendationQuery) validate() (engine.SelectRequest, error) {
	if err := utils.ValidateOwnerID(q.OwnerID); err != nil {
		return engine.SelectRequest{}, err
	}
	if err := utils.ValidatePetID(q.PetID); err != nil {
		return engine.SelectRequest{}, err
	}

	context, err := models.ParseContext(q.Context)
	if err != nil {
		return engine.SelectRequest{}, err
	}

	req := engine.SelectRequest{
		OwnerID: q.OwnerID,
		PetID:   q.PetID,
		Context: context,
		Mode:    engine.ModeNormal,
	}

	if q.ServiceType != "" {
		serviceType, err := models.ParseServiceType(q.ServiceType)
		if err != nil {
			return engine.SelectRequest{}, err
		}
		req.ServiceType = serviceType
	}

	return req, nil
}

// GetRecommendation runs a normal-mode selection. A nil selection with nil
// error means no recommendation is available for this request.
func (s *RecommendationService) GetRecommendation(ctx context.Context, query *RecommendationQuery) (*models.Selection, error) {
	req, err := query.validate()
	if err != nil {
		return nil, err
	}
	return s.engine.Select(ctx, req)
}

// PreviewRecommendation runs a forced-preview selection for operator
// diagnostics: consent, targeting and frequency checks are skipped, the vet
// veto is not
func (s *RecommendationService) PreviewRecommendation(ctx context.Context, query *RecommendationQuery) (*models.Selection, error) {
	req, err := query.validate()
	if err != nil {
		return nil, err
	}
	req.Mode = engine.ModeForcedPreview
	return s.engine.Select(ctx, req)
}

// RecordImpression persists one owner/pet interaction event. Recorded events
// feed the frequency caps on later selections.
func (s *RecommendationService) RecordImpression(ctx context.Context, request *models.ImpressionCreateRequest) (*models.ImpressionEvent, error) {
	if err := utils.ValidateOwnerID(request.OwnerID); err != nil {
		return nil, err
	}
	if err := utils.ValidatePetID(request.PetID); err != nil {
		return nil, err
	}

	context, err := models.ParseContext(request.Context)
	if err != nil {
		return nil, err
	}
	eventType, err := models.ParseEventType(request.EventType)
	if err != nil {
		return nil, err
	}

	event := &models.ImpressionEvent{
		EventID:      utils.GenerateEventID(),
		OwnerID:      request.OwnerID,
		PetID:        request.PetID,
		Context:      context,
		EventType:    eventType,
		OccurredTime: utils.GetCurrentTimeMillis(),
	}
	if request.ItemID != "" {
		itemID := request.ItemID
		event.ItemID = &itemID
	}

	if err := s.impressionDAO.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record impression: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id":   request.OwnerID,
		"pet_id":     request.PetID,
		"context":    context,
		"event_type": eventType,
	}).Debug("Impression recorded")

	return event, nil
}

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abupet/reco-engine/internal/metrics"
	"github.com/abupet/reco-engine/internal/models"
)

// DecisionMode controls which checks a selection applies
type DecisionMode string

const (
	// ModeNormal applies the full check pipeline
	ModeNormal DecisionMode = "normal"
	// ModeForcedPreview skips consent, targeting, and frequency checks so
	// operators can preview a candidate pool. The vet veto and
	// missing-description checks still apply.
	ModeForcedPreview DecisionMode = "forced_preview"
)

// SelectRequest identifies one selection decision
type SelectRequest struct {
	OwnerID     string
	PetID       string
	Context     models.Context
	ServiceType models.ServiceType
	Mode        DecisionMode
}

// ConsentStore loads the owner's stored consent records
type ConsentStore interface {
	GetByOwner(ctx context.Context, ownerID string) ([]models.ConsentRecord, error)
}

// TagStore reads the pet's computed tag snapshot
type TagStore interface {
	GetTags(ctx context.Context, petID string) ([]models.PetTag, error)
}

// TagComputer triggers tag recomputation for a pet with no snapshot
type TagComputer interface {
	ComputeTags(ctx context.Context, petID, ownerID string) error
}

// CandidateStore fetches published candidates for a context
type CandidateStore interface {
	GetPublishedCandidates(ctx context.Context, context models.Context, serviceType models.ServiceType) ([]models.Candidate, error)
}

// EventStore counts recorded impressions for frequency capping
type EventStore interface {
	CountImpressions(ctx context.Context, ownerID, petID string, context models.Context, itemID string, since int64) (int, error)
}

// VetFlagStore answers whether a vet has flagged an item for a pet
type VetFlagStore interface {
	HasActiveFlag(ctx context.Context, petID, itemID string) (bool, error)
}

// ShortlistStore reads and invalidates precomputed AI shortlists
type ShortlistStore interface {
	GetShortlist(ctx context.Context, petID string) ([]models.ShortlistEntry, error)
	InvalidateShortlist(ctx context.Context, petID string) error
}

// Engine composes the selection pipeline over its backing stores
type Engine struct {
	consents    ConsentStore
	tags        TagStore
	tagComputer TagComputer
	candidates  CandidateStore
	events      EventStore
	vetFlags    VetFlagStore
	shortlists  ShortlistStore
	logger      *logrus.Logger

	now               func() time.Time
	invalidateTimeout time.Duration
}

// NewEngine creates a selection engine. tagComputer and shortlists may be
// nil when those integrations are disabled.
func NewEngine(
	consents ConsentStore,
	tags TagStore,
	tagComputer TagComputer,
	candidates CandidateStore,
	events EventStore,
	vetFlags VetFlagStore,
	shortlists ShortlistStore,
	logger *logrus.Logger,
) *Engine {
	return &Engine{
		consents:          consents,
		tags:              tags,
		tagComputer:       tagComputer,
		candidates:        candidates,
		events:            events,
		vetFlags:          vetFlags,
		shortlists:        shortlists,
		logger:            logger,
		now:               time.Now,
		invalidateTimeout: 2 * time.Second,
	}
}

// Select runs the full pipeline and returns at most one selection. A nil
// selection with nil error means no recommendation for this request. An
// error is returned only for invalid requests; dependency failures degrade
// per their fail-open or fail-closed policy and end in a nil selection at
// worst.
func (e *Engine) Select(ctx context.Context, req SelectRequest) (*models.Selection, error) {
	start := e.now()

	rule, ok := RuleFor(req.Context)
	if !ok {
		return nil, fmt.Errorf("unknown context: %s", req.Context)
	}
	if req.Mode == "" {
		req.Mode = ModeNormal
	}
	if req.ServiceType == "" {
		req.ServiceType = rule.DefaultServiceType()
	} else if !rule.AllowsServiceType(req.ServiceType) {
		return nil, fmt.Errorf("service type %s not allowed in context %s", req.ServiceType, req.Context)
	}

	selection := e.selectOne(ctx, req, rule)

	outcome := "no_selection"
	source := "none"
	if selection != nil {
		outcome = "selected"
		source = string(selection.Source)
	}
	metrics.RecordSelection(string(req.Context), source, outcome)
	metrics.RecordSelectionDuration(outcome, e.now().Sub(start).Seconds())

	return selection, nil
}

func (e *Engine) selectOne(ctx context.Context, req SelectRequest, rule ContextRule) *models.Selection {
	consent := e.resolveConsent(ctx, req.OwnerID)

	if req.Mode == ModeNormal && !MarketingAllowed(consent, "") {
		e.logger.WithFields(map[string]interface{}{
			"owner_id": req.OwnerID,
			"pet_id":   req.PetID,
		}).Debug("Global marketing consent withheld, no selection")
		return nil
	}

	if req.Mode == ModeNormal && e.shortlists != nil {
		if selection := e.tryShortlist(ctx, req, rule, consent); selection != nil {
			return selection
		}
	}

	snapshot := e.readSnapshot(ctx, req.PetID, req.OwnerID)

	candidates, err := e.candidates.GetPublishedCandidates(ctx, req.Context, req.ServiceType)
	if err != nil {
		// Candidate fetch fails closed: recommending from a stale or
		// partial pool is worse than recommending nothing.
		e.logger.WithError(err).WithField("context", req.Context).Error("Candidate fetch failed")
		metrics.RecordDependencyFailure("candidate_store")
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	eligible := e.filterEligible(ctx, req, rule, consent, snapshot, candidates)
	if req.Mode == ModeNormal {
		eligible = e.applyFrequencyCaps(ctx, req, rule, eligible)
	}

	winner := pickWinner(eligible, req.PetID, e.now())
	if winner == nil {
		return nil
	}

	return &models.Selection{
		PromoItemID: winner.candidate.ItemID,
		TenantID:    winner.candidate.TenantID,
		Category:    winner.candidate.Category,
		MatchedTags: winner.matchedTags,
		Source:      models.SourceEligibility,
	}
}

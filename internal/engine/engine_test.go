package engine

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/abupet/reco-engine/internal/engine/mocks"
	"github.com/abupet/reco-engine/internal/models"
)

type testStores struct {
	consents   *mocks.MockConsentStore
	tags       *mocks.MockTagStore
	candidates *mocks.MockCandidateStore
	events     *mocks.MockEventStore
	vetFlags   *mocks.MockVetFlagStore
	shortlists *mocks.MockShortlistStore
}

var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *testStores) {
	t.Helper()

	stores := &testStores{
		consents:   &mocks.MockConsentStore{},
		tags:       &mocks.MockTagStore{},
		candidates: &mocks.MockCandidateStore{},
		events:     &mocks.MockEventStore{},
		vetFlags:   &mocks.MockVetFlagStore{},
		shortlists: &mocks.MockShortlistStore{},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	e := NewEngine(stores.consents, stores.tags, nil, stores.candidates, stores.events, stores.vetFlags, stores.shortlists, logger)
	e.now = func() time.Time { return testNow }
	return e, stores
}

func strPtr(s string) *string {
	return &s
}

func publishedCandidate(itemID string, priority int) models.Candidate {
	return models.Candidate{
		ItemID:       itemID,
		TenantID:     "tenant-a",
		Category:     "wellness",
		ServiceTypes: []models.ServiceType{models.ServiceTypePromo},
		Species:      []string{"dog"},
		Priority:     priority,
		Description:  strPtr("desc"),
		Status:       models.CandidateStatusPublished,
		UpdatedTime:  1000,
	}
}

func dogTags(extra ...string) []models.PetTag {
	rows := []models.PetTag{
		{PetID: "pet-123", Tag: "species:dog", ComputedTime: 900},
		{PetID: "pet-123", Tag: "lifecycle:adult", ComputedTime: 900},
	}
	for _, tag := range extra {
		rows = append(rows, models.PetTag{PetID: "pet-123", Tag: tag, ComputedTime: 900})
	}
	return rows
}

// expectQuietPipeline wires the dependencies a plain home_feed selection
// touches: no consent rows, no shortlist, dog tags, no impressions, no vet
// flags.
func expectQuietPipeline(s *testStores) {
	s.consents.On("GetByOwner", mock.Anything, "owner-1").Return([]models.ConsentRecord{}, nil)
	s.shortlists.On("GetShortlist", mock.Anything, "pet-123").Return(nil, nil)
	s.tags.On("GetTags", mock.Anything, "pet-123").Return(dogTags(), nil)
	s.events.On("CountImpressions", mock.Anything, "owner-1", "pet-123", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", mock.Anything).Return(false, nil)
}

func homeFeedRequest() SelectRequest {
	return SelectRequest{
		OwnerID: "owner-1",
		PetID:   "pet-123",
		Context: models.ContextHomeFeed,
		Mode:    ModeNormal,
	}
}

func TestSelectPicksHighestPriorityCandidate(t *testing.T) {
	e, s := newTestEngine(t)
	expectQuietPipeline(s)
	s.candidates.On("GetPublishedCandidates", mock.Anything, models.ContextHomeFeed, models.ServiceTypePromo).
		Return([]models.Candidate{
			publishedCandidate("item-low", 10),
			publishedCandidate("item-high", 50),
		}, nil)

	selection, err := e.Select(context.Background(), homeFeedRequest())

	assert.NoError(t, err)
	assert.NotNil(t, selection)
	assert.Equal(t, "item-high", selection.PromoItemID)
	assert.Equal(t, models.SourceEligibility, selection.Source)
	assert.Equal(t, "tenant-a", selection.TenantID)
}

func TestSelectGlobalOptOutShortCircuits(t *testing.T) {
	e, s := newTestEngine(t)
	s.consents.On("GetByOwner", mock.Anything, "owner-1").Return([]models.ConsentRecord{
		{ConsentType: models.ConsentTypeMarketingGlobal, Scope: models.ScopeGlobal, Status: models.ConsentStatusOptedOut},
	}, nil)

	selection, err := e.Select(context.Background(), homeFeedRequest())

	assert.NoError(t, err)
	assert.Nil(t, selection)
	// Neither shortlist nor candidates may be consulted once the global
	// gate closes.
	s.shortlists.AssertNotCalled(t, "GetShortlist", mock.Anything, mock.Anything)
	s.candidates.AssertNotCalled(t, "GetPublishedCandidates", mock.Anything, mock.Anything, mock.Anything)
}

func TestSelectBrandOptOutExcludesCandidate(t *testing.T) {
	e, s := newTestEngine(t)
	s.consents.On("GetByOwner", mock.Anything, "owner-1").Return([]models.ConsentRecord{
		{ConsentType: models.ConsentTypeMarketingBrand, Scope: "tenant-a", Status: models.ConsentStatusOptedOut},
	}, nil)
	s.shortlists.On("GetShortlist", mock.Anything, "pet-123").Return(nil, nil)
	s.tags.On("GetTags", mock.Anything, "pet-123").Return(dogTags(), nil)
	s.events.On("CountImpressions", mock.Anything, "owner-1", "pet-123", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", mock.Anything).Return(false, nil)

	blocked := publishedCandidate("item-blocked", 50)
	allowed := publishedCandidate("item-allowed", 10)
	allowed.TenantID = "tenant-b"
	s.candidates.On("GetPublishedCandidates", mock.Anything, models.ContextHomeFeed, models.ServiceTypePromo).
		Return([]models.Candidate{blocked, allowed}, nil)

	selection, err := e.Select(context.Background(), homeFeedRequest())

	assert.NoError(t, err)
	assert.NotNil(t, selection)
	assert.Equal(t, "item-allowed", selection.PromoItemID)
}

func TestSelectVetVetoAppliesInForcedPreview(t *testing.T) {
	e, s := newTestEngine(t)
	// Forced preview never reads consent caps or shortlists, but the veto
	// still removes the flagged item.
	s.consents.On("GetByOwner", mock.Anything, "owner-1").Return([]models.ConsentRecord{
		{ConsentType: models.ConsentTypeMarketingGlobal, Scope: models.ScopeGlobal, Status: models.ConsentStatusOptedOut},
	}, nil)
	s.tags.On("GetTags", mock.Anything, "pet-123").Return(dogTags(), nil)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", "item-flagged").Return(true, nil)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", "item-clean").Return(false, nil)
	s.candidates.On("GetPublishedCandidates", mock.Anything, models.ContextHomeFeed, models.ServiceTypePromo).
		Return([]models.Candidate{
			publishedCandidate("item-flagged", 50),
			publishedCandidate("item-clean", 10),
		}, nil)

	req := homeFeedRequest()
	req.Mode = ModeForcedPreview
	selection, err := e.Select(context.Background(), req)

	assert.NoError(t, err)
	assert.NotNil(t, selection)
	assert.Equal(t, "item-clean", selection.PromoItemID)
	s.events.AssertNotCalled(t, "CountImpressions", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSelectCandidateFetchFailsClosed(t *testing.T) {
	e, s := newTestEngine(t)
	s.consents.On("GetByOwner", mock.Anything, "owner-1").Return([]models.ConsentRecord{}, nil)
	s.shortlists.On("GetShortlist", mock.Anything, "pet-123").Return(nil, nil)
	s.tags.On("GetTags", mock.Anything, "pet-123").Return(dogTags(), nil)
	s.candidates.On("GetPublishedCandidates", mock.Anything, models.ContextHomeFeed, models.ServiceTypePromo).
		Return(nil, errors.New("db down"))

	selection, err := e.Select(context.Background(), homeFeedRequest())

	assert.NoError(t, err)
	assert.Nil(t, selection)
}

func TestSelectConsentStoreFailureFallsBackToDefaults(t *testing.T) {
	e, s := newTestEngine(t)
	s.consents.On("GetByOwner", mock.Anything, "owner-1").Return(nil, errors.New("db down"))
	s.shortlists.On("GetShortlist", mock.Anything, "pet-123").Return(nil, nil)
	s.tags.On("GetTags", mock.Anything, "pet-123").Return(dogTags(), nil)
	s.events.On("CountImpressions", mock.Anything, "owner-1", "pet-123", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", mock.Anything).Return(false, nil)

	// Default marketing consent is opted in, so a promo candidate still
	// goes out; a nutrition candidate must not.
	nutrition := publishedCandidate("item-nutrition", 90)
	nutrition.ServiceTypes = []models.ServiceType{models.ServiceTypeNutrition}
	s.candidates.On("GetPublishedCandidates", mock.Anything, models.ContextHomeFeed, models.ServiceTypePromo).
		Return([]models.Candidate{nutrition, publishedCandidate("item-promo", 10)}, nil)

	selection, err := e.Select(context.Background(), homeFeedRequest())

	assert.NoError(t, err)
	assert.NotNil(t, selection)
	assert.Equal(t, "item-promo", selection.PromoItemID)
}

func TestSelectTagStoreFailureDegradesToEmptySnapshot(t *testing.T) {
	e, s := newTestEngine(t)
	s.consents.On("GetByOwner", mock.Anything, "owner-1").Return([]models.ConsentRecord{}, nil)
	s.shortlists.On("GetShortlist", mock.Anything, "pet-123").Return(nil, nil)
	s.tags.On("GetTags", mock.Anything, "pet-123").Return(nil, errors.New("db down"))
	s.events.On("CountImpressions", mock.Anything, "owner-1", "pet-123", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", mock.Anything).Return(false, nil)

	// Unknown species never excludes, so the dog-targeted item survives
	// with zero tag affinity.
	s.candidates.On("GetPublishedCandidates", mock.Anything, models.ContextHomeFeed, models.ServiceTypePromo).
		Return([]models.Candidate{publishedCandidate("item-a", 10)}, nil)

	selection, err := e.Select(context.Background(), homeFeedRequest())

	assert.NoError(t, err)
	assert.NotNil(t, selection)
	assert.Equal(t, "item-a", selection.PromoItemID)
	assert.Empty(t, selection.MatchedTags)
}

func TestSelectSessionCapBlocksSelection(t *testing.T) {
	e, s := newTestEngine(t)
	s.consents.On("GetByOwner", mock.Anything, "owner-1").Return([]models.ConsentRecord{}, nil)
	s.shortlists.On("GetShortlist", mock.Anything, "pet-123").Return(nil, nil)
	s.tags.On("GetTags", mock.Anything, "pet-123").Return(dogTags(), nil)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", mock.Anything).Return(false, nil)
	// One impression already today: home_feed's perSession cap of 1 is met.
	s.events.On("CountImpressions", mock.Anything, "owner-1", "pet-123", mock.Anything, mock.Anything, mock.Anything).Return(1, nil)
	s.candidates.On("GetPublishedCandidates", mock.Anything, models.ContextHomeFeed, models.ServiceTypePromo).
		Return([]models.Candidate{publishedCandidate("item-a", 10)}, nil)

	selection, err := e.Select(context.Background(), homeFeedRequest())

	assert.NoError(t, err)
	assert.Nil(t, selection)
}

func TestSelectDeterministicWithinDay(t *testing.T) {
	e, s := newTestEngine(t)
	expectQuietPipeline(s)
	pool := []models.Candidate{
		publishedCandidate("item-a", 10),
		publishedCandidate("item-b", 10),
		publishedCandidate("item-c", 10),
	}
	s.candidates.On("GetPublishedCandidates", mock.Anything, models.ContextHomeFeed, models.ServiceTypePromo).Return(pool, nil)

	first, err := e.Select(context.Background(), homeFeedRequest())
	assert.NoError(t, err)
	assert.NotNil(t, first)

	for i := 0; i < 5; i++ {
		again, err := e.Select(context.Background(), homeFeedRequest())
		assert.NoError(t, err)
		assert.NotNil(t, again)
		assert.Equal(t, first.PromoItemID, again.PromoItemID)
	}
}

func TestSelectInvalidRequest(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Select(context.Background(), SelectRequest{
		OwnerID: "owner-1", PetID: "pet-123", Context: "unknown_place",
	})
	assert.Error(t, err)

	_, err = e.Select(context.Background(), SelectRequest{
		OwnerID: "owner-1", PetID: "pet-123",
		Context:     models.ContextFAQView,
		ServiceType: models.ServiceTypeInsurance,
	})
	assert.Error(t, err, "insurance is not offered in faq_view")
}

func TestSelectDefaultsServiceTypeFromContext(t *testing.T) {
	e, s := newTestEngine(t)
	s.consents.On("GetByOwner", mock.Anything, "owner-1").Return([]models.ConsentRecord{
		{ConsentType: models.ConsentTypeNutritionPlan, Scope: models.ScopeGlobal, Status: models.ConsentStatusOptedIn},
	}, nil)
	s.shortlists.On("GetShortlist", mock.Anything, "pet-123").Return(nil, nil)
	s.tags.On("GetTags", mock.Anything, "pet-123").Return(dogTags(), nil)
	s.events.On("CountImpressions", mock.Anything, "owner-1", "pet-123", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", mock.Anything).Return(false, nil)

	item := publishedCandidate("item-food", 10)
	item.Category = "nutrition"
	item.ServiceTypes = []models.ServiceType{models.ServiceTypeNutrition}
	s.candidates.On("GetPublishedCandidates", mock.Anything, models.ContextNutritionReview, models.ServiceTypeNutrition).
		Return([]models.Candidate{item}, nil)

	req := homeFeedRequest()
	req.Context = models.ContextNutritionReview
	selection, err := e.Select(context.Background(), req)

	assert.NoError(t, err)
	assert.NotNil(t, selection)
	assert.Equal(t, "item-food", selection.PromoItemID)
	s.candidates.AssertCalled(t, "GetPublishedCandidates", mock.Anything, models.ContextNutritionReview, models.ServiceTypeNutrition)
}

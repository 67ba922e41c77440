package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/abupet/reco-engine/internal/models"
)

func dogSnapshot(tags ...string) *models.PetTagSnapshot {
	all := append([]string{"species:dog", "lifecycle:adult"}, tags...)
	return models.NewPetTagSnapshot("pet-123", models.SpeciesDog, models.LifecycleAdult, all)
}

func TestExcludedByTargeting(t *testing.T) {
	assert.False(t, excludedByTargeting("dog", nil, models.SpeciesAll), "empty target list accepts all")
	assert.False(t, excludedByTargeting("dog", []string{"all"}, models.SpeciesAll))
	assert.False(t, excludedByTargeting("dog", []string{"cat", "dog"}, models.SpeciesAll))
	assert.False(t, excludedByTargeting("", []string{"cat"}, models.SpeciesAll), "unknown value never excludes")
	assert.True(t, excludedByTargeting("dog", []string{"cat"}, models.SpeciesAll))
	assert.False(t, excludedByTargeting("senior", []string{"all"}, models.LifecycleAll))
	assert.True(t, excludedByTargeting("senior", []string{"puppy"}, models.LifecycleAll))
}

func TestFilterEligibleChecks(t *testing.T) {
	rule, _ := RuleFor(models.ContextPostVisit)
	req := SelectRequest{OwnerID: "owner-1", PetID: "pet-123", Context: models.ContextPostVisit, Mode: ModeNormal}
	consent := models.DefaultEffectiveConsent()
	snapshot := dogSnapshot()

	base := func(itemID string) models.Candidate {
		c := publishedCandidate(itemID, 10)
		c.Category = "wellness"
		return c
	}

	cases := []struct {
		name   string
		mutate func(*models.Candidate)
	}{
		{"wrong species", func(c *models.Candidate) { c.Species = []string{"cat"} }},
		{"wrong lifecycle", func(c *models.Candidate) { c.LifecycleTargets = []string{"puppy"} }},
		{"category outside rule", func(c *models.Candidate) { c.Category = "toys" }},
		{"campaign for another context", func(c *models.Candidate) {
			c.Campaign = &models.CampaignOverride{CampaignID: "camp-1", Contexts: []models.Context{models.ContextHomeFeed}}
		}},
		{"excluded tag present", func(c *models.Candidate) { c.TagsExclude = []string{"species:dog"} }},
		{"no description", func(c *models.Candidate) { c.Description = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, s := newTestEngine(t)
			s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", mock.Anything).Return(false, nil)

			candidate := base("item-x")
			tc.mutate(&candidate)

			eligible := e.filterEligible(context.Background(), req, rule, consent, snapshot, []models.Candidate{candidate})
			assert.Empty(t, eligible)
		})
	}

	t.Run("clean candidate survives", func(t *testing.T) {
		e, s := newTestEngine(t)
		s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", "item-x").Return(false, nil)

		eligible := e.filterEligible(context.Background(), req, rule, consent, snapshot, []models.Candidate{base("item-x")})
		assert.Len(t, eligible, 1)
	})
}

func TestFilterEligibleForcedPreviewKeepsOnlySafetyChecks(t *testing.T) {
	rule, _ := RuleFor(models.ContextPostVisit)
	req := SelectRequest{OwnerID: "owner-1", PetID: "pet-123", Context: models.ContextPostVisit, Mode: ModeForcedPreview}

	// A candidate that fails every preference check at once.
	candidate := publishedCandidate("item-x", 10)
	candidate.Species = []string{"cat"}
	candidate.LifecycleTargets = []string{"puppy"}
	candidate.Category = "toys"
	candidate.TagsExclude = []string{"species:dog"}

	consent := models.DefaultEffectiveConsent()
	consent.MarketingGlobal = models.ConsentStatusOptedOut

	t.Run("preference failures ignored", func(t *testing.T) {
		e, s := newTestEngine(t)
		s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", "item-x").Return(false, nil)

		eligible := e.filterEligible(context.Background(), req, rule, consent, dogSnapshot(), []models.Candidate{candidate})
		assert.Len(t, eligible, 1)
	})

	t.Run("vet flag still excludes", func(t *testing.T) {
		e, s := newTestEngine(t)
		s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", "item-x").Return(true, nil)

		eligible := e.filterEligible(context.Background(), req, rule, consent, dogSnapshot(), []models.Candidate{candidate})
		assert.Empty(t, eligible)
	})

	t.Run("missing description still excludes", func(t *testing.T) {
		e, s := newTestEngine(t)
		s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", "item-x").Return(false, nil)

		bare := candidate
		bare.Description = nil
		eligible := e.filterEligible(context.Background(), req, rule, consent, dogSnapshot(), []models.Candidate{bare})
		assert.Empty(t, eligible)
	})
}

func TestFilterEligibleVetStoreFailureSkipsVeto(t *testing.T) {
	rule, _ := RuleFor(models.ContextHomeFeed)
	req := SelectRequest{OwnerID: "owner-1", PetID: "pet-123", Context: models.ContextHomeFeed, Mode: ModeNormal}

	e, s := newTestEngine(t)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", "item-x").Return(false, errors.New("db down"))

	eligible := e.filterEligible(context.Background(), req, rule, models.DefaultEffectiveConsent(), dogSnapshot(), []models.Candidate{publishedCandidate("item-x", 10)})
	assert.Len(t, eligible, 1, "veto check failure must not exclude the candidate")
}

func TestMatchScoreCountsPresentIncludeTags(t *testing.T) {
	consent := models.DefaultEffectiveConsent()
	snapshot := dogSnapshot("needs:dental", "diet:dry")

	candidate := &models.Candidate{
		TagsInclude: []string{"needs:dental", "diet:dry", "needs:grooming"},
	}

	score, matched := matchScore(models.ContextHomeFeed, consent, snapshot, candidate)
	assert.Equal(t, 2, score)
	assert.ElementsMatch(t, []string{"needs:dental", "diet:dry"}, matched)
}

func TestMatchScoreClinicalTagGating(t *testing.T) {
	snapshot := dogSnapshot("clinical:renal", "diet:dry")
	candidate := &models.Candidate{TagsInclude: []string{"clinical:renal", "diet:dry"}}

	t.Run("no clinical consent", func(t *testing.T) {
		consent := models.DefaultEffectiveConsent()
		score, matched := matchScore(models.ContextPostVisit, consent, snapshot, candidate)
		assert.Equal(t, 1, score)
		assert.NotContains(t, matched, "clinical:renal")
	})

	t.Run("consent but low-sensitivity context", func(t *testing.T) {
		consent := models.DefaultEffectiveConsent()
		consent.ClinicalTags = models.ConsentStatusOptedIn
		score, _ := matchScore(models.ContextHomeFeed, consent, snapshot, candidate)
		assert.Equal(t, 1, score)
	})

	t.Run("consent in allowed context", func(t *testing.T) {
		consent := models.DefaultEffectiveConsent()
		consent.ClinicalTags = models.ConsentStatusOptedIn
		score, matched := matchScore(models.ContextPostVisit, consent, snapshot, candidate)
		assert.Equal(t, 2, score)
		assert.Contains(t, matched, "clinical:renal")
	})
}

func TestClinicalTagNeverExcludes(t *testing.T) {
	// A clinical include tag the pet lacks, with no clinical consent, must
	// not block the candidate; it only misses the score.
	rule, _ := RuleFor(models.ContextHomeFeed)
	req := SelectRequest{OwnerID: "owner-1", PetID: "pet-123", Context: models.ContextHomeFeed, Mode: ModeNormal}

	e, s := newTestEngine(t)
	s.vetFlags.On("HasActiveFlag", mock.Anything, "pet-123", "item-x").Return(false, nil)

	candidate := publishedCandidate("item-x", 10)
	candidate.TagsInclude = []string{"clinical:renal"}

	eligible := e.filterEligible(context.Background(), req, rule, models.DefaultEffectiveConsent(), dogSnapshot("clinical:renal"), []models.Candidate{candidate})
	assert.Len(t, eligible, 1)
	assert.Equal(t, 0, eligible[0].matchScore)
}

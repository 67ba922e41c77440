package engine

import (
	"context"
	"strings"

	"github.com/abupet/reco-engine/internal/metrics"
	"github.com/abupet/reco-engine/internal/models"
)

// speciesSynonyms normalizes the free-form species strings the tagging
// collaborator emits. Unknown values map to SpeciesUnknown, which disables
// species targeting for the pet instead of excluding it.
var speciesSynonyms = map[string]models.Species{
	"dog":      models.SpeciesDog,
	"cane":     models.SpeciesDog,
	"canine":   models.SpeciesDog,
	"perro":    models.SpeciesDog,
	"cat":      models.SpeciesCat,
	"gatto":    models.SpeciesCat,
	"gato":     models.SpeciesCat,
	"feline":   models.SpeciesCat,
	"rabbit":   models.SpeciesRabbit,
	"coniglio": models.SpeciesRabbit,
	"bird":     models.SpeciesBird,
	"uccello":  models.SpeciesBird,
	"reptile":  models.SpeciesReptile,
	"rettile":  models.SpeciesReptile,
	"exotic":   models.SpeciesExotic,
	"esotico":  models.SpeciesExotic,
}

// lifecycleSynonyms normalizes lifecycle tag values
var lifecycleSynonyms = map[string]models.LifecycleStage{
	"puppy":    models.LifecyclePuppy,
	"cucciolo": models.LifecyclePuppy,
	"kitten":   models.LifecyclePuppy,
	"adult":    models.LifecycleAdult,
	"adulto":   models.LifecycleAdult,
	"senior":   models.LifecycleSenior,
	"anziano":  models.LifecycleSenior,
}

// NormalizeSpecies maps a free-form species string to the closed enum
func NormalizeSpecies(raw string) models.Species {
	return speciesSynonyms[strings.ToLower(strings.TrimSpace(raw))]
}

// NormalizeLifecycle maps a free-form lifecycle string to the closed enum
func NormalizeLifecycle(raw string) models.LifecycleStage {
	return lifecycleSynonyms[strings.ToLower(strings.TrimSpace(raw))]
}

// readSnapshot fetches the pet's tag rows, triggering the external tagging
// collaborator once when none exist. Any failure degrades to an empty
// snapshot: the pet is scored with zero tag affinity, never excluded.
func (e *Engine) readSnapshot(ctx context.Context, petID, ownerID string) *models.PetTagSnapshot {
	rows, err := e.tags.GetTags(ctx, petID)
	if err != nil {
		e.logger.WithError(err).WithField("pet_id", petID).
			Warn("Tag store unavailable, degrading to empty tag set")
		metrics.RecordDependencyFailure("tag_store")
		return models.EmptyPetTagSnapshot(petID)
	}

	if len(rows) == 0 && e.tagComputer != nil {
		if err := e.tagComputer.ComputeTags(ctx, petID, ownerID); err != nil {
			e.logger.WithError(err).WithField("pet_id", petID).
				Warn("Tag computation failed, degrading to empty tag set")
			metrics.RecordDependencyFailure("tag_service")
			return models.EmptyPetTagSnapshot(petID)
		}

		rows, err = e.tags.GetTags(ctx, petID)
		if err != nil {
			e.logger.WithError(err).WithField("pet_id", petID).
				Warn("Tag re-read failed after computation, degrading to empty tag set")
			metrics.RecordDependencyFailure("tag_store")
			return models.EmptyPetTagSnapshot(petID)
		}
	}

	return buildSnapshot(petID, rows)
}

// buildSnapshot derives species and lifecycle stage from the most recently
// computed species:/lifecycle: tags. Rows arrive newest first.
func buildSnapshot(petID string, rows []models.PetTag) *models.PetTagSnapshot {
	species := models.SpeciesUnknown
	lifecycle := models.LifecycleUnknown

	tags := make([]string, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, row.Tag)

		if species == models.SpeciesUnknown && strings.HasPrefix(row.Tag, models.SpeciesTagPrefix) {
			species = NormalizeSpecies(strings.TrimPrefix(row.Tag, models.SpeciesTagPrefix))
		}
		if lifecycle == models.LifecycleUnknown && strings.HasPrefix(row.Tag, models.LifecycleTagPrefix) {
			lifecycle = NormalizeLifecycle(strings.TrimPrefix(row.Tag, models.LifecycleTagPrefix))
		}
	}

	return models.NewPetTagSnapshot(petID, species, lifecycle, tags)
}

package models

import (
	"strings"
)

// Species is the pet's normalized species
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesRabbit  Species = "rabbit"
	SpeciesBird    Species = "bird"
	SpeciesReptile Species = "reptile"
	SpeciesExotic  Species = "exotic"
	SpeciesUnknown Species = ""
)

// LifecycleStage is the pet's life stage derived from lifecycle tags
type LifecycleStage string

const (
	LifecyclePuppy   LifecycleStage = "puppy"
	LifecycleAdult   LifecycleStage = "adult"
	LifecycleSenior  LifecycleStage = "senior"
	LifecycleUnknown LifecycleStage = ""
)

// Tag namespace prefixes
const (
	ClinicalTagPrefix  = "clinical:"
	LifecycleTagPrefix = "lifecycle:"
	SpeciesTagPrefix   = "species:"
)

// IsClinicalTag reports whether a tag is high-sensitivity
func IsClinicalTag(tag string) bool {
	return strings.HasPrefix(tag, ClinicalTagPrefix)
}

// PetTag represents one row of the PET_TAG table
type PetTag struct {
	PetID        string `db:"PET_ID" json:"petId"`
	Tag          string `db:"TAG" json:"tag"`
	ComputedTime int64  `db:"COMPUTED_TIME" json:"computedTime"`
}

// PetTagSnapshot is the read-only view of a pet's current tag set, species
// and lifecycle stage. The engine never writes it; an external tagging
// collaborator computes the underlying rows.
type PetTagSnapshot struct {
	PetID     string         `json:"petId"`
	Species   Species        `json:"species"`
	Lifecycle LifecycleStage `json:"lifecycleStage"`
	Tags      []string       `json:"tags"`

	tagIndex map[string]struct{}
}

// NewPetTagSnapshot builds a snapshot with an index over its tag set
func NewPetTagSnapshot(petID string, species Species, lifecycle LifecycleStage, tags []string) *PetTagSnapshot {
	index := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		index[tag] = struct{}{}
	}
	return &PetTagSnapshot{
		PetID:     petID,
		Species:   species,
		Lifecycle: lifecycle,
		Tags:      tags,
		tagIndex:  index,
	}
}

// EmptyPetTagSnapshot is the degraded snapshot used when tags cannot be
// fetched or computed: the pet is scored with zero tag affinity, not excluded.
func EmptyPetTagSnapshot(petID string) *PetTagSnapshot {
	return NewPetTagSnapshot(petID, SpeciesUnknown, LifecycleUnknown, nil)
}

// HasTag reports whether the snapshot contains the given tag
func (s *PetTagSnapshot) HasTag(tag string) bool {
	_, ok := s.tagIndex[tag]
	return ok
}

package models

// Vet flag statuses
const (
	VetFlagStatusActive   = "active"
	VetFlagStatusResolved = "resolved"
)

// VetFlag represents the VET_FLAG table: a clinician's veto of a specific
// item for a specific pet. An active flag is a hard exclusion in every
// decision mode.
type VetFlag struct {
	FlagID      string `db:"FLAG_ID" json:"flagId"`
	PetID       string `db:"PET_ID" json:"petId"`
	ItemID      string `db:"ITEM_ID" json:"promoItemId"`
	Status      string `db:"STATUS" json:"status"`
	CreatedTime int64  `db:"CREATED_TIME" json:"createdTime"`
}

package dao

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abupet/reco-engine/internal/database"
	"github.com/abupet/reco-engine/internal/models"
	"github.com/abupet/reco-engine/pkg/utils"
)

// CandidateDAO handles read access to published promo items and their
// campaign overrides
type CandidateDAO struct {
	db *database.DB
}

// NewCandidateDAO creates a new CandidateDAO instance
func NewCandidateDAO(db *database.DB) *CandidateDAO {
	return &CandidateDAO{db: db}
}

// candidateRow is the raw left-joined row shape. JSON columns come back as
// loosely-typed arrays and are validated into closed types by decode.
type candidateRow struct {
	ItemID              string            `db:"ITEM_ID"`
	TenantID            string            `db:"TENANT_ID"`
	Category            string            `db:"CATEGORY"`
	ServiceTypes        models.StringList `db:"SERVICE_TYPES"`
	Species             models.StringList `db:"SPECIES"`
	LifecycleTargets    models.StringList `db:"LIFECYCLE_TARGETS"`
	TagsInclude         models.StringList `db:"TAGS_INCLUDE"`
	TagsExclude         models.StringList `db:"TAGS_EXCLUDE"`
	Priority            int               `db:"PRIORITY"`
	Description         *string           `db:"DESCRIPTION"`
	ExtendedDescription *string           `db:"EXTENDED_DESCRIPTION"`
	Status              string            `db:"STATUS"`
	UpdatedTime         int64             `db:"UPDATED_TIME"`
	CampaignID          *string           `db:"CAMPAIGN_ID"`
	CampaignContexts    models.StringList `db:"CAMPAIGN_CONTEXTS"`
	CampaignCap         models.JSON       `db:"CAMPAIGN_CAP"`
	CampaignPriority    *int              `db:"CAMPAIGN_PRIORITY"`
}

// GetPublishedCandidates returns one candidate per published item, joined to
// at most one currently active campaign override. When an item has several
// active campaigns, the one targeting the requested context wins, then the
// higher campaign priority. When serviceType is non-empty, only items whose
// service type list contains it are returned.
func (dao *CandidateDAO) GetPublishedCandidates(ctx context.Context, context models.Context, serviceType models.ServiceType) ([]models.Candidate, error) {
	now := utils.GetCurrentTimeMillis()

	query := `
		SELECT i.ITEM_ID, i.TENANT_ID, i.CATEGORY, i.SERVICE_TYPES, i.SPECIES,
		       i.LIFECYCLE_TARGETS, i.TAGS_INCLUDE, i.TAGS_EXCLUDE, i.PRIORITY,
		       i.DESCRIPTION, i.EXTENDED_DESCRIPTION, i.STATUS, i.UPDATED_TIME,
		       c.CAMPAIGN_ID, c.CONTEXTS AS CAMPAIGN_CONTEXTS,
		       c.FREQUENCY_CAP AS CAMPAIGN_CAP, c.PRIORITY AS CAMPAIGN_PRIORITY
		FROM PROMO_ITEM i
		LEFT JOIN PROMO_CAMPAIGN c
		  ON c.ITEM_ID = i.ITEM_ID
		 AND c.STATUS = 'active'
		 AND c.START_TIME <= ?
		 AND c.END_TIME >= ?
		WHERE i.STATUS = 'published'
	`
	args := []interface{}{now, now}

	if serviceType != "" {
		query += ` AND JSON_CONTAINS(i.SERVICE_TYPES, JSON_QUOTE(?))`
		args = append(args, string(serviceType))
	}

	query += ` ORDER BY i.PRIORITY DESC, i.ITEM_ID`

	var rows []candidateRow
	if err := dao.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get published candidates: %w", err)
	}

	return foldCandidateRows(rows, context)
}

// foldCandidateRows collapses the join result to one Candidate per item,
// keeping the preferred campaign override per item
func foldCandidateRows(rows []candidateRow, context models.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	index := make(map[string]int)

	for i := range rows {
		row := &rows[i]

		pos, seen := index[row.ItemID]
		if !seen {
			candidate, err := row.decode()
			if err != nil {
				return nil, err
			}
			index[row.ItemID] = len(candidates)
			candidates = append(candidates, *candidate)
			continue
		}

		// Duplicate row means another active campaign for the same item
		campaign, err := row.decodeCampaign()
		if err != nil {
			return nil, err
		}
		if campaign == nil {
			continue
		}
		if preferCampaign(candidates[pos].Campaign, campaign, context) {
			candidates[pos].Campaign = campaign
		}
	}

	return candidates, nil
}

// preferCampaign reports whether next should replace current: a campaign
// targeting the requested context beats one that does not, then the higher
// priority wins
func preferCampaign(current, next *models.CampaignOverride, context models.Context) bool {
	if current == nil {
		return true
	}
	currentMatches := current.HasContext(context)
	nextMatches := next.HasContext(context)
	if currentMatches != nextMatches {
		return nextMatches
	}
	return next.Priority > current.Priority
}

// decode converts a raw row to a Candidate, validating the loosely-typed
// JSON columns into closed enums
func (row *candidateRow) decode() (*models.Candidate, error) {
	serviceTypes := make([]models.ServiceType, 0, len(row.ServiceTypes))
	for _, raw := range row.ServiceTypes {
		st, err := models.ParseServiceType(raw)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", row.ItemID, err)
		}
		serviceTypes = append(serviceTypes, st)
	}

	campaign, err := row.decodeCampaign()
	if err != nil {
		return nil, err
	}

	return &models.Candidate{
		ItemID:              row.ItemID,
		TenantID:            row.TenantID,
		Category:            row.Category,
		ServiceTypes:        serviceTypes,
		Species:             row.Species,
		LifecycleTargets:    row.LifecycleTargets,
		TagsInclude:         row.TagsInclude,
		TagsExclude:         row.TagsExclude,
		Priority:            row.Priority,
		Description:         row.Description,
		ExtendedDescription: row.ExtendedDescription,
		Status:              row.Status,
		UpdatedTime:         row.UpdatedTime,
		Campaign:            campaign,
	}, nil
}

// decodeCampaign converts the campaign columns of a row, returning nil when
// the left join produced no active campaign
func (row *candidateRow) decodeCampaign() (*models.CampaignOverride, error) {
	if row.CampaignID == nil {
		return nil, nil
	}

	contexts := make([]models.Context, 0, len(row.CampaignContexts))
	for _, raw := range row.CampaignContexts {
		c, err := models.ParseContext(raw)
		if err != nil {
			return nil, fmt.Errorf("campaign %s: %w", *row.CampaignID, err)
		}
		contexts = append(contexts, c)
	}

	var cap *models.FrequencyCap
	if len(row.CampaignCap) > 0 {
		var decoded models.FrequencyCap
		if err := json.Unmarshal(row.CampaignCap, &decoded); err != nil {
			return nil, fmt.Errorf("campaign %s: invalid frequency cap: %w", *row.CampaignID, err)
		}
		if !decoded.IsZero() {
			cap = &decoded
		}
	}

	priority := 0
	if row.CampaignPriority != nil {
		priority = *row.CampaignPriority
	}

	return &models.CampaignOverride{
		CampaignID:   *row.CampaignID,
		Contexts:     contexts,
		FrequencyCap: cap,
		Priority:     priority,
	}, nil
}

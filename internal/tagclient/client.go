package tagclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abupet/reco-engine/internal/config"
)

// TagClient triggers tag recomputation on the external tagging service.
// Calls are bounded by the configured timeout; the tagging service writes
// the resulting rows to PET_TAG itself.
type TagClient struct {
	httpClient *http.Client
	config     *config.TagServiceConfig
	logger     *logrus.Logger
}

// computeRequest is the payload sent to the tagging service
type computeRequest struct {
	PetID   string `json:"petId"`
	OwnerID string `json:"ownerId"`
}

// computeResponse is the response from the tagging service
type computeResponse struct {
	Success      bool   `json:"success"`
	TagCount     int    `json:"tagCount,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// NewTagClient creates a new tag client instance
func NewTagClient(cfg *config.TagServiceConfig, logger *logrus.Logger) *TagClient {
	timeout := 5 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &TagClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
		logger: logger,
	}
}

// ComputeTags asks the tagging service to recompute the tag set for a pet.
// Returns an error when the service is unreachable, times out, or reports a
// failure; the caller degrades to an empty tag set in that case.
func (c *TagClient) ComputeTags(ctx context.Context, petID, ownerID string) error {
	if !c.config.Enabled || c.config.BaseURL == "" {
		c.logger.Debug("Tag service not configured, skipping computation")
		return nil
	}

	url := c.config.BaseURL + "/api/v1/tags/compute"

	jsonData, err := json.Marshal(computeRequest{PetID: petID, OwnerID: ownerID})
	if err != nil {
		return fmt.Errorf("failed to marshal compute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create compute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.WithFields(logrus.Fields{
		"pet_id": petID,
		"url":    url,
	}).Debug("Calling tag service")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tag service call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read tag service response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tag service returned status %d: %s", resp.StatusCode, string(body))
	}

	var computeResp computeResponse
	if err := json.Unmarshal(body, &computeResp); err != nil {
		return fmt.Errorf("invalid tag service response: %w", err)
	}

	if !computeResp.Success {
		return fmt.Errorf("tag computation failed: %s %s", computeResp.ErrorCode, computeResp.ErrorMessage)
	}

	c.logger.WithFields(logrus.Fields{
		"pet_id":    petID,
		"tag_count": computeResp.TagCount,
	}).Debug("Tag computation completed")

	return nil
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/abupet/reco-engine/internal/models"
)

// MockConsentStore is a mock implementation of engine.ConsentStore
type MockConsentStore struct {
	mock.Mock
}

func (m *MockConsentStore) GetByOwner(ctx context.Context, ownerID string) ([]models.ConsentRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConsentRecord), args.Error(1)
}

// MockTagStore is a mock implementation of engine.TagStore
type MockTagStore struct {
	mock.Mock
}

func (m *MockTagStore) GetTags(ctx context.Context, petID string) ([]models.PetTag, error) {
	args := m.Called(ctx, petID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PetTag), args.Error(1)
}

// MockTagComputer is a mock implementation of engine.TagComputer
type MockTagComputer struct {
	mock.Mock
}

func (m *MockTagComputer) ComputeTags(ctx context.Context, petID, ownerID string) error {
	args := m.Called(ctx, petID, ownerID)
	return args.Error(0)
}

// MockCandidateStore is a mock implementation of engine.CandidateStore
type MockCandidateStore struct {
	mock.Mock
}

func (m *MockCandidateStore) GetPublishedCandidates(ctx context.Context, context models.Context, serviceType models.ServiceType) ([]models.Candidate, error) {
	args := m.Called(ctx, context, serviceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Candidate), args.Error(1)
}

// MockEventStore is a mock implementation of engine.EventStore
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) CountImpressions(ctx context.Context, ownerID, petID string, context models.Context, itemID string, since int64) (int, error) {
	args := m.Called(ctx, ownerID, petID, context, itemID, since)
	return args.Int(0), args.Error(1)
}

// MockVetFlagStore is a mock implementation of engine.VetFlagStore
type MockVetFlagStore struct {
	mock.Mock
}

func (m *MockVetFlagStore) HasActiveFlag(ctx context.Context, petID, itemID string) (bool, error) {
	args := m.Called(ctx, petID, itemID)
	return args.Bool(0), args.Error(1)
}

// MockShortlistStore is a mock implementation of engine.ShortlistStore
type MockShortlistStore struct {
	mock.Mock
}

func (m *MockShortlistStore) GetShortlist(ctx context.Context, petID string) ([]models.ShortlistEntry, error) {
	args := m.Called(ctx, petID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ShortlistEntry), args.Error(1)
}

func (m *MockShortlistStore) InvalidateShortlist(ctx context.Context, petID string) error {
	args := m.Called(ctx, petID)
	return args.Error(0)
}

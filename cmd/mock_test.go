package main

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/daybrief/digest-cli/internal/model"
)

// --- Store mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) UpsertArticles(ctx context.Context, articles []model.Article) (int, error) {
	args := m.Called(ctx, articles)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) ListUnprocessedArticles(ctx context.Context, since time.Time, limit int) ([]model.Article, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *mockStore) CommitSegmentation(ctx context.Context, articleIDs []string, segments []model.Segment, links []model.ArticleSegmentLink) error {
	args := m.Called(ctx, articleIDs, segments, links)
	return args.Error(0)
}

func (m *mockStore) ListRecentSegments(ctx context.Context, since time.Time, limit int) ([]model.Segment, error) {
	args := m.Called(ctx, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Segment), args.Error(1)
}

func (m *mockStore) ListUsers(ctx context.Context) ([]model.UserPreferences, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserPreferences), args.Error(1)
}

func (m *mockStore) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserPreferences), args.Error(1)
}

func (m *mockStore) UpsertPreferences(ctx context.Context, prefs model.UserPreferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

func (m *mockStore) RecordInteraction(ctx context.Context, interaction model.UserInteraction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *mockStore) ListInteractions(ctx context.Context, userID string) ([]model.UserInteraction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserInteraction), args.Error(1)
}

func (m *mockStore) UpsertScores(ctx context.Context, scores []model.UserSegmentScore) error {
	args := m.Called(ctx, scores)
	return args.Error(0)
}

func (m *mockStore) GetScores(ctx context.Context, userID string, segmentIDs []string) (map[string]float64, error) {
	args := m.Called(ctx, userID, segmentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

package services

import (
	"collection-route-service/internal/domain"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRouteStore struct {
	mock.Mock
}

func (m *mockRouteStore) InsertRoute(ctx context.Context, r domain.RouteRecord) (int64, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRouteStore) InsertSavings(ctx context.Context, s domain.SavingsRecord) error {
	return m.Called(ctx, s).Error(0)
}

func sampleRecordRequest() RecordRouteRequest {
	return RecordRouteRequest{
		RouteDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Route: domain.RouteResult{
			Polyline:         []domain.LngLat{{-51.185, -29.175}, {-51.19, -29.18}},
			TotalDistanceKm:  12.4,
			TotalDurationMin: 27.6,
		},
		ContainerIDs: []int{4, 9, 2},
		Savings:      domain.Savings{FuelSavedL: 3.2, CO2SavedKg: 8.5, CostSaved: 17.6, TimeSavedMin: 12, EfficiencyGainPct: 18},
	}
}

func TestRecordRouteWritesRouteThenSavings(t *testing.T) {
	store := &mockRouteStore{}
	req := sampleRecordRequest()

	store.On("InsertRoute", mock.Anything, mock.MatchedBy(func(r domain.RouteRecord) bool {
		return r.Status == domain.StatusCompleted &&
			r.ContainerCount == 3 &&
			r.TotalDurationMin == 28 &&
			r.TotalDistanceKm == 12.4 &&
			r.RouteDate.Equal(req.RouteDate)
	})).Return(int64(42), nil).Once()
	store.On("InsertSavings", mock.Anything, domain.SavingsRecord{RouteID: 42, Savings: req.Savings}).Return(nil).Once()

	id, err := NewSavingsRecorder(store).RecordRoute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	store.AssertExpectations(t)
}

func TestRecordRouteSkipsSavingsWhenRouteWriteFails(t *testing.T) {
	store := &mockRouteStore{}
	store.On("InsertRoute", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection refused")).Once()

	id, err := NewSavingsRecorder(store).RecordRoute(context.Background(), sampleRecordRequest())

	var perr *domain.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "insert route", perr.Op)
	assert.Zero(t, perr.RouteID)
	assert.Zero(t, id)
	store.AssertNotCalled(t, "InsertSavings", mock.Anything, mock.Anything)
}

func TestRecordRouteRejectsInvalidGeneratedID(t *testing.T) {
	store := &mockRouteStore{}
	store.On("InsertRoute", mock.Anything, mock.Anything).Return(int64(0), nil).Once()

	_, err := NewSavingsRecorder(store).RecordRoute(context.Background(), sampleRecordRequest())

	var perr *domain.PersistenceError
	require.True(t, errors.As(err, &perr))
	store.AssertNotCalled(t, "InsertSavings", mock.Anything, mock.Anything)
}

func TestRecordRouteKeepsRouteWhenSavingsWriteFails(t *testing.T) {
	store := &mockRouteStore{}
	cause := errors.New("unique violation")
	store.On("InsertRoute", mock.Anything, mock.Anything).Return(int64(7), nil).Once()
	store.On("InsertSavings", mock.Anything, mock.Anything).Return(cause).Once()

	id, err := NewSavingsRecorder(store).RecordRoute(context.Background(), sampleRecordRequest())

	var perr *domain.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int64(7), perr.RouteID)
	assert.ErrorIs(t, err, cause)
	store.AssertExpectations(t)
}

func TestRecordRouteDefaultsRouteDateToNow(t *testing.T) {
	now := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)
	store := &mockRouteStore{}
	store.On("InsertRoute", mock.Anything, mock.MatchedBy(func(r domain.RouteRecord) bool {
		return r.RouteDate.Equal(now)
	})).Return(int64(1), nil).Once()
	store.On("InsertSavings", mock.Anything, mock.Anything).Return(nil).Once()

	req := sampleRecordRequest()
	req.RouteDate = time.Time{}

	rec := NewSavingsRecorder(store)
	rec.Now = func() time.Time { return now }

	_, err := rec.RecordRoute(context.Background(), req)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

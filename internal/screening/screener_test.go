// internal/screening/screener_test.go
package screening

import (
	"context"
	"errors"
	"testing"
	"time"

	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeWatchlist struct {
	entities []models.WatchlistEntity
	err      error
	calls    int
}

func (f *fakeWatchlist) QueryActive(ctx context.Context, substring string) ([]models.WatchlistEntity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entities, nil
}

type fakeHistory struct {
	recorded []*models.ScreeningResult
	err      error
}

func (f *fakeHistory) RecordScreening(ctx context.Context, result *models.ScreeningResult) error {
	f.recorded = append(f.recorded, result)
	return f.err
}

func createTestScreener(t *testing.T, watchlist WatchlistProvider, history HistoryRecorder, cache *redis.Client) *Screener {
	config := DefaultConfig()
	if cache == nil {
		config.CacheTTL = 0
	}
	return New(watchlist, history, cache, config, logger.NewTestLogger(t))
}

func sanctionsEntity(id, name string, aliases ...string) models.WatchlistEntity {
	return models.WatchlistEntity{
		ID:       id,
		ListName: "OFAC SDN",
		Name:     name,
		Aliases:  aliases,
		Status:   models.StatusActive,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestScreener_ScreenEntity_Match(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{
			sanctionsEntity("wl-1", "John Doe Sanctions Test", "J. Doe", "Johnny Doe"),
		},
	}
	history := &fakeHistory{}
	s := createTestScreener(t, watchlist, history, nil)

	result := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	require.Equal(t, models.ScreeningOK, result.Status)
	assert.True(t, result.MatchFound)
	assert.InDelta(t, 0.8, result.HighestScore, 1e-9)
	assert.Equal(t, models.RiskHigh, result.RiskLevel)

	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, "wl-1", match.EntityID)
	assert.Equal(t, "John Doe Sanctions Test", match.MatchedOn)
	assert.Equal(t, models.MatchSanctions, match.MatchType)
	assert.InDelta(t, 0.8, match.SimilarityScore, 1e-9)
}

func TestScreener_ScreenEntity_NoMatch(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{
			sanctionsEntity("wl-1", "Completely Different Person"),
		},
	}
	history := &fakeHistory{}
	s := createTestScreener(t, watchlist, history, nil)

	result := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	assert.Equal(t, models.ScreeningOK, result.Status)
	assert.False(t, result.MatchFound)
	assert.Equal(t, 0.0, result.HighestScore)
	assert.Equal(t, models.RiskMinimal, result.RiskLevel)
	assert.Empty(t, result.Matches)
}

func TestScreener_ScreenEntity_BestAliasWins(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{
			sanctionsEntity("wl-1", "Unrelated Registered Name", "John Doe"),
		},
	}
	s := createTestScreener(t, watchlist, &fakeHistory{}, nil)

	result := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	require.True(t, result.MatchFound)
	assert.Equal(t, "John Doe", result.Matches[0].MatchedOn)
	assert.InDelta(t, 1.0, result.HighestScore, 1e-9)
	assert.Equal(t, models.RiskCritical, result.RiskLevel)
}

func TestScreener_ScreenEntity_MatchesOrderedByScore(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{
			sanctionsEntity("wl-low", "John Doe Sanctions Test"),
			sanctionsEntity("wl-high", "John Doe"),
		},
	}
	s := createTestScreener(t, watchlist, &fakeHistory{}, nil)

	result := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	require.Len(t, result.Matches, 2)
	assert.Equal(t, "wl-high", result.Matches[0].EntityID)
	assert.Equal(t, "wl-low", result.Matches[1].EntityID)
	assert.GreaterOrEqual(t, result.Matches[0].SimilarityScore, result.Matches[1].SimilarityScore)
}

func TestScreener_ScreenEntity_PEPListClassified(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{
			{ID: "pep-1", ListName: "EU PEP Register", Name: "John Doe", Status: models.StatusActive},
		},
	}
	s := createTestScreener(t, watchlist, &fakeHistory{}, nil)

	result := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	require.True(t, result.MatchFound)
	assert.Equal(t, models.MatchPEP, result.Matches[0].MatchType)
}

func TestScreener_ScreenEntity_ThresholdFiltersWeakMatches(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{
			sanctionsEntity("wl-1", "John Doe Sanctions Test"), // scores 0.8
		},
	}
	s := createTestScreener(t, watchlist, &fakeHistory{}, nil)

	strict := s.ScreenEntityWithThreshold(context.Background(), "John Doe", models.EntityIndividual, 0.9)
	assert.False(t, strict.MatchFound)

	loose := s.ScreenEntityWithThreshold(context.Background(), "John Doe", models.EntityIndividual, 0.5)
	assert.True(t, loose.MatchFound)
}

// ==========================
// Failure Semantics Tests
// ==========================

func TestScreener_ScreenEntity_StorageFailureBecomesErrorResult(t *testing.T) {
	watchlist := &fakeWatchlist{err: errors.New("connection refused")}
	history := &fakeHistory{}
	s := createTestScreener(t, watchlist, history, nil)

	result := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	assert.Equal(t, models.ScreeningError, result.Status)
	assert.Contains(t, result.Error, "connection refused")
	assert.False(t, result.MatchFound)
	assert.Empty(t, result.Matches)

	// The failed attempt is still audit-logged.
	require.Len(t, history.recorded, 1)
	assert.Equal(t, models.ScreeningError, history.recorded[0].Status)
}

func TestScreener_ScreenEntity_HistoryFailureDoesNotChangeOutcome(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{sanctionsEntity("wl-1", "John Doe")},
	}
	history := &fakeHistory{err: errors.New("audit table locked")}
	s := createTestScreener(t, watchlist, history, nil)

	result := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	assert.Equal(t, models.ScreeningOK, result.Status)
	assert.True(t, result.MatchFound)
}

func TestScreener_ScreenEntity_CacheFailureDoesNotChangeOutcome(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{sanctionsEntity("wl-1", "John Doe")},
	}
	cache, mock := redismock.NewClientMock()
	mock.ExpectGet("screening:john doe:individual:0.80").SetErr(errors.New("redis down"))

	s := New(watchlist, &fakeHistory{}, cache, DefaultConfig(), logger.NewTestLogger(t))
	result := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	assert.Equal(t, models.ScreeningOK, result.Status)
	assert.True(t, result.MatchFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Audit & Caching Tests
// ==========================

func TestScreener_ScreenEntity_EveryCallRecordedInHistory(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{sanctionsEntity("wl-1", "John Doe")},
	}
	history := &fakeHistory{}
	s := createTestScreener(t, watchlist, history, nil)

	s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)
	s.ScreenEntity(context.Background(), "Nobody At All", models.EntityIndividual)

	require.Len(t, history.recorded, 2)
	assert.True(t, history.recorded[0].MatchFound)
	assert.False(t, history.recorded[1].MatchFound)
}

func TestScreener_ScreenEntity_CachedResultSkipsBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{sanctionsEntity("wl-1", "John Doe")},
	}
	history := &fakeHistory{}
	config := Config{DefaultThreshold: 0.8, CacheTTL: time.Minute}
	s := New(watchlist, history, cache, config, logger.NewTestLogger(t))

	first := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)
	second := s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	assert.Equal(t, 1, watchlist.calls, "second call must be served from cache")
	assert.Equal(t, first.MatchFound, second.MatchFound)
	assert.InDelta(t, first.HighestScore, second.HighestScore, 1e-9)

	// The cache short-circuits the backend, never the audit trail.
	require.Len(t, history.recorded, 2)
	assert.Equal(t, history.recorded[0].Query, history.recorded[1].Query)
	assert.True(t, history.recorded[1].MatchFound)
}

func TestScreener_ScreenEntity_ErrorResultsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	watchlist := &fakeWatchlist{err: errors.New("backend down")}
	config := Config{DefaultThreshold: 0.8, CacheTTL: time.Minute}
	s := New(watchlist, &fakeHistory{}, cache, config, logger.NewTestLogger(t))

	s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)
	s.ScreenEntity(context.Background(), "John Doe", models.EntityIndividual)

	assert.Equal(t, 2, watchlist.calls, "error results must not be served from cache")
}

// ==========================
// Batch Tests
// ==========================

func TestScreener_ScreenBatch_PreservesInputOrder(t *testing.T) {
	watchlist := &fakeWatchlist{
		entities: []models.WatchlistEntity{sanctionsEntity("wl-1", "John Doe")},
	}
	s := createTestScreener(t, watchlist, &fakeHistory{}, nil)

	inputs := []Input{
		{Name: "John Doe", EntityType: models.EntityIndividual},
		{Name: "Acme Trading LLC", EntityType: models.EntityOrg},
		{Name: "John Doe", EntityType: models.EntityIndividual},
	}
	results := s.ScreenBatch(context.Background(), inputs)

	require.Len(t, results, 3)
	for i, in := range inputs {
		assert.Equal(t, in.Name, results[i].Query)
		assert.Equal(t, in.EntityType, results[i].EntityType)
	}
	assert.True(t, results[0].MatchFound)
	assert.False(t, results[1].MatchFound)
}

func TestScreener_ScreenBatch_Empty(t *testing.T) {
	s := createTestScreener(t, &fakeWatchlist{}, &fakeHistory{}, nil)
	assert.Empty(t, s.ScreenBatch(context.Background(), nil))
}

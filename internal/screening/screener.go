// internal/screening/screener.go
package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"compliance-engine/internal/common/errors"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/common/metrics"
	"compliance-engine/internal/models"
)

// WatchlistProvider supplies the active candidate entities for a query. The
// substring pre-filter keeps the scored candidate set small; the screener
// still re-scores everything it gets back.
type WatchlistProvider interface {
	QueryActive(ctx context.Context, substring string) ([]models.WatchlistEntity, error)
}

// HistoryRecorder persists one screening outcome for audit. Every screening
// call is recorded, match or not.
type HistoryRecorder interface {
	RecordScreening(ctx context.Context, result *models.ScreeningResult) error
}

// Config holds the screening settings.
type Config struct {
	// DefaultThreshold is the minimum similarity score that counts as a match
	// when the caller does not pass one explicitly.
	DefaultThreshold float64
	// CacheTTL bounds how long a screening result is served from cache.
	// Zero disables caching.
	CacheTTL time.Duration
}

// DefaultConfig returns the standard screening settings.
func DefaultConfig() Config {
	return Config{
		DefaultThreshold: 0.8,
		CacheTTL:         5 * time.Minute,
	}
}

// Input is one name to screen.
type Input struct {
	Name       string            `json:"name"`
	EntityType models.EntityType `json:"entityType"`
}

// Screener matches query names against the active watchlist. A storage
// failure is folded into the result as status=error; ScreenEntity never
// returns a Go error, so a bad lookup cannot abort a batch run.
type Screener struct {
	watchlist WatchlistProvider
	history   HistoryRecorder
	cache     *redis.Client
	config    Config
	logger    logger.Logger
}

// New creates a Screener. cache may be nil to disable result caching;
// history may be nil when no audit trail is wanted (tests, dry runs).
func New(watchlist WatchlistProvider, history HistoryRecorder, cache *redis.Client, config Config, log logger.Logger) *Screener {
	return &Screener{
		watchlist: watchlist,
		history:   history,
		cache:     cache,
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"component": "screener"}),
	}
}

// ScreenEntity screens one name with the default threshold.
func (s *Screener) ScreenEntity(ctx context.Context, name string, entityType models.EntityType) *models.ScreeningResult {
	return s.ScreenEntityWithThreshold(ctx, name, entityType, s.config.DefaultThreshold)
}

// ScreenEntityWithThreshold screens one name, keeping candidates whose best
// similarity score reaches threshold. Matches come back ordered by score
// descending.
func (s *Screener) ScreenEntityWithThreshold(ctx context.Context, name string, entityType models.EntityType, threshold float64) *models.ScreeningResult {
	start := time.Now()

	if cached := s.cacheLookup(ctx, name, entityType, threshold); cached != nil {
		// The audit trail records every call, cached answers included.
		s.recordHistory(ctx, cached)
		metrics.ScreeningsPerformed.WithLabelValues("cache_hit").Inc()
		return cached
	}

	result := s.screen(ctx, name, entityType, threshold)

	s.recordHistory(ctx, result)
	s.cacheStore(ctx, name, entityType, threshold, result)

	metrics.ScreeningsPerformed.WithLabelValues(string(result.Status)).Inc()
	metrics.ScreeningDuration.WithLabelValues(string(entityType)).Observe(time.Since(start).Seconds())

	return result
}

// ScreenBatch screens a sequence of names independently, preserving input
// order. Per-entity failures surface as error results in place.
func (s *Screener) ScreenBatch(ctx context.Context, inputs []Input) []*models.ScreeningResult {
	results := make([]*models.ScreeningResult, len(inputs))
	for i, in := range inputs {
		results[i] = s.ScreenEntity(ctx, in.Name, in.EntityType)
	}
	return results
}

func (s *Screener) screen(ctx context.Context, name string, entityType models.EntityType, threshold float64) *models.ScreeningResult {
	result := &models.ScreeningResult{
		Query:      name,
		EntityType: entityType,
		Status:     models.ScreeningOK,
		RiskLevel:  models.RiskMinimal,
		ScreenedAt: time.Now().UTC().Format(time.RFC3339),
	}

	candidates, err := s.watchlist.QueryActive(ctx, name)
	if err != nil {
		stdErr := errors.NewScreeningBackendUnavailableError(err)
		s.logger.Error("watchlist lookup failed", map[string]interface{}{
			"query":     name,
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Details,
		})
		result.Status = models.ScreeningError
		result.Error = stdErr.Details
		return result
	}

	for _, entity := range candidates {
		score, matchedOn := bestScore(name, entity)
		if score < threshold {
			continue
		}

		result.Matches = append(result.Matches, models.ScreeningMatch{
			Query:           name,
			EntityID:        entity.ID,
			EntityName:      entity.Name,
			ListName:        entity.ListName,
			MatchedOn:       matchedOn,
			SimilarityScore: score,
			RiskLevel:       models.ScreeningRiskLevel(score),
			MatchType:       matchTypeForList(entity.ListName),
		})

		if score > result.HighestScore {
			result.HighestScore = score
		}
	}

	if len(result.Matches) > 0 {
		result.MatchFound = true
		result.RiskLevel = models.ScreeningRiskLevel(result.HighestScore)
		sortMatches(result.Matches)
	}

	return result
}

// bestScore scores the query against the entity name and every alias,
// returning the best score and the string that produced it.
func bestScore(query string, entity models.WatchlistEntity) (float64, string) {
	best := SimilarityScore(query, entity.Name)
	matchedOn := entity.Name

	for _, alias := range entity.Aliases {
		if score := SimilarityScore(query, alias); score > best {
			best = score
			matchedOn = alias
		}
	}
	return best, matchedOn
}

func sortMatches(matches []models.ScreeningMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
}

// matchTypeForList classifies the source list. PEP registries are named with
// a "pep" token; everything else is a sanctions list.
func matchTypeForList(listName string) models.MatchType {
	if strings.Contains(strings.ToLower(listName), "pep") {
		return models.MatchPEP
	}
	return models.MatchSanctions
}

func (s *Screener) recordHistory(ctx context.Context, result *models.ScreeningResult) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordScreening(ctx, result); err != nil {
		// Audit writes must not change the screening outcome.
		s.logger.Warn("screening history write failed", map[string]interface{}{
			"query": result.Query,
			"error": err.Error(),
		})
	}
}

func (s *Screener) cacheKey(name string, entityType models.EntityType, threshold float64) string {
	return fmt.Sprintf("screening:%s:%s:%.2f", strings.ToLower(name), entityType, threshold)
}

func (s *Screener) cacheLookup(ctx context.Context, name string, entityType models.EntityType, threshold float64) *models.ScreeningResult {
	if s.cache == nil || s.config.CacheTTL <= 0 {
		return nil
	}

	raw, err := s.cache.Get(ctx, s.cacheKey(name, entityType, threshold)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("screening cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}

	var result models.ScreeningResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logger.Warn("screening cache entry corrupt", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return &result
}

func (s *Screener) cacheStore(ctx context.Context, name string, entityType models.EntityType, threshold float64, result *models.ScreeningResult) {
	if s.cache == nil || s.config.CacheTTL <= 0 || result.Status != models.ScreeningOK {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(name, entityType, threshold), raw, s.config.CacheTTL).Err(); err != nil {
		s.logger.Warn("screening cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

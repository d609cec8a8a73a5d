// internal/storage/findings.go
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"compliance-engine/internal/common/errors"
	"compliance-engine/internal/common/logger"
	"compliance-engine/internal/models"
)

// FindingsRepository indexes emitted findings into Elasticsearch and searches
// them for review tooling.
type FindingsRepository struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewFindingsRepository creates a FindingsRepository writing to index.
func NewFindingsRepository(client *elasticsearch.Client, index string, log logger.Logger) *FindingsRepository {
	return &FindingsRepository{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "findings-repository"}),
	}
}

// IndexFindings bulk-indexes findings, keyed by finding id so re-indexing the
// same analysis run is idempotent.
func (r *FindingsRepository) IndexFindings(ctx context.Context, findings []models.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, f := range findings {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": r.index, "_id": f.ID},
		}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return errors.NewFindingsIndexFailedError(err)
		}
		if err := json.NewEncoder(&buf).Encode(f); err != nil {
			return errors.NewFindingsIndexFailedError(err)
		}
	}

	req := esapi.BulkRequest{
		Index: r.index,
		Body:  &buf,
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return errors.NewFindingsIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewFindingsIndexFailedError(fmt.Errorf("bulk index failed: %s", res.String()))
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return errors.NewFindingsIndexFailedError(err)
	}
	if bulkResponse.Errors {
		return errors.NewFindingsIndexFailedError(fmt.Errorf("bulk response reported item errors"))
	}

	r.logger.Debug("findings indexed", map[string]interface{}{"count": len(findings)})
	return nil
}

// FindingsQuery narrows a findings search. Zero values mean "no filter".
type FindingsQuery struct {
	Text      string
	Framework models.Framework
	RiskLevel models.RiskLevel
	From      int
	Size      int
}

// SearchResult carries the matched findings plus search metadata.
type SearchResult struct {
	Findings  []models.Finding
	TotalHits int64
	MaxScore  float64
}

// SearchFindings runs a filtered full-text search over indexed findings.
func (r *FindingsRepository) SearchFindings(ctx context.Context, query FindingsQuery) (*SearchResult, error) {
	if query.Size < 1 {
		query.Size = 20
	}
	if query.Size > 100 {
		query.Size = 100
	}

	body, err := json.Marshal(buildFindingsQuery(query))
	if err != nil {
		return nil, errors.NewFindingsSearchFailedError(err)
	}

	req := esapi.SearchRequest{
		Index: []string{r.index},
		Body:  bytes.NewReader(body),
		From:  &query.From,
		Size:  &query.Size,
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError(r.index)
		}
		return nil, errors.NewFindingsSearchFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewFindingsSearchFailedError(fmt.Errorf("search failed: %s", res.String()))
	}

	var response struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			MaxScore *float64 `json:"max_score"`
			Hits     []struct {
				Source models.Finding `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, errors.NewFindingsSearchFailedError(err)
	}

	result := &SearchResult{TotalHits: response.Hits.Total.Value}
	if response.Hits.MaxScore != nil {
		result.MaxScore = *response.Hits.MaxScore
	}
	for _, hit := range response.Hits.Hits {
		result.Findings = append(result.Findings, hit.Source)
	}
	return result, nil
}

func buildFindingsQuery(query FindingsQuery) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if query.Text != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query.Text,
				"fields": []string{"matchedText^3", "context", "findingType^2"},
				"type":   "best_fields",
			},
		})
	}
	if query.Framework != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"framework": string(query.Framework)},
		})
	}
	if query.RiskLevel != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"riskLevel": string(query.RiskLevel)},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":  []interface{}{map[string]interface{}{"riskScore": "desc"}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"riskScore": "desc"}},
	}
}

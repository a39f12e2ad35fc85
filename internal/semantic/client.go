// Package semantic talks to the external full-text index that backs the
// fallback search path. The index holds the same records as the in-memory
// dataset, one index per locale.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/config"
	"github.com/haalarikone/haku-api/internal/models"
	"github.com/haalarikone/haku-api/internal/observability"
	"github.com/haalarikone/haku-api/internal/resilience"
)

type Client struct {
	es       *elasticsearch.Client
	cb       *gobreaker.CircuitBreaker
	cfg      config.SemanticConfig
	retryCfg resilience.RetryConfig
	logger   *zap.Logger
}

func NewClient(cfg config.SemanticConfig, searchCfg config.SearchConfig, logger *zap.Logger) (*Client, error) {
	esCfg := elasticsearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	res, err := es.Ping()
	if err != nil {
		return nil, fmt.Errorf("pinging elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch ping returned status: %s", res.Status())
	}

	logger.Info("semantic index client connected", zap.Strings("addresses", cfg.Addresses))

	return &Client{
		es:  es,
		cb:  resilience.NewCircuitBreaker("semantic-index", searchCfg.CircuitBreaker, logger),
		cfg: cfg,
		retryCfg: resilience.RetryConfig{
			MaxAttempts: searchCfg.Retry.MaxAttempts,
			InitialWait: searchCfg.Retry.InitialWait,
			MaxWait:     searchCfg.Retry.MaxWait,
			Multiplier:  searchCfg.Retry.Multiplier,
		},
		logger: logger,
	}, nil
}

// Search runs an approximate text query against the locale's index and
// returns the matched records in relevance order. Errors mean the service
// is unreachable; the caller decides whether to fail soft.
func (c *Client) Search(ctx context.Context, locale models.Locale, query string, limit int) ([]models.Record, error) {
	index := c.indexName(locale)

	ctx, span := observability.StartSpan(ctx, "semantic.search",
		attribute.String("index", index),
	)
	defer span.End()

	start := time.Now()

	cbResult, err := c.cb.Execute(func() (any, error) {
		var records []models.Record
		retryErr := resilience.Retry(ctx, c.retryCfg, func() error {
			var execErr error
			records, execErr = c.executeSearch(ctx, index, query, limit)
			return execErr
		})
		return records, retryErr
	})

	duration := time.Since(start)
	if err != nil {
		observability.SemanticQueryDuration.WithLabelValues(index, "error").Observe(duration.Seconds())
		return nil, fmt.Errorf("semantic search (index=%s): %w", index, err)
	}
	observability.SemanticQueryDuration.WithLabelValues(index, "success").Observe(duration.Seconds())

	records, _ := cbResult.([]models.Record)
	return records, nil
}

func (c *Client) executeSearch(ctx context.Context, index, query string, limit int) ([]models.Record, error) {
	body, err := json.Marshal(buildSearchBody(query, limit))
	if err != nil {
		return nil, fmt.Errorf("marshaling search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithTimeout(c.cfg.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("executing search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search error status=%s body=%s", res.Status(), string(bodyBytes))
	}

	var esResp searchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	return decodeHits(&esResp), nil
}

// buildSearchBody queries every indexed text field with fuzzy matching and
// reranks the top window with a phrase rescore, since the index ranks by
// text relevance only.
func buildSearchBody(query string, limit int) map[string]any {
	return map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"field^3", "color^2", "institution^2", "organization", "region"},
				"fuzziness": "AUTO",
			},
		},
		"rescore": map[string]any{
			"window_size": limit,
			"query": map[string]any{
				"rescore_query": map[string]any{
					"multi_match": map[string]any{
						"query":  query,
						"type":   "phrase",
						"fields": []string{"field", "institution", "organization"},
					},
				},
				"query_weight":         0.7,
				"rescore_query_weight": 1.2,
			},
		},
	}
}

func decodeHits(resp *searchResponse) []models.Record {
	records := make([]models.Record, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		records = append(records, models.Record(h.Source))
	}
	return records
}

// BulkIndex writes the records into the locale's index. Used by the
// one-shot indexer, not by the request path.
func (c *Client) BulkIndex(ctx context.Context, locale models.Locale, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	index := c.indexName(locale)

	var buf bytes.Buffer
	for _, r := range records {
		meta, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": index, "_id": r.ID},
		})
		if err != nil {
			return fmt.Errorf("marshaling bulk meta: %w", err)
		}
		doc, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling bulk doc: %w", err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("executing bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return fmt.Errorf("bulk request error status=%s body=%s", res.Status(), string(bodyBytes))
	}

	var bulkResp bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("decoding bulk response: %w", err)
	}
	if bulkResp.Errors {
		return fmt.Errorf("bulk indexing had item errors (index=%s)", index)
	}

	c.logger.Info("bulk indexed records",
		zap.String("index", index),
		zap.Int("count", len(records)),
	)
	return nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	res, err := c.es.Cluster.Health(
		c.es.Cluster.Health.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("cluster health: %w", err)
	}
	defer res.Body.Close()

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}
	if health.Status == "red" {
		return fmt.Errorf("cluster status red")
	}
	return nil
}

func (c *Client) Close() error {
	return nil
}

func (c *Client) indexName(locale models.Locale) string {
	return fmt.Sprintf("%s-%s", c.cfg.IndexPrefix, locale)
}

// Wire types for the search and bulk responses. Hit sources are decoded
// straight into the record shape; missing fields stay zero and fail the
// downstream filters naturally.

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []hit `json:"hits"`
	} `json:"hits"`
}

type hit struct {
	ID     string       `json:"_id"`
	Score  float64      `json:"_score"`
	Source recordSource `json:"_source"`
}

type recordSource struct {
	ID           int    `json:"id"`
	Color        string `json:"color"`
	Hex          string `json:"hex"`
	Region       string `json:"region"`
	Field        string `json:"field"`
	Organization string `json:"organization"`
	Institution  string `json:"institution"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
}

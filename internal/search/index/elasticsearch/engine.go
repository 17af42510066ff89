// Package elasticsearch implements the search index on Elasticsearch 8.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/t-simwa/swiftcart-catalog/internal/domain"
	"github.com/t-simwa/swiftcart-catalog/internal/search/index"
)

// Engine is an Elasticsearch-backed implementation of index.Index.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// esSearchResponse decodes the subset of a search response the engine needs:
// the ranked hit IDs and the total count. Sources are never fetched; the
// canonical records come from the document store.
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates an Elasticsearch engine connected to the given URL and ensures
// the products index exists, creating it with the mapping if necessary.
func New(esURL, indexName string, logger *slog.Logger) (*Engine, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	e := &Engine{
		client:    client,
		indexName: indexName,
		logger:    logger,
	}

	if err := e.ensureIndex(); err != nil {
		return nil, fmt.Errorf("elasticsearch: ensure index: %w", err)
	}

	return e, nil
}

// Ping checks whether the cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

func (e *Engine) ensureIndex() error {
	res, err := e.client.Indices.Exists([]string{e.indexName})
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 200 {
		e.logger.Info("elasticsearch index already exists", "index", e.indexName)
		return nil
	}

	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return e.decodeError(res.Body, res.Status(), "create index")
	}

	e.logger.Info("elasticsearch index created", "index", e.indexName)
	return nil
}

// Index upserts one document.
func (e *Engine) Index(ctx context.Context, doc *domain.IndexDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal document: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(doc.ID),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return e.decodeError(res.Body, res.Status(), "elasticsearch index")
	}

	e.logger.Debug("indexed product", "id", doc.ID, "name", doc.Name)
	return nil
}

// Delete removes a document by ID. A 404 is success: the delete is idempotent.
func (e *Engine) Delete(ctx context.Context, id string) error {
	res, err := e.client.Delete(
		e.indexName,
		id,
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		return e.decodeError(res.Body, res.Status(), "elasticsearch delete")
	}

	e.logger.Debug("deleted product from index", "id", id)
	return nil
}

// BulkIndex upserts a batch of documents with the bulk NDJSON API.
func (e *Engine) BulkIndex(ctx context.Context, docs []domain.IndexDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for i := range docs {
		action := map[string]any{
			"index": map[string]any{
				"_index": e.indexName,
				"_id":    docs[i].ID,
			},
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return fmt.Errorf("elasticsearch bulk: encode action: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(docs[i]); err != nil {
			return fmt.Errorf("elasticsearch bulk: encode document: %w", err)
		}
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return e.decodeError(res.Body, res.Status(), "elasticsearch bulk")
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk: decode response: %w", err)
	}

	if bulkResp.Errors {
		var msgs []string
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				msgs = append(msgs, fmt.Sprintf("id=%s: %s: %s", item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason))
			}
		}
		return fmt.Errorf("elasticsearch bulk: partial errors: %s", strings.Join(msgs, "; "))
	}

	e.logger.Debug("bulk indexed products", "count", len(docs))
	return nil
}

// Search executes the query and returns the ranked page of document IDs.
func (e *Engine) Search(ctx context.Context, q *domain.SearchQuery) (*index.Page, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(body)),
		e.client.Search.WithContext(ctx),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, e.decodeError(res.Body, res.Status(), "elasticsearch search")
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	ids := make([]string, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		ids = append(ids, hit.ID)
	}

	return &index.Page{IDs: ids, Total: esResp.Hits.Total.Value}, nil
}

func (e *Engine) decodeError(body io.Reader, status, op string) error {
	var errResp esErrorResponse
	if decErr := json.NewDecoder(body).Decode(&errResp); decErr == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, status)
}

// buildQuery constructs the search DSL: a boosted fuzzy multi_match on the
// text term AND'd with hard filters, plus sort and pagination.
func buildQuery(q *domain.SearchQuery) map[string]any {
	var must any
	if q.Text != "" {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":         q.Text,
				"fields":        []string{"name^3", "description^2", "category"},
				"type":          "best_fields",
				"fuzziness":     "AUTO",
				"prefix_length": 1,
			},
		}
	} else {
		must = map[string]any{"match_all": map[string]any{}}
	}

	boolQuery := map[string]any{"must": []any{must}}
	if filters := buildFilters(q); len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	esQuery := map[string]any{
		"query":            map[string]any{"bool": boolQuery},
		"from":             q.Offset(),
		"size":             q.PerPage,
		"track_total_hits": true,
		"_source":          false,
	}

	if sortClause := buildSort(q.SortBy); sortClause != nil {
		esQuery["sort"] = sortClause
	}

	return esQuery
}

func buildFilters(q *domain.SearchQuery) []any {
	var filters []any

	if q.Category != nil && *q.Category != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"category.keyword": *q.Category},
		})
	}

	if q.Featured != nil {
		filters = append(filters, map[string]any{
			"term": map[string]any{"featured": *q.Featured},
		})
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		rangeFilter := map[string]any{}
		if q.MinPrice != nil {
			rangeFilter["gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			rangeFilter["lte"] = *q.MaxPrice
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"price": rangeFilter},
		})
	}

	if len(q.Brands) > 0 {
		// Brand prefix matches on the name, OR'd across brands. As a filter
		// clause this combines with the text match via AND.
		should := make([]any, 0, len(q.Brands))
		for _, brand := range q.Brands {
			should = append(should, map[string]any{
				"prefix": map[string]any{"name.keyword": brand},
			})
		}
		filters = append(filters, map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		})
	}

	return filters
}

// buildSort maps sort modes to explicit sort clauses. Relevance returns nil
// so the index's native scoring orders the hits.
func buildSort(sortBy string) []any {
	switch sortBy {
	case domain.SortPriceAsc:
		return []any{map[string]any{"price": "asc"}}
	case domain.SortPriceDesc:
		return []any{map[string]any{"price": "desc"}}
	case domain.SortPopular:
		return []any{
			map[string]any{"review_count": "desc"},
			map[string]any{"rating": "desc"},
		}
	case domain.SortNewest:
		return []any{map[string]any{"created_at": "desc"}}
	default:
		return nil
	}
}

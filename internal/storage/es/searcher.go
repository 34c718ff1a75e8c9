package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/operator"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

// searchFields carries the relative weights for full-text matching. Title
// hits outrank summary hits outrank body hits.
var searchFields = []string{"title^3.0", "summary^2.0", "content", "tags^2.0"}

type Searcher struct {
	client    *elasticsearch.TypedClient
	indexName string
}

func NewSearcher(config ClientConfig) (*Searcher, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &Searcher{
		client:    client,
		indexName: config.IndexName,
	}, nil
}

type SearchOptions struct {
	CategorySlug string
	From         int
	Size         int
}

type SearchHit struct {
	Document ArticleDocument `json:"document"`
	Score    float64         `json:"score"`
}

type SearchResult struct {
	Hits         []SearchHit `json:"hits"`
	TotalMatches int64       `json:"totalMatches"`
}

// Search runs a weighted multi_match over published articles, optionally
// narrowed to one category.
func (r *Searcher) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	size := opts.Size
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}

	or := operator.Or
	multiMatch := &types.MultiMatchQuery{
		Query:    query,
		Fields:   searchFields,
		Operator: &or,
	}

	esQuery := &types.Query{MultiMatch: multiMatch}
	if opts.CategorySlug != "" {
		esQuery = &types.Query{
			Bool: &types.BoolQuery{
				Must: []types.Query{{MultiMatch: multiMatch}},
				Filter: []types.Query{{
					Term: map[string]types.TermQuery{
						"category_slug": {Value: opts.CategorySlug},
					},
				}},
			},
		}
	}

	desc := sortorder.Desc
	res, err := r.client.Search().
		Index(r.indexName).
		Query(esQuery).
		From(opts.From).
		Size(size).
		TrackScores(true).
		Sort(&types.SortOptions{
			SortOptions: map[string]types.FieldSort{
				"_score": {Order: &desc},
			},
		}).
		Do(ctx)
	if err != nil {
		slog.Error("Elasticsearch query failed", "error", err, "query", query)
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	hits := make([]SearchHit, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc ArticleDocument
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		var score float64
		if hit.Score_ != nil {
			score = float64(*hit.Score_)
		}
		hits = append(hits, SearchHit{Document: doc, Score: score})
	}

	slog.Debug("search results fetched",
		"query", query,
		"total_matches", res.Hits.Total.Value,
		"returned", len(hits))

	return &SearchResult{
		Hits:         hits,
		TotalMatches: res.Hits.Total.Value,
	}, nil
}

package es

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"

	"newscurator/internal/domain"
)

// Indexer mirrors approved articles into the search index.
type Indexer struct {
	client    *elasticsearch.TypedClient
	indexName string
}

func NewIndexer(ctx context.Context, config ClientConfig) (*Indexer, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	idx := &Indexer{
		client:    client,
		indexName: config.IndexName,
	}

	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return idx, nil
}

func (e *Indexer) EnsureIndex(ctx context.Context) error {
	exists, err := e.client.Indices.Exists(e.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		return nil
	}

	mappings := buildMapping()
	createRes, err := e.client.Indices.Create(e.indexName).
		Mappings(&mappings).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !createRes.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("Index created successfully", "index", e.indexName)
	return nil
}

// IndexArticle upserts one article document, keyed by the relational ID so
// re-approval overwrites rather than duplicates.
func (e *Indexer) IndexArticle(ctx context.Context, a domain.Article) error {
	return e.IndexArticleWith(ctx, a, "", nil)
}

func (e *Indexer) IndexArticleWith(ctx context.Context, a domain.Article, categorySlug string, tags []string) error {
	doc := mapToDocument(a, categorySlug, tags)

	res, err := e.client.Index(e.indexName).Id(doc.ID).Document(doc).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}

	slog.Debug("document indexed", "id", doc.ID, "index", e.indexName, "result", res.Result)
	return nil
}

// RemoveArticle drops an article from the index, e.g. after an admin delete
// or un-publish. A missing document is not an error.
func (e *Indexer) RemoveArticle(ctx context.Context, id int64) error {
	_, err := e.client.Delete(e.indexName, strconv.FormatInt(id, 10)).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// Package repository exposes the document-side API surface: paged
// queries as lazy streams plus single-document metadata reads and
// writes.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mkarlsen/nuxeo-repo-client/pkg/cache"
	"github.com/mkarlsen/nuxeo-repo-client/pkg/client"
	"github.com/mkarlsen/nuxeo-repo-client/pkg/pagination"
)

const (
	// DefaultPageSize is the page size requested for NXQL queries.
	DefaultPageSize = "100"

	// QueryAllDocuments streams every document in the repository.
	QueryAllDocuments = "SELECT * FROM Document"

	schemasHeader = "X-NXDocumentProperties"

	// entityContentType marks a document entity payload on writes.
	entityContentType = "application/json+nxentity"
)

// Repository wraps the client with document-level operations.
type Repository struct {
	client        *client.Client
	fetcher       *pagination.Fetcher
	metadataCache *cache.Store
	logger        zerolog.Logger
}

// New creates a repository facade on top of the given client.
func New(c *client.Client) *Repository {
	return &Repository{
		client:  c,
		fetcher: pagination.NewFetcher(c),
		logger:  log.With().Str("component", "repository").Logger(),
	}
}

// SetMetadataCache enables caching of single-document metadata reads.
// Paged query results stay uncached regardless.
func (r *Repository) SetMetadataCache(store *cache.Store) {
	r.metadataCache = store
}

// Query streams the results of an NXQL query. The returned stream is
// lazy and one-shot; no request happens before the first Next call.
func (r *Repository) Query(nxql string) *pagination.Stream {
	params := url.Values{}
	params.Set("pageSize", DefaultPageSize)
	params.Set("query", nxql)
	return r.fetcher.Stream(r.client.APIPath("path", "@search"), params)
}

// All streams every document in the repository.
func (r *Repository) All() *pagination.Stream {
	return r.Query(QueryAllDocuments)
}

// Children streams the direct children of a document path.
func (r *Repository) Children(docPath string) *pagination.Stream {
	u := r.client.APIPath("path", strings.Trim(docPath, "/"), "@children")
	return r.fetcher.Stream(u, url.Values{})
}

// UID looks up a document's unique identifier by path.
func (r *Repository) UID(ctx context.Context, docPath string) (string, error) {
	var doc pagination.Document
	u := r.client.APIPath("path", strings.Trim(docPath, "/"))
	if err := r.client.GetJSON(ctx, u, nil, nil, &doc); err != nil {
		return "", err
	}
	if doc.UID() == "" {
		return "", fmt.Errorf("document at %q has no uid", docPath)
	}
	return doc.UID(), nil
}

// ByPath fetches full metadata for the document at docPath, requesting
// the configured schemas.
func (r *Repository) ByPath(ctx context.Context, docPath string) (pagination.Document, error) {
	docPath = strings.Trim(docPath, "/")
	return r.getDocument(ctx,
		r.client.APIPath("path", docPath),
		cache.Key("doc", "path", docPath, r.client.DocumentSchemas()))
}

// ByID fetches full metadata for the document with the given uid,
// requesting the configured schemas.
func (r *Repository) ByID(ctx context.Context, uid string) (pagination.Document, error) {
	return r.getDocument(ctx,
		r.client.APIPath("id", uid),
		cache.Key("doc", "id", uid, r.client.DocumentSchemas()))
}

// getDocument performs a metadata read, consulting the cache first
// when one is configured. Cache failures degrade to a direct read.
func (r *Repository) getDocument(ctx context.Context, rawURL, cacheKey string) (pagination.Document, error) {
	if r.metadataCache != nil {
		data, err := r.metadataCache.Get(ctx, cacheKey)
		if err == nil {
			var doc pagination.Document
			if err := json.Unmarshal(data, &doc); err == nil {
				return doc, nil
			}
			r.logger.Warn().Str("key", cacheKey).Msg("Invalid cache entry, refetching")
		} else if err != cache.ErrCacheMiss {
			r.logger.Warn().Err(err).Str("key", cacheKey).Msg("Cache get error")
		}
	}

	headers := map[string]string{schemasHeader: r.client.DocumentSchemas()}
	var doc pagination.Document
	if err := r.client.GetJSON(ctx, rawURL, nil, headers, &doc); err != nil {
		return nil, err
	}

	if r.metadataCache != nil {
		if data, err := json.Marshal(doc); err == nil {
			if err := r.metadataCache.Set(ctx, cacheKey, data); err != nil {
				r.logger.Warn().Err(err).Str("key", cacheKey).Msg("Cache set error")
			}
		}
	}

	return doc, nil
}

// UpdateProperties writes doc's properties to the document identified
// by uid and returns the updated document. Only the uid and properties
// fields are sent; everything else in doc is ignored.
func (r *Repository) UpdateProperties(ctx context.Context, uid string, doc pagination.Document) (pagination.Document, error) {
	payload := map[string]any{
		"uid":        uid,
		"properties": doc.Properties(),
	}
	headers := map[string]string{
		schemasHeader:  r.client.DocumentSchemas(),
		"Content-Type": entityContentType,
	}

	var updated pagination.Document
	u := r.client.APIPath("id", uid)
	if err := r.client.PutJSON(ctx, u, headers, payload, &updated); err != nil {
		return nil, err
	}

	if r.metadataCache != nil {
		key := cache.Key("doc", "id", uid, r.client.DocumentSchemas())
		if err := r.metadataCache.Delete(ctx, key); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("Cache invalidation error")
		}
	}

	r.logger.Info().Str("uid", uid).Msg("Updated document properties")
	return updated, nil
}

// UpdatePropertiesByPath resolves docPath to a uid and updates the
// document's properties.
func (r *Repository) UpdatePropertiesByPath(ctx context.Context, docPath string, doc pagination.Document) (pagination.Document, error) {
	uid, err := r.UID(ctx, docPath)
	if err != nil {
		return nil, err
	}
	return r.UpdateProperties(ctx, uid, doc)
}

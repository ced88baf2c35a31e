// Package mirror copies document metadata from the repository into a
// local directory tree of JSON files, one file per document, laid out
// by repository path.
package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mkarlsen/nuxeo-repo-client/pkg/pagination"
	"github.com/mkarlsen/nuxeo-repo-client/pkg/repository"
)

// Mirror pulls document metadata into a local directory.
type Mirror struct {
	repo   *repository.Repository
	logger zerolog.Logger
}

// New creates a mirror on top of the given repository.
func New(repo *repository.Repository) *Mirror {
	return &Mirror{
		repo:   repo,
		logger: log.With().Str("component", "mirror").Logger(),
	}
}

// Pull drains the stream and writes one metadata file per document
// under root. For each streamed document the full metadata is fetched
// fresh; the file lands at root/<repository path>.json with parent
// directories created as needed. The first error stops the pull.
func (m *Mirror) Pull(ctx context.Context, stream *pagination.Stream, root string) error {
	written := 0
	for {
		doc, ok, err := stream.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			m.logger.Info().Int("documents", written).Str("root", root).Msg("Mirror pull complete")
			return nil
		}
		if err := m.writeDocument(ctx, doc, root); err != nil {
			return err
		}
		written++
	}
}

// writeDocument fetches full metadata for doc and writes it to disk.
func (m *Mirror) writeDocument(ctx context.Context, doc pagination.Document, root string) error {
	docPath := strings.Trim(doc.Path(), "/")
	if docPath == "" {
		return fmt.Errorf("document %q has no path", doc.UID())
	}

	full, err := m.repo.ByPath(ctx, docPath)
	if err != nil {
		return err
	}

	// Keep only the stable identity fields and the schema properties.
	out := map[string]any{
		"uid":         full.UID(),
		"path":        full.Path(),
		"entity-type": full.EntityType(),
		"properties":  full.Properties(),
	}

	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal metadata for %q: %w", docPath, err)
	}

	file := filepath.Join(root, filepath.FromSlash(docPath)+".json")
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("create mirror directory: %w", err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("write metadata file: %w", err)
	}

	m.logger.Debug().Str("path", docPath).Str("file", file).Msg("Mirrored document")
	return nil
}

package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/mkarlsen/nuxeo-repo-client/pkg/pagination"
)

// Summarize drains a stream, writing one "uid<TAB>path" line per
// document to w. An error from the stream or the writer stops the
// traversal at that point.
func Summarize(ctx context.Context, w io.Writer, s *pagination.Stream) error {
	for {
		doc, ok, err := s.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", doc.UID(), doc.Path()); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
}

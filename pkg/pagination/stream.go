package pagination

import (
	"context"
	"net/url"
)

// Stream is a one-shot forward traversal of a paged query result.
//
// Each Next call returns buffered entries from the current page and
// fetches the following page only at a page boundary, so consumption is
// lazy: at most one network call per pull. Iteration ends cleanly when
// the server reports no next page; a fetch error ends it at the failing
// page and is sticky for all further calls.
//
// A Stream is not safe for concurrent use and cannot be restarted;
// build a fresh Stream to iterate again from page zero.
type Stream struct {
	fetcher   *Fetcher
	url       string
	params    url.Values
	pageIndex int
	buf       []Document
	done      bool
	err       error
}

// Stream builds a lazy stream over the paged query described by rawURL
// and params. No request is made until the first Next call.
func (f *Fetcher) Stream(rawURL string, params url.Values) *Stream {
	return &Stream{
		fetcher: f,
		url:     rawURL,
		params:  params,
	}
}

// Next returns the next document. The second return is false when the
// stream is exhausted. Entries are yielded in server order, exactly
// once each; an empty page does not end the stream as long as the
// server reports a next page.
func (s *Stream) Next(ctx context.Context) (Document, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}

	for len(s.buf) == 0 && !s.done {
		page, err := s.fetcher.FetchPage(ctx, s.url, s.params, s.pageIndex)
		if err != nil {
			s.err = err
			return nil, false, err
		}
		s.pageIndex++
		s.buf = page.Entries
		if !page.IsNextPageAvailable {
			s.done = true
		}
	}

	if len(s.buf) == 0 {
		return nil, false, nil
	}

	doc := s.buf[0]
	s.buf = s.buf[1:]
	return doc, true, nil
}

// Collect drains the stream into a slice. Entries fetched before a
// failing page are discarded along with the error, matching the
// fail-fast contract of Next.
func (s *Stream) Collect(ctx context.Context) ([]Document, error) {
	var docs []Document
	for {
		doc, ok, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return docs, nil
		}
		docs = append(docs, doc)
	}
}

package pagination

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mkarlsen/nuxeo-repo-client/pkg/client"
)

// PageIndexParam is the query parameter the server uses to address a
// page. The fetcher overwrites it on every call; all other
// caller-supplied parameters pass through unchanged.
const PageIndexParam = "currentPageIndex"

// Page is one bounded batch of query results.
type Page struct {
	// Entries holds the page's documents in server order.
	Entries []Document

	// IsNextPageAvailable reports whether a further page exists.
	IsNextPageAvailable bool
}

// Fetcher retrieves single pages of a paged query result. It is the
// leaf of the pagination machinery: one call, one GET, no retry.
type Fetcher struct {
	client *client.Client
	logger zerolog.Logger
}

// NewFetcher creates a page fetcher on top of the given client.
func NewFetcher(c *client.Client) *Fetcher {
	return &Fetcher{
		client: c,
		logger: log.With().Str("component", "pagination").Logger(),
	}
}

// FetchPage fetches page pageIndex of the query described by rawURL
// and params. The caller's params are cloned; only PageIndexParam is
// set on the clone. A non-success status yields a *client.RequestError,
// a response missing the required fields a *MalformedResponseError.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string, params url.Values, pageIndex int) (*Page, error) {
	q := make(url.Values, len(params)+1)
	for key, values := range params {
		q[key] = append([]string(nil), values...)
	}
	q.Set(PageIndexParam, strconv.Itoa(pageIndex))

	resp, err := f.client.Get(ctx, rawURL, q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Entries             *[]Document `json:"entries"`
		IsNextPageAvailable *bool       `json:"isNextPageAvailable"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &MalformedResponseError{URL: rawURL, Err: err}
	}
	if body.Entries == nil {
		return nil, &MalformedResponseError{URL: rawURL, Field: "entries"}
	}
	if body.IsNextPageAvailable == nil {
		return nil, &MalformedResponseError{URL: rawURL, Field: "isNextPageAvailable"}
	}

	f.logger.Debug().
		Str("url", rawURL).
		Int("page_index", pageIndex).
		Int("entries", len(*body.Entries)).
		Bool("has_next", *body.IsNextPageAvailable).
		Msg("Fetched page")

	return &Page{
		Entries:             *body.Entries,
		IsNextPageAvailable: *body.IsNextPageAvailable,
	}, nil
}

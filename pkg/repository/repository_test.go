package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mkarlsen/nuxeo-repo-client/internal/testutil"
	"github.com/mkarlsen/nuxeo-repo-client/pkg/client"
)

func newTestRepo(t *testing.T, baseURL string) *Repository {
	t.Helper()

	cfg := client.DefaultConfig("Administrator", "secret")
	cfg.BaseURL = baseURL + "/api/v1"
	cfg.ImporterURL = baseURL + "/fileImporter"

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return New(c)
}

func TestQuery_ParamsAndEndpoint(t *testing.T) {
	mock := testutil.NewMockRepo()
	defer mock.Close()

	mock.SetPages("/api/v1/path/@search", []testutil.PageFixture{
		{Entries: []map[string]any{testutil.Doc("a", "/a")}, HasNext: false},
	})

	repo := newTestRepo(t, mock.URL())

	docs, err := repo.Query("SELECT * FROM Document WHERE dc:title = 'x'").Collect(context.Background())
	if err != nil {
		t.Fatalf("Query stream failed: %v", err)
	}
	if len(docs) != 1 || docs[0].UID() != "a" {
		t.Errorf("Collected %v, want single doc a", docs)
	}

	if got := mock.LastQuery.Get("pageSize"); got != DefaultPageSize {
		t.Errorf("pageSize = %q, want %q", got, DefaultPageSize)
	}
	if got := mock.LastQuery.Get("query"); got != "SELECT * FROM Document WHERE dc:title = 'x'" {
		t.Errorf("query = %q", got)
	}
}

func TestAll_UsesCatchAllQuery(t *testing.T) {
	mock := testutil.NewMockRepo()
	defer mock.Close()

	mock.SetPages("/api/v1/path/@search", []testutil.PageFixture{
		{HasNext: false},
	})

	repo := newTestRepo(t, mock.URL())

	if _, err := repo.All().Collect(context.Background()); err != nil {
		t.Fatalf("All stream failed: %v", err)
	}
	if got := mock.LastQuery.Get("query"); got != QueryAllDocuments {
		t.Errorf("query = %q, want %q", got, QueryAllDocuments)
	}
}

func TestChildren_EndpointAndEmptyParams(t *testing.T) {
	mock := testutil.NewMockRepo()
	defer mock.Close()

	mock.SetPages("/api/v1/path/asset-library/images/@children", []testutil.PageFixture{
		{Entries: []map[string]any{testutil.Doc("c1", "/asset-library/images/cat.jpg")}, HasNext: false},
	})

	repo := newTestRepo(t, mock.URL())

	docs, err := repo.Children("/asset-library/images/").Collect(context.Background())
	if err != nil {
		t.Fatalf("Children stream failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Collected %d docs, want 1", len(docs))
	}

	// Only the page cursor is sent; children queries carry no others.
	if len(mock.LastQuery) != 1 || !mock.LastQuery.Has("currentPageIndex") {
		t.Errorf("Query params = %v, want only currentPageIndex", mock.LastQuery)
	}
}

func TestUID(t *testing.T) {
	mock := testutil.NewMockRepo()
	defer mock.Close()

	mock.SetJSONResponse("/api/v1/path/asset-library/images", testutil.Doc("uid-77", "/asset-library/images"))

	repo := newTestRepo(t, mock.URL())

	uid, err := repo.UID(context.Background(), "/asset-library/images/")
	if err != nil {
		t.Fatalf("UID() failed: %v", err)
	}
	if uid != "uid-77" {
		t.Errorf("UID() = %q, want uid-77", uid)
	}
}

func TestUID_MissingField(t *testing.T) {
	mock := testutil.NewMockRepo()
	defer mock.Close()

	mock.SetJSONResponse("/api/v1/path/broken", map[string]any{"path": "/broken"})

	repo := newTestRepo(t, mock.URL())

	if _, err := repo.UID(context.Background(), "broken"); err == nil {
		t.Error("UID() should fail when the response carries no uid")
	}
}

func TestByPath_SendsSchemasHeader(t *testing.T) {
	mock := testutil.NewMockRepo()
	defer mock.Close()

	mock.SetJSONResponse("/api/v1/path/asset-library", testutil.Doc("uid-1", "/asset-library"))

	repo := newTestRepo(t, mock.URL())

	doc, err := repo.ByPath(context.Background(), "asset-library")
	if err != nil {
		t.Fatalf("ByPath() failed: %v", err)
	}
	if doc.UID() != "uid-1" {
		t.Errorf("UID = %q, want uid-1", doc.UID())
	}
	if got := mock.LastHeader.Get("X-NXDocumentProperties"); got != "dublincore" {
		t.Errorf("X-NXDocumentProperties = %q, want dublincore", got)
	}
}

func TestUpdateProperties(t *testing.T) {
	mock := testutil.NewMockRepo()
	defer mock.Close()

	var gotMethod, gotContentType string
	var gotPayload map[string]any
	mock.SetHandler("/api/v1/id/uid-9", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(testutil.Doc("uid-9", "/asset-library"))
	})

	repo := newTestRepo(t, mock.URL())

	doc := map[string]any{
		"uid":        "uid-9",
		"path":       "/asset-library",
		"dirty":      "ignored",
		"properties": map[string]any{"dc:title": "renamed"},
	}

	updated, err := repo.UpdateProperties(context.Background(), "uid-9", doc)
	if err != nil {
		t.Fatalf("UpdateProperties() failed: %v", err)
	}
	if updated.UID() != "uid-9" {
		t.Errorf("Updated UID = %q", updated.UID())
	}

	if gotMethod != http.MethodPut {
		t.Errorf("Method = %q, want PUT", gotMethod)
	}
	if gotContentType != "application/json+nxentity" {
		t.Errorf("Content-Type = %q, want application/json+nxentity", gotContentType)
	}

	// Only uid and properties travel; stray fields are dropped.
	if len(gotPayload) != 2 {
		t.Errorf("Payload = %v, want exactly uid and properties", gotPayload)
	}
	props, _ := gotPayload["properties"].(map[string]any)
	if props["dc:title"] != "renamed" {
		t.Errorf("properties = %v", props)
	}
}

func TestUpdatePropertiesByPath(t *testing.T) {
	mock := testutil.NewMockRepo()
	defer mock.Close()

	mock.SetJSONResponse("/api/v1/path/asset-library", testutil.Doc("uid-3", "/asset-library"))
	mock.SetJSONResponse("/api/v1/id/uid-3", testutil.Doc("uid-3", "/asset-library"))

	repo := newTestRepo(t, mock.URL())

	doc := map[string]any{"properties": map[string]any{"dc:title": "x"}}
	if _, err := repo.UpdatePropertiesByPath(context.Background(), "/asset-library", doc); err != nil {
		t.Fatalf("UpdatePropertiesByPath() failed: %v", err)
	}

	if got := mock.RequestCount("/api/v1/path/asset-library"); got != 1 {
		t.Errorf("UID lookups = %d, want 1", got)
	}
	if got := mock.RequestCount("/api/v1/id/uid-3"); got != 1 {
		t.Errorf("Updates = %d, want 1", got)
	}
}

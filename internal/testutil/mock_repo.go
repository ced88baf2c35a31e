// Package testutil provides testing utilities for the repository client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
)

// PageFixture describes one page served by a paged endpoint.
type PageFixture struct {
	Entries []map[string]any
	HasNext bool
}

// MockRepo is a configurable mock repository server for testing. It
// tracks per-path request counts so tests can assert exactly how many
// network calls an operation made.
type MockRepo struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requestCounts map[string]int
	LastQuery     url.Values
	LastAuthUser  string
	LastAuthPass  string
	LastHeader    http.Header
}

// NewMockRepo creates a new mock repository server.
func NewMockRepo() *MockRepo {
	mock := &MockRepo{
		handlers:      make(map[string]http.HandlerFunc),
		requestCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCounts[r.URL.Path]++
		mock.LastQuery = r.URL.Query()
		mock.LastHeader = r.Header.Clone()
		if user, pass, ok := r.BasicAuth(); ok {
			mock.LastAuthUser = user
			mock.LastAuthPass = pass
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockRepo) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockRepo) Close() {
	m.server.Close()
}

// Reset clears all tracking state and handlers.
func (m *MockRepo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = make(map[string]http.HandlerFunc)
	m.requestCounts = make(map[string]int)
	m.LastQuery = nil
	m.LastHeader = nil
	m.LastAuthUser = ""
	m.LastAuthPass = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockRepo) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed status and body for a path.
func (m *MockRepo) SetResponse(path string, status int, body string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if body != "" {
			fmt.Fprint(w, body)
		}
	})
}

// SetJSONResponse configures a path to answer with the JSON encoding
// of v.
func (m *MockRepo) SetJSONResponse(path string, v any) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	})
}

// SetPages serves a paged query endpoint from fixtures. The page is
// selected by the currentPageIndex query parameter; an index past the
// last fixture answers 400.
func (m *MockRepo) SetPages(path string, pages []PageFixture) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(r.URL.Query().Get("currentPageIndex"))
		if err != nil || index < 0 || index >= len(pages) {
			http.Error(w, "page index out of range", http.StatusBadRequest)
			return
		}

		page := pages[index]
		entries := page.Entries
		if entries == nil {
			entries = []map[string]any{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entries":             entries,
			"isNextPageAvailable": page.HasNext,
		})
	})
}

// SetStatusSequence serves the importer status endpoint with the given
// bodies in order, repeating the last one once the sequence is
// exhausted.
func (m *MockRepo) SetStatusSequence(path string, bodies ...string) {
	var mu sync.Mutex
	served := 0
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body := bodies[len(bodies)-1]
		if served < len(bodies) {
			body = bodies[served]
		}
		served++
		mu.Unlock()
		fmt.Fprint(w, body)
	})
}

// RequestCount returns how many requests hit the given path.
func (m *MockRepo) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCounts[path]
}

// TotalRequests returns how many requests hit the server in total.
func (m *MockRepo) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.requestCounts {
		total += n
	}
	return total
}

// Doc builds a minimal document body for fixtures.
func Doc(uid, path string) map[string]any {
	return map[string]any{
		"uid":         uid,
		"path":        path,
		"entity-type": "document",
	}
}

// Package testutil provides testing utilities for the SWAPI client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock SWAPI endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSWAPI is a configurable mock SWAPI server for testing.
// Unconfigured paths under /people/ and /planets/ are served from the
// built-in fixtures, paginated by the "page" query parameter.
type MockSWAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// PageSize is the number of fixture records per page.
	PageSize int

	requestCount  int
	lastUserAgent string
	pagesServed   []int
}

// NewMockSWAPI creates a new mock SWAPI server.
func NewMockSWAPI() *MockSWAPI {
	mock := &MockSWAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		PageSize: 2,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastUserAgent = r.Header.Get("User-Agent")
		if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
			mock.pagesServed = append(mock.pagesServed, page)
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server base URL, usable as client BaseURL.
func (m *MockSWAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSWAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSWAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastUserAgent = ""
	m.pagesServed = nil
}

// SetHandler sets a custom handler for a specific path, e.g. "/people/".
func (m *MockSWAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockSWAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests made to the server.
func (m *MockSWAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastUserAgent returns the User-Agent of the most recent request.
func (m *MockSWAPI) LastUserAgent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUserAgent
}

// PagesServed returns the page query values seen so far, in arrival order.
func (m *MockSWAPI) PagesServed() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.pagesServed...)
}

// defaultHandler serves paginated fixtures for /people/ and /planets/.
func (m *MockSWAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	var records []map[string]string
	switch r.URL.Path {
	case "/people/":
		records = Characters
	case "/planets/":
		records = Planets
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found"})
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found"})
		return
	}

	start := (page - 1) * m.PageSize
	if start >= len(records) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found"})
		return
	}
	end := min(start+m.PageSize, len(records))

	body := map[string]any{
		"count":    len(records),
		"next":     nil,
		"previous": nil,
		"results":  records[start:end],
	}
	if end < len(records) {
		body["next"] = fmt.Sprintf("%s%s?page=%d", m.server.URL, r.URL.Path, page+1)
	}
	if page > 1 {
		body["previous"] = fmt.Sprintf("%s%s?page=%d", m.server.URL, r.URL.Path, page-1)
	}

	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Characters are the /people/ fixtures in API order.
var Characters = []map[string]string{
	{"name": "Luke Skywalker", "birth_year": "19BBY"},
	{"name": "C-3PO", "birth_year": "112BBY"},
	{"name": "R2-D2", "birth_year": "33BBY"},
	{"name": "Darth Vader", "birth_year": "41.9BBY"},
	{"name": "Leia Organa", "birth_year": "19BBY"},
}

// Planets are the /planets/ fixtures in API order.
var Planets = []map[string]string{
	{"name": "Tatooine", "orbital_period": "304"},
	{"name": "Alderaan", "orbital_period": "364"},
	{"name": "Yavin IV", "orbital_period": "4818"},
}

// NewPageResponse creates a 200 OK response with the given results array JSON.
func NewPageResponse(resultsJSON string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"count": 0, "next": null, "previous": null, "results": %s}`, resultsJSON),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewNotFoundResponse creates a 404 response with a JSON body, as SWAPI
// returns for pages past the end.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"detail": "Not found"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewHTMLErrorResponse creates a 502 response with a non-JSON body.
func NewHTMLErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusBadGateway,
		Body:       "<html><body>Bad Gateway</body></html>",
		Headers: map[string]string{
			"Content-Type": "text/html",
		},
	}
}

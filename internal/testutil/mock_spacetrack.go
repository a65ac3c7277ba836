// Package testutil provides an in-process fake of the Space-Track and
// ILRS endpoints for tests.
package testutil

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Paths served by the mock.
const (
	LoginPath   = "/ajaxauth/login"
	QueryPath   = "/basicspacedata/query"
	CatalogPath = "/missions/satellite_missions/current_missions/index.html"

	sessionCookie = "chocolatechip"
)

// MockSpaceTrack is a configurable mock of the login, query and catalog endpoints.
type MockSpaceTrack struct {
	server *httptest.Server

	mu          sync.RWMutex
	identity    string
	password    string
	token       string
	loginStatus int
	queries     map[string]MockResponse
	catalogHTML string

	// Tracking
	LoginCount   int
	QueryCount   int
	QueryPaths   []string
	CatalogCount int
}

// MockResponse is a canned response for a query keyed by identifier CSV.
type MockResponse struct {
	StatusCode int
	Body       string
}

// NewMockSpaceTrack creates a mock accepting the given credentials.
func NewMockSpaceTrack(identity, password string) *MockSpaceTrack {
	mock := &MockSpaceTrack{
		identity: identity,
		password: password,
		token:    "session-1",
		queries:  make(map[string]MockResponse),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(LoginPath, mock.handleLogin)
	mux.HandleFunc(QueryPath+"/", mock.handleQuery)
	mux.HandleFunc(CatalogPath, mock.handleCatalog)
	mock.server = httptest.NewServer(mux)

	return mock
}

// URL returns the mock server URL.
func (m *MockSpaceTrack) URL() string {
	return m.server.URL
}

// LoginURL returns the full login endpoint URL.
func (m *MockSpaceTrack) LoginURL() string {
	return m.server.URL + LoginPath
}

// QueryURL returns the base URL of the query endpoint.
func (m *MockSpaceTrack) QueryURL() string {
	return m.server.URL + QueryPath
}

// CatalogURL returns the catalog listing URL.
func (m *MockSpaceTrack) CatalogURL() string {
	return m.server.URL + CatalogPath
}

// Close shuts down the mock server.
func (m *MockSpaceTrack) Close() {
	m.server.Close()
}

// SetLoginStatus forces the login endpoint to answer with status.
// Zero restores normal behaviour.
func (m *MockSpaceTrack) SetLoginStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginStatus = status
}

// ExpireSession invalidates cookies issued so far.
func (m *MockSpaceTrack) ExpireSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = fmt.Sprintf("session-%d", m.LoginCount+2)
}

// SetQueryResponse configures the response for a query whose identifier
// segment equals csv.
func (m *MockSpaceTrack) SetQueryResponse(csv string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[csv] = resp
}

// SetCatalogHTML configures the catalog page body.
func (m *MockSpaceTrack) SetCatalogHTML(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogHTML = body
}

// GetLoginCount returns the number of login attempts.
func (m *MockSpaceTrack) GetLoginCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LoginCount
}

// GetQueryCount returns the number of query requests.
func (m *MockSpaceTrack) GetQueryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.QueryCount
}

func (m *MockSpaceTrack) handleLogin(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginCount++

	if m.loginStatus != 0 {
		w.WriteHeader(m.loginStatus)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("identity") != m.identity || r.PostForm.Get("password") != m.password {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Login":"Failed"}`))
		return
	}

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: m.token, Path: "/"})
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`""`))
}

func (m *MockSpaceTrack) handleQuery(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.QueryCount++
	m.QueryPaths = append(m.QueryPaths, r.URL.Path)
	token := m.token
	resp, ok := m.queries[QueryIDs(r.URL.Path)]
	m.mu.Unlock()

	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value != token {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"You must be logged in to complete this request"}`))
		return
	}

	if !ok {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(""))
		return
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(resp.StatusCode)
	w.Write([]byte(resp.Body))
}

func (m *MockSpaceTrack) handleCatalog(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.CatalogCount++
	body := m.catalogHTML
	m.mu.Unlock()

	if body == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}

// QueryIDs extracts the identifier segment from a batch query path.
func QueryIDs(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if s == "NORAD_CAT_ID" && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}

// CatalogPage renders an ILRS-style mission table with the given
// catalog-number cells, one row each.
func CatalogPage(ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><table id=\"stations\">\n")
	b.WriteString("<tr><th>Name</th><th>Alt. Name</th><th>SIC</th><th>ID</th><th>COSPAR</th></tr>\n")
	for i, id := range ids {
		fmt.Fprintf(&b, "<tr><td>Sat%d</td><td>sat%d</td><td>%d</td><td>%s</td><td>-</td></tr>\n",
			i, i, 1000+i, html.EscapeString(id))
	}
	b.WriteString("</table></body></html>\n")
	return b.String()
}

// NewTLE returns a three-line element set body with CRLF line endings,
// as served by the query endpoint.
func NewTLE(names ...string) string {
	var b strings.Builder
	for i, name := range names {
		fmt.Fprintf(&b, "0 %s\r\n1 %05dU 76039A   24001.00000000  .00000000  00000-0  00000-0 0  9990\r\n2 %05d 109.8000 000.0000 0044000 000.0000 000.0000  6.38664500000000\r\n",
			name, i+1, i+1)
	}
	return b.String()
}

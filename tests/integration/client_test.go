//go:build integration

package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/swapi-client/internal/server"
	"github.com/Sternrassler/swapi-client/internal/testutil"
	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/Sternrassler/swapi-client/pkg/dashboard"
	"github.com/Sternrassler/swapi-client/pkg/pagination"
	"github.com/Sternrassler/swapi-client/pkg/render"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// testTransport redirects requests for the public API host to the mock
// server, stripping the /api path prefix.
type testTransport struct {
	mockServer *testutil.MockSWAPI
}

func (t *testTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	if req.URL.Host == "" || req.URL.Host == "swapi.dev" {
		req.URL.Host = strings.TrimPrefix(t.mockServer.URL(), "http://")
		req.URL.Path = strings.TrimPrefix(req.URL.Path, "/api")
	}
	return http.DefaultTransport.RoundTrip(req)
}

// newClient creates a client with the default base URL routed to mock.
func newClient(t *testing.T, mock *testutil.MockSWAPI) *client.Client {
	t.Helper()

	c, err := client.New(client.DefaultConfig("TestApp/1.0.0 (integration@test.com)"))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	c.SetHTTPClient(&http.Client{
		Transport: &testTransport{mockServer: mock},
	})
	return c
}

// newReplica creates one server replica backed by the shared Redis store.
func newReplica(t *testing.T, c *client.Client, redisClient *redis.Client) http.Handler {
	t.Helper()

	store := pagination.NewRedisStore(redisClient, time.Hour)
	nav := pagination.NewNavigator(store, "integration")
	dash := dashboard.New(c, nav, render.NewDocument(), dashboard.DefaultConfig())
	return server.New(dash, server.Options{}).Handler()
}

func serve(t *testing.T, h http.Handler, method, path string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

// TestFullRequestFlow tests navigation on one replica followed by a load on
// another: Page Store → Navigator → SWAPI → Document → HTML.
func TestFullRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	c := newClient(t, mock)
	replicaA := newReplica(t, c, redisClient)
	replicaB := newReplica(t, c, redisClient)

	t.Log("Replica A: advance page")
	if status, _ := serve(t, replicaA, http.MethodPost, "/page/next"); status != http.StatusSeeOther {
		t.Fatalf("Next page status = %d, want %d", status, http.StatusSeeOther)
	}
	if mock.RequestCount() != 0 {
		t.Errorf("After page change: SWAPI requests = %d, want 0", mock.RequestCount())
	}

	t.Log("Replica B: load characters on the shared page")
	if status, _ := serve(t, replicaB, http.MethodPost, "/load/characters"); status != http.StatusSeeOther {
		t.Fatalf("Load status = %d, want %d", status, http.StatusSeeOther)
	}

	pages := mock.PagesServed()
	if len(pages) != 1 || pages[0] != 2 {
		t.Errorf("Pages served = %v, want [2]", pages)
	}
	if ua := mock.LastUserAgent(); ua != "TestApp/1.0.0 (integration@test.com)" {
		t.Errorf("User-Agent = %q", ua)
	}

	status, body := serve(t, replicaB, http.MethodGet, "/")
	if status != http.StatusOK {
		t.Fatalf("Index status = %d, want %d", status, http.StatusOK)
	}
	for _, want := range []string{
		`<span id="page-number">Page 2</span>`,
		`<tr><td>R2-D2</td><td>33BBY</td></tr>`,
		`<tr><td>Darth Vader</td><td>41.9BBY</td></tr>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Index missing %q", want)
		}
	}

	t.Log("Replica A: page display follows the shared store")
	_, body = serve(t, replicaA, http.MethodGet, "/")
	if !strings.Contains(body, `<span id="page-number">Page 2</span>`) {
		t.Error("Replica A does not show shared page 2")
	}
}

// TestDefaultBaseURL tests that requests are built from the public base URL.
func TestDefaultBaseURL(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	c := newClient(t, mock)

	page, err := c.FetchPlanets(context.Background(), 2)
	if err != nil {
		t.Fatalf("FetchPlanets failed: %v", err)
	}

	if len(page.Results) != 1 || page.Results[0].Name != "Yavin IV" {
		t.Errorf("Results = %+v, want [Yavin IV]", page.Results)
	}
	if page.HasNext() {
		t.Error("HasNext = true on last page")
	}
	if !page.HasPrevious() {
		t.Error("HasPrevious = false on page 2")
	}
}

// TestConcurrentNavigation tests that page changes from many replicas are
// not lost.
func TestConcurrentNavigation(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	store := pagination.NewRedisStore(redisClient, time.Hour)

	const workers = 10
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nav := pagination.NewNavigator(store, "concurrent")
			if _, err := nav.Next(ctx); err != nil {
				t.Errorf("Next failed: %v", err)
			}
		}()
	}
	wg.Wait()

	page, err := pagination.NewNavigator(store, "concurrent").Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if page != 1+workers {
		t.Errorf("Page = %d, want %d", page, 1+workers)
	}
}

// TestLoadAll_SlowResource tests that a slow planet fetch does not block
// the character table and that loading ends only after both finish.
func TestLoadAll_SlowResource(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	mock.SetResponse("/planets/", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"count": 1, "next": null, "previous": null, "results": [{"name": "Hoth", "orbital_period": "549"}]}`,
		Delay:      200 * time.Millisecond,
	})

	c := newClient(t, mock)
	nav := pagination.NewNavigator(pagination.NewRedisStore(redisClient, time.Hour), "slow")
	dash := dashboard.New(c, nav, render.NewDocument(), dashboard.DefaultConfig())

	if err := dash.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	snap := dash.Snapshot()
	if !snap.Loading.Hidden {
		t.Error("Loading indicator still visible")
	}
	planets, _ := snap.Table(render.PlanetTable)
	if planets.Hidden || len(planets.Rows) != 1 || planets.Rows[0].Cells[0] != "Hoth" {
		t.Errorf("Planet table = %+v", planets)
	}
}

// TestReady_RedisDown tests that readiness reflects the page store.
func TestReady_RedisDown(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	h := newReplica(t, newClient(t, mock), redisClient)

	if status, _ := serve(t, h, http.MethodGet, "/ready"); status != http.StatusOK {
		t.Errorf("Ready status = %d, want %d", status, http.StatusOK)
	}

	redisClient.Close()

	if status, _ := serve(t, h, http.MethodGet, "/ready"); status != http.StatusServiceUnavailable {
		t.Errorf("Ready status after close = %d, want %d", status, http.StatusServiceUnavailable)
	}
}

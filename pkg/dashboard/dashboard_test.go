package dashboard

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/swapi-client/internal/testutil"
	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/Sternrassler/swapi-client/pkg/pagination"
	"github.com/Sternrassler/swapi-client/pkg/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher blocks each fetch until the test releases it.
type gatedFetcher struct {
	started    chan int
	release    chan struct{}
	characters *client.Page[client.Character]
	planets    *client.Page[client.Planet]
	err        error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		started: make(chan int, 4),
		release: make(chan struct{}),
		characters: &client.Page[client.Character]{
			Count:   82,
			Results: []client.Character{{Name: "Luke Skywalker", BirthYear: "19BBY"}},
		},
		planets: &client.Page[client.Planet]{
			Count:   60,
			Results: []client.Planet{{Name: "Tatooine", OrbitalPeriod: "304"}},
		},
	}
}

func (f *gatedFetcher) wait(ctx context.Context, page int) error {
	f.started <- page
	select {
	case <-f.release:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *gatedFetcher) FetchCharacters(ctx context.Context, page int) (*client.Page[client.Character], error) {
	if err := f.wait(ctx, page); err != nil {
		return nil, err
	}
	return f.characters, nil
}

func (f *gatedFetcher) FetchPlanets(ctx context.Context, page int) (*client.Page[client.Planet], error) {
	if err := f.wait(ctx, page); err != nil {
		return nil, err
	}
	return f.planets, nil
}

func newDashboard(f Fetcher) *Dashboard {
	nav := pagination.NewNavigator(pagination.NewMemoryStore(), "test")
	return New(f, nav, render.NewDocument(), DefaultConfig())
}

func table(t *testing.T, d *Dashboard, id render.TableID) render.Table {
	t.Helper()
	tbl, ok := d.Snapshot().Table(id)
	require.True(t, ok)
	return tbl
}

func TestLoadCharacters_VisibilityBeforeAndAfter(t *testing.T) {
	f := newGatedFetcher()
	d := newDashboard(f)

	done := make(chan error, 1)
	go func() { done <- d.LoadCharacters(context.Background()) }()

	<-f.started
	s := d.Snapshot()
	assert.False(t, s.Loading.Hidden, "loading visible before fetch resolves")
	assert.True(t, table(t, d, render.CharacterTable).Hidden, "table hidden before fetch resolves")

	close(f.release)
	require.NoError(t, <-done)

	s = d.Snapshot()
	assert.True(t, s.Loading.Hidden, "loading hidden after fetch resolves")
	chars := table(t, d, render.CharacterTable)
	assert.False(t, chars.Hidden)
	require.Len(t, chars.Rows, 1)
	assert.Equal(t, [2]string{"Luke Skywalker", "19BBY"}, chars.Rows[0].Cells)
	assert.Equal(t, 82, chars.Total)
	assert.True(t, table(t, d, render.PlanetTable).Hidden)
}

func TestLoad_UsesCurrentPage(t *testing.T) {
	f := newGatedFetcher()
	close(f.release)
	d := newDashboard(f)
	ctx := context.Background()

	_, err := d.SetPage(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, d.LoadPlanets(ctx))

	assert.Equal(t, 3, <-f.started)
	assert.Equal(t, 3, d.Snapshot().Page)
}

func TestSetPage_DoesNotFetch(t *testing.T) {
	f := newGatedFetcher()
	d := newDashboard(f)
	ctx := context.Background()

	page, err := d.SetPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page)
	assert.Equal(t, 2, d.Snapshot().Page)

	page, err = d.SetPage(ctx, 0)
	assert.ErrorIs(t, err, pagination.ErrInvalidPage)
	assert.Equal(t, 2, page)
	assert.Equal(t, 2, d.Snapshot().Page)

	assert.Empty(t, f.started, "no fetch triggered by page changes")
}

func TestNextAndPreviousPage(t *testing.T) {
	d := newDashboard(newGatedFetcher())
	ctx := context.Background()

	page, err := d.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, page)

	page, err = d.PreviousPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, page)

	page, err = d.PreviousPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, page)

	current, err := d.CurrentPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, current)
}

func TestLoad_FailureShowsError(t *testing.T) {
	f := newGatedFetcher()
	f.err = &client.RequestError{Class: client.ErrorClassDecode, Err: errors.New("bad json")}
	close(f.release)
	d := newDashboard(f)

	err := d.LoadPlanets(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrDecode)

	s := d.Snapshot()
	assert.True(t, s.Loading.Hidden, "failure does not leave loading stuck")
	assert.False(t, s.Error.Hidden)
	assert.Equal(t, "The Star Wars API returned unreadable data for planets.", s.ErrorMessage)
	assert.True(t, table(t, d, render.PlanetTable).Hidden)
}

func TestLoadAll_IndependentLoads(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()
	mock.SetResponse("/planets/", testutil.NewHTMLErrorResponse())

	cfg := client.DefaultConfig("TestApp/1.0.0")
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	require.NoError(t, err)

	d := newDashboard(c)

	err = d.LoadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrDecode)

	chars := table(t, d, render.CharacterTable)
	assert.False(t, chars.Hidden, "character load succeeds despite planet failure")
	assert.Len(t, chars.Rows, 2)
	assert.True(t, table(t, d, render.PlanetTable).Hidden)
	assert.True(t, d.Snapshot().Loading.Hidden)
}

func TestLoadAll_BothSucceed(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	cfg := client.DefaultConfig("TestApp/1.0.0")
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	require.NoError(t, err)

	d := newDashboard(c)
	require.NoError(t, d.LoadAll(context.Background()))

	s := d.Snapshot()
	assert.True(t, s.Loading.Hidden)
	assert.True(t, s.Error.Hidden)
	for _, tbl := range s.Tables {
		assert.False(t, tbl.Hidden, tbl.ID)
		assert.Len(t, tbl.Rows, 2, tbl.ID)
		assert.True(t, tbl.HasNext, tbl.ID)
	}
}

func TestLoad_Timeout(t *testing.T) {
	f := newGatedFetcher()
	nav := pagination.NewNavigator(pagination.NewMemoryStore(), "test")
	d := New(f, nav, render.NewDocument(), Config{LoadTimeout: 20 * time.Millisecond})

	err := d.LoadCharacters(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, d.Snapshot().Error.Hidden)
}

func TestLoad_UnknownTable(t *testing.T) {
	d := newDashboard(newGatedFetcher())

	assert.Error(t, d.Load(context.Background(), render.TableID("starship-table")))
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name  string
		table render.TableID
		err   error
		want  string
	}{
		{
			name:  "network",
			table: render.CharacterTable,
			err:   &client.RequestError{Class: client.ErrorClassNetwork},
			want:  "Could not reach the Star Wars API to load characters.",
		},
		{
			name:  "timeout",
			table: render.PlanetTable,
			err:   &client.RequestError{Class: client.ErrorClassTimeout},
			want:  "Loading planets timed out. Please try again.",
		},
		{
			name:  "cancelled",
			table: render.PlanetTable,
			err:   &client.RequestError{Class: client.ErrorClassCancelled},
			want:  "Loading planets was cancelled.",
		},
		{
			name:  "unclassified",
			table: render.CharacterTable,
			err:   errors.New("boom"),
			want:  "Could not reach the Star Wars API to load characters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FailureMessage(tt.table, tt.err))
		})
	}
}

func TestRefreshPage_SharedStore(t *testing.T) {
	store := pagination.NewMemoryStore()
	ctx := context.Background()

	a := New(newGatedFetcher(), pagination.NewNavigator(store, "shared"), render.NewDocument(), DefaultConfig())
	b := New(newGatedFetcher(), pagination.NewNavigator(store, "shared"), render.NewDocument(), DefaultConfig())

	_, err := a.SetPage(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Snapshot().Page, "display unchanged until refreshed")

	page, err := b.RefreshPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, page)
	assert.Equal(t, 4, b.Snapshot().Page)
}

// brokenStore is a page store whose backend is unreachable.
type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) Get(context.Context, string) (int, error) { return 0, errStoreDown }
func (brokenStore) Update(context.Context, string, pagination.UpdateFunc) (int, error) {
	return 0, errStoreDown
}
func (brokenStore) Ping(context.Context) error { return errStoreDown }

func TestLoad_PageStoreFailureShowsError(t *testing.T) {
	f := newGatedFetcher()
	close(f.release)
	d := New(f, pagination.NewNavigator(brokenStore{}, "test"), render.NewDocument(), DefaultConfig())

	err := d.LoadCharacters(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, client.ClassOf(err), "store failures carry no request class")

	s := d.Snapshot()
	assert.True(t, s.Loading.Hidden, "failure does not leave loading stuck")
	assert.False(t, s.Error.Hidden)
	assert.Equal(t, PageStoreMessage, s.ErrorMessage)
	assert.True(t, table(t, d, render.CharacterTable).Hidden)
	assert.Empty(t, f.started, "no fetch without a page")
}

func TestNew_ComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	f := newGatedFetcher()
	f.err = &client.RequestError{Class: client.ErrorClassNetwork, Err: errors.New("refused")}
	close(f.release)

	d := newDashboard(f)
	require.Error(t, d.LoadPlanets(context.Background()))

	assert.Contains(t, buf.String(), `"component":"dashboard"`)
	assert.Contains(t, buf.String(), `"table":"planet-table"`)
}

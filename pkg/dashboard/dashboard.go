// Package dashboard drives the load cycle of the character and planet
// tables: show loading, fetch the current page, build rows, swap visibility.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/Sternrassler/swapi-client/pkg/logging"
	"github.com/Sternrassler/swapi-client/pkg/pagination"
	"github.com/Sternrassler/swapi-client/pkg/render"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves one page of each resource.
type Fetcher interface {
	FetchCharacters(ctx context.Context, page int) (*client.Page[client.Character], error)
	FetchPlanets(ctx context.Context, page int) (*client.Page[client.Planet], error)
}

// Config holds dashboard configuration.
type Config struct {
	// LoadTimeout bounds a single table load. 0 disables it.
	LoadTimeout time.Duration
}

// DefaultConfig returns the default dashboard configuration.
func DefaultConfig() Config {
	return Config{
		LoadTimeout: 30 * time.Second,
	}
}

// Dashboard ties a fetcher, a page navigator and a document together.
type Dashboard struct {
	fetcher Fetcher
	nav     *pagination.Navigator
	doc     *render.Document
	config  Config
	logger  zerolog.Logger
}

// New creates a dashboard.
func New(fetcher Fetcher, nav *pagination.Navigator, doc *render.Document, cfg Config) *Dashboard {
	return &Dashboard{
		fetcher: fetcher,
		nav:     nav,
		doc:     doc,
		config:  cfg,
		logger:  logging.NewLogger("dashboard"),
	}
}

// LoadCharacters loads the current page into the character table.
func (d *Dashboard) LoadCharacters(ctx context.Context) error {
	return load(ctx, d, render.CharacterTable, d.fetcher.FetchCharacters)
}

// LoadPlanets loads the current page into the planet table.
func (d *Dashboard) LoadPlanets(ctx context.Context) error {
	return load(ctx, d, render.PlanetTable, d.fetcher.FetchPlanets)
}

// Load dispatches to LoadCharacters or LoadPlanets.
func (d *Dashboard) Load(ctx context.Context, table render.TableID) error {
	switch table {
	case render.CharacterTable:
		return d.LoadCharacters(ctx)
	case render.PlanetTable:
		return d.LoadPlanets(ctx)
	default:
		return fmt.Errorf("unknown table %q", table)
	}
}

// LoadAll loads both tables concurrently. The loads are independent: a
// failure in one does not cancel the other. Errors are joined.
func (d *Dashboard) LoadAll(ctx context.Context) error {
	var (
		g    errgroup.Group
		errs [2]error
	)

	g.Go(func() error {
		errs[0] = d.LoadCharacters(ctx)
		return nil
	})
	g.Go(func() error {
		errs[1] = d.LoadPlanets(ctx)
		return nil
	})
	_ = g.Wait()

	return errors.Join(errs[0], errs[1])
}

// CurrentPage returns the navigator's current page.
func (d *Dashboard) CurrentPage(ctx context.Context) (int, error) {
	return d.nav.Current(ctx)
}

// RefreshPage reads the current page from the store and shows it. Other
// replicas sharing the store may have moved the page since the last change.
func (d *Dashboard) RefreshPage(ctx context.Context) (int, error) {
	return d.updatePage(d.nav.Current(ctx))
}

// SetPage changes the current page and the page display. It does not load
// data; pages below 1 are rejected with pagination.ErrInvalidPage.
func (d *Dashboard) SetPage(ctx context.Context, page int) (int, error) {
	return d.updatePage(d.nav.Set(ctx, page))
}

// NextPage advances one page without loading data.
func (d *Dashboard) NextPage(ctx context.Context) (int, error) {
	return d.updatePage(d.nav.Next(ctx))
}

// PreviousPage goes back one page without loading data.
func (d *Dashboard) PreviousPage(ctx context.Context) (int, error) {
	return d.updatePage(d.nav.Previous(ctx))
}

func (d *Dashboard) updatePage(page int, err error) (int, error) {
	if page > 0 {
		d.doc.SetPageDisplay(page)
	}
	return page, err
}

// Snapshot returns the current document state.
func (d *Dashboard) Snapshot() render.Snapshot {
	return d.doc.Snapshot()
}

// Ping checks the page store.
func (d *Dashboard) Ping(ctx context.Context) error {
	return d.nav.Ping(ctx)
}

func load[T render.Record](
	ctx context.Context,
	d *Dashboard,
	table render.TableID,
	fetch func(context.Context, int) (*client.Page[T], error),
) error {
	ticket := d.doc.StartLoading(table)
	loadsInFlight.Inc()
	defer loadsInFlight.Dec()

	startTime := time.Now()
	defer func() {
		loadDuration.WithLabelValues(string(table)).Observe(time.Since(startTime).Seconds())
	}()

	page, err := d.nav.Current(ctx)
	if err != nil {
		d.doc.Fail(ticket, PageStoreMessage)
		loadsTotal.WithLabelValues(string(table), "error").Inc()
		d.logger.Error().
			Err(err).
			Str("table", string(table)).
			Msg("Could not read current page")
		return fmt.Errorf("load %s: %w", table, err)
	}
	d.doc.SetPageDisplay(page)

	if d.config.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.LoadTimeout)
		defer cancel()
	}

	result, err := fetch(ctx, page)
	if err != nil {
		d.doc.Fail(ticket, FailureMessage(table, err))
		loadsTotal.WithLabelValues(string(table), "error").Inc()
		d.logger.Error().
			Err(err).
			Str("table", string(table)).
			Int("page", page).
			Str("error_class", string(client.ClassOf(err))).
			Msg("Table load failed")
		return fmt.Errorf("load %s: %w", table, err)
	}

	applied := d.doc.Complete(ticket, render.TableData{
		Rows:    render.BuildRows(result.Results),
		Total:   result.Count,
		HasNext: result.HasNext(),
	})
	if !applied {
		loadsTotal.WithLabelValues(string(table), "stale").Inc()
		d.logger.Debug().
			Str("table", string(table)).
			Int("page", page).
			Msg("Discarded stale load result")
		return nil
	}

	loadsTotal.WithLabelValues(string(table), "ok").Inc()
	d.logger.Info().
		Str("table", string(table)).
		Int("page", page).
		Int("rows", len(result.Results)).
		Dur("duration", time.Since(startTime)).
		Msg("Table loaded")
	return nil
}

// PageStoreMessage is shown when the current page cannot be read.
const PageStoreMessage = "The current page is unavailable. Please try again."

// FailureMessage returns the user-visible message for a failed load.
func FailureMessage(table render.TableID, err error) string {
	what := "characters"
	if table == render.PlanetTable {
		what = "planets"
	}

	switch client.ClassOf(err) {
	case client.ErrorClassDecode:
		return fmt.Sprintf("The Star Wars API returned unreadable data for %s.", what)
	case client.ErrorClassTimeout:
		return fmt.Sprintf("Loading %s timed out. Please try again.", what)
	case client.ErrorClassCancelled:
		return fmt.Sprintf("Loading %s was cancelled.", what)
	default:
		return fmt.Sprintf("Could not reach the Star Wars API to load %s.", what)
	}
}

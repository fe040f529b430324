package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/swapi-client/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultPage is the page shown before any navigation.
const DefaultPage = 1

// ErrInvalidPage is returned by Set for pages below 1.
var ErrInvalidPage = errors.New("page must be >= 1")

// Navigator is the accessor/mutator for one session's current page.
type Navigator struct {
	store  Store
	key    string
	logger zerolog.Logger
}

// NewNavigator creates a navigator for session backed by store.
func NewNavigator(store Store, session string) *Navigator {
	if store == nil {
		panic("page store cannot be nil")
	}
	key := Key(session)
	return &Navigator{
		store:  store,
		key:    key,
		logger: logging.NewLogger("pagination").With().Str("key", key).Logger(),
	}
}

// Current returns the current page, DefaultPage if none was stored.
func (n *Navigator) Current(ctx context.Context) (int, error) {
	page, err := n.store.Get(ctx, n.key)
	if errors.Is(err, ErrNotFound) {
		return DefaultPage, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get current page: %w", err)
	}
	return page, nil
}

// Set changes the current page. Pages below 1 are rejected: the stored page
// is left unchanged and returned together with ErrInvalidPage.
func (n *Navigator) Set(ctx context.Context, page int) (int, error) {
	if page < 1 {
		PageRejections.Inc()
		n.logger.Debug().Int("page", page).Msg("Rejected page below 1")

		current, err := n.Current(ctx)
		if err != nil {
			return 0, err
		}
		return current, fmt.Errorf("%w (got %d)", ErrInvalidPage, page)
	}

	result, err := n.store.Update(ctx, n.key, func(int) (int, error) {
		return page, nil
	})
	if err != nil {
		return 0, fmt.Errorf("set page: %w", err)
	}

	PageChanges.WithLabelValues("set").Inc()
	n.logger.Debug().Int("page", result).Msg("Page set")
	return result, nil
}

// Next advances one page. There is no upper bound.
func (n *Navigator) Next(ctx context.Context) (int, error) {
	result, err := n.store.Update(ctx, n.key, func(current int) (int, error) {
		return current + 1, nil
	})
	if err != nil {
		return 0, fmt.Errorf("next page: %w", err)
	}

	PageChanges.WithLabelValues("next").Inc()
	n.logger.Debug().Int("page", result).Msg("Page advanced")
	return result, nil
}

// Previous goes back one page; on page 1 it is a no-op.
func (n *Navigator) Previous(ctx context.Context) (int, error) {
	result, err := n.store.Update(ctx, n.key, func(current int) (int, error) {
		if current <= 1 {
			return DefaultPage, nil
		}
		return current - 1, nil
	})
	if err != nil {
		return 0, fmt.Errorf("previous page: %w", err)
	}

	PageChanges.WithLabelValues("previous").Inc()
	n.logger.Debug().Int("page", result).Msg("Page moved back")
	return result, nil
}

// Ping checks the underlying store.
func (n *Navigator) Ping(ctx context.Context) error {
	return n.store.Ping(ctx)
}

// Package pagination holds the current page number as explicit state.
//
// A Navigator wraps a Store and exposes one accessor and a small set of
// mutators. Page numbers start at 1; Set rejects anything below 1 and leaves
// the stored page untouched. There is no upper bound, and changing the page
// never triggers a fetch: callers load data separately.
//
// Example usage:
//
//	nav := pagination.NewNavigator(pagination.NewMemoryStore(), "default")
//	page, err := nav.Set(ctx, 2)
//	if errors.Is(err, pagination.ErrInvalidPage) {
//		// page still holds the previous value
//	}
//
// Two stores are provided:
//   - MemoryStore keeps pages in process memory (CLI, single server)
//   - RedisStore shares pages between server replicas; read-modify-write
//     updates run in a WATCH/MULTI transaction
//
// Store keys are built by Key and are stable per session.
package pagination

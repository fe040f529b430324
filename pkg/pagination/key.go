package pagination

import (
	"strings"
)

// DefaultSession is used when a caller passes an empty session name.
const DefaultSession = "default"

// Key generates the store key for a session's page number.
// Format: swapi:page:<session>
//
// Example:
//
//	swapi:page:default
func Key(session string) string {
	session = strings.TrimSpace(session)
	if session == "" {
		session = DefaultSession
	}
	session = strings.ReplaceAll(session, ":", "_")

	return strings.Join([]string{"swapi", "page", session}, ":")
}

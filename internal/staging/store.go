// Package staging is the client-held cache bridging "just analyzed" and
// "explicitly saved" states. It keeps the last result set per analysis kind,
// a single consume-once action map, and the currently open review view, all
// scoped to one session database file.
package staging

import (
	"context"

	"telaah/internal/models"
)

// Store defines the session staging persistence interface.
type Store interface {
	// Stash stores a fresh result set keyed by feature and replaces the
	// single staged action map, whichever feature produced it.
	Stash(ctx context.Context, feature models.Feature, filename string, rows []models.Row, actions models.ActionMap) error

	// Restore returns the staged result set for a feature, or ok=false when
	// nothing usable is staged. Corrupt staged data is discarded and treated
	// as absent, never returned as an error.
	Restore(ctx context.Context, feature models.Feature) (rows []models.Row, filename string, ok bool, err error)

	// ClearStaged drops the staged result set for a feature.
	ClearStaged(ctx context.Context, feature models.Feature) error

	// ConsumeActions returns the staged action map and removes it, so a
	// second call in the same session reports ok=false. Corrupt data is
	// discarded silently.
	ConsumeActions(ctx context.Context) (actions models.ActionMap, ok bool, err error)

	// LastFilename returns the last-used source filename for a feature,
	// surviving after the staged rows themselves are cleared.
	LastFilename(ctx context.Context, feature models.Feature) (string, bool, error)

	// SaveView stores the serialized open review view, replacing any prior
	// one. LoadView returns it; ok=false when none is open or the stored
	// bytes are corrupt.
	SaveView(ctx context.Context, data []byte) error
	LoadView(ctx context.Context) (data []byte, ok bool, err error)
	ClearView(ctx context.Context) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

package out

import (
	"context"

	"decktimer/internal/modules/chime/domain"
)

// Device plays the round-complete chime.
type Device interface {
	Play(ctx context.Context) error
	Stop(ctx context.Context) error
	Rewind(ctx context.Context) error
}

// PluginHost speaks to an out-of-process chime plugin.
type PluginHost interface {
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
}

// Prober reports whether a local device can play at all.
type Prober interface {
	Probe(ctx context.Context) error
}

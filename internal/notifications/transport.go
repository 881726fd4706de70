package notifications

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Transport delivers one alert event. Implementations must tolerate
// concurrent, unordered Emit calls from independent namespace checks.
// Whatever retry policy exists lives behind this interface; callers never
// retry a failed emission.
type Transport interface {
	Emit(ctx context.Context, event Event) error
}

// LogTransport is the dry-run sink: events are logged and discarded, so
// nothing ever leaves the process.
type LogTransport struct{}

// Emit logs the event at the level matching its status.
func (LogTransport) Emit(ctx context.Context, event Event) error {
	log.Info().
		Str("check", event.Check).
		Str("status", event.Status.String()).
		Str("team", event.Team).
		Bool("page", event.Page).
		Str("output", event.Output).
		Msg("Dry run: alert event not sent")
	return nil
}

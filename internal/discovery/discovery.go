package discovery

import (
	"context"

	"github.com/replwatch/replwatch/internal/models"
)

// Client supplies the available-backend snapshot for a check run. One call
// per run; the returned map is never mutated afterwards.
//
// A namespace missing from the result is meaningful: discovery does not
// know it at all, which the checker treats as the worst outcome. A
// namespace present with a zero count means discovery knows the pool but
// every backend is down.
type Client interface {
	AvailableBackends(ctx context.Context, namespaces []string) (models.AvailabilityMap, error)
}

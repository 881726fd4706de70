package replication

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/replwatch/replwatch/internal/discovery"
	"github.com/replwatch/replwatch/internal/errors"
	"github.com/replwatch/replwatch/internal/metrics"
	"github.com/replwatch/replwatch/internal/models"
	"github.com/replwatch/replwatch/internal/notifications"
)

// DeclarationSource supplies the declared-instance snapshot for a run.
type DeclarationSource interface {
	LoadDeclarations(ctx context.Context) (*models.DeclarationSet, error)
}

// RoutingResolver looks up where alerts for a service should go. An empty
// team on the returned route means the service is unmanaged and its
// alerts are suppressed.
type RoutingResolver interface {
	ResolveRouting(service string) (models.AlertRoute, error)
}

// Options configures a Checker.
type Options struct {
	// WarnPct and CritPct are independent threshold percentages; see
	// config.Settings.Validate for the inversion warning.
	WarnPct int
	CritPct int
	// Workers bounds the per-namespace fan-out. Zero means sequential.
	Workers int
}

// Checker drives the full namespace universe through resolve, filter,
// evaluate, and route, producing exactly one terminal outcome per
// namespace per run. It holds no state between runs: both input snapshots
// are materialized once at the start of Run and passed through the
// pipeline explicitly.
type Checker struct {
	declarations DeclarationSource
	discovery    discovery.Client
	routing      RoutingResolver
	transport    notifications.Transport
	opts         Options
}

// NewChecker wires a checker from its collaborators.
func NewChecker(declarations DeclarationSource, disc discovery.Client, routing RoutingResolver, transport notifications.Transport, opts Options) *Checker {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Checker{
		declarations: declarations,
		discovery:    disc,
		routing:      routing,
		transport:    transport,
		opts:         opts,
	}
}

// Run evaluates every namespace in the universe against the two snapshots
// and emits (or suppresses) one alert decision each. The only fatal
// errors are failures to obtain either snapshot; everything after that
// isolates to single namespaces. Running twice on identical snapshots
// yields identical outcomes.
func (c *Checker) Run(ctx context.Context, universe []string) ([]models.Outcome, error) {
	runID := uuid.NewString()
	logger := log.With().Str("runID", runID).Logger()
	start := time.Now()

	declSet, err := c.declarations.LoadDeclarations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instance declarations: %w", err)
	}
	available, err := c.discovery.AvailableBackends(ctx, universe)
	if err != nil {
		return nil, fmt.Errorf("fetch availability snapshot: %w", err)
	}

	logger.Info().
		Int("namespaces", len(universe)).
		Int("declarations", declSet.Len()).
		Int("known", len(available)).
		Msg("Starting replication check")

	// Both snapshots are complete; fan out per namespace. Each worker
	// writes only its own slot, and the transport is the only shared
	// write target.
	outcomes := make([]models.Outcome, len(universe))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.opts.Workers)
	for i, encoded := range universe {
		group.Go(func() error {
			outcomes[i] = c.checkNamespace(groupCtx, logger, runID, encoded, declSet, available)
			return nil
		})
	}
	_ = group.Wait() // workers never return errors; failures live on outcomes

	m := metrics.Get()
	for _, outcome := range outcomes {
		m.RecordOutcome(outcome)
	}
	m.RecordRun(time.Since(start))

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Msg("Replication check finished")
	return outcomes, nil
}

// checkNamespace runs the per-namespace state machine and returns its one
// terminal outcome. No failure in here may affect any other namespace.
func (c *Checker) checkNamespace(ctx context.Context, logger zerolog.Logger, runID, encoded string, declSet *models.DeclarationSet, available models.AvailabilityMap) models.Outcome {
	logger.Debug().Str("namespace", encoded).Msg("Checking namespace")

	id, err := models.ParseNamespaceID(encoded)
	if err != nil {
		logger.Info().Err(err).Str("namespace", encoded).Msg("Namespace identifier malformed; skipping as unmanaged")
		return models.Outcome{Raw: encoded, State: models.OutcomeSkippedNotManaged}
	}

	expected, err := ExpectedCount(id, declSet)
	if err != nil {
		logger.Info().Err(err).Str("namespace", encoded).Msg("Namespace is not managed by this orchestrator")
		return models.Outcome{Raw: encoded, ID: id, State: models.OutcomeSkippedNotManaged}
	}
	if expected == 0 {
		logger.Info().Str("namespace", encoded).Msg("Namespace has no expected instances here")
		return models.Outcome{Raw: encoded, ID: id, State: models.OutcomeSkippedNotInScope}
	}

	outcome := models.Outcome{Raw: encoded, ID: id, Expected: expected}
	if count, known := available.Lookup(id); known {
		outcome.State = models.OutcomeEvaluated
		outcome.Available = count
		verdict := Evaluate(id, expected, count, c.opts.WarnPct, c.opts.CritPct)
		outcome.Verdict = &verdict
	} else {
		// Missing from the snapshot entirely: categorically the worst
		// outcome, never conflated with an evaluated ratio of zero.
		outcome.State = models.OutcomeNoData
		verdict := noDataVerdict(id)
		outcome.Verdict = &verdict
	}
	logVerdict(logger, *outcome.Verdict)

	route, err := c.routing.ResolveRouting(id.Service)
	if err != nil {
		logger.Warn().Err(err).Str("service", id.Service).Msg("Routing unresolvable; suppressing alert")
		outcome.Suppressed = true
		return outcome
	}
	if route.Unmanaged() {
		logger.Debug().Str("service", id.Service).Msg("No team configured; suppressing alert")
		outcome.Suppressed = true
		return outcome
	}
	outcome.Route = &route

	event := notifications.NewReplicationEvent(runID, id, *outcome.Verdict, route)
	if err := c.transport.Emit(ctx, event); err != nil {
		outcome.EmitErr = errors.WrapTransportError("emit_event", id.Service, err).WithNamespace(id.Namespace)
		logger.Error().Err(outcome.EmitErr).Str("namespace", encoded).Msg("Alert event delivery failed")
	}
	return outcome
}

// logVerdict mirrors the verdict's severity in the log stream.
func logVerdict(logger zerolog.Logger, verdict models.Verdict) {
	switch verdict.Status {
	case models.StatusCritical:
		logger.Error().Msg(verdict.Message)
	case models.StatusWarning:
		logger.Warn().Msg(verdict.Message)
	default:
		logger.Info().Msg(verdict.Message)
	}
}

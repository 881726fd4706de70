package models

// OutcomeState is the terminal state a namespace reaches in one check run.
type OutcomeState string

const (
	// OutcomeSkippedNotManaged: the owning service's configuration could
	// not be resolved; this orchestrator does not manage the namespace.
	OutcomeSkippedNotManaged OutcomeState = "skipped_not_managed"
	// OutcomeSkippedNotInScope: zero expected instances; the namespace is
	// not deployed in this cluster.
	OutcomeSkippedNotInScope OutcomeState = "skipped_not_in_scope"
	// OutcomeNoData: expected instances exist but discovery has no entry
	// for the namespace at all. Always CRITICAL, with a message distinct
	// from a normal zero-ratio evaluation.
	OutcomeNoData OutcomeState = "critical_no_data"
	// OutcomeEvaluated: the namespace went through threshold evaluation.
	OutcomeEvaluated OutcomeState = "evaluated"
)

// Outcome is the single terminal result for one namespace in one run.
type Outcome struct {
	// Raw is the encoded namespace identifier as supplied by the caller.
	// It survives even when parsing failed and ID is empty.
	Raw        string       `json:"raw"`
	ID         NamespaceID  `json:"id"`
	State      OutcomeState `json:"state"`
	Expected   int          `json:"expected"`
	Available  int          `json:"available"`
	Verdict    *Verdict     `json:"verdict,omitempty"`
	Route      *AlertRoute  `json:"route,omitempty"`
	Suppressed bool         `json:"suppressed,omitempty"`

	// EmitErr records a per-namespace delivery failure. It never aborts
	// the rest of the run.
	EmitErr error `json:"-"`
}

// Alertable reports whether the outcome carries a verdict that should
// reach the transport (before suppression is considered).
func (o Outcome) Alertable() bool {
	return o.State == OutcomeNoData || o.State == OutcomeEvaluated
}

// Emitted reports whether an alert event actually left the system for
// this namespace.
func (o Outcome) Emitted() bool {
	return o.Alertable() && !o.Suppressed && o.EmitErr == nil
}

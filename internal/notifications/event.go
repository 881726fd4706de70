package notifications

import (
	"github.com/replwatch/replwatch/internal/models"
)

// Scheduling hints carried on every replication event, matching what the
// on-call router expects for this check family.
const (
	eventAlertAfter   = "2m"
	eventCheckEvery   = "1m"
	eventRealertEvery = -1

	checkPrefix = "replication_check"
)

// Event is one alert leaving the system: a check result plus the routing
// metadata the on-call router needs to deliver it.
type Event struct {
	Check             string        `json:"name"`
	RunID             string        `json:"run_id,omitempty"`
	Status            models.Status `json:"status"`
	Output            string        `json:"output"`
	Team              string        `json:"team"`
	Runbook           string        `json:"runbook"`
	Tip               string        `json:"tip,omitempty"`
	NotificationEmail string        `json:"notification_email,omitempty"`
	Page              bool          `json:"page"`
	AlertAfter        string        `json:"alert_after"`
	CheckEvery        string        `json:"check_every"`
	RealertEvery      int           `json:"realert_every"`
}

// NewReplicationEvent builds the single event emitted for a namespace.
// The check name is stable across runs so the router can dedupe and
// resolve: one check identity per (service, namespace).
func NewReplicationEvent(runID string, id models.NamespaceID, verdict models.Verdict, route models.AlertRoute) Event {
	return Event{
		Check:             checkPrefix + models.NamespaceSeparator + id.String(),
		RunID:             runID,
		Status:            verdict.Status,
		Output:            verdict.Message,
		Team:              route.Team,
		Runbook:           route.Runbook,
		Tip:               route.Tip,
		NotificationEmail: route.NotificationEmail,
		Page:              route.Page,
		AlertAfter:        eventAlertAfter,
		CheckEvery:        eventCheckEvery,
		RealertEvery:      eventRealertEvery,
	}
}

package models

// AlertRoute is the per-service metadata describing where a replication
// alert should be delivered. A route without a team is the "unmanaged"
// sentinel: nobody owns alerts for the service, so none are emitted.
type AlertRoute struct {
	Team              string `json:"team,omitempty"`
	Runbook           string `json:"runbook,omitempty"`
	Tip               string `json:"tip,omitempty"`
	NotificationEmail string `json:"notificationEmail,omitempty"`
	Page              bool   `json:"page,omitempty"`
}

// Unmanaged reports whether the route suppresses alerting entirely.
func (r AlertRoute) Unmanaged() bool {
	return r.Team == ""
}

package replication

import (
	"fmt"

	"github.com/replwatch/replwatch/internal/models"
)

// Evaluate classifies a namespace from its available/expected ratio.
// Callers must short-circuit expected == 0 before calling; a namespace
// with nothing declared has no ratio to judge.
//
// Boundaries are inclusive toward the stricter bucket: ratio <= critPct is
// CRITICAL, else ratio <= warnPct is WARNING, else OK. The ratio may
// exceed 100 when discovery sees more backends than declared; that is OK.
func Evaluate(id models.NamespaceID, expected, available, warnPct, critPct int) models.Verdict {
	ratio := float64(available) / float64(expected) * 100

	message := fmt.Sprintf(
		"Service namespace %s has %d/%d instances available, thresholds are WARN @ %d, CRITICAL @ %d",
		id, available, expected, warnPct, critPct)

	status := models.StatusOK
	switch {
	case ratio <= float64(critPct):
		status = models.StatusCritical
	case ratio <= float64(warnPct):
		status = models.StatusWarning
	}

	return models.Verdict{Status: status, Ratio: ratio, Message: message}
}

// noDataVerdict is the distinct CRITICAL verdict for a namespace that is
// missing from the availability snapshot entirely. It must not read like a
// normal zero-ratio evaluation: discovery never having seen the pool is
// categorically worse than a pool with every backend down.
func noDataVerdict(id models.NamespaceID) models.Verdict {
	return models.Verdict{
		Status:  models.StatusCritical,
		Ratio:   0,
		Message: fmt.Sprintf("Service namespace entry %s not found! No instances available!", id),
	}
}

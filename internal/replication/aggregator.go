package replication

import (
	"github.com/replwatch/replwatch/internal/models"
)

// ExpectedCount returns the number of instances the orchestrator declares
// for one namespace: the sum of instance counts over every declaration of
// the owning service whose effective namespace matches. Zero with no error
// means the namespace is simply not deployed in this cluster. An error
// matching errors.ErrNotManaged means the owning service's configuration
// could not be resolved at all.
//
// Pure over the snapshot and independent of declaration ordering.
func ExpectedCount(id models.NamespaceID, set *models.DeclarationSet) (int, error) {
	decls, err := set.ForService(id.Service)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, decl := range decls {
		if decl.EffectiveNamespace() == id.Namespace {
			total += decl.Instances
		}
	}
	return total, nil
}

package models

// AvailabilityMap maps an encoded namespace ID ("service.namespace") to
// the number of healthy backends discovery currently reports for it. It is
// supplied once per check run and never mutated during the pass.
type AvailabilityMap map[string]int

// Lookup returns the available backend count for a namespace and whether
// discovery knows the namespace at all. Absence is meaningful: it is the
// worst outcome for a namespace that should have backends, and callers
// must not conflate it with a present zero.
func (m AvailabilityMap) Lookup(id NamespaceID) (int, bool) {
	count, ok := m[id.String()]
	return count, ok
}

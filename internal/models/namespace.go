package models

import (
	"fmt"
	"strings"
)

// NamespaceSeparator joins the owning service and the namespace in the
// encoded form used by discovery and by check identifiers.
const NamespaceSeparator = "."

// NamespaceID identifies one service namespace: the discovery-facing
// grouping a set of backends registers under, qualified by the service
// that owns it.
type NamespaceID struct {
	Service   string `json:"service"`
	Namespace string `json:"namespace"`
}

// String returns the encoded form "service.namespace".
func (id NamespaceID) String() string {
	return id.Service + NamespaceSeparator + id.Namespace
}

// ParseNamespaceID splits an encoded "service.namespace" identifier.
// Malformed input (missing separator, empty component, separator inside
// the namespace component) is an error, never silently tolerated.
func ParseNamespaceID(encoded string) (NamespaceID, error) {
	service, namespace, found := strings.Cut(encoded, NamespaceSeparator)
	if !found {
		return NamespaceID{}, fmt.Errorf("namespace id %q: missing %q separator", encoded, NamespaceSeparator)
	}
	if service == "" || namespace == "" {
		return NamespaceID{}, fmt.Errorf("namespace id %q: empty component", encoded)
	}
	if strings.Contains(namespace, NamespaceSeparator) {
		return NamespaceID{}, fmt.Errorf("namespace id %q: separator inside namespace component", encoded)
	}
	return NamespaceID{Service: service, Namespace: namespace}, nil
}

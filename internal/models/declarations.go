package models

import (
	"fmt"
	"sort"

	"github.com/replwatch/replwatch/internal/errors"
)

// InstanceDeclaration is a single declared instance of a service: the
// orchestrator's statement that it should keep Instances copies of
// Service's Instance running. A declaration registers its backends under
// RegisteredNamespace when set, otherwise under its own instance name.
type InstanceDeclaration struct {
	Service             string `json:"service"`
	Instance            string `json:"instance"`
	RegisteredNamespace string `json:"registeredNamespace,omitempty"`
	Instances           int    `json:"instances"`
}

// EffectiveNamespace resolves the namespace this declaration's backends
// register under.
func (d InstanceDeclaration) EffectiveNamespace() string {
	if d.RegisteredNamespace != "" {
		return d.RegisteredNamespace
	}
	return d.Instance
}

// DeclarationSet is an immutable per-run snapshot of every instance
// declaration, grouped by owning service. Services whose configuration
// could not be resolved at all are tracked separately so a later lookup
// can tell "no declarations" apart from "configuration broken".
type DeclarationSet struct {
	byService map[string][]InstanceDeclaration
	broken    map[string]error
}

// NewDeclarationSet returns an empty snapshot builder.
func NewDeclarationSet() *DeclarationSet {
	return &DeclarationSet{
		byService: make(map[string][]InstanceDeclaration),
		broken:    make(map[string]error),
	}
}

// Add records one declaration under its owning service.
func (s *DeclarationSet) Add(decl InstanceDeclaration) {
	s.byService[decl.Service] = append(s.byService[decl.Service], decl)
}

// MarkBroken records that service's configuration as unresolvable. Any
// lookup for it will report the service as not managed.
func (s *DeclarationSet) MarkBroken(service string, cause error) {
	s.broken[service] = cause
}

// ForService returns the declarations owned by service. An unknown service
// yields an empty slice and no error: it simply has nothing deployed here.
// A service marked broken yields an error matching errors.ErrNotManaged.
func (s *DeclarationSet) ForService(service string) ([]InstanceDeclaration, error) {
	if cause, bad := s.broken[service]; bad {
		return nil, errors.WrapConfigError("resolve_declarations", service,
			fmt.Errorf("%w: %v", errors.ErrNotManaged, cause))
	}
	return s.byService[service], nil
}

// Services returns the names of all services with declarations, sorted.
func (s *DeclarationSet) Services() []string {
	names := make([]string, 0, len(s.byService))
	for name := range s.byService {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the total number of declarations in the snapshot.
func (s *DeclarationSet) Len() int {
	total := 0
	for _, decls := range s.byService {
		total += len(decls)
	}
	return total
}

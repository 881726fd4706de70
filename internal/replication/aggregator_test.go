package replication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replwatch/replwatch/internal/errors"
	"github.com/replwatch/replwatch/internal/models"
)

func declSet(decls ...models.InstanceDeclaration) *models.DeclarationSet {
	set := models.NewDeclarationSet()
	for _, decl := range decls {
		set.Add(decl)
	}
	return set
}

func TestExpectedCountSumsMatchingDeclarations(t *testing.T) {
	set := declSet(
		models.InstanceDeclaration{Service: "mumble", Instance: "main", Instances: 3},
		models.InstanceDeclaration{Service: "mumble", Instance: "canary", RegisteredNamespace: "main", Instances: 1},
		models.InstanceDeclaration{Service: "mumble", Instance: "batch", Instances: 5},
		models.InstanceDeclaration{Service: "other", Instance: "main", Instances: 7},
	)

	count, err := ExpectedCount(models.NamespaceID{Service: "mumble", Namespace: "main"}, set)
	require.NoError(t, err)
	assert.Equal(t, 4, count, "main instance plus the canary registered under main")

	count, err = ExpectedCount(models.NamespaceID{Service: "mumble", Namespace: "batch"}, set)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestExpectedCountOrderIndependent(t *testing.T) {
	decls := []models.InstanceDeclaration{
		{Service: "svc", Instance: "a", RegisteredNamespace: "main", Instances: 2},
		{Service: "svc", Instance: "main", Instances: 3},
		{Service: "svc", Instance: "b", RegisteredNamespace: "main", Instances: 1},
	}
	forward := declSet(decls...)
	reversed := declSet(decls[2], decls[1], decls[0])

	id := models.NamespaceID{Service: "svc", Namespace: "main"}
	a, err := ExpectedCount(id, forward)
	require.NoError(t, err)
	b, err := ExpectedCount(id, reversed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 6, a)
}

func TestExpectedCountNoMatch(t *testing.T) {
	set := declSet(models.InstanceDeclaration{Service: "svc", Instance: "main", Instances: 3})

	// No declarations resolve to this namespace: legitimately zero.
	count, err := ExpectedCount(models.NamespaceID{Service: "svc", Namespace: "web"}, set)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Unknown service: also zero, also not an error.
	count, err = ExpectedCount(models.NamespaceID{Service: "ghost", Namespace: "main"}, set)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestExpectedCountBrokenService(t *testing.T) {
	set := models.NewDeclarationSet()
	set.MarkBroken("svc", assert.AnError)

	_, err := ExpectedCount(models.NamespaceID{Service: "svc", Namespace: "main"}, set)
	require.Error(t, err)
	assert.True(t, errors.IsNotManaged(err))
}

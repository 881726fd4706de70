package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replwatch/replwatch/internal/errors"
	"github.com/replwatch/replwatch/internal/models"
)

func writeServiceFile(t *testing.T, dir, service, name, content string) {
	t.Helper()
	serviceDir := filepath.Join(dir, service)
	require.NoError(t, os.MkdirAll(serviceDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(serviceDir, name), []byte(content), 0o644))
}

func TestLoadDeclarations(t *testing.T) {
	dir := t.TempDir()
	writeServiceFile(t, dir, "mumble", "instances-testcluster.yaml", `
main:
  instances: 3
canary:
  instances: 1
  registered_namespace: main
batch:
  instances: 5
`)
	writeServiceFile(t, dir, "zeus", "instances-othercluster.yaml", `
main:
  instances: 9
`)

	store := NewStore(dir, "testcluster")
	set, err := store.LoadDeclarations(context.Background())
	require.NoError(t, err)

	decls, err := set.ForService("mumble")
	require.NoError(t, err)
	assert.Len(t, decls, 3)

	// zeus declares nothing in testcluster.
	decls, err = set.ForService("zeus")
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestLoadDeclarationsSkipsMalformedEntry(t *testing.T) {
	dir := t.TempDir()
	writeServiceFile(t, dir, "mumble", "instances-testcluster.yaml", `
main:
  instances: 3
bogus:
  instances: "not-a-number"
negative:
  instances: -2
dotted:
  instances: 1
  registered_namespace: a.b
`)

	store := NewStore(dir, "testcluster")
	set, err := store.LoadDeclarations(context.Background())
	require.NoError(t, err)

	decls, err := set.ForService("mumble")
	require.NoError(t, err)
	require.Len(t, decls, 1, "only the valid entry survives")
	assert.Equal(t, "main", decls[0].Instance)
	assert.Equal(t, 3, decls[0].Instances)
}

func TestLoadDeclarationsMarksBrokenService(t *testing.T) {
	dir := t.TempDir()
	writeServiceFile(t, dir, "broken", "instances-testcluster.yaml", "{{ not yaml")
	writeServiceFile(t, dir, "healthy", "instances-testcluster.yaml", "main:\n  instances: 2\n")

	store := NewStore(dir, "testcluster")
	set, err := store.LoadDeclarations(context.Background())
	require.NoError(t, err, "one broken service never aborts the snapshot")

	_, err = set.ForService("broken")
	require.Error(t, err)
	assert.True(t, errors.IsNotManaged(err))

	decls, err := set.ForService("healthy")
	require.NoError(t, err)
	assert.Len(t, decls, 1)
}

func TestLoadDeclarationsMissingDirIsFatal(t *testing.T) {
	store := NewStore("/nonexistent/soa/dir", "testcluster")
	_, err := store.LoadDeclarations(context.Background())
	assert.Error(t, err)
}

func TestListNamespaces(t *testing.T) {
	dir := t.TempDir()
	writeServiceFile(t, dir, "mumble", "namespaces.yaml", `
main:
  proxy_port: 20001
web:
  proxy_port: 20002
`)
	writeServiceFile(t, dir, "zeus", "namespaces.yaml", `
main:
  proxy_port: 20010
`)
	writeServiceFile(t, dir, "silent", "instances-testcluster.yaml", "main:\n  instances: 1\n")
	writeServiceFile(t, dir, "garbled", "namespaces.yaml", "{{ not yaml")

	store := NewStore(dir, "testcluster")
	universe, err := store.ListNamespaces()
	require.NoError(t, err)
	assert.Equal(t, []string{"mumble.main", "mumble.web", "zeus.main"}, universe)
}

func TestResolveRouting(t *testing.T) {
	dir := t.TempDir()
	writeServiceFile(t, dir, "mumble", "monitoring.yaml", `
team: infra
runbook: https://runbooks.example.com/mumble
tip: check the proxy first
notification_email: infra@example.com
page: true
`)
	writeServiceFile(t, dir, "teamless", "monitoring.yaml", `
runbook: https://runbooks.example.com/teamless
`)
	writeServiceFile(t, dir, "garbled", "monitoring.yaml", "{{ not yaml")

	store := NewStore(dir, "testcluster")

	route, err := store.ResolveRouting("mumble")
	require.NoError(t, err)
	assert.Equal(t, models.AlertRoute{
		Team:              "infra",
		Runbook:           "https://runbooks.example.com/mumble",
		Tip:               "check the proxy first",
		NotificationEmail: "infra@example.com",
		Page:              true,
	}, route)
	assert.False(t, route.Unmanaged())

	// A monitoring file without a team is the unmanaged sentinel.
	route, err = store.ResolveRouting("teamless")
	require.NoError(t, err)
	assert.True(t, route.Unmanaged())

	// So is a missing file.
	route, err = store.ResolveRouting("ghost")
	require.NoError(t, err)
	assert.True(t, route.Unmanaged())

	// An unparseable file is a structural error, attributable to the service.
	_, err = store.ResolveRouting("garbled")
	assert.Error(t, err)
}

package nomad

import (
	"testing"

	nomadapi "github.com/hashicorp/nomad/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestDeclarationsFromJob(t *testing.T) {
	job := &nomadapi.Job{
		Name: strPtr("mumble"),
		TaskGroups: []*nomadapi.TaskGroup{
			{Name: strPtr("main"), Count: intPtr(3)},
			{Name: strPtr("canary"), Count: intPtr(1), Meta: map[string]string{"registered_namespace": "main"}},
			{Name: strPtr("batch"), Count: intPtr(5)},
		},
	}

	decls := declarationsFromJob(job)
	require.Len(t, decls, 3)

	assert.Equal(t, "mumble", decls[0].Service)
	assert.Equal(t, "main", decls[0].Instance)
	assert.Equal(t, 3, decls[0].Instances)
	assert.Equal(t, "main", decls[0].EffectiveNamespace())

	assert.Equal(t, "main", decls[1].EffectiveNamespace(), "meta overrides the group name")
	assert.Equal(t, "batch", decls[2].EffectiveNamespace())
}

func TestDeclarationsFromJobDropsMalformedGroups(t *testing.T) {
	job := &nomadapi.Job{
		Name: strPtr("mumble"),
		TaskGroups: []*nomadapi.TaskGroup{
			{Name: strPtr("main"), Count: intPtr(2)},
			{Name: nil, Count: intPtr(2)},
			{Name: strPtr("negative"), Count: intPtr(-1)},
			{Name: strPtr("dotted"), Count: intPtr(1), Meta: map[string]string{"registered_namespace": "a.b"}},
		},
	}

	decls := declarationsFromJob(job)
	require.Len(t, decls, 1)
	assert.Equal(t, "main", decls[0].Instance)
}

func TestDeclarationsFromJobRejectsSeparatorInName(t *testing.T) {
	job := &nomadapi.Job{
		Name:       strPtr("bad.name"),
		TaskGroups: []*nomadapi.TaskGroup{{Name: strPtr("main"), Count: intPtr(2)}},
	}
	assert.Empty(t, declarationsFromJob(job))

	assert.Empty(t, declarationsFromJob(nil))
	assert.Empty(t, declarationsFromJob(&nomadapi.Job{}))
}

func TestDeclarationsFromJobNilCount(t *testing.T) {
	job := &nomadapi.Job{
		Name:       strPtr("mumble"),
		TaskGroups: []*nomadapi.TaskGroup{{Name: strPtr("main")}},
	}
	decls := declarationsFromJob(job)
	require.Len(t, decls, 1)
	assert.Equal(t, 0, decls[0].Instances)
}

package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeChanges_AddedModifiedDeleted(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.PutBulk([]Record{
		{Path: "a.cs", Size: 10, ModTimeUnix: 100, ContentHash: "h1"},
		{Path: "b.cs", Size: 20, ModTimeUnix: 200, ContentHash: "h2"},
		{Path: "d.cs", Size: 30, ModTimeUnix: 250, ContentHash: "h4"}, // deleted below
	}))

	current := []Record{
		{Path: "a.cs", Size: 10, ModTimeUnix: 100, ContentHash: "h1"}, // unchanged
		{Path: "b.cs", Size: 25, ModTimeUnix: 300, ContentHash: "h2-new"}, // modified
		{Path: "c.cs", Size: 5, ModTimeUnix: 400, ContentHash: "h3"}, // added
	}

	changes, err := ComputeChanges(s, current)
	require.NoError(t, err)

	var kinds = map[string]ChangeKind{}
	for _, c := range changes {
		kinds[c.Path] = c.Kind
	}
	assert.Equal(t, Modified, kinds["b.cs"])
	assert.Equal(t, Added, kinds["c.cs"])
	assert.Equal(t, Deleted, kinds["d.cs"])
	_, hasA := kinds["a.cs"]
	assert.False(t, hasA)
}

func TestComputeChanges_TouchWithoutContentChangeIsNotModified(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(Record{Path: "a.cs", Size: 10, ModTimeUnix: 100, ContentHash: "h1"}))

	current := []Record{
		{Path: "a.cs", Size: 10, ModTimeUnix: 999, ContentHash: "h1"}, // mtime touched, bytes unchanged
	}

	changes, err := ComputeChanges(s, current)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

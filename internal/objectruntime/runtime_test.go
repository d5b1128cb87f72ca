package objectruntime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Evan-Kim2028/sui-sandbox-sub001/internal/sui"
)

func coinTag() sui.TypeTag {
	return sui.StructOf(sui.StructTag{Address: sui.FrameworkAddress, Module: "coin", Name: "Coin"})
}

func TestAddThenHasAndBorrow(t *testing.T) {
	rt := NewRuntime(nil)
	parent := sui.MustParseAddress("0x1000")
	child := sui.MustParseAddress("0x2000")
	tag := coinTag()

	require.NoError(t, rt.AddChildObject(parent, child, []byte("v1"), tag))
	require.True(t, rt.ChildObjectExists(parent, child))
	require.True(t, rt.ChildObjectExistsWithType(parent, child, tag))

	other := sui.StructOf(sui.StructTag{Address: sui.FrameworkAddress, Module: "coin", Name: "Other"})
	require.False(t, rt.ChildObjectExistsWithType(parent, child, other))

	got, err := rt.BorrowChildObject(parent, child, tag)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)
}

func TestRemoveThenAbsentRespectsRemovedChildren(t *testing.T) {
	shared := NewShared()
	rt := NewRuntime(shared)
	parent := sui.MustParseAddress("0x1000")
	child := sui.MustParseAddress("0x2000")
	tag := coinTag()

	require.NoError(t, rt.AddChildObject(parent, child, []byte("v1"), tag))
	_, err := rt.RemoveChildObject(parent, child, tag)
	require.NoError(t, err)
	require.False(t, rt.ChildObjectExists(parent, child))

	// Even though shared state also marks it deleted, a second runtime
	// hydrating from shared state should also see it as gone.
	rt2 := NewRuntime(shared)
	require.False(t, rt2.ChildObjectExists(parent, child))
}

func TestBorrowMutTransitionsPreloadedToMutated(t *testing.T) {
	shared := NewShared()
	parent := sui.MustParseAddress("0x1000")
	child := sui.MustParseAddress("0x2000")
	tag := coinTag()
	shared.HydrateFromFetch(parent, child, tag, []byte("orig"))

	rt := NewRuntime(shared)
	require.True(t, rt.ChildObjectExists(parent, child))

	entry, err := rt.BorrowChildObjectMut(parent, child, tag)
	require.NoError(t, err)
	require.Equal(t, StatePreloaded, entry.State)

	rt.MarkMutated(parent, child, []byte("new"))
	require.Equal(t, 1, len(rt.MutatedEntries()))
	require.Equal(t, StateMutated, rt.MutatedEntries()[0].State)
}

func TestPristineStaysPristineOnMutate(t *testing.T) {
	rt := NewRuntime(nil)
	parent := sui.MustParseAddress("0x1000")
	child := sui.MustParseAddress("0x2000")
	tag := coinTag()
	require.NoError(t, rt.AddChildObject(parent, child, []byte("v1"), tag))

	rt.MarkMutated(parent, child, []byte("v2"))
	e := rt.entries[ChildKey{Parent: parent, Child: child}]
	require.Equal(t, StatePristine, e.State)
}

func TestCreatedIDsExcludesPreloaded(t *testing.T) {
	shared := NewShared()
	parent := sui.MustParseAddress("0x1000")
	preChild := sui.MustParseAddress("0x2000")
	newChild := sui.MustParseAddress("0x3000")
	tag := coinTag()
	shared.HydrateFromFetch(parent, preChild, tag, []byte("orig"))

	rt := NewRuntime(shared)
	// Hydrate preChild locally and pretend it was recorded as "new" by a
	// buggy caller; CreatedIDs must still filter it out (invariant b).
	_, ok := rt.lookup(parent, preChild)
	require.True(t, ok)
	rt.RecordNewID(preChild)

	require.NoError(t, rt.AddChildObject(parent, newChild, []byte("fresh"), tag))

	created := rt.CreatedIDs()
	require.Contains(t, created, newChild)
	require.NotContains(t, created, preChild)
}

func TestCountChildrenForParentOrderedAndFiltersDeleted(t *testing.T) {
	rt := NewRuntime(nil)
	parent := sui.MustParseAddress("0x1000")
	tag := coinTag()
	var children []sui.Address
	for i := 0; i < 5; i++ {
		c := sui.MustParseAddress("0x" + string(rune('a'+i)) + "000")
		children = append(children, c)
		require.NoError(t, rt.AddChildObject(parent, c, []byte("v"), tag))
	}
	require.EqualValues(t, 5, rt.CountChildrenForParent(parent))

	_, err := rt.RemoveChildObject(parent, children[0], tag)
	require.NoError(t, err)
	require.EqualValues(t, 4, rt.CountChildrenForParent(parent))
}

func TestEndSessionClearsMutationAndResetsIDSets(t *testing.T) {
	shared := NewShared()
	parent := sui.MustParseAddress("0x1000")
	child := sui.MustParseAddress("0x2000")
	tag := coinTag()
	shared.HydrateFromFetch(parent, child, tag, []byte("orig"))

	rt := NewRuntime(shared)
	_, err := rt.BorrowChildObjectMut(parent, child, tag)
	require.NoError(t, err)
	rt.MarkMutated(parent, child, []byte("new"))
	require.Len(t, rt.MutatedEntries(), 1)

	rt.EndSession()
	require.Len(t, rt.MutatedEntries(), 0)
	require.Len(t, rt.CreatedIDs(), 0)
	require.Len(t, rt.DeletedIDs(), 0)
}

package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDeclaresTypesAndProperties(t *testing.T) {
	b := NewBuilder(Hints{})
	str := b.Named("System", "String", KindPrimitive)
	list := b.Generic("System.Collections.Generic.List", KindClass, str)
	order := b.Declare("Shop", "Order", KindClass, spanAt(0), "Equatable")
	items := b.AddProperty(order, Property{Name: "Items", Type: list, Access: AccessPublic})
	note := b.AddProperty(order, Property{Name: "Note", Type: str, Access: AccessPrivate})

	g, err := b.Build()
	require.NoError(t, err)

	d := g.Decl(order)
	require.NotNil(t, d)
	assert.Equal(t, "Shop.Order", d.QualifiedName)
	assert.Equal(t, []PropID{items, note}, d.Props)
	assert.True(t, d.HasMarker("Equatable"))

	lt := g.Type(list)
	require.NotNil(t, lt)
	assert.Equal(t, "List", lt.Name)
	assert.True(t, lt.IsGeneric())
	assert.Equal(t, []TypeID{str}, lt.Args)

	id, ok := g.LookupDecl("Shop.Order")
	require.True(t, ok)
	assert.Equal(t, order, id)
	assert.Equal(t, d, g.DeclOf(d.Type))

	_, ok = g.LookupType("System.String")
	assert.True(t, ok)
	_, ok = g.LookupType("System.Collections.Generic.List")
	assert.False(t, ok, "constructed generics are not indexed by name")
}

func TestInternReusesShapes(t *testing.T) {
	b := NewBuilder(Hints{Types: 4})
	i1 := b.Named("System", "Int32", KindPrimitive)
	i2 := b.Named("System", "Int32", KindPrimitive)
	assert.Equal(t, i1, i2)
	assert.Equal(t, b.ArrayOf(i1), b.ArrayOf(i2))
	assert.Equal(t, b.NullableOf(i1), b.NullableOf(i1))
	assert.NotEqual(t, b.ArrayOf(i1), b.NullableOf(i1))
}

func TestInvalidIDsAreNil(t *testing.T) {
	g, err := NewBuilder(Hints{}).Build()
	require.NoError(t, err)
	assert.Nil(t, g.Type(NoTypeID))
	assert.Nil(t, g.Type(42))
	assert.Nil(t, g.Decl(NoDeclID))
	assert.Nil(t, g.Prop(7))
	assert.Empty(t, g.Decls())
}

func TestBaseChain(t *testing.T) {
	b := NewBuilder(Hints{})
	root := b.Declare("", "Root", KindClass, spanAt(0))
	mid := b.Declare("", "Mid", KindClass, spanAt(1))
	leaf := b.Declare("", "Leaf", KindClass, spanAt(2))
	b.SetBase(mid, root)
	b.SetBase(leaf, mid)
	g, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []DeclID{mid, root}, g.BaseChain(leaf))
	assert.Empty(t, g.BaseChain(root))
}

func TestBuildRejectsCycles(t *testing.T) {
	b := NewBuilder(Hints{})
	a := b.Declare("", "A", KindClass, spanAt(0))
	c := b.Declare("", "B", KindClass, spanAt(1))
	b.SetBase(a, c)
	b.SetBase(c, a)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrCyclicBase)

	b = NewBuilder(Hints{})
	self := b.Declare("", "Self", KindClass, spanAt(0))
	b.SetBase(self, self)
	_, err = b.Build()
	require.ErrorIs(t, err, ErrCyclicBase)
}

func TestBuildRejectsUnknownBase(t *testing.T) {
	b := NewBuilder(Hints{})
	a := b.Declare("", "A", KindClass, spanAt(0))
	b.SetBase(a, DeclID(99))
	_, err := b.Build()
	require.ErrorIs(t, err, ErrUnknownBase)
}

func TestBuildRejectsDuplicates(t *testing.T) {
	b := NewBuilder(Hints{})
	b.Declare("Shop", "Order", KindClass, spanAt(0))
	b.Declare("Shop", "Order", KindStruct, spanAt(1))
	_, err := b.Build()
	require.ErrorIs(t, err, ErrDuplicateDecl)
}

func TestParseKinds(t *testing.T) {
	k, ok := ParseTypeKind("Struct")
	require.True(t, ok)
	assert.Equal(t, KindStruct, k)
	_, ok = ParseTypeKind("record")
	assert.False(t, ok)

	a, ok := ParseAccessibility("protected internal")
	require.True(t, ok)
	assert.Equal(t, AccessProtectedInternal, a)
	assert.True(t, AccessPublic.IsPublic())
	assert.False(t, AccessInternal.IsPublic())
}

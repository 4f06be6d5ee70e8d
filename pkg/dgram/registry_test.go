package dgram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(*Context) error { return nil }

func TestBuildRequiresAHandler(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.ErrorIs(t, err, ErrNoHandlers)

	_, err = NewBuilder().Use(&testExt{name: "only-ext"}).Build()
	assert.ErrorIs(t, err, ErrNoHandlers)
}

func TestBuildRejectsDuplicateNames(t *testing.T) {
	_, err := NewBuilder().
		Handle(noop).
		HandleNamed("confirm", noop).
		HandleNamed("confirm", noop).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate handler name")
}

func TestBuildRejectsLateAnonymousHandler(t *testing.T) {
	_, err := NewBuilder().
		HandleNamed("first", noop).
		Handle(noop).
		Build()
	assert.Error(t, err)
}

func TestBuildRejectsEmptyName(t *testing.T) {
	_, err := NewBuilder().HandleNamed("", noop).Build()
	assert.Error(t, err)
}

func TestBuildRejectsNilRegistrations(t *testing.T) {
	_, err := NewBuilder().Handle(nil).Build()
	assert.Error(t, err)

	_, err = NewBuilder().Handle(noop).Use(nil).Build()
	assert.Error(t, err)
}

func TestRegistryPreservesDeclarationOrder(t *testing.T) {
	reg, err := NewBuilder().
		Handle(noop).
		HandleNamed("b", noop).
		HandleNamed("c", noop).
		Build()
	require.NoError(t, err)

	handlers := reg.Handlers()
	require.Len(t, handlers, 3)
	assert.Equal(t, "", handlers[0].Name)
	assert.Equal(t, "b", handlers[1].Name)
	assert.Equal(t, "c", handlers[2].Name)
	assert.Same(t, handlers[0], reg.Default())
}

func TestRegistryHandlerLookup(t *testing.T) {
	reg, err := NewBuilder().
		Handle(noop).
		HandleNamed("confirm", noop).
		Build()
	require.NoError(t, err)

	assert.NotNil(t, reg.Handler("confirm"))
	assert.Nil(t, reg.Handler("missing"))
}

func TestNamedFirstHandlerIsDefault(t *testing.T) {
	reg, err := NewBuilder().
		HandleNamed("main", noop).
		HandleNamed("confirm", noop).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "main", reg.Default().Name)
}

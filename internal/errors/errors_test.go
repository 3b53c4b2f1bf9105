package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderPreservesWrappedError(t *testing.T) {
	base := stderrors.New("boom")
	err := New(fmt.Errorf("fetching tile: %w", base)).
		Component("imagery").
		Category(CategoryImageFetch).
		Context("provider", "arcgis").
		Build()

	require.Error(t, err)
	assert.True(t, Is(err, base))
	assert.Equal(t, "imagery", err.GetComponent())
	assert.Equal(t, string(CategoryImageFetch), err.GetCategory())
	assert.Equal(t, "arcgis", err.GetContext()["provider"])
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := New(fmt.Errorf("polygon rejected: %w", ErrInvalidGeometry)).
		Component("geo").
		Category(CategoryGeometry).
		Build()

	assert.True(t, Is(err, ErrInvalidGeometry))

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, CategoryGeometry, ee.Category)
}

func TestDefaultsWhenUnset(t *testing.T) {
	err := Newf("bare failure").Build()

	assert.Equal(t, ComponentUnknown, err.GetComponent())
	assert.Equal(t, string(CategoryGeneric), err.GetCategory())
	assert.Nil(t, err.GetContext())
}

func TestContextCopyIsIsolated(t *testing.T) {
	err := Newf("ctx").Context("samples", 12).Build()

	ctx := err.GetContext()
	ctx["samples"] = 99

	assert.Equal(t, 12, err.GetContext()["samples"])
}

func TestCategoryMatchingBetweenEnhancedErrors(t *testing.T) {
	a := Newf("first").Category(CategoryTimeout).Build()
	b := Newf("second").Category(CategoryTimeout).Build()
	c := Newf("third").Category(CategoryNetwork).Build()

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

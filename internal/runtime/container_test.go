package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
)

func TestSetAndGetContainer(t *testing.T) {
	c := dig.New()
	require.NoError(t, c.Provide(func() string { return "hello" }))
	SetContainer(c)

	got := GetContainer()
	assert.Same(t, c, got)

	var out string
	require.NoError(t, got.Invoke(func(s string) { out = s }))
	assert.Equal(t, "hello", out)
}

func TestGetContainer_PanicsBeforeSet(t *testing.T) {
	container = nil
	assert.Panics(t, func() { GetContainer() })
}

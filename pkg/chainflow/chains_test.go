package chainflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChains_Register verifies registration validates and stores.
func TestChains_Register(t *testing.T) {
	chains := NewChains()

	require.NoError(t, chains.Register(twoStepChain()))

	def, ok := chains.Get("qa")
	require.True(t, ok)
	assert.Equal(t, "qa", def.Name)
	assert.True(t, chains.Has("qa"))
	assert.Equal(t, 1, chains.Len())
	assert.Equal(t, []string{"qa"}, chains.Names())
}

// TestChains_Register_Invalid verifies bad definitions are rejected.
func TestChains_Register_Invalid(t *testing.T) {
	chains := NewChains()

	err := chains.Register(&ChainDefinition{Name: "bad"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.False(t, chains.Has("bad"))
}

// TestChains_Register_Replaces verifies re-registration overwrites.
func TestChains_Register_Replaces(t *testing.T) {
	chains := NewChains()
	require.NoError(t, chains.Register(twoStepChain()))

	updated := twoStepChain()
	updated.Description = "second version"
	require.NoError(t, chains.Register(updated))

	def, _ := chains.Get("qa")
	assert.Equal(t, "second version", def.Description)
	assert.Equal(t, 1, chains.Len())
}

// TestChains_MustRegister_Panics verifies start-up wiring aborts on a bad
// definition.
func TestChains_MustRegister_Panics(t *testing.T) {
	chains := NewChains()

	assert.Panics(t, func() {
		chains.MustRegister(&ChainDefinition{})
	})
}

// TestChains_Get_Missing verifies the miss path.
func TestChains_Get_Missing(t *testing.T) {
	chains := NewChains()

	_, ok := chains.Get("absent")
	assert.False(t, ok)
}

// TestKeywordSelector covers keyword hit and fallback.
func TestKeywordSelector(t *testing.T) {
	sel := &KeywordSelector{
		Keywords: map[string]string{"translate": "translation"},
		Fallback: "qa",
	}

	assert.Equal(t, "translation", sel.Select("please TRANSLATE this", nil))
	assert.Equal(t, "qa", sel.Select("what is the capital of France?", nil))
	assert.Equal(t, "qa", sel.Select("", nil))
}

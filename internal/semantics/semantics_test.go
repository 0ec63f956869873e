package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStore(t *testing.T) {
	store := NewStore(map[string]interface{}{
		"debug":     true,
		"verbosity": 2,
	})

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"debug", "verbosity"}, store.Names())
}

func TestNewStore_NilValues(t *testing.T) {
	store := NewStore(nil)

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, false, store.GetGeneric("anything", false))
}

func TestStore_Lookup(t *testing.T) {
	store := NewStore(map[string]interface{}{"debug": true})

	value, ok := store.Lookup("debug")
	assert.True(t, ok)
	assert.Equal(t, true, value)

	_, ok = store.Lookup("verbosity")
	assert.False(t, ok)
}

func TestStore_GetGeneric(t *testing.T) {
	store := NewStore(map[string]interface{}{
		"debug":    true,
		"max_jobs": 8,
	})

	assert.Equal(t, true, store.GetGeneric("debug", false))
	assert.Equal(t, 8, store.GetGeneric("max_jobs", 1))
	assert.Equal(t, 0, store.GetGeneric("verbosity", 0))
	assert.Equal(t, "warn", store.GetGeneric("log_level", "warn"))
}

func TestStore_GetGenericDeterministic(t *testing.T) {
	store := NewStore(map[string]interface{}{"debug": true})

	for i := 0; i < 10; i++ {
		assert.Equal(t, true, store.GetGeneric("debug", false))
		assert.Equal(t, 0, store.GetGeneric("verbosity", 0))
	}
}

func TestStore_CopiesInput(t *testing.T) {
	values := map[string]interface{}{"debug": true}
	store := NewStore(values)

	values["debug"] = false
	values["sneaky"] = 1

	assert.Equal(t, true, store.GetGeneric("debug", false))
	_, ok := store.Lookup("sneaky")
	assert.False(t, ok)
}

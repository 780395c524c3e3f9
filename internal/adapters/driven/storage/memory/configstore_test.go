package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
}

func TestNewConfigStore_Seeded(t *testing.T) {
	store := NewConfigStore(
		map[string]any{"llm.provider": "ollama", "chunking.chunk_size": 500},
		map[string]any{"chunking.chunk_size": 800},
	)

	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, 800, store.GetInt("chunking.chunk_size"))
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key1", "original"))
	require.NoError(t, store.Set("key1", "updated"))

	val, ok := store.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := NewConfigStore()

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"s":     "text",
		"i":     int64(42),
		"f":     0.25,
		"fs":    "0.7",
		"b":     true,
		"bs":    "yes",
		"slice": []any{"a", 1, "b"},
	})

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 0, store.GetInt("s"))
	assert.InDelta(t, 0.25, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 0.7, store.GetFloat("fs"), 1e-9)
	assert.InDelta(t, 42.0, store.GetFloat("i"), 1e-9)
	assert.True(t, store.GetBool("b"))
	assert.True(t, store.GetBool("bs"))
	assert.False(t, store.GetBool("missing"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("slice"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}

func TestConfigStore_InterfaceCompliance(t *testing.T) {
	var _ driven.ConfigStore = (*ConfigStore)(nil)
}

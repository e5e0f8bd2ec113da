package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "openai"))
	require.NoError(t, store.Set("retrieval.top_k", 8))
	require.NoError(t, store.Set("chunking.target_tokens", "512"))
	require.NoError(t, store.Set("watch.recursive", "true"))
	require.NoError(t, store.Set("verbose", true))
	require.NoError(t, store.Set("normalisers.disabled", []string{"pdf", "docx"}))

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, 8, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 512, store.GetInt("chunking.target_tokens"))
	assert.True(t, store.GetBool("watch.recursive"))
	assert.True(t, store.GetBool("verbose"))
	assert.Equal(t, []string{"pdf", "docx"}, store.GetStringSlice("normalisers.disabled"))

	// Wrong types and missing keys read as zero values.
	assert.Equal(t, "", store.GetString("retrieval.top_k"))
	assert.Equal(t, 0, store.GetInt("llm.provider"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("llm.requests_per_minute", 30))
	require.NoError(t, store.Set("chunking.overlap", 0.1))
	require.NoError(t, store.Set("limits.fetch_timeout", "45s"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm]")
	assert.Contains(t, string(raw), "[limits]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", reloaded.GetString("llm.provider"))
	assert.Equal(t, 30, reloaded.GetInt("llm.requests_per_minute"))
	assert.Equal(t, "45s", reloaded.GetString("limits.fetch_timeout"))
	val, ok := reloaded.Get("chunking.overlap")
	require.True(t, ok)
	assert.InDelta(t, 0.1, val, 1e-9)
}

func TestConfigStore_LoadMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("a", "b"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, store.Load())

	_, ok := store.Get("a")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("retrieval.top_k", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("retrieval.top_k")
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, store.GetInt("retrieval.top_k"), 0)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"llm.provider": "ollama",
		"llm.model":    "llama3.1",
		"verbose":      true,
		"a":            1,
		"a.b":          2,
	})

	assert.Equal(t, map[string]any{"provider": "ollama", "model": "llama3.1"}, nested["llm"])
	assert.Equal(t, true, nested["verbose"])
	assert.Equal(t, 1, nested["a"])
}

func TestFlattenMap(t *testing.T) {
	flat := flattenMap(map[string]any{
		"llm":     map[string]any{"provider": "ollama"},
		"verbose": true,
	}, "")

	assert.Equal(t, map[string]any{"llm.provider": "ollama", "verbose": true}, flat)
}

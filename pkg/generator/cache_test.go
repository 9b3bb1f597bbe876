package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
)

func sampleFuncs(name string) []cheader.Function {
	return []cheader.Function{{
		Name:       name,
		Args:       []cheader.Param{{Type: "int", Name: "i"}},
		ReturnType: "int",
	}}
}

func TestSignatureCache_GetPut(t *testing.T) {
	t.Parallel()

	cache := newSignatureCache(2)
	key := headerKey([]byte("int a(int i);"))

	_, ok := cache.get(key)
	assert.False(t, ok)

	cache.put(key, sampleFuncs("a"))

	got, ok := cache.get(key)
	require.True(t, ok)
	assert.Equal(t, sampleFuncs("a"), got)

	stats := cache.stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestSignatureCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	cache := newSignatureCache(2)
	keyA := headerKey([]byte("a"))
	keyB := headerKey([]byte("b"))
	keyC := headerKey([]byte("c"))

	cache.put(keyA, sampleFuncs("a"))
	cache.put(keyB, sampleFuncs("b"))

	_, ok := cache.get(keyA)
	require.True(t, ok)

	cache.put(keyC, sampleFuncs("c"))

	_, ok = cache.get(keyB)
	assert.False(t, ok, "b was least recently used")

	_, ok = cache.get(keyA)
	assert.True(t, ok)

	_, ok = cache.get(keyC)
	assert.True(t, ok)
	assert.Equal(t, 2, cache.stats().Entries)
}

func TestSignatureCache_UpdateExisting(t *testing.T) {
	t.Parallel()

	cache := newSignatureCache(1)
	key := headerKey([]byte("x"))

	cache.put(key, sampleFuncs("old"))
	cache.put(key, sampleFuncs("new"))

	got, ok := cache.get(key)
	require.True(t, ok)
	assert.Equal(t, "new", got[0].Name)
	assert.Equal(t, 1, cache.stats().Entries)
}

func TestSignatureCache_ClonesValues(t *testing.T) {
	t.Parallel()

	cache := newSignatureCache(1)
	key := headerKey([]byte("x"))
	funcs := sampleFuncs("a")

	cache.put(key, funcs)
	funcs[0].Args[0].Name = "mutated"

	got, ok := cache.get(key)
	require.True(t, ok)
	assert.Equal(t, "i", got[0].Args[0].Name)

	got[0].Args[0].Name = "mutated again"

	again, ok := cache.get(key)
	require.True(t, ok)
	assert.Equal(t, "i", again[0].Args[0].Name)
}

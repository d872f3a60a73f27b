package plan

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"struct-mapper/options"
)

func TestCache_CompilesOncePerKey(t *testing.T) {
	var calls atomic.Int64

	release := make(chan struct{})
	cache := NewCache(func(k Key) (*MappingPlan, error) {
		calls.Add(1)
		<-release

		return &MappingPlan{Key: k}, nil
	})

	key := NewKey(srcOrder, dstOrder, options.CreateNew, 1)
	plans := make([]*MappingPlan, 16)

	var g errgroup.Group

	for i := range plans {
		g.Go(func() error {
			p, err := cache.GetOrCompile(key)
			plans[i] = p

			return err
		})
	}

	close(release)
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, int64(1), cache.Compiles())

	for _, p := range plans {
		assert.Same(t, plans[0], p)
	}

	// a different fingerprint is a different plan
	other, err := cache.GetOrCompile(NewKey(srcOrder, dstOrder, options.CreateNew, 2))
	require.NoError(t, err)
	assert.NotSame(t, plans[0], other)
	assert.Equal(t, 2, cache.Len())

	got, ok := cache.Lookup(key)
	require.True(t, ok)
	assert.Same(t, plans[0], got)
}

func TestCache_ErrorsAreNotKept(t *testing.T) {
	fail := true
	cache := NewCache(func(k Key) (*MappingPlan, error) {
		if fail {
			return nil, errors.New("boom")
		}

		return &MappingPlan{Key: k}, nil
	})

	key := NewKey(srcCategory, dstCategory, options.Merge, 7)

	_, err := cache.GetOrCompile(key)
	require.EqualError(t, err, "boom")

	_, ok := cache.Lookup(key)
	assert.False(t, ok)

	fail = false

	p, err := cache.GetOrCompile(key)
	require.NoError(t, err)
	assert.Equal(t, key, p.Key)
	assert.Equal(t, int64(2), cache.Compiles())
}

func TestCache_WithCompiler(t *testing.T) {
	c, _, st := newTestCompiler(t)
	cache := NewCache(c.CompileKey)

	key := NewKey(srcOrder, dstOrder, options.CreateNew, st.Fingerprint())

	first, err := cache.GetOrCompile(key)
	require.NoError(t, err)

	second, err := cache.GetOrCompile(NewKey(srcOrder, dstOrder, options.CreateNew, st.Fingerprint()))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), cache.Compiles())
}

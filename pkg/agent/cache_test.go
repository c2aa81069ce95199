package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineCacheReusesInstancePerUser(t *testing.T) {
	builds := 0
	cache := NewEngineCache(func() *Engine {
		builds++
		return NewEngine(&scriptedCompletion{}, &scriptedRetrieval{}, nil)
	})

	first := cache.GetOrCreate("user-a")
	second := cache.GetOrCreate("user-a")
	other := cache.GetOrCreate("user-b")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, builds)
	assert.Equal(t, 2, cache.Len())
}

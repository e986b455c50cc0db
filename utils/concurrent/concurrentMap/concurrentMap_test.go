package concurrentMap

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwapAndDeleteIf(t *testing.T) {
	m := NewConcurrentMap[string, int]()

	_, loaded := m.Swap("a", 1)
	assert.False(t, loaded)
	previous, loaded := m.Swap("a", 2)
	assert.True(t, loaded)
	assert.Equal(t, 1, previous)

	assert.False(t, m.DeleteIf("a", func(v int) bool { return v == 1 }))
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.DeleteIf("a", func(v int) bool { return v == 2 }))
	_, ok := m.Get("a")
	assert.False(t, ok)
	assert.False(t, m.DeleteIf("missing", func(int) bool { return true }))
}

func TestValuesSnapshot(t *testing.T) {
	m := NewConcurrentMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Delete("b")

	values := m.Values()
	sort.Ints(values)
	assert.Equal(t, []int{1, 3}, values)
}

package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_SetGetDelete(t *testing.T) {
	s := NewState()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("mode", "patrol")
	v, ok := s.Get("mode")
	assert.True(t, ok)
	assert.Equal(t, "patrol", v)

	str, ok := s.GetString("mode")
	assert.True(t, ok)
	assert.Equal(t, "patrol", str)

	s.Set("count", 3)
	_, ok = s.GetString("count")
	assert.False(t, ok)

	s.Delete("mode")
	_, ok = s.Get("mode")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestState_Merge(t *testing.T) {
	s := NewState()
	s.Set("a", 1)

	s.Merge(map[string]any{"a": 2, "b": 3})

	v, _ := s.Get("a")
	assert.Equal(t, 2, v)
	v, _ = s.Get("b")
	assert.Equal(t, 3, v)
}

func TestState_SnapshotIsCopy(t *testing.T) {
	s := NewState()
	s.Set("a", 1)

	snap := s.Snapshot()
	snap["a"] = 99
	snap["b"] = 2

	v, _ := s.Get("a")
	assert.Equal(t, 1, v)
	_, ok := s.Get("b")
	assert.False(t, ok)
}

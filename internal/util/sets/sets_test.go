package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("a", "b")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))

	s.Add("c")
	c := s.Clone()
	s.Delete("a")

	assert.False(t, s.Has("a"))
	assert.True(t, c.Has("a"), "clone is independent")
	assert.Len(t, c, 3)

	var nilSet Set[int]
	assert.False(t, nilSet.Has(1))
}

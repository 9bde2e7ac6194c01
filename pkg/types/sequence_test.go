package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	var seq Sequence
	assert.Equal(t, 0, seq.Next())
	assert.Equal(t, 1, seq.Next())
	assert.Equal(t, 2, seq.Peek())

	seq.Observe(1)
	assert.Equal(t, 2, seq.Peek(), "observing a past id does not rewind")

	seq.Observe(9)
	assert.Equal(t, 10, seq.Next())

	fresh := NewSequence(5)
	assert.Equal(t, 5, fresh.Next())
}

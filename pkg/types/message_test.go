package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageKinds(t *testing.T) {
	e := ErrorMessage("List does not exist.")
	assert.True(t, e.IsError())
	assert.False(t, e.IsSuccess())
	assert.Equal(t, KindError, e.Kind)
	assert.True(t, e.Valid())

	s := SuccessMessage("The list has been created.")
	assert.True(t, s.IsSuccess())
	assert.False(t, s.IsError())
	assert.Equal(t, "The list has been created.", s.Text)

	var zero Message
	assert.True(t, zero.IsZero())
	assert.False(t, zero.Valid())
	assert.False(t, Message{Kind: "warning", Text: "x"}.Valid())
}

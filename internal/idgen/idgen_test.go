package idgen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	_, err := uuid.Parse(New())
	assert.NoError(t, err)
	assert.NotEqual(t, New(), New())
}

func TestSequence(t *testing.T) {
	restore := Sequence("msg")
	assert.Equal(t, "msg-1", New())
	assert.Equal(t, "msg-2", New())
	restore()
	_, err := uuid.Parse(New())
	assert.NoError(t, err)
}

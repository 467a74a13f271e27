package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	s := NewState()
	assert.False(t, s.Ready())
	assert.True(t, s.LastOrder().IsZero())

	s.SetReady(true)
	assert.True(t, s.Ready())

	at := time.Unix(1_700_000_000, 0)
	s.TouchOrder(at, false)
	s.TouchOrder(at.Add(time.Minute), true)

	assert.Equal(t, at.Add(time.Minute).Unix(), s.LastOrder().Unix())
	assert.True(t, s.LastOrderOK())
	assert.Equal(t, uint64(2), s.Orders())
}

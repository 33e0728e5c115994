package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremqtt "github.com/kilianp07/ambulance-dispatch/core/mqtt"
)

func TestMockPublisher(t *testing.T) {
	p := NewMockPublisher()
	p.FailIDs[2] = true

	id, err := p.SendOrder(context.Background(), coremqtt.Order{VehicleID: 1, CallID: 5})
	require.NoError(t, err)
	assert.Equal(t, "order-1-5", id)
	_, err = p.SendOrder(context.Background(), coremqtt.Order{VehicleID: 2})
	require.Error(t, err)

	ok, err := p.WaitForAck(id, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = p.WaitForAck("missing", time.Millisecond)
	assert.ErrorIs(t, err, coremqtt.ErrUnknownOrder)
	assert.Len(t, p.Sent(), 1)
}

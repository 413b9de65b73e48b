package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessEventBus_DeliversToSubscribers(t *testing.T) {
	bus := NewInProcessEventBus(nil)

	var first, second []byte
	bus.Subscribe("plan.rebuilt", func(_ context.Context, payload []byte) error {
		first = payload
		return nil
	})
	bus.Subscribe("plan.rebuilt", func(_ context.Context, payload []byte) error {
		second = payload
		return nil
	})

	err := bus.Publish(context.Background(), "plan.rebuilt", []byte(`{"planVersion":1}`))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"planVersion":1}`), first)
	assert.Equal(t, []byte(`{"planVersion":1}`), second)
}

func TestInProcessEventBus_RoutingKeysAreIsolated(t *testing.T) {
	bus := NewInProcessEventBus(nil)

	called := false
	bus.Subscribe("plan.rebuilt", func(context.Context, []byte) error {
		called = true
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), "plan.sessions.removed", []byte("{}")))
	assert.False(t, called)
}

func TestInProcessEventBus_HandlerErrorsAreSwallowed(t *testing.T) {
	bus := NewInProcessEventBus(nil)

	bus.Subscribe("plan.rebuilt", func(context.Context, []byte) error {
		return errors.New("handler blew up")
	})

	reached := false
	bus.Subscribe("plan.rebuilt", func(context.Context, []byte) error {
		reached = true
		return nil
	})

	err := bus.Publish(context.Background(), "plan.rebuilt", []byte("{}"))
	assert.NoError(t, err)
	assert.True(t, reached)
}

func TestInProcessEventBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), "plan.rebuilt", []byte("{}")))
	assert.NoError(t, bus.Close())
}

func TestNoopPublisher_ZeroValueIsSafe(t *testing.T) {
	var p NoopPublisher
	assert.NoError(t, p.Publish(context.Background(), "plan.rebuilt", []byte("{}")))
	assert.NoError(t, p.Close())
}

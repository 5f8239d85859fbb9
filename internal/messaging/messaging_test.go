package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/config"
	"github.com/Additional-Code/bikeshop/internal/messaging"
)

func TestMessage_EventType(t *testing.T) {
	assert.Equal(t, "order.placed", messaging.Message{Headers: map[string]string{messaging.HeaderEventType: "order.placed"}}.EventType())
	assert.Empty(t, messaging.Message{}.EventType())
}

func TestNewClient(t *testing.T) {
	t.Run("disabled uses noop", func(t *testing.T) {
		client, err := messaging.NewClient(fxtest.NewLifecycle(t), config.Config{Messaging: config.Messaging{
			Driver: "kafka",
			Kafka:  config.Kafka{Topic: "bikeshop.orders"},
		}}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "bikeshop.orders", client.Topic())
		assert.NoError(t, client.Publish(context.Background(), messaging.Message{Value: []byte("{}")}))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, client.Consume(ctx, nil), context.DeadlineExceeded)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		_, err := messaging.NewClient(fxtest.NewLifecycle(t), config.Config{Messaging: config.Messaging{
			Enabled: true,
			Driver:  "nats",
		}}, zap.NewNop())
		assert.Error(t, err)
	})
}

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"drive-copilot-be/internal/dto"
	"drive-copilot-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelBuilder struct {
	built chan string
}

func (b *channelBuilder) Build(ctx context.Context, userID string) error {
	b.built <- userID
	return nil
}

func TestConsumerService_BuildsPublishedUsers(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	builder := &channelBuilder{built: make(chan string, 4)}
	consumer := NewConsumerService(pubSub, "crawl", builder, 2, time.Second, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("crawl", pubSub)

	// Malformed payloads are dropped without reaching the builder.
	require.NoError(t, publisher.Publish(ctx, []byte("{not json")))
	require.NoError(t, publisher.Publish(ctx, []byte(`{"reason":"login"}`)))

	payload, err := json.Marshal(dto.CrawlDriveMessage{UserId: "user-1", Reason: "login", RequestedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, payload))

	select {
	case userID := <-builder.built:
		assert.Equal(t, "user-1", userID)
	case <-time.After(2 * time.Second):
		t.Fatal("crawl message was not consumed")
	}

	select {
	case userID := <-builder.built:
		t.Fatalf("unexpected build for %q", userID)
	case <-time.After(50 * time.Millisecond):
	}
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/dto"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/apperror"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/semaphore"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// IndexBuilder is the part of IDriveIndexService the consumer needs.
type IndexBuilder interface {
	Build(ctx context.Context, userID string) error
}

type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	builder      IndexBuilder
	workers      *semaphore.Weighted
	buildTimeout time.Duration
	logger       logger.ILogger
}

// NewConsumerService runs at most maxWorkers index builds at a time. A zero
// buildTimeout leaves builds unbounded.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	builder IndexBuilder,
	maxWorkers int,
	buildTimeout time.Duration,
	log logger.ILogger,
) IConsumerService {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		builder:      builder,
		workers:      semaphore.NewWeighted(int64(maxWorkers)),
		buildTimeout: buildTimeout,
		logger:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage acks as soon as the payload is decoded. A failed build is not
// redelivered; the next EnsureIndex or login triggers a new one.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.CrawlDriveMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.UserId == "" {
		cs.logger.Error(constant.ModuleConsumer, "Invalid crawl message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		msg.Ack()
		return
	}
	msg.Ack()

	if err := cs.workers.Acquire(ctx, 1); err != nil {
		return
	}

	go func() {
		defer cs.workers.Release(1)
		cs.build(ctx, payload)
	}()
}

func (cs *consumerService) build(ctx context.Context, payload dto.CrawlDriveMessage) {
	if cs.buildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cs.buildTimeout)
		defer cancel()
	}

	started := time.Now()
	cs.logger.Info(constant.ModuleConsumer, "Processing drive crawl", map[string]interface{}{
		"user_id": payload.UserId,
		"reason":  payload.Reason,
		"queued":  started.Sub(payload.RequestedAt).String(),
	})

	if err := cs.builder.Build(ctx, payload.UserId); err != nil {
		cs.logger.Error(constant.ModuleConsumer, "Drive crawl failed", map[string]interface{}{
			"user_id": payload.UserId,
			"kind":    apperror.KindOf(err),
			"error":   err,
		})
		return
	}

	cs.logger.Info(constant.ModuleConsumer, "Drive crawl finished", map[string]interface{}{
		"user_id":  payload.UserId,
		"duration": time.Since(started).String(),
	})
}

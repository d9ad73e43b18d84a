package service

import (
	"context"
	"encoding/json"
	"time"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/dto"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/apperror"
	"drive-copilot-be/pkg/drive"
	"drive-copilot-be/pkg/driveindex"
	"drive-copilot-be/pkg/events"
)

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IDriveIndexService interface {
	Status(ctx context.Context, userID string) (*dto.CacheStatusResponse, error)
	InitialContext(ctx context.Context, userID string) (*dto.InitialContextResponse, error)
	RequestRefresh(ctx context.Context, userID string) (*dto.CacheStatusResponse, error)

	// ScheduleRebuild enqueues a background build. Failures are logged only.
	ScheduleRebuild(ctx context.Context, userID, reason string)

	// Build crawls and replaces the index. Called by the crawl consumer.
	Build(ctx context.Context, userID string) error
}

type driveIndexService struct {
	manager   *driveindex.Manager
	connector drive.Connector
	publisher IPublisherService
	events    EventPublisher
	logger    logger.ILogger
}

// NewDriveIndexService wires the manager's build hook to the event bus when
// eventPublisher is not nil.
func NewDriveIndexService(
	manager *driveindex.Manager,
	connector drive.Connector,
	publisher IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IDriveIndexService {
	s := &driveIndexService{
		manager:   manager,
		connector: connector,
		publisher: publisher,
		events:    eventPublisher,
		logger:    log,
	}
	if eventPublisher != nil {
		manager.OnBuilt(s.announceBuilt)
	}
	return s
}

func (s *driveIndexService) Status(ctx context.Context, userID string) (*dto.CacheStatusResponse, error) {
	status, err := s.manager.Status(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindCollaborator, "Could not check your Drive index.", err)
	}
	return &dto.CacheStatusResponse{Status: string(status)}, nil
}

func (s *driveIndexService) InitialContext(ctx context.Context, userID string) (*dto.InitialContextResponse, error) {
	ws, err := s.connector.Connect(ctx, userID)
	if err != nil {
		return nil, drive.Classify(err, "your Google account")
	}

	index, err := s.manager.EnsureIndex(ctx, userID, ws)
	if err != nil {
		return nil, drive.Classify(err, "your Drive files")
	}

	return &dto.InitialContextResponse{
		UserId:     userID,
		BuiltAt:    index.BuiltAt,
		DriveIndex: index.Items,
	}, nil
}

func (s *driveIndexService) RequestRefresh(ctx context.Context, userID string) (*dto.CacheStatusResponse, error) {
	if err := s.enqueue(ctx, userID, constant.RebuildReasonManual); err != nil {
		return nil, apperror.Wrap(apperror.KindCollaborator, "Could not start the Drive refresh.", err)
	}
	return &dto.CacheStatusResponse{Status: string(driveindex.StatusPending)}, nil
}

func (s *driveIndexService) ScheduleRebuild(ctx context.Context, userID, reason string) {
	if err := s.enqueue(ctx, userID, reason); err != nil {
		s.logger.Warn(constant.ModuleDriveIndex, "Failed to schedule index rebuild", map[string]interface{}{
			"user_id": userID,
			"reason":  reason,
			"error":   err.Error(),
		})
	}
}

func (s *driveIndexService) Build(ctx context.Context, userID string) error {
	ws, err := s.connector.Connect(ctx, userID)
	if err != nil {
		return drive.Classify(err, "your Google account")
	}
	if _, err := s.manager.Refresh(ctx, userID, ws); err != nil {
		return drive.Classify(err, "your Drive files")
	}
	return nil
}

func (s *driveIndexService) enqueue(ctx context.Context, userID, reason string) error {
	payload, err := json.Marshal(dto.CrawlDriveMessage{
		UserId:      userID,
		Reason:      reason,
		RequestedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		return err
	}

	s.logger.Info(constant.ModuleDriveIndex, "Index rebuild scheduled", map[string]interface{}{
		"user_id": userID,
		"reason":  reason,
	})
	return nil
}

func (s *driveIndexService) announceBuilt(ctx context.Context, index *driveindex.Index) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.events.Publish(ctx, events.NewDriveIndexBuilt(index.UserID, index.Len(), index.BuiltAt)); err != nil {
		s.logger.Warn(constant.ModuleDriveIndex, "Failed to publish DRIVE_INDEX_BUILT", map[string]interface{}{
			"user_id": index.UserID,
			"error":   err.Error(),
		})
	}
}

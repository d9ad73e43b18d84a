package service

import (
	"context"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/dto"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/conversation/executor"
)

type IAssistantService interface {
	Ask(ctx context.Context, userID string, req *dto.AskRequest) (*dto.AskResponse, error)
	ResetConversation(ctx context.Context, userID string) error
}

// ConversationHandler runs one turn; implemented by executor.Executor.
type ConversationHandler interface {
	Handle(ctx context.Context, req executor.Request) (*executor.Reply, error)
}

// ConversationResetter drops everything remembered about a user.
type ConversationResetter interface {
	Lock(userID string) func()
	Reset(userID string)
}

type assistantService struct {
	handler       ConversationHandler
	conversations ConversationResetter
	logger        logger.ILogger
}

func NewAssistantService(handler ConversationHandler, conversations ConversationResetter, log logger.ILogger) IAssistantService {
	return &assistantService{
		handler:       handler,
		conversations: conversations,
		logger:        log,
	}
}

func (s *assistantService) Ask(ctx context.Context, userID string, req *dto.AskRequest) (*dto.AskResponse, error) {
	reply, err := s.handler.Handle(ctx, executor.Request{
		UserID:       userID,
		Message:      req.Message,
		Confirmation: req.Confirmation,
		Regenerate:   req.Regenerate,
		SkipPreview:  req.SkipPreview,
	})
	if err != nil {
		return nil, err
	}

	return &dto.AskResponse{
		Message:           reply.Message,
		NeedsConfirmation: reply.NeedsConfirmation,
		ConfirmationType:  reply.ConfirmationType,
		DocUrl:            reply.DocURL,
	}, nil
}

func (s *assistantService) ResetConversation(ctx context.Context, userID string) error {
	unlock := s.conversations.Lock(userID)
	defer unlock()

	s.conversations.Reset(userID)
	s.logger.Info(constant.ModuleAssistant, "Conversation reset", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

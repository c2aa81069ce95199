package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adaptive-rag-be/internal/constant"
	"adaptive-rag-be/internal/dto"
	"adaptive-rag-be/internal/entity"
	"adaptive-rag-be/internal/repository/specification"
	"adaptive-rag-be/internal/repository/unitofwork"
	"adaptive-rag-be/pkg/agent"
	"adaptive-rag-be/pkg/events"
	pktNats "adaptive-rag-be/pkg/nats"
	"adaptive-rag-be/pkg/turnlock"

	"github.com/google/uuid"
)

var ErrChatSessionNotFound = errors.New("chat session not found")

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	RenameSession(ctx context.Context, userId uuid.UUID, req *dto.RenameSessionRequest) error
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	engineCache    *agent.EngineCache
	turnLocker     turnlock.Locker
	eventPublisher *pktNats.Publisher
	maxRetries     int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	engineCache *agent.EngineCache,
	turnLocker turnlock.Locker,
	eventPublisher *pktNats.Publisher,
	maxRetries int,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		engineCache:    engineCache,
		turnLocker:     turnLocker,
		eventPublisher: eventPublisher,
		maxRetries:     maxRetries,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.DefaultChatTitle,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, session := range sessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return response, nil
}

func (s *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, message := range messages {
		response = append(response, &dto.GetChatHistoryResponse{
			Id:        message.Id,
			Role:      message.Role,
			Chat:      message.Content,
			CreatedAt: message.CreatedAt,
		})
	}
	return response, nil
}

func (s *chatService) RenameSession(ctx context.Context, userId uuid.UUID, req *dto.RenameSessionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}

	now := time.Now()
	session.Title = req.Title
	session.UpdatedAt = &now
	return uow.ChatSessionRepository().Update(ctx, session)
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		return err
	}

	return uow.Commit()
}

// SendChat runs one full turn: load history, drive the engine, persist both
// sides of the exchange. Turns on the same session are serialized; a second
// question while one is in flight fails with turnlock.ErrTurnInFlight.
func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.resolveSession(ctx, uow, userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	release, err := s.turnLocker.Acquire(ctx, session.Id.String())
	if err != nil {
		return nil, err
	}
	defer release()

	history, err := s.loadHistory(ctx, uow, session.Id)
	if err != nil {
		return nil, err
	}

	sent := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleHuman,
		Content:       req.Chat,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, sent); err != nil {
		return nil, err
	}

	engine := s.engineCache.GetOrCreate(userId.String())
	result, err := engine.Run(ctx, agent.Turn{
		Question:   req.Chat,
		History:    history,
		UserID:     userId.String(),
		ChatID:     session.Id.String(),
		MaxRetries: s.maxRetries,
	})
	if err != nil {
		return nil, err
	}

	// A max-retries turn still carries the last generated answer; it is
	// persisted and returned like any other reply.
	reply := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       result.Answer,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, reply); err != nil {
		return nil, err
	}

	if session.Title == constant.DefaultChatTitle {
		if err := s.titleFromFirstQuestion(ctx, uow, session, req.Chat); err != nil {
			fmt.Printf("[WARN] Failed to update session title: %v\n", err)
		}
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeTurnCompleted,
			Data: map[string]interface{}{
				"chat_session_id": session.Id,
				"user_id":         userId,
				"outcome":         string(result.Outcome),
				"loop_step":       result.LoopStep,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish TURN_COMPLETED event: %v\n", err)
		}
	}

	return &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Sent: &dto.SendChatResponseChat{
			Id:        sent.Id,
			Chat:      sent.Content,
			Role:      sent.Role,
			CreatedAt: sent.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        reply.Id,
			Chat:      reply.Content,
			Role:      reply.Role,
			CreatedAt: reply.CreatedAt,
		},
		Outcome:  string(result.Outcome),
		LoopStep: result.LoopStep,
	}, nil
}

func (s *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrChatSessionNotFound
	}
	return session, nil
}

// resolveSession loads the requested session or starts a fresh one when the
// request carries no session id.
func (s *chatService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId *uuid.UUID) (*entity.ChatSession, error) {
	if sessionId != nil {
		return s.findOwnedSession(ctx, uow, userId, *sessionId)
	}

	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.DefaultChatTitle,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]agent.ChatMessage, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := make([]agent.ChatMessage, 0, len(messages))
	for _, message := range messages {
		history = append(history, agent.ChatMessage{
			Role:      message.Role,
			Content:   message.Content,
			Timestamp: message.CreatedAt,
		})
	}
	return history, nil
}

// clipTitle bounds a session title, cutting on runes so a multibyte
// character is never split mid-sequence.
func clipTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= constant.MaxChatTitleLength {
		return question
	}
	return string(runes[:constant.MaxChatTitleLength])
}

func (s *chatService) titleFromFirstQuestion(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, question string) error {
	title := clipTitle(question)

	now := time.Now()
	session.Title = title
	session.UpdatedAt = &now
	return uow.ChatSessionRepository().Update(ctx, session)
}

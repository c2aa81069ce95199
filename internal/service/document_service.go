package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adaptive-rag-be/internal/dto"
	"adaptive-rag-be/internal/entity"
	"adaptive-rag-be/internal/repository/specification"
	"adaptive-rag-be/internal/repository/unitofwork"
	"adaptive-rag-be/pkg/events"
	pktNats "adaptive-rag-be/pkg/nats"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	GetAll(ctx context.Context) ([]*dto.GetAllDocumentsResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func (s *documentService) Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document := entity.KnowledgeDocument{
		Id:        uuid.New(),
		Title:     req.Title,
		Filename:  fmt.Sprintf("%s.txt", uuid.New()),
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	// Embedding happens out of band; the consumer picks this up.
	msgPayload := dto.PublishEmbedDocumentMessage{
		DocumentId: document.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeDocumentCreated,
			Data: map[string]interface{}{
				"document_id": document.Id,
				"title":       document.Title,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish DOCUMENT_CREATED event: %v\n", err)
		}
	}

	return &dto.CreateDocumentResponse{Id: document.Id}, nil
}

func (s *documentService) GetAll(ctx context.Context) ([]*dto.GetAllDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllDocumentsResponse, 0, len(documents))
	for _, document := range documents {
		response = append(response, &dto.GetAllDocumentsResponse{
			Id:        document.Id,
			Title:     document.Title,
			CreatedAt: document.CreatedAt,
			UpdatedAt: document.UpdatedAt,
		})
	}
	return response, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeDocumentDeleted,
			Data: map[string]interface{}{
				"document_id": id,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish DOCUMENT_DELETED event: %v\n", err)
		}
	}

	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ai-traininglab-be/internal/dto"
	"ai-traininglab-be/internal/engine"
	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/internal/pkg/logger"
	"ai-traininglab-be/internal/repository/memory"
	"ai-traininglab-be/internal/repository/specification"
	"ai-traininglab-be/internal/repository/unitofwork"
	"ai-traininglab-be/pkg/dispatch"
	"ai-traininglab-be/pkg/events"
	"ai-traininglab-be/pkg/filehost"
	"ai-traininglab-be/pkg/ingest"
	pktNats "ai-traininglab-be/pkg/nats"
	"ai-traininglab-be/pkg/registry"
	"ai-traininglab-be/pkg/usage"
)

// IChatService is the HTTP-facing surface over per-user conversation engines.
type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	SelectSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	RenameSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.RenameSessionRequest) error
	SetSessionModel(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SetSessionModelRequest) error
	DeleteSession(ctx context.Context, userId uuid.UUID, req *dto.DeleteSessionRequest) error
	UpdateContextPrompt(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.UpdateContextPromptRequest) error
	UpdateExtract(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.UpdateExtractRequest) (*dto.ExtractContentResponse, error)
	GetExtract(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.ExtractContentResponse, error)

	ToggleCompare(ctx context.Context, userId uuid.UUID, req *dto.ToggleCompareRequest) (*dto.ToggleCompareResponse, error)
	SetComparisonModel(ctx context.Context, userId uuid.UUID, side string, req *dto.SetComparisonModelRequest) (*dto.ComparisonModelsResponse, error)
	GetComparisonModels(ctx context.Context, userId uuid.UUID) (*dto.ComparisonModelsResponse, error)
	SendComparison(ctx context.Context, userId uuid.UUID, req *dto.SendComparisonRequest) (*dto.SendComparisonResponse, error)
	GetComparisonMessages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetComparisonMessagesResponse, error)

	ListModels(ctx context.Context) (*dto.ListModelsResponse, error)

	ResolveBundle(ctx context.Context, userId uuid.UUID) (*memory.EngineBundle, error)
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	engineRepo       *memory.EngineRepository
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	dispatcher       dispatch.Dispatcher
	registry         *registry.Registry
	limiter          *usage.Limiter
	fileHost         *filehost.Client
	logger           logger.ILogger

	defaultModelId string
	defaultLeftId  string
	defaultRightId string
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	engineRepo *memory.EngineRepository,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	dispatcher dispatch.Dispatcher,
	reg *registry.Registry,
	limiter *usage.Limiter,
	fileHost *filehost.Client,
	log logger.ILogger,
	defaultModelId, defaultLeftId, defaultRightId string,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		engineRepo:       engineRepo,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		dispatcher:       dispatcher,
		registry:         reg,
		limiter:          limiter,
		fileHost:         fileHost,
		logger:           log,
		defaultModelId:   defaultModelId,
		defaultLeftId:    defaultLeftId,
		defaultRightId:   defaultRightId,
	}
}

// engineExtractSink lets the ingestion pipeline write through the engine, so
// dispatch context and persistence both observe uploaded document text.
type engineExtractSink struct {
	eng *engine.SessionEngine
}

func (s engineExtractSink) Set(sessionId uuid.UUID, content string) error {
	s.eng.UpdateExtractContent(sessionId, content)
	return nil
}

// ResolveBundle returns the user's live runtime, rehydrating it from the
// database when the cache has expired or the user hits a fresh instance.
func (cs *chatService) ResolveBundle(ctx context.Context, userId uuid.UUID) (*memory.EngineBundle, error) {
	if bundle, found := cs.engineRepo.Get(userId); found {
		return bundle, nil
	}

	extracts := memory.NewExtractRepository()
	persister := newQueuePersister(userId, cs.publisherService, cs.eventPublisher, cs.logger)
	eng := engine.New(userId, cs.registry, cs.dispatcher, extracts, persister, cs.logger, cs.defaultModelId)
	comp := engine.NewComparison(eng, cs.registry, cs.defaultLeftId, cs.defaultRightId)
	pipeline := ingest.NewPipeline(cs.fileHost, engineExtractSink{eng: eng})

	if err := cs.rehydrate(ctx, userId, eng, extracts); err != nil {
		return nil, err
	}

	bundle := &memory.EngineBundle{
		Engine:     eng,
		Comparison: comp,
		Pipeline:   pipeline,
	}
	cs.engineRepo.Save(userId, bundle)
	return bundle, nil
}

func (cs *chatService) rehydrate(ctx context.Context, userId uuid.UUID, eng *engine.SessionEngine, extracts *memory.ExtractRepository) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	for _, sess := range sessions {
		msgs, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: sess.Id},
			specification.OrderBy{Field: "created_at"},
		)
		if err != nil {
			return fmt.Errorf("load messages for session %s: %w", sess.Id, err)
		}
		eng.RestoreSession(sess, msgs)

		extract, err := uow.ExtractedContentRepository().FindBySessionId(ctx, sess.Id)
		if err != nil {
			return fmt.Errorf("load extract for session %s: %w", sess.Id, err)
		}
		if extract != nil {
			// direct store write, no persister echo during restore
			extracts.Set(sess.Id, extract.Content)
		}
	}
	return nil
}

func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	var sess *entity.ChatSession
	if req != nil && req.Comparison {
		bundle.Comparison.ToggleCompareMode()
		sess = bundle.Engine.CurrentSession()
	} else {
		sess = bundle.Engine.CreateSession()
	}
	if sess == nil {
		return nil, fmt.Errorf("session creation produced no session")
	}

	cs.publishEvent(ctx, events.NewSessionCreated(userId, sess.Id, sess.IsComparison))
	return &dto.CreateSessionResponse{Id: sess.Id}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	sessions := bundle.Engine.Sessions()
	res := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, &dto.GetAllSessionsResponse{
			Id:           s.Id,
			Title:        s.Title,
			IsComparison: s.IsComparison,
			ModelId:      s.ModelId,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
		})
	}
	return res, nil
}

func (cs *chatService) SelectSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return err
	}
	bundle.Engine.SelectSession(sessionId)
	return nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	msgs := bundle.Engine.Messages(sessionId)
	return mapHistory(msgs), nil
}

func mapHistory(msgs []*entity.ChatMessage) []*dto.GetChatHistoryResponse {
	res := make([]*dto.GetChatHistoryResponse, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, &dto.GetChatHistoryResponse{
			Id:          m.Id,
			Role:        string(m.Role),
			Chat:        m.Chat,
			ModelId:     m.ModelId,
			Attachments: m.Attachments,
			IsError:     m.IsError,
			ErrorKind:   m.ErrorKind,
			CreatedAt:   m.CreatedAt,
		})
	}
	return res
}

func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	if err := cs.limiter.Consume(ctx, userId); err != nil {
		return nil, err
	}

	if req.ChatSessionId != uuid.Nil {
		bundle.Engine.SelectSession(req.ChatSessionId)
	}

	reply, err := bundle.Engine.SendMessage(ctx, req.Chat, req.ContextPrompt, req.Attachments)
	if err != nil {
		return nil, err
	}

	sess := bundle.Engine.CurrentSession()
	if sess != nil && sess.Id != reply.ChatSessionId {
		// selection moved while the dispatch was in flight (another tab);
		// the reply was appended to its origin session
		cs.publishEvent(ctx, events.NewLateReplyArrived(userId, reply.ChatSessionId, reply.ModelId))
	}
	if sess == nil || sess.Id != reply.ChatSessionId {
		sess, _ = bundle.Engine.Session(reply.ChatSessionId)
	}

	res := &dto.SendChatResponse{
		ChatSessionId: reply.ChatSessionId,
		Reply:         toResponseChat(reply),
	}
	if sess != nil {
		res.ChatSessionTitle = sess.Title
	}
	if sent := lastUserMessage(bundle.Engine.Messages(reply.ChatSessionId)); sent != nil {
		res.Sent = toResponseChat(sent)
	}

	if reply.IsError {
		cs.publishEvent(ctx, events.NewDispatchFailed(userId, reply.ChatSessionId, reply.ModelId, reply.ErrorKind))
	}
	return res, nil
}

func lastUserMessage(msgs []*entity.ChatMessage) *entity.ChatMessage {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == entity.RoleUser {
			return msgs[i]
		}
	}
	return nil
}

func toResponseChat(m *entity.ChatMessage) *dto.SendChatResponseChat {
	if m == nil {
		return nil
	}
	return &dto.SendChatResponseChat{
		Id:        m.Id,
		Chat:      m.Chat,
		Role:      string(m.Role),
		ModelId:   m.ModelId,
		IsError:   m.IsError,
		ErrorKind: m.ErrorKind,
		CreatedAt: m.CreatedAt,
	}
}

func (cs *chatService) RenameSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.RenameSessionRequest) error {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return err
	}
	bundle.Engine.RenameSession(sessionId, req.Title)
	return nil
}

func (cs *chatService) SetSessionModel(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SetSessionModelRequest) error {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return err
	}
	bundle.Engine.SetSessionModel(sessionId, req.ModelId)
	return nil
}

func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, req *dto.DeleteSessionRequest) error {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return err
	}
	bundle.Engine.DeleteSession(req.ChatSessionId)
	cs.publishEvent(ctx, events.NewSessionDeleted(userId, req.ChatSessionId))
	return nil
}

func (cs *chatService) UpdateContextPrompt(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.UpdateContextPromptRequest) error {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return err
	}
	bundle.Engine.UpdateContextPrompt(sessionId, req.ContextPrompt)
	return nil
}

func (cs *chatService) UpdateExtract(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.UpdateExtractRequest) (*dto.ExtractContentResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	if req.Append {
		bundle.Engine.AppendExtractContent(sessionId, req.Content)
	} else {
		bundle.Engine.UpdateExtractContent(sessionId, req.Content)
	}
	return cs.GetExtract(ctx, userId, sessionId)
}

func (cs *chatService) GetExtract(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.ExtractContentResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	content := bundle.Engine.GetExtractContent(sessionId)
	return &dto.ExtractContentResponse{
		ChatSessionId: sessionId,
		Content:       content,
		CharCount:     len(content),
	}, nil
}

// Comparison operations

func (cs *chatService) ToggleCompare(ctx context.Context, userId uuid.UUID, req *dto.ToggleCompareRequest) (*dto.ToggleCompareResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	enabled := bundle.Comparison.ToggleCompareMode()
	res := &dto.ToggleCompareResponse{Enabled: enabled}
	if enabled {
		if sess := bundle.Engine.CurrentSession(); sess != nil {
			id := sess.Id
			res.ChatSessionId = &id
			cs.publishEvent(ctx, events.NewSessionCreated(userId, id, true))
		}
	}
	return res, nil
}

func (cs *chatService) SetComparisonModel(ctx context.Context, userId uuid.UUID, side string, req *dto.SetComparisonModelRequest) (*dto.ComparisonModelsResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	switch side {
	case "left":
		bundle.Comparison.SetLeftModel(req.ModelId)
	case "right":
		bundle.Comparison.SetRightModel(req.ModelId)
	default:
		return nil, fmt.Errorf("unknown comparison side %q", side)
	}
	return cs.GetComparisonModels(ctx, userId)
}

func (cs *chatService) GetComparisonModels(ctx context.Context, userId uuid.UUID) (*dto.ComparisonModelsResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	left, right := bundle.Comparison.Models()
	return &dto.ComparisonModelsResponse{LeftModelId: left, RightModelId: right}, nil
}

func (cs *chatService) SendComparison(ctx context.Context, userId uuid.UUID, req *dto.SendComparisonRequest) (*dto.SendComparisonResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	if err := cs.limiter.Consume(ctx, userId); err != nil {
		return nil, err
	}

	if req.ChatSessionId != uuid.Nil {
		bundle.Engine.SelectSession(req.ChatSessionId)
	}

	err = bundle.Comparison.SendComparisonMessage(ctx, req.Chat, req.LeftModelId, req.RightModelId, req.ContextPrompt, req.Attachments)
	if err != nil {
		return nil, err
	}

	sess := bundle.Engine.CurrentSession()
	if sess == nil {
		return nil, fmt.Errorf("comparison send left no current session")
	}

	left, right := bundle.Comparison.GetComparisonMessages(sess.Id)
	return &dto.SendComparisonResponse{
		ChatSessionId: sess.Id,
		Left:          derefHistory(mapHistory(left)),
		Right:         derefHistory(mapHistory(right)),
	}, nil
}

func (cs *chatService) GetComparisonMessages(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.GetComparisonMessagesResponse, error) {
	bundle, err := cs.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	left, right := bundle.Comparison.GetComparisonMessages(sessionId)
	return &dto.GetComparisonMessagesResponse{
		ChatSessionId: sessionId,
		Left:          derefHistory(mapHistory(left)),
		Right:         derefHistory(mapHistory(right)),
	}, nil
}

func derefHistory(in []*dto.GetChatHistoryResponse) []dto.GetChatHistoryResponse {
	out := make([]dto.GetChatHistoryResponse, 0, len(in))
	for _, m := range in {
		out = append(out, *m)
	}
	return out
}

func (cs *chatService) ListModels(_ context.Context) (*dto.ListModelsResponse, error) {
	models := cs.registry.List()
	res := &dto.ListModelsResponse{Models: make([]dto.ModelResponse, 0, len(models))}
	for _, m := range models {
		res.Models = append(res.Models, dto.ModelResponse{
			Id:          m.Id,
			DisplayName: m.DisplayName,
			Tags:        m.Tags,
			Provider:    m.Provider,
		})
	}
	return res, nil
}

func (cs *chatService) publishEvent(ctx context.Context, evt events.Event) {
	if cs.eventPublisher == nil {
		return
	}
	// auxiliary channel, a failed publish never fails the request
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}

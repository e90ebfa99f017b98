package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"ai-traininglab-be/internal/dto"
	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/internal/pkg/logger"
	"ai-traininglab-be/pkg/events"
	pktNats "ai-traininglab-be/pkg/nats"
)

// queuePersister pushes engine state changes onto the async persistence
// queue. In-memory state has already changed by the time these run; a
// publish failure is logged and raised as a notification event, never
// returned to the conversation path.
type queuePersister struct {
	userId         uuid.UUID
	publisher      IPublisherService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func newQueuePersister(userId uuid.UUID, publisher IPublisherService, eventPublisher *pktNats.Publisher, log logger.ILogger) *queuePersister {
	return &queuePersister{
		userId:         userId,
		publisher:      publisher,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (p *queuePersister) publish(envelope dto.PersistEnvelope, sessionId uuid.UUID) {
	envelope.UserId = p.userId

	payload, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error("Persister", "Failed to marshal persistence payload", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := p.publisher.Publish(context.Background(), payload); err != nil {
		p.logger.Warn("Persister", "Failed to enqueue persistence payload", map[string]interface{}{
			"kind":       string(envelope.Kind),
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		if p.eventPublisher != nil {
			evt := events.NewPersistenceFailed(p.userId, sessionId, err.Error())
			if pubErr := p.eventPublisher.Publish(context.Background(), evt); pubErr != nil {
				p.logger.Warn("Persister", "Failed to publish PERSISTENCE_FAILED event", map[string]interface{}{"error": pubErr.Error()})
			}
		}
	}
}

func (p *queuePersister) SessionSaved(session *entity.ChatSession) {
	p.publish(dto.PersistEnvelope{Kind: dto.PersistSession, Session: session}, session.Id)
}

func (p *queuePersister) MessageSaved(message *entity.ChatMessage) {
	p.publish(dto.PersistEnvelope{Kind: dto.PersistMessage, Message: message}, message.ChatSessionId)
}

func (p *queuePersister) ExtractSaved(extract *entity.ExtractedContent) {
	p.publish(dto.PersistEnvelope{Kind: dto.PersistExtract, Extract: extract}, extract.ChatSessionId)
}

func (p *queuePersister) SessionDeleted(sessionId uuid.UUID) {
	p.publish(dto.PersistEnvelope{Kind: dto.PersistSessionDeleted, SessionId: sessionId}, sessionId)
}

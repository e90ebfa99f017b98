package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-traininglab-be/internal/dto"
	"ai-traininglab-be/internal/repository/specification"
	"ai-traininglab-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the persistence queue into Postgres. The engine has
// already applied every change in memory; this worker only makes it durable.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope dto.PersistEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		log.Printf("[ERROR] Failed to unmarshal persistence payload: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	var err error
	switch envelope.Kind {
	case dto.PersistSession:
		err = cs.saveSession(ctx, uow, &envelope)
	case dto.PersistMessage:
		err = cs.saveMessage(ctx, uow, &envelope)
	case dto.PersistExtract:
		err = uow.ExtractedContentRepository().Upsert(ctx, envelope.Extract)
	case dto.PersistSessionDeleted:
		err = cs.deleteSession(ctx, uow, &envelope)
	default:
		log.Printf("[ERROR] Unknown persistence kind %q", envelope.Kind)
		msg.Ack()
		return
	}

	if err != nil {
		log.Printf("[ERROR] Persistence of %s failed: %v", envelope.Kind, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	msg.Ack()
}

func (cs *consumerService) saveSession(ctx context.Context, uow unitofwork.UnitOfWork, envelope *dto.PersistEnvelope) error {
	existing, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: envelope.Session.Id})
	if err != nil {
		return err
	}
	if existing == nil {
		return uow.ChatSessionRepository().Create(ctx, envelope.Session)
	}
	return uow.ChatSessionRepository().Update(ctx, envelope.Session)
}

func (cs *consumerService) saveMessage(ctx context.Context, uow unitofwork.UnitOfWork, envelope *dto.PersistEnvelope) error {
	existing, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByID{ID: envelope.Message.Id})
	if err != nil {
		return err
	}
	if existing == nil {
		return uow.ChatMessageRepository().Create(ctx, envelope.Message)
	}
	return uow.ChatMessageRepository().Update(ctx, envelope.Message)
}

func (cs *consumerService) deleteSession(ctx context.Context, uow unitofwork.UnitOfWork, envelope *dto.PersistEnvelope) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, envelope.SessionId); err != nil {
		return err
	}
	if err := uow.ExtractedContentRepository().DeleteBySessionId(ctx, envelope.SessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, envelope.SessionId); err != nil {
		return err
	}

	return uow.Commit()
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"ai-traininglab-be/internal/dto"
	"ai-traininglab-be/internal/engine"
	"ai-traininglab-be/internal/pkg/logger"
	"ai-traininglab-be/pkg/events"
	"ai-traininglab-be/pkg/ingest"
	pktNats "ai-traininglab-be/pkg/nats"
)

type IUploadService interface {
	UploadFiles(ctx context.Context, userId, sessionId uuid.UUID, files []ingest.PendingFile) (*dto.UploadFilesResponse, error)
}

type uploadService struct {
	chatService    IChatService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewUploadService(chatService IChatService, eventPublisher *pktNats.Publisher, log logger.ILogger) IUploadService {
	return &uploadService{
		chatService:    chatService,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// UploadFiles runs one ingestion round: validate the batch, push the
// survivors to the file host and land the extracted text in the session's
// content entry. Oversize files are reported per file, they never sink the
// batch.
func (us *uploadService) UploadFiles(ctx context.Context, userId, sessionId uuid.UUID, files []ingest.PendingFile) (*dto.UploadFilesResponse, error) {
	bundle, err := us.chatService.ResolveBundle(ctx, userId)
	if err != nil {
		return nil, err
	}

	if _, ok := bundle.Engine.Session(sessionId); !ok {
		return nil, engine.ErrUnknownSession
	}

	pipeline := bundle.Pipeline
	pipeline.ClearFiles()

	res := &dto.UploadFilesResponse{ChatSessionId: sessionId}
	for _, rejection := range pipeline.AddFiles(files) {
		var vErr *ingest.ValidationError
		if errors.As(rejection, &vErr) {
			res.Rejected = append(res.Rejected, dto.RejectedFile{Name: vErr.FileName, Reason: vErr.Reason})
		} else {
			res.Rejected = append(res.Rejected, dto.RejectedFile{Reason: rejection.Error()})
		}
	}

	batch, err := pipeline.Upload(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	for _, up := range batch.Uploaded {
		res.Uploaded = append(res.Uploaded, dto.UploadedFile{Name: up.Name, Url: up.URL})
	}
	for _, failure := range batch.Failed {
		us.logger.Warn("UploadService", "File failed during batch upload", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      failure.Error(),
		})
		res.Rejected = append(res.Rejected, dto.RejectedFile{Reason: failure.Error()})
	}

	if content := bundle.Engine.GetExtractContent(sessionId); content != "" {
		res.Extract = &dto.ExtractSummary{CharCount: len(content)}
	}

	if us.eventPublisher != nil {
		evt := events.NewUploadCompleted(userId, sessionId, len(res.Uploaded), len(batch.Failed))
		if err := us.eventPublisher.Publish(ctx, evt); err != nil {
			us.logger.Warn("UploadService", "Failed to publish UPLOAD_COMPLETED event", map[string]interface{}{"error": err.Error()})
		}
	}

	return res, nil
}

package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-traininglab-be/internal/constant"
	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/internal/repository/specification"
	"ai-traininglab-be/internal/repository/unitofwork"
	"ai-traininglab-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatMessageRepository())
	assert.NotNil(t, uow.ExtractedContentRepository())
	assert.NotNil(t, uow.NotificationRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check Session Repository", func(t *testing.T) {
		count, err := uow.ChatSessionRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Session count: %d", count)
	})

	t.Run("Session Round Trip", func(t *testing.T) {
		ctx := context.Background()
		userId := uuid.New()
		now := time.Now()

		session := &entity.ChatSession{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     "Integration session",
			ModelId:   "gpt-4o-mini",
			CreatedAt: now,
		}
		err := uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		msg := entity.NewUserMessage(session.Id, constant.ChatSideMain, "hello there", nil, now)
		err = uow.ChatMessageRepository().Create(ctx, msg)
		assert.NoError(t, err)

		extract := &entity.ExtractedContent{
			ChatSessionId: session.Id,
			Content:       "order of battle",
			CharCount:     15,
			UpdatedAt:     now,
		}
		err = uow.ExtractedContentRepository().Upsert(ctx, extract)
		assert.NoError(t, err)

		// Upsert again, row must be replaced not duplicated
		extract.Content = "revised content"
		extract.CharCount = 15
		err = uow.ExtractedContentRepository().Upsert(ctx, extract)
		assert.NoError(t, err)

		found, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, "Integration session", found.Title)
		}

		msgs, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
			specification.OrderBy{Field: "created_at"},
		)
		assert.NoError(t, err)
		assert.Len(t, msgs, 1)

		stored, err := uow.ExtractedContentRepository().FindBySessionId(ctx, session.Id)
		assert.NoError(t, err)
		if assert.NotNil(t, stored) {
			assert.Equal(t, "revised content", stored.Content)
		}

		// Cleanup
		assert.NoError(t, uow.ChatMessageRepository().DeleteByChatSessionId(ctx, msg.ChatSessionId))
		assert.NoError(t, uow.ExtractedContentRepository().DeleteBySessionId(ctx, session.Id))
		assert.NoError(t, uow.ChatSessionRepository().DeleteAllByUserIdUnscoped(ctx, userId))
	})

	t.Run("Notification Round Trip", func(t *testing.T) {
		ctx := context.Background()
		userId := uuid.New()

		notif := &entity.Notification{
			Id:       uuid.New(),
			UserId:   userId,
			TypeCode: entity.NotificationUploadCompleted,
			Title:    "Files processed",
			Message:  "2 files uploaded",
			Metadata: map[string]interface{}{"uploaded": 2},
		}
		err := uow.NotificationRepository().Create(ctx, notif)
		assert.NoError(t, err)

		list, total, err := uow.NotificationRepository().FindByUserId(ctx, userId, 20, 0)
		assert.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Len(t, list, 1)

		unread, err := uow.NotificationRepository().UnreadCount(ctx, userId)
		assert.NoError(t, err)
		assert.EqualValues(t, 1, unread)

		err = uow.NotificationRepository().MarkAllAsRead(ctx, userId)
		assert.NoError(t, err)

		unread, err = uow.NotificationRepository().UnreadCount(ctx, userId)
		assert.NoError(t, err)
		assert.EqualValues(t, 0, unread)
	})
}

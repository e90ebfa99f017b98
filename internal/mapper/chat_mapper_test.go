package mapper

import (
	"testing"
	"time"

	"ai-traininglab-be/internal/constant"
	"ai-traininglab-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestChatMessageRoundTrip(t *testing.T) {
	m := NewChatMapper()

	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: uuid.New(),
		Side:          constant.ChatSideLeft,
		Role:          entity.RoleUser,
		Chat:          "compare these two",
		Attachments:   []string{"handbook.pdf", "policy.pdf"},
		CreatedAt:     time.Now(),
	}

	back := m.ChatMessageToEntity(m.ChatMessageToModel(msg))

	assert.Equal(t, msg.Id, back.Id)
	assert.Equal(t, msg.Side, back.Side)
	assert.Equal(t, msg.Role, back.Role)
	assert.Equal(t, msg.Chat, back.Chat)
	assert.Equal(t, msg.Attachments, back.Attachments)
}

func TestChatMessageMalformedAttachments(t *testing.T) {
	m := NewChatMapper()

	msg := &entity.ChatMessage{Id: uuid.New(), Role: entity.RoleUser, Chat: "hi"}
	row := m.ChatMessageToModel(msg)
	row.Attachments = datatypes.JSON([]byte(`{not json`))

	back := m.ChatMessageToEntity(row)
	assert.NotNil(t, back)
	assert.Nil(t, back.Attachments, "malformed attachment rows degrade to none")
}

func TestChatSessionSoftDelete(t *testing.T) {
	m := NewChatMapper()

	deleted := time.Now()
	sess := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Title:     "old session",
		DeletedAt: &deleted,
		IsDeleted: true,
	}

	back := m.ChatSessionToEntity(m.ChatSessionToModel(sess))
	assert.True(t, back.IsDeleted)
	assert.NotNil(t, back.DeletedAt)
}

func TestNilSafety(t *testing.T) {
	m := NewChatMapper()

	assert.Nil(t, m.ChatSessionToEntity(nil))
	assert.Nil(t, m.ChatSessionToModel(nil))
	assert.Nil(t, m.ChatMessageToEntity(nil))
	assert.Nil(t, m.ChatMessageToModel(nil))
	assert.Nil(t, m.ExtractedContentToEntity(nil))
	assert.Nil(t, m.ExtractedContentToModel(nil))
}

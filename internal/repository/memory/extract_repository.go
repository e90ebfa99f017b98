package memory

import (
	"time"

	"ai-traininglab-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ExtractRepository keeps the per-session extracted-document text.
// Entries never expire on their own; they live until the owning session
// is deleted.
type ExtractRepository struct {
	cache *cache.Cache
}

func NewExtractRepository() *ExtractRepository {
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &ExtractRepository{
		cache: c,
	}
}

// Set overwrites the session's entry. Overwrite, not merge, is the
// default contract; use Append for explicit accumulation.
func (r *ExtractRepository) Set(sessionId uuid.UUID, content string) *entity.ExtractedContent {
	entry := &entity.ExtractedContent{
		ChatSessionId: sessionId,
		Content:       content,
		CharCount:     len(content),
		UpdatedAt:     time.Now(),
	}
	r.cache.Set(sessionId.String(), entry, cache.NoExpiration)
	return entry
}

// Append concatenates onto any existing entry.
func (r *ExtractRepository) Append(sessionId uuid.UUID, content string) *entity.ExtractedContent {
	if existing, found := r.Get(sessionId); found {
		return r.Set(sessionId, existing.Content+content)
	}
	return r.Set(sessionId, content)
}

func (r *ExtractRepository) Get(sessionId uuid.UUID) (*entity.ExtractedContent, bool) {
	if x, found := r.cache.Get(sessionId.String()); found {
		return x.(*entity.ExtractedContent), true
	}
	return nil, false
}

func (r *ExtractRepository) Delete(sessionId uuid.UUID) {
	r.cache.Delete(sessionId.String())
}

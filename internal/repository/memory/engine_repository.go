package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"ai-traininglab-be/internal/engine"
	"ai-traininglab-be/pkg/ingest"
)

// EngineBundle is one user's live conversation runtime.
type EngineBundle struct {
	Engine     *engine.SessionEngine
	Comparison *engine.ComparisonEngine
	Pipeline   *ingest.Pipeline
}

// EngineRepository keeps per-user runtimes in memory. Entries expire after an
// hour of inactivity; state is rehydrated from the database on the next
// request, so expiry only costs a reload.
type EngineRepository struct {
	cache *cache.Cache
}

func NewEngineRepository() *EngineRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &EngineRepository{
		cache: c,
	}
}

func (r *EngineRepository) Save(userId uuid.UUID, bundle *EngineBundle) {
	r.cache.Set(userId.String(), bundle, cache.DefaultExpiration)
}

func (r *EngineRepository) Get(userId uuid.UUID) (*EngineBundle, bool) {
	if x, found := r.cache.Get(userId.String()); found {
		return x.(*EngineBundle), true
	}
	return nil, false
}

func (r *EngineRepository) Delete(userId uuid.UUID) {
	r.cache.Delete(userId.String())
}

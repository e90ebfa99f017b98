package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"ai-traininglab-be/internal/constant"
	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/pkg/registry"

	"github.com/google/uuid"
)

// ErrNoModelSelected rejects a comparison send where neither side names
// a model.
var ErrNoModelSelected = errors.New("no model selected for either side")

// ComparisonEngine drives two independent model threads inside one
// session flagged as a comparison session. Turning compare mode on always
// spawns a fresh pairing; an existing session is never converted in
// place.
type ComparisonEngine struct {
	engine   *SessionEngine
	registry *registry.Registry

	mu           sync.Mutex
	enabled      bool
	leftModelId  string
	rightModelId string
}

func NewComparison(e *SessionEngine, reg *registry.Registry, defaultLeft, defaultRight string) *ComparisonEngine {
	return &ComparisonEngine{
		engine:       e,
		registry:     reg,
		leftModelId:  defaultLeft,
		rightModelId: defaultRight,
	}
}

// ToggleCompareMode flips the mode and returns the new state. Switching
// on creates a new comparison session and marks it current.
func (c *ComparisonEngine) ToggleCompareMode() bool {
	c.mu.Lock()
	c.enabled = !c.enabled
	enabled := c.enabled
	left, right := c.leftModelId, c.rightModelId
	c.mu.Unlock()

	if enabled {
		c.engine.mu.Lock()
		sess := c.engine.createSessionLocked(true, left, right)
		c.engine.mu.Unlock()
		c.engine.persister.SessionSaved(sess)
	}
	return enabled
}

func (c *ComparisonEngine) CompareMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// SetLeftModel validates against the registry; an unknown id keeps the
// last valid value.
func (c *ComparisonEngine) SetLeftModel(modelId string) {
	if !c.registry.Has(modelId) {
		return
	}
	c.mu.Lock()
	c.leftModelId = modelId
	c.mu.Unlock()
	c.updateSessionModels()
}

// SetRightModel mirrors SetLeftModel for the right thread.
func (c *ComparisonEngine) SetRightModel(modelId string) {
	if !c.registry.Has(modelId) {
		return
	}
	c.mu.Lock()
	c.rightModelId = modelId
	c.mu.Unlock()
	c.updateSessionModels()
}

func (c *ComparisonEngine) Models() (left, right string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leftModelId, c.rightModelId
}

func (c *ComparisonEngine) updateSessionModels() {
	c.mu.Lock()
	left, right := c.leftModelId, c.rightModelId
	c.mu.Unlock()

	c.engine.mu.Lock()
	sess := c.engine.sessions[c.engine.current]
	if sess != nil && sess.IsComparison {
		sess.LeftModelId = left
		sess.RightModelId = right
	}
	c.engine.mu.Unlock()

	if sess != nil && sess.IsComparison {
		c.engine.persister.SessionSaved(sess)
	}
}

// SendComparisonMessage appends the user message to every addressed side
// and runs the dispatches concurrently. A joint send (both model ids set)
// produces two independent assistant appends; the sides never block each
// other, and one side failing leaves the other untouched. Passing an
// empty model id skips that side.
func (c *ComparisonEngine) SendComparisonMessage(ctx context.Context, text, leftModelId, rightModelId, contextPrompt string, attachments []string) error {
	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return ErrEmptyMessage
	}
	if leftModelId == "" && rightModelId == "" {
		return ErrNoModelSelected
	}

	e := c.engine
	e.mu.Lock()
	sess := e.sessions[e.current]
	if sess == nil || !sess.IsComparison {
		left, right := c.Models()
		sess = e.createSessionLocked(true, left, right)
	}
	target := sess.Id
	if contextPrompt != "" {
		e.contextPrompts[target] = contextPrompt
	} else {
		contextPrompt = e.contextPrompts[target]
	}

	now := time.Now()
	type sideSend struct {
		side    string
		modelId string
		userMsg *entity.ChatMessage
	}
	var sends []sideSend
	if leftModelId != "" {
		msg := entity.NewUserMessage(target, constant.ChatSideLeft, text, attachments, now)
		e.messages.Append(msg)
		sends = append(sends, sideSend{side: constant.ChatSideLeft, modelId: leftModelId, userMsg: msg})
	}
	if rightModelId != "" {
		msg := entity.NewUserMessage(target, constant.ChatSideRight, text, attachments, now)
		e.messages.Append(msg)
		sends = append(sends, sideSend{side: constant.ChatSideRight, modelId: rightModelId, userMsg: msg})
	}
	e.touchLocked(sess, text, now)
	e.mu.Unlock()

	for _, s := range sends {
		e.persister.MessageSaved(s.userMsg)
	}
	e.persister.SessionSaved(sess)

	var wg sync.WaitGroup
	for _, s := range sends {
		wg.Add(1)
		go func(side, modelId string) {
			defer wg.Done()
			history := e.dispatchHistory(target, side, contextPrompt)
			e.dispatchAndAppend(ctx, target, side, modelId, history)
		}(s.side, s.modelId)
	}
	wg.Wait()
	return nil
}

// GetComparisonMessages projects both threads for rendering. A session
// that is not a comparison session yields two empty lists.
func (c *ComparisonEngine) GetComparisonMessages(sessionId uuid.UUID) (left, right []*entity.ChatMessage) {
	sess, ok := c.engine.Session(sessionId)
	if !ok || !sess.IsComparison {
		return []*entity.ChatMessage{}, []*entity.ChatMessage{}
	}
	return c.engine.messages.List(sessionId, constant.ChatSideLeft),
		c.engine.messages.List(sessionId, constant.ChatSideRight)
}

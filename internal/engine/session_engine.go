package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"ai-traininglab-be/internal/constant"
	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/internal/pkg/logger"
	"ai-traininglab-be/pkg/dispatch"
	"ai-traininglab-be/pkg/llm"
	"ai-traininglab-be/pkg/registry"

	"github.com/google/uuid"
)

var (
	// ErrEmptyMessage rejects sends whose text trims to nothing and that
	// carry no attachments. This is the only error SendMessage returns to
	// its caller; dispatch failures become thread messages instead.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrUnknownSession reports an operation addressed to a session id
	// the engine does not hold.
	ErrUnknownSession = errors.New("unknown chat session")
)

// SessionEngine owns the conversation state of one user: session
// lifecycle, per-session message threads, context prompts and extracted
// document content. One engine exists per user; nothing in here is a
// process-wide singleton.
type SessionEngine struct {
	userId     uuid.UUID
	registry   *registry.Registry
	dispatcher dispatch.Dispatcher
	extracts   ExtractStore
	persister  Persister
	logger     logger.ILogger

	mu             sync.Mutex
	sessions       map[uuid.UUID]*entity.ChatSession
	order          []uuid.UUID // creation order, newest last
	current        uuid.UUID   // uuid.Nil when no session is selected
	contextPrompts map[uuid.UUID]string
	messages       *messageStore
	defaultModelId string
}

func New(
	userId uuid.UUID,
	reg *registry.Registry,
	dispatcher dispatch.Dispatcher,
	extracts ExtractStore,
	persister Persister,
	log logger.ILogger,
	defaultModelId string,
) *SessionEngine {
	if persister == nil {
		persister = NopPersister{}
	}
	return &SessionEngine{
		userId:         userId,
		registry:       reg,
		dispatcher:     dispatcher,
		extracts:       extracts,
		persister:      persister,
		logger:         log,
		sessions:       make(map[uuid.UUID]*entity.ChatSession),
		contextPrompts: make(map[uuid.UUID]string),
		messages:       newMessageStore(),
		defaultModelId: defaultModelId,
	}
}

func (e *SessionEngine) UserId() uuid.UUID {
	return e.userId
}

// CreateSession allocates a new empty session, marks it current and
// returns it.
func (e *SessionEngine) CreateSession() *entity.ChatSession {
	e.mu.Lock()
	sess := e.createSessionLocked(false, "", "")
	e.mu.Unlock()

	e.persister.SessionSaved(sess)
	return sess
}

func (e *SessionEngine) createSessionLocked(isComparison bool, leftModelId, rightModelId string) *entity.ChatSession {
	now := time.Now()
	sess := &entity.ChatSession{
		Id:           uuid.New(),
		UserId:       e.userId,
		Title:        constant.UntitledSession,
		IsComparison: isComparison,
		ModelId:      e.defaultModelId,
		LeftModelId:  leftModelId,
		RightModelId: rightModelId,
		CreatedAt:    now,
	}
	e.sessions[sess.Id] = sess
	e.order = append(e.order, sess.Id)
	e.current = sess.Id

	if !isComparison {
		greeting := entity.NewAssistantMessage(sess.Id, constant.ChatSideMain, constant.InitialAssistantGreeting, "", now)
		e.messages.Append(greeting)
	}
	return sess
}

// SelectSession switches the current-session pointer. Unknown ids are a
// silent no-op; selecting the same id twice is idempotent.
func (e *SessionEngine) SelectSession(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[id]; ok {
		e.current = id
	}
}

// CurrentSession returns the selected session, nil when none exists.
func (e *SessionEngine) CurrentSession() *entity.ChatSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == uuid.Nil {
		return nil
	}
	return e.sessions[e.current]
}

// Sessions lists every live session in creation order.
func (e *SessionEngine) Sessions() []*entity.ChatSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*entity.ChatSession, 0, len(e.order))
	for _, id := range e.order {
		if s, ok := e.sessions[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (e *SessionEngine) Session(id uuid.UUID) (*entity.ChatSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	return s, ok
}

// RenameSession sets the display name. Unknown ids are ignored.
func (e *SessionEngine) RenameSession(id uuid.UUID, title string) {
	e.mu.Lock()
	sess, ok := e.sessions[id]
	if ok {
		now := time.Now()
		sess.Title = title
		sess.UpdatedAt = &now
	}
	e.mu.Unlock()

	if ok {
		e.persister.SessionSaved(sess)
	}
}

// SetSessionModel selects the dispatch model for a regular session.
// Unknown model ids keep the previous value.
func (e *SessionEngine) SetSessionModel(id uuid.UUID, modelId string) {
	if !e.registry.Has(modelId) {
		return
	}
	e.mu.Lock()
	sess, ok := e.sessions[id]
	if ok {
		sess.ModelId = modelId
	}
	e.mu.Unlock()

	if ok {
		e.persister.SessionSaved(sess)
	}
}

// DeleteSession removes the session record outright together with its
// threads, context prompt and extracted content.
func (e *SessionEngine) DeleteSession(id uuid.UUID) {
	e.mu.Lock()
	_, ok := e.sessions[id]
	if ok {
		delete(e.sessions, id)
		delete(e.contextPrompts, id)
		for i, oid := range e.order {
			if oid == id {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
		if e.current == id {
			e.current = uuid.Nil
		}
	}
	e.mu.Unlock()

	if ok {
		e.messages.DeleteSession(id)
		e.extracts.Delete(id)
		e.persister.SessionDeleted(id)
	}
}

// Messages returns the main thread of a session.
func (e *SessionEngine) Messages(sessionId uuid.UUID) []*entity.ChatMessage {
	return e.messages.List(sessionId, constant.ChatSideMain)
}

// SendMessage appends the user message to the current session (created on
// demand), dispatches the bounded recent history plus context to the
// session's model, and appends the assistant reply. A dispatch failure is
// appended as an error-classified assistant message; it is never returned.
// The reply lands in the session that originated the send even when the
// selection has moved on by the time the dispatch resolves.
func (e *SessionEngine) SendMessage(ctx context.Context, text, contextPrompt string, attachments []string) (*entity.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	e.mu.Lock()
	sess := e.sessions[e.current]
	if sess == nil {
		sess = e.createSessionLocked(false, "", "")
	}
	// Capture the target now; late results must append to the origin
	// session, not whatever is current at resolution time.
	target := sess.Id
	modelId := sess.ModelId
	if modelId == "" {
		modelId = e.defaultModelId
	}
	if contextPrompt != "" {
		e.contextPrompts[target] = contextPrompt
	} else {
		contextPrompt = e.contextPrompts[target]
	}

	now := time.Now()
	userMsg := entity.NewUserMessage(target, constant.ChatSideMain, text, attachments, now)
	e.messages.Append(userMsg)
	e.touchLocked(sess, text, now)
	e.mu.Unlock()

	e.persister.MessageSaved(userMsg)
	e.persister.SessionSaved(sess)

	history := e.dispatchHistory(target, constant.ChatSideMain, contextPrompt)
	assistant := e.dispatchAndAppend(ctx, target, constant.ChatSideMain, modelId, history)
	return assistant, nil
}

// dispatchAndAppend runs one dispatch and appends its outcome to the
// origin thread. Shared by regular and comparison sends.
func (e *SessionEngine) dispatchAndAppend(ctx context.Context, target uuid.UUID, side, modelId string, history []llm.Message) *entity.ChatMessage {
	reply, err := e.dispatcher.Dispatch(ctx, modelId, history)

	now := time.Now()
	var msg *entity.ChatMessage
	if err != nil {
		var dispErr *dispatch.Error
		if !errors.As(err, &dispErr) {
			dispErr = dispatch.Classify(modelId, err)
		}
		e.logger.Warn("SessionEngine", "Dispatch failed", map[string]interface{}{
			"session_id": target.String(),
			"model_id":   modelId,
			"kind":       string(dispErr.Kind),
			"error":      dispErr.Error(),
		})
		msg = entity.NewErrorMessage(target, side, dispErr.UserMessage(), modelId, string(dispErr.Kind), now)
	} else {
		msg = entity.NewAssistantMessage(target, side, reply, modelId, now)
	}

	e.mu.Lock()
	sess, ok := e.sessions[target]
	if ok {
		e.messages.Append(msg)
		sess.UpdatedAt = &now
	}
	e.mu.Unlock()

	if !ok {
		// The session was deleted while the dispatch was in flight;
		// there is no thread left to append to.
		e.logger.Info("SessionEngine", "Dropping reply for deleted session", map[string]interface{}{
			"session_id": target.String(),
		})
		return msg
	}

	e.persister.MessageSaved(msg)
	return msg
}

// dispatchHistory builds the bounded recent window for one thread, with
// the context prompt and extracted document text prepended as system
// input. Error-classified entries are excluded; they are UI artifacts,
// not conversation.
func (e *SessionEngine) dispatchHistory(sessionId uuid.UUID, side, contextPrompt string) []llm.Message {
	thread := e.messages.List(sessionId, side)

	recent := make([]llm.Message, 0, len(thread))
	for _, m := range thread {
		if m.IsError {
			continue
		}
		recent = append(recent, llm.Message{
			Role:    string(m.Role),
			Content: m.Chat,
		})
	}
	limit := constant.HistoryWindowMessages
	if len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}

	system := e.buildSystemContext(sessionId, contextPrompt)
	if system == "" {
		return recent
	}
	return append([]llm.Message{{Role: "system", Content: system}}, recent...)
}

func (e *SessionEngine) buildSystemContext(sessionId uuid.UUID, contextPrompt string) string {
	var b strings.Builder
	if contextPrompt != "" {
		b.WriteString(contextPrompt)
	}
	if extract, found := e.extracts.Get(sessionId); found && extract.Content != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Reference documents uploaded by the user:\n")
		b.WriteString(extract.Content)
	}
	return b.String()
}

// touchLocked bumps UpdatedAt and derives the title from the first user
// message of an untitled session.
func (e *SessionEngine) touchLocked(sess *entity.ChatSession, text string, now time.Time) {
	sess.UpdatedAt = &now
	if sess.Title == constant.UntitledSession && text != "" {
		title := text
		if runes := []rune(title); len(runes) > constant.SessionTitleMaxLen {
			// truncate on a rune boundary, byte slicing would split
			// multi-byte characters
			title = string(runes[:constant.SessionTitleMaxLen])
		}
		sess.Title = title
	}
}

// UpdateContextPrompt stores the free-text prompt prepended to every
// dispatch for the session, independent of message history.
func (e *SessionEngine) UpdateContextPrompt(sessionId uuid.UUID, text string) {
	e.mu.Lock()
	e.contextPrompts[sessionId] = text
	e.mu.Unlock()
}

func (e *SessionEngine) GetContextPrompt(sessionId uuid.UUID) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contextPrompts[sessionId]
}

// UpdateExtractContent overwrites the session's extracted content. The
// write has completed when this returns; a subsequent read observes it.
func (e *SessionEngine) UpdateExtractContent(sessionId uuid.UUID, text string) {
	entry := e.extracts.Set(sessionId, text)
	e.persister.ExtractSaved(entry)
}

// AppendExtractContent concatenates onto the existing entry.
func (e *SessionEngine) AppendExtractContent(sessionId uuid.UUID, text string) {
	entry := e.extracts.Append(sessionId, text)
	e.persister.ExtractSaved(entry)
}

func (e *SessionEngine) GetExtractContent(sessionId uuid.UUID) string {
	if entry, found := e.extracts.Get(sessionId); found {
		return entry.Content
	}
	return ""
}

// RestoreSession rehydrates one session and its messages from storage.
// Messages must arrive in their persisted order; it is preserved as the
// thread order. Restore does not change the current-session pointer and
// does not echo back to the persister.
func (e *SessionEngine) RestoreSession(sess *entity.ChatSession, msgs []*entity.ChatMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.sessions[sess.Id]; exists {
		return
	}
	e.sessions[sess.Id] = sess
	e.order = append(e.order, sess.Id)
	for _, m := range msgs {
		e.messages.Append(m)
	}
}

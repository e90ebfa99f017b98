package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"ai-traininglab-be/internal/constant"
	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/internal/pkg/logger"
	"ai-traininglab-be/pkg/dispatch"
	"ai-traininglab-be/pkg/llm"
	"ai-traininglab-be/pkg/registry"

	"github.com/google/uuid"
)

// fakeDispatcher scripts one outcome per model id.
type fakeDispatcher struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   []fakeCall
	block   map[string]chan struct{} // optional gate per model id
}

type fakeCall struct {
	modelId string
	history []llm.Message
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		replies: make(map[string]string),
		errs:    make(map[string]error),
		block:   make(map[string]chan struct{}),
	}
}

func (f *fakeDispatcher) Dispatch(_ context.Context, modelId string, history []llm.Message, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	gate := f.block[modelId]
	f.calls = append(f.calls, fakeCall{modelId: modelId, history: history})
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[modelId]; ok {
		return "", err
	}
	if reply, ok := f.replies[modelId]; ok {
		return reply, nil
	}
	return "ok", nil
}

func (f *fakeDispatcher) lastCall() fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// waitForCalls blocks until at least n dispatches have started.
func (f *fakeDispatcher) waitForCalls(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		count := len(f.calls)
		f.mu.Unlock()
		if count >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d dispatch calls", n)
}

// testExtractStore is a map-backed ExtractStore, mirroring the synchronous
// write contract of the production cache.
type testExtractStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entity.ExtractedContent
}

func newTestExtractStore() *testExtractStore {
	return &testExtractStore{entries: make(map[uuid.UUID]*entity.ExtractedContent)}
}

func (s *testExtractStore) Set(sessionId uuid.UUID, content string) *entity.ExtractedContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := &entity.ExtractedContent{
		ChatSessionId: sessionId,
		Content:       content,
		CharCount:     len(content),
		UpdatedAt:     time.Now(),
	}
	s.entries[sessionId] = entry
	return entry
}

func (s *testExtractStore) Append(sessionId uuid.UUID, content string) *entity.ExtractedContent {
	s.mu.Lock()
	existing, found := s.entries[sessionId]
	s.mu.Unlock()
	if found {
		return s.Set(sessionId, existing.Content+content)
	}
	return s.Set(sessionId, content)
}

func (s *testExtractStore) Get(sessionId uuid.UUID) (*entity.ExtractedContent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, found := s.entries[sessionId]
	return entry, found
}

func (s *testExtractStore) Delete(sessionId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionId)
}

func newTestEngine(t *testing.T, d dispatch.Dispatcher) *SessionEngine {
	t.Helper()
	reg := registry.New([]registry.Model{
		{Id: "modelA", DisplayName: "Model A", Provider: "openai", Upstream: "a"},
		{Id: "modelB", DisplayName: "Model B", Provider: "openai", Upstream: "b"},
	})
	return New(uuid.New(), reg, d, newTestExtractStore(), nil, logger.NopLogger{}, "modelA")
}

func TestCreateSessionBecomesCurrent(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())

	sess := e.CreateSession()
	if got := e.CurrentSession(); got == nil || got.Id != sess.Id {
		t.Fatal("created session should be current")
	}
	msgs := e.Messages(sess.Id)
	if len(msgs) != 1 || msgs[0].Role != entity.RoleAssistant {
		t.Fatalf("new session should carry the greeting, got %d messages", len(msgs))
	}
}

func TestSelectSessionUnknownIdIsNoOp(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())
	sess := e.CreateSession()

	e.SelectSession(uuid.New())
	if got := e.CurrentSession(); got == nil || got.Id != sess.Id {
		t.Error("unknown id must not change the current session")
	}
}

func TestSelectSessionIdempotent(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())
	a := e.CreateSession()
	e.CreateSession()

	e.SelectSession(a.Id)
	first := e.CurrentSession()
	e.SelectSession(a.Id)
	second := e.CurrentSession()

	if first.Id != second.Id || second.Id != a.Id {
		t.Error("selecting the same id twice must equal selecting it once")
	}
}

func TestSendMessageAppendsUserThenAssistant(t *testing.T) {
	d := newFakeDispatcher()
	d.replies["modelA"] = "the answer"
	e := newTestEngine(t, d)
	sess := e.CreateSession()

	if _, err := e.SendMessage(context.Background(), "  hello  ", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := e.Messages(sess.Id)
	// greeting + user + assistant
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[1].Role != entity.RoleUser || msgs[1].Chat != "hello" {
		t.Errorf("user message = %+v, want trimmed %q", msgs[1], "hello")
	}
	if msgs[2].Role != entity.RoleAssistant || msgs[2].Chat != "the answer" {
		t.Errorf("assistant message = %+v", msgs[2])
	}
	if msgs[2].IsError {
		t.Error("successful dispatch must not be error-marked")
	}
}

func TestSendMessageEmptyTextRejected(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())
	e.CreateSession()

	_, err := e.SendMessage(context.Background(), "   ", "", nil)
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestSendMessageAutoCreatesSession(t *testing.T) {
	d := newFakeDispatcher()
	e := newTestEngine(t, d)

	if _, err := e.SendMessage(context.Background(), "hi", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.CurrentSession() == nil {
		t.Fatal("send without a session should have created one")
	}
	if len(e.Sessions()) != 1 {
		t.Fatalf("got %d sessions, want 1", len(e.Sessions()))
	}
}

func TestSendMessageFailureBecomesAssistantErrorMessage(t *testing.T) {
	d := newFakeDispatcher()
	d.errs["modelA"] = &llm.StatusError{StatusCode: 429, Body: "slow down"}
	e := newTestEngine(t, d)
	sess := e.CreateSession()

	assistant, err := e.SendMessage(context.Background(), "hi", "", nil)
	if err != nil {
		t.Fatalf("dispatch failures must not surface as errors, got %v", err)
	}
	if !assistant.IsError {
		t.Fatal("assistant message should be error-marked")
	}
	if assistant.ErrorKind != string(dispatch.KindRateLimited) {
		t.Errorf("ErrorKind = %s, want %s", assistant.ErrorKind, dispatch.KindRateLimited)
	}

	msgs := e.Messages(sess.Id)
	last := msgs[len(msgs)-1]
	if last.Role != entity.RoleAssistant || !last.IsError {
		t.Error("thread should end with the error-classified assistant message")
	}
}

func TestSendMessagePrependsContextAndExtract(t *testing.T) {
	d := newFakeDispatcher()
	e := newTestEngine(t, d)
	sess := e.CreateSession()
	e.UpdateExtractContent(sess.Id, "doc body")

	if _, err := e.SendMessage(context.Background(), "question", "You are a tutor.", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := d.lastCall().history
	if history[0].Role != "system" {
		t.Fatalf("first dispatched message role = %s, want system", history[0].Role)
	}
	if !strings.Contains(history[0].Content, "You are a tutor.") {
		t.Error("system context must carry the context prompt")
	}
	if !strings.Contains(history[0].Content, "doc body") {
		t.Error("system context must carry the extracted content")
	}
}

func TestSendMessageHistoryWindowBounded(t *testing.T) {
	d := newFakeDispatcher()
	e := newTestEngine(t, d)
	e.CreateSession()

	for i := 0; i < constant.HistoryWindowMessages; i++ {
		if _, err := e.SendMessage(context.Background(), "turn", "", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	history := d.lastCall().history
	if len(history) > constant.HistoryWindowMessages {
		t.Errorf("dispatched %d messages, window is %d", len(history), constant.HistoryWindowMessages)
	}
}

func TestLateReplyAppendsToOriginSession(t *testing.T) {
	d := newFakeDispatcher()
	gate := make(chan struct{})
	d.block["modelA"] = gate
	d.replies["modelA"] = "late answer"
	e := newTestEngine(t, d)
	origin := e.CreateSession()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := e.SendMessage(context.Background(), "slow question", "", nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}()

	// Navigate away while the dispatch is pending.
	d.waitForCalls(t, 1)
	other := e.CreateSession()
	close(gate)
	<-done

	originMsgs := e.Messages(origin.Id)
	last := originMsgs[len(originMsgs)-1]
	if last.Chat != "late answer" {
		t.Error("late reply must land in the origin session")
	}
	for _, m := range e.Messages(other.Id) {
		if m.Chat == "late answer" {
			t.Error("late reply leaked into the newly selected session")
		}
	}
}

func TestExtractContentOverwriteSemantics(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())
	sess := e.CreateSession()

	e.UpdateExtractContent(sess.Id, "X")
	if got := e.GetExtractContent(sess.Id); got != "X" {
		t.Fatalf("got %q, want X", got)
	}
	e.UpdateExtractContent(sess.Id, "Y")
	if got := e.GetExtractContent(sess.Id); got != "Y" {
		t.Errorf("got %q, want Y (overwrite, not merge)", got)
	}

	e.AppendExtractContent(sess.Id, "Z")
	if got := e.GetExtractContent(sess.Id); got != "YZ" {
		t.Errorf("got %q, want YZ after explicit append", got)
	}
}

func TestDeleteSessionClearsEverything(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())
	sess := e.CreateSession()
	e.UpdateContextPrompt(sess.Id, "ctx")
	e.UpdateExtractContent(sess.Id, "doc")

	e.DeleteSession(sess.Id)

	if e.CurrentSession() != nil {
		t.Error("deleting the current session must clear the pointer")
	}
	if got := e.Messages(sess.Id); len(got) != 0 {
		t.Error("messages should be gone")
	}
	if got := e.GetExtractContent(sess.Id); got != "" {
		t.Error("extracted content should be gone")
	}
	if got := e.GetContextPrompt(sess.Id); got != "" {
		t.Error("context prompt should be gone")
	}
}

func TestSessionTitleDerivedFromFirstMessage(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())
	sess := e.CreateSession()

	if _, err := e.SendMessage(context.Background(), "Explain performance reviews", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Title != "Explain performance reviews" {
		t.Errorf("Title = %q", sess.Title)
	}

	if _, err := e.SendMessage(context.Background(), "Another question", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Title != "Explain performance reviews" {
		t.Error("title must not change after the first user message")
	}
}

func TestSessionTitleTruncatesOnRuneBoundary(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())
	sess := e.CreateSession()

	text := strings.Repeat("ü", constant.SessionTitleMaxLen+10)
	if _, err := e.SendMessage(context.Background(), text, "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !utf8.ValidString(sess.Title) {
		t.Errorf("title is not valid UTF-8: %q", sess.Title)
	}
	if got := utf8.RuneCountInString(sess.Title); got != constant.SessionTitleMaxLen {
		t.Errorf("title rune count = %d, want %d", got, constant.SessionTitleMaxLen)
	}
}

func TestSetSessionModelRejectsUnknown(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())
	sess := e.CreateSession()

	e.SetSessionModel(sess.Id, "modelB")
	if sess.ModelId != "modelB" {
		t.Fatalf("ModelId = %q, want modelB", sess.ModelId)
	}
	e.SetSessionModel(sess.Id, "made-up")
	if sess.ModelId != "modelB" {
		t.Error("unknown model id must keep the last valid value")
	}
}

func TestRestoreSessionPreservesOrder(t *testing.T) {
	e := newTestEngine(t, newFakeDispatcher())
	sessId := uuid.New()
	sess := &entity.ChatSession{Id: sessId, UserId: e.UserId(), Title: "restored"}

	var msgs []*entity.ChatMessage
	for _, chat := range []string{"q1", "a1", "q2", "a2", "q3", "a3"} {
		role := entity.RoleUser
		if strings.HasPrefix(chat, "a") {
			role = entity.RoleAssistant
		}
		msgs = append(msgs, &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: sessId,
			Side:          constant.ChatSideMain,
			Role:          role,
			Chat:          chat,
		})
	}

	e.RestoreSession(sess, msgs)

	restored := e.Messages(sessId)
	if len(restored) != len(msgs) {
		t.Fatalf("got %d messages, want %d", len(restored), len(msgs))
	}
	for i, m := range restored {
		if m.Chat != msgs[i].Chat || m.Role != msgs[i].Role {
			t.Errorf("position %d: got (%s, %q), want (%s, %q)", i, m.Role, m.Chat, msgs[i].Role, msgs[i].Chat)
		}
	}
	if e.CurrentSession() != nil {
		t.Error("restore must not select the restored session")
	}
}

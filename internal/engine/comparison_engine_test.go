package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/internal/pkg/logger"
	"ai-traininglab-be/pkg/dispatch"
	"ai-traininglab-be/pkg/llm"
	"ai-traininglab-be/pkg/registry"

	"github.com/google/uuid"
)

func newTestComparison(t *testing.T, d dispatch.Dispatcher) (*SessionEngine, *ComparisonEngine) {
	t.Helper()
	reg := registry.New([]registry.Model{
		{Id: "modelA", DisplayName: "Model A", Provider: "openai", Upstream: "a"},
		{Id: "modelB", DisplayName: "Model B", Provider: "openai", Upstream: "b"},
	})
	e := New(uuid.New(), reg, d, newTestExtractStore(), nil, logger.NopLogger{}, "modelA")
	return e, NewComparison(e, reg, "modelA", "modelB")
}

func TestToggleSpawnsFreshComparisonSession(t *testing.T) {
	e, c := newTestComparison(t, newFakeDispatcher())
	existing := e.CreateSession()

	if on := c.ToggleCompareMode(); !on {
		t.Fatal("toggle should turn compare mode on")
	}

	current := e.CurrentSession()
	if current == nil || !current.IsComparison {
		t.Fatal("toggling on must create and select a comparison session")
	}
	if current.Id == existing.Id {
		t.Error("existing session must not be converted in place")
	}
	if existing.IsComparison {
		t.Error("existing session must stay untouched")
	}

	if on := c.ToggleCompareMode(); on {
		t.Error("second toggle should turn compare mode off")
	}
	if len(e.Sessions()) != 2 {
		t.Errorf("toggling off must not create sessions, got %d", len(e.Sessions()))
	}
}

func TestSetSideModelKeepsLastValid(t *testing.T) {
	_, c := newTestComparison(t, newFakeDispatcher())

	c.SetLeftModel("modelB")
	c.SetRightModel("nope")

	left, right := c.Models()
	if left != "modelB" {
		t.Errorf("left = %q, want modelB", left)
	}
	if right != "modelB" {
		t.Errorf("right = %q, want the default modelB (unknown id rejected)", right)
	}
}

func TestJointSendAppendsBothSides(t *testing.T) {
	d := newFakeDispatcher()
	d.replies["modelA"] = "left answer"
	d.replies["modelB"] = "right answer"
	e, c := newTestComparison(t, d)
	c.ToggleCompareMode()
	sess := e.CurrentSession()

	if err := c.SendComparisonMessage(context.Background(), "hi", "modelA", "modelB", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	left, right := c.GetComparisonMessages(sess.Id)
	if len(left) != 2 || len(right) != 2 {
		t.Fatalf("left=%d right=%d messages, want 2 each", len(left), len(right))
	}
	if left[0].Role != entity.RoleUser || right[0].Role != entity.RoleUser {
		t.Error("both threads start with the user message")
	}
	if left[0].Chat != right[0].Chat {
		t.Error("joint send appends the same user text to both threads")
	}
	if left[1].Chat != "left answer" || right[1].Chat != "right answer" {
		t.Errorf("assistant replies = (%q, %q)", left[1].Chat, right[1].Chat)
	}
}

func TestJointSendOneSideFails(t *testing.T) {
	d := newFakeDispatcher()
	d.replies["modelA"] = "left answer"
	d.errs["modelB"] = &llm.StatusError{StatusCode: 401, Body: "bad key"}
	e, c := newTestComparison(t, d)
	c.ToggleCompareMode()
	sess := e.CurrentSession()

	if err := c.SendComparisonMessage(context.Background(), "hi", "modelA", "modelB", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	left, right := c.GetComparisonMessages(sess.Id)

	userCount := func(msgs []*entity.ChatMessage) int {
		n := 0
		for _, m := range msgs {
			if m.Role == entity.RoleUser {
				n++
			}
		}
		return n
	}
	if userCount(left) != userCount(right) {
		t.Error("user-message counts must match even when one side fails")
	}
	if left[1].IsError {
		t.Error("left side succeeded, must not be error-marked")
	}
	if !right[1].IsError || right[1].ErrorKind != string(dispatch.KindAuthentication) {
		t.Errorf("right side should carry an authentication-classified error, got %+v", right[1])
	}
}

func TestSingleSideSend(t *testing.T) {
	d := newFakeDispatcher()
	d.replies["modelA"] = "only left"
	e, c := newTestComparison(t, d)
	c.ToggleCompareMode()
	sess := e.CurrentSession()

	if err := c.SendComparisonMessage(context.Background(), "hi", "modelA", "", "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	left, right := c.GetComparisonMessages(sess.Id)
	if len(left) != 2 {
		t.Errorf("left = %d messages, want 2", len(left))
	}
	if len(right) != 0 {
		t.Errorf("right = %d messages, want 0 (side not addressed)", len(right))
	}
}

func TestComparisonSendValidation(t *testing.T) {
	_, c := newTestComparison(t, newFakeDispatcher())
	c.ToggleCompareMode()

	if err := c.SendComparisonMessage(context.Background(), "  ", "modelA", "modelB", "", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty text: err = %v, want ErrEmptyMessage", err)
	}
	if err := c.SendComparisonMessage(context.Background(), "hi", "", "", "", nil); !errors.Is(err, ErrNoModelSelected) {
		t.Errorf("no sides: err = %v, want ErrNoModelSelected", err)
	}
	// Attachments alone satisfy the precondition.
	if err := c.SendComparisonMessage(context.Background(), "", "modelA", "", "", []string{"report.pdf"}); err != nil {
		t.Errorf("attachment-only send should pass validation, got %v", err)
	}
}

func TestGetComparisonMessagesNonComparisonSession(t *testing.T) {
	e, c := newTestComparison(t, newFakeDispatcher())
	sess := e.CreateSession()

	left, right := c.GetComparisonMessages(sess.Id)
	if left == nil || right == nil {
		t.Fatal("projection must return empty slices, not nil")
	}
	if len(left) != 0 || len(right) != 0 {
		t.Error("non-comparison session must project empty threads")
	}

	left, right = c.GetComparisonMessages(uuid.New())
	if len(left) != 0 || len(right) != 0 {
		t.Error("unknown session must project empty threads")
	}
}

func TestJointSendConcurrentSidesDoNotBlockEachOther(t *testing.T) {
	d := newFakeDispatcher()
	gate := make(chan struct{})
	d.block["modelB"] = gate
	d.replies["modelA"] = "fast"
	d.replies["modelB"] = "slow"
	e, c := newTestComparison(t, d)
	c.ToggleCompareMode()
	sess := e.CurrentSession()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.SendComparisonMessage(context.Background(), "hi", "modelA", "modelB", "", nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}()

	// Both dispatches must start even though the right side is stuck.
	d.waitForCalls(t, 2)

	// The fast side's answer lands while the slow side is still pending.
	deadline := time.Now().Add(2 * time.Second)
	for {
		left, _ := c.GetComparisonMessages(sess.Id)
		if len(left) == 2 && left[1].Chat == "fast" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("left answer should render before the right side resolves")
		}
		time.Sleep(time.Millisecond)
	}

	close(gate)
	<-done

	_, right := c.GetComparisonMessages(sess.Id)
	if len(right) != 2 || right[1].Chat != "slow" {
		t.Errorf("right thread = %d messages", len(right))
	}
}

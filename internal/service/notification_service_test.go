package service

import (
	"strings"
	"testing"

	"ai-traininglab-be/pkg/events"

	"github.com/google/uuid"
)

func TestNotificationTextDispatchFailed(t *testing.T) {
	event := events.NewDispatchFailed(uuid.New(), uuid.New(), "gpt-4o", "timeout")

	title, message, ok := notificationText(event)
	if !ok {
		t.Fatal("dispatch failures must produce a notification")
	}
	if title != "Model call failed" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(message, "gpt-4o") || !strings.Contains(message, "timeout") {
		t.Errorf("message missing model or kind: %q", message)
	}
}

func TestNotificationTextUploadCounts(t *testing.T) {
	event := events.NewUploadCompleted(uuid.New(), uuid.New(), 3, 0)
	title, message, ok := notificationText(event)
	if !ok {
		t.Fatal("upload completion must produce a notification")
	}
	if title != "Upload finished" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(message, "3 file(s)") {
		t.Errorf("message = %q", message)
	}

	event = events.NewUploadCompleted(uuid.New(), uuid.New(), 2, 1)
	title, message, ok = notificationText(event)
	if !ok || title != "Upload finished with errors" {
		t.Errorf("partial failure title = %q ok=%v", title, ok)
	}
	if !strings.Contains(message, "1 failed") {
		t.Errorf("message = %q", message)
	}
}

func TestNotificationTextIgnoresLifecycleEvents(t *testing.T) {
	event := events.NewSessionCreated(uuid.New(), uuid.New(), false)
	if _, _, ok := notificationText(event); ok {
		t.Error("session lifecycle events should not notify the user")
	}
}

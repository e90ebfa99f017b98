package constant

import "time"

const (
	// Thread sides inside a chat session. Regular sessions only use
	// SideMain; comparison sessions keep two independent threads.
	ChatSideMain  = "main"
	ChatSideLeft  = "left"
	ChatSideRight = "right"

	// HistoryWindowMessages bounds how many recent messages are sent to
	// the model on each dispatch.
	HistoryWindowMessages = 10

	// MaxUploadFileSize is the per-file ceiling for the ingestion
	// pipeline. Files above it are rejected individually, the rest of
	// the batch is still accepted.
	MaxUploadFileSize = 10 * 1024 * 1024

	// InitialAssistantGreeting seeds every new session with one
	// assistant message.
	InitialAssistantGreeting = "Hi, how can I help you today?"

	// UntitledSession is the display name before the first user message
	// derives a real title.
	UntitledSession = "Unnamed session"

	// SessionTitleMaxLen caps titles derived from the first message.
	SessionTitleMaxLen = 60

	DefaultDispatchTimeout = 120 * time.Second
)

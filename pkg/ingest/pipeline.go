package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"ai-traininglab-be/internal/constant"
	"ai-traininglab-be/pkg/filehost"
)

// ValidationError marks a file rejected before any network call is made.
type ValidationError struct {
	FileName string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("file %q rejected: %s", e.FileName, e.Reason)
}

// PendingFile is a file accepted into the pipeline but not yet uploaded.
type PendingFile struct {
	Name     string
	MimeType string
	Size     int64
	Content  []byte
}

// UploadedFile is the outcome for one file that made it through the batch.
type UploadedFile struct {
	Name string
	URL  string
}

// BatchResult collects per-file outcomes of an Upload call. Failures do not
// abort the batch.
type BatchResult struct {
	Uploaded []UploadedFile
	Failed   []error
}

// Host is the slice of the file-hosting client the pipeline needs.
type Host interface {
	Upload(ctx context.Context, fileName string, content io.Reader) (*filehost.UploadResult, error)
	Extract(ctx context.Context, url string) (*filehost.ExtractResult, error)
}

// ExtractSink receives the concatenated text of a finished batch.
type ExtractSink interface {
	Set(sessionId uuid.UUID, content string) error
}

// Pipeline holds a pending file list per upload round. Files above the size
// ceiling are rejected at AddFiles time; the rest of the batch is kept.
type Pipeline struct {
	host Host
	sink ExtractSink

	mu      sync.Mutex
	pending []PendingFile
}

func NewPipeline(host Host, sink ExtractSink) *Pipeline {
	return &Pipeline{host: host, sink: sink}
}

// AddFiles validates each file independently and appends the accepted ones to
// the pending list. Rejections are returned as ValidationErrors; accepted
// files stay accepted regardless of how many siblings were rejected.
func (p *Pipeline) AddFiles(files []PendingFile) []error {
	var rejected []error
	var accepted []PendingFile
	for _, f := range files {
		if f.Size > constant.MaxUploadFileSize {
			rejected = append(rejected, &ValidationError{
				FileName: f.Name,
				Reason:   fmt.Sprintf("size %d exceeds %d byte limit", f.Size, constant.MaxUploadFileSize),
			})
			continue
		}
		if strings.TrimSpace(f.Name) == "" {
			rejected = append(rejected, &ValidationError{FileName: f.Name, Reason: "missing file name"})
			continue
		}
		accepted = append(accepted, f)
	}

	p.mu.Lock()
	p.pending = append(p.pending, accepted...)
	p.mu.Unlock()
	return rejected
}

// Pending returns a copy of the current pending list.
func (p *Pipeline) Pending() []PendingFile {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PendingFile, len(p.pending))
	copy(out, p.pending)
	return out
}

// RemoveFile drops one pending file by position. Out-of-range indexes are
// ignored.
func (p *Pipeline) RemoveFile(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.pending) {
		return
	}
	p.pending = append(p.pending[:index], p.pending[index+1:]...)
}

// ClearFiles empties the pending list. Already-uploaded content is untouched.
func (p *Pipeline) ClearFiles() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
}

// Upload pushes every pending file to the hosting service, extracts text from
// PDF documents, and writes the concatenated extraction into the session's
// content entry. The batch is best-effort: a failed file is recorded and the
// rest continue. The pending list is consumed either way.
func (p *Pipeline) Upload(ctx context.Context, sessionId uuid.UUID) (*BatchResult, error) {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()

	result := &BatchResult{}
	var extracted strings.Builder

	for _, f := range batch {
		up, err := p.host.Upload(ctx, f.Name, bytes.NewReader(f.Content))
		if err != nil {
			result.Failed = append(result.Failed, fmt.Errorf("upload %q: %w", f.Name, err))
			continue
		}
		result.Uploaded = append(result.Uploaded, UploadedFile{Name: up.FileName, URL: up.URL})

		if f.MimeType != "application/pdf" {
			continue
		}
		ex, err := p.host.Extract(ctx, up.URL)
		if err != nil {
			result.Failed = append(result.Failed, fmt.Errorf("extract %q: %w", f.Name, err))
			continue
		}
		if ex.ExtractedText == "" {
			continue
		}
		if extracted.Len() > 0 {
			extracted.WriteString("\n\n")
		}
		extracted.WriteString(fmt.Sprintf("--- %s ---\n%s", up.FileName, ex.ExtractedText))
	}

	if extracted.Len() > 0 {
		if err := p.sink.Set(sessionId, extracted.String()); err != nil {
			return result, fmt.Errorf("store extracted content: %w", err)
		}
	}
	return result, nil
}

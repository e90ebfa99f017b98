package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"ai-traininglab-be/pkg/filehost"
)

type fakeHost struct {
	uploads    []string
	extracts   []string
	failUpload map[string]bool
	texts      map[string]string
}

func newFakeHost() *fakeHost {
	return &fakeHost{failUpload: map[string]bool{}, texts: map[string]string{}}
}

func (h *fakeHost) Upload(_ context.Context, fileName string, _ io.Reader) (*filehost.UploadResult, error) {
	if h.failUpload[fileName] {
		return nil, errors.New("host unavailable")
	}
	h.uploads = append(h.uploads, fileName)
	return &filehost.UploadResult{URL: "https://files.local/" + fileName, FileName: fileName}, nil
}

func (h *fakeHost) Extract(_ context.Context, url string) (*filehost.ExtractResult, error) {
	h.extracts = append(h.extracts, url)
	text := h.texts[url]
	return &filehost.ExtractResult{ExtractedText: text, CharCount: len(text)}, nil
}

type fakeSink struct {
	content map[uuid.UUID]string
}

func newFakeSink() *fakeSink {
	return &fakeSink{content: map[uuid.UUID]string{}}
}

func (s *fakeSink) Set(sessionId uuid.UUID, content string) error {
	s.content[sessionId] = content
	return nil
}

func pdf(name string, size int64) PendingFile {
	return PendingFile{Name: name, MimeType: "application/pdf", Size: size, Content: []byte("%PDF-")}
}

func TestAddFilesRejectsOversizeKeepsRest(t *testing.T) {
	p := NewPipeline(newFakeHost(), newFakeSink())

	rejected := p.AddFiles([]PendingFile{
		pdf("big.pdf", 15*1024*1024),
		pdf("small.pdf", 2*1024*1024),
	})

	if len(rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(rejected))
	}
	var vErr *ValidationError
	if !errors.As(rejected[0], &vErr) {
		t.Fatalf("expected ValidationError, got %T", rejected[0])
	}
	if vErr.FileName != "big.pdf" {
		t.Errorf("rejected wrong file: %s", vErr.FileName)
	}

	pending := p.Pending()
	if len(pending) != 1 || pending[0].Name != "small.pdf" {
		t.Fatalf("expected small.pdf pending, got %+v", pending)
	}
}

func TestAddFilesAtExactLimitAccepted(t *testing.T) {
	p := NewPipeline(newFakeHost(), newFakeSink())
	if rejected := p.AddFiles([]PendingFile{pdf("edge.pdf", 10*1024*1024)}); len(rejected) != 0 {
		t.Fatalf("file at the limit should be accepted, got %v", rejected)
	}
}

func TestRemoveFileAndClearFiles(t *testing.T) {
	p := NewPipeline(newFakeHost(), newFakeSink())
	p.AddFiles([]PendingFile{pdf("a.pdf", 10), pdf("b.pdf", 10), pdf("c.pdf", 10)})

	p.RemoveFile(1)
	pending := p.Pending()
	if len(pending) != 2 || pending[0].Name != "a.pdf" || pending[1].Name != "c.pdf" {
		t.Fatalf("unexpected pending after remove: %+v", pending)
	}

	p.RemoveFile(99)
	p.RemoveFile(-1)
	if len(p.Pending()) != 2 {
		t.Fatal("out-of-range remove should be a no-op")
	}

	p.ClearFiles()
	if len(p.Pending()) != 0 {
		t.Fatal("expected empty pending list after clear")
	}
}

func TestUploadWritesConcatenatedExtractionToSink(t *testing.T) {
	host := newFakeHost()
	host.texts["https://files.local/a.pdf"] = "alpha text"
	host.texts["https://files.local/b.pdf"] = "beta text"
	sink := newFakeSink()
	p := NewPipeline(host, sink)
	sessionId := uuid.New()

	p.AddFiles([]PendingFile{pdf("a.pdf", 10), pdf("b.pdf", 10)})
	result, err := p.Upload(context.Background(), sessionId)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if len(result.Uploaded) != 2 || len(result.Failed) != 0 {
		t.Fatalf("unexpected batch result: %+v", result)
	}

	got := sink.content[sessionId]
	if !strings.Contains(got, "alpha text") || !strings.Contains(got, "beta text") {
		t.Fatalf("extraction missing content: %q", got)
	}
	if strings.Index(got, "alpha text") > strings.Index(got, "beta text") {
		t.Error("extractions should keep batch order")
	}
	if len(p.Pending()) != 0 {
		t.Error("pending list should be consumed by upload")
	}
}

func TestUploadBestEffortCollectsFailures(t *testing.T) {
	host := newFakeHost()
	host.failUpload["bad.pdf"] = true
	host.texts["https://files.local/good.pdf"] = "good text"
	sink := newFakeSink()
	p := NewPipeline(host, sink)
	sessionId := uuid.New()

	p.AddFiles([]PendingFile{pdf("bad.pdf", 10), pdf("good.pdf", 10)})
	result, err := p.Upload(context.Background(), sessionId)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if len(result.Uploaded) != 1 || result.Uploaded[0].Name != "good.pdf" {
		t.Fatalf("expected good.pdf uploaded, got %+v", result.Uploaded)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failed))
	}
	if !strings.Contains(sink.content[sessionId], "good text") {
		t.Error("surviving file's extraction should still land")
	}
}

func TestUploadSkipsExtractionForNonPDF(t *testing.T) {
	host := newFakeHost()
	sink := newFakeSink()
	p := NewPipeline(host, sink)
	sessionId := uuid.New()

	p.AddFiles([]PendingFile{{Name: "photo.png", MimeType: "image/png", Size: 10, Content: []byte{1}}})
	result, err := p.Upload(context.Background(), sessionId)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if len(result.Uploaded) != 1 {
		t.Fatalf("expected upload to succeed, got %+v", result)
	}
	if len(host.extracts) != 0 {
		t.Error("non-PDF files should not hit the extraction endpoint")
	}
	if _, ok := sink.content[sessionId]; ok {
		t.Error("no extraction should be written without PDF text")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{FileName: "big.pdf", Reason: "too large"}
	want := fmt.Sprintf("file %q rejected: too large", "big.pdf")
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

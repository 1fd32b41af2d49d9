package llm

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

type memorySink struct {
	entries []LogEntry
	err     error
}

func (m *memorySink) Append(_ context.Context, entry LogEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestLogging_AppendsToSink(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: "hi",
		Usage:   Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	})
	sink := &memorySink{}

	p := WithLogging(mock, quietLogger(), sink)
	ctx := WithPurpose(context.Background(), PurposeGeneration)
	if _, err := p.Complete(ctx, Request{Model: "test-model"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sink.entries))
	}
	e := sink.entries[0]
	if e.Provider != ProviderMock {
		t.Errorf("unexpected provider %q", e.Provider)
	}
	if e.Purpose != PurposeGeneration {
		t.Errorf("unexpected purpose %q", e.Purpose)
	}
	if e.PromptTokens != 10 || e.CompletionTokens != 5 {
		t.Errorf("unexpected token counts %+v", e)
	}
	if !e.Success {
		t.Error("expected success entry")
	}
}

func TestLogging_RecordsFailures(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Err: &NetworkError{Provider: ProviderMock, Err: errors.New("down")},
	})
	sink := &memorySink{}

	p := WithLogging(mock, quietLogger(), sink)
	if _, err := p.Complete(context.Background(), Request{Model: "m"}); err == nil {
		t.Fatal("expected an error")
	}

	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sink.entries))
	}
	if sink.entries[0].Success {
		t.Error("expected failure entry")
	}
	if sink.entries[0].Error == "" {
		t.Error("expected error text recorded")
	}
}

func TestLogging_SinkFailureDoesNotPropagate(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: "ok"})
	sink := &memorySink{err: errors.New("disk full")}

	p := WithLogging(mock, quietLogger(), sink)
	resp, err := p.Complete(context.Background(), Request{Model: "m"})
	if err != nil {
		t.Fatalf("sink failure leaked into request path: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("unexpected content %q", resp.Content)
	}
}

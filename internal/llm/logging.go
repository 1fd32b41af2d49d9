package llm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestLog receives one entry per completion round trip. The history
// store implements it; tests use in-memory fakes.
type RequestLog interface {
	Append(ctx context.Context, entry LogEntry) error
}

// LogEntry describes one completion round trip for the request log.
type LogEntry struct {
	Provider         ProviderID
	Model            string
	Purpose          Purpose
	LatencyMs        int64
	PromptTokens     int
	CompletionTokens int
	Success          bool
	Error            string
}

// LoggingProvider records every completion call through logrus and,
// when a RequestLog is attached, appends it to the request history.
type LoggingProvider struct {
	inner Provider
	log   *logrus.Logger
	sink  RequestLog
}

// WithLogging wraps a Provider with request logging. sink may be nil.
func WithLogging(p Provider, log *logrus.Logger, sink RequestLog) Provider {
	return &LoggingProvider{inner: p, log: log, sink: sink}
}

func (l *LoggingProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Complete(ctx, req)

	entry := LogEntry{
		Provider:  l.inner.ID(),
		Model:     req.Model,
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		entry.PromptTokens = resp.Usage.PromptTokens
		entry.CompletionTokens = resp.Usage.CompletionTokens
		if resp.Model != "" {
			entry.Model = resp.Model
		}
	}
	if err != nil {
		entry.Error = err.Error()
	}

	fields := logrus.Fields{
		"provider":   entry.Provider,
		"model":      entry.Model,
		"purpose":    entry.Purpose,
		"latency_ms": entry.LatencyMs,
		"tokens_in":  entry.PromptTokens,
		"tokens_out": entry.CompletionTokens,
	}
	if err != nil {
		l.log.WithFields(fields).WithError(err).Warn("llm request failed")
	} else {
		l.log.WithFields(fields).Debug("llm request completed")
	}

	// History failures are logged, never propagated into the request path.
	if l.sink != nil {
		if logErr := l.sink.Append(ctx, entry); logErr != nil {
			l.log.WithError(logErr).Warn("failed to append llm request history")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ID() ProviderID { return l.inner.ID() }

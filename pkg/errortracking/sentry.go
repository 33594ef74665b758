package errortracking

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryProvider forwards captured events to Sentry.
type SentryProvider struct {
	hub *sentry.Hub
}

// NewSentryProvider initializes the Sentry SDK and returns a provider bound
// to the current hub.
func NewSentryProvider(cfg Config) (*SentryProvider, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		Debug:            cfg.Debug,
		SampleRate:       cfg.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	return &SentryProvider{hub: sentry.CurrentHub()}, nil
}

func (s *SentryProvider) hubFor(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return s.hub
}

func (s *SentryProvider) CaptureError(ctx context.Context, err error, severity Severity, extra map[string]interface{}) {
	if err == nil {
		return
	}
	event := sentry.NewEvent()
	event.Level = sentryLevel(severity)
	event.Message = err.Error()
	event.Exception = []sentry.Exception{{
		Value:      err.Error(),
		Type:       fmt.Sprintf("%T", err),
		Stacktrace: sentry.ExtractStacktrace(err),
	}}
	event.Extra = extra
	s.hubFor(ctx).CaptureEvent(event)
}

func (s *SentryProvider) CaptureMessage(ctx context.Context, message string, severity Severity, extra map[string]interface{}) {
	if message == "" {
		return
	}
	event := sentry.NewEvent()
	event.Level = sentryLevel(severity)
	event.Message = message
	event.Extra = extra
	s.hubFor(ctx).CaptureEvent(event)
}

func (s *SentryProvider) CapturePanic(ctx context.Context, recovered interface{}, stack []byte, extra map[string]interface{}) {
	if recovered == nil {
		return
	}
	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	event.Message = fmt.Sprintf("panic: %v", recovered)
	event.Exception = []sentry.Exception{{
		Value: fmt.Sprintf("%v", recovered),
		Type:  "panic",
	}}
	event.Extra = map[string]interface{}{}
	for k, v := range extra {
		event.Extra[k] = v
	}
	if stack != nil {
		event.Extra["stack_trace"] = string(stack)
	}
	s.hubFor(ctx).CaptureEvent(event)
}

func (s *SentryProvider) Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

func (s *SentryProvider) Close() error {
	sentry.Flush(2 * time.Second)
	return nil
}

func sentryLevel(severity Severity) sentry.Level {
	switch severity {
	case SeverityWarning:
		return sentry.LevelWarning
	case SeverityInfo:
		return sentry.LevelInfo
	default:
		return sentry.LevelError
	}
}

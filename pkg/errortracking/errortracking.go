package errortracking

import (
	"context"
	"fmt"
	"time"
)

// Severity classifies captured events.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Provider receives errors, messages and panics captured by the logger.
type Provider interface {
	CaptureError(ctx context.Context, err error, severity Severity, extra map[string]interface{})
	CaptureMessage(ctx context.Context, message string, severity Severity, extra map[string]interface{})
	CapturePanic(ctx context.Context, recovered interface{}, stack []byte, extra map[string]interface{})

	// Flush blocks until buffered events are delivered or the timeout expires.
	Flush(timeout time.Duration) bool
	Close() error
}

// Config selects and configures a provider.
type Config struct {
	Enabled     bool    `mapstructure:"enabled"`
	Provider    string  `mapstructure:"provider"` // sentry, noop
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	Release     string  `mapstructure:"release"`
	Debug       bool    `mapstructure:"debug"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// NewProvider builds a provider from configuration.
func NewProvider(cfg Config) (Provider, error) {
	if !cfg.Enabled {
		return NoOp{}, nil
	}
	switch cfg.Provider {
	case "sentry":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("sentry provider requires a DSN")
		}
		return NewSentryProvider(cfg)
	case "noop", "":
		return NoOp{}, nil
	default:
		return nil, fmt.Errorf("unknown error tracking provider: %q", cfg.Provider)
	}
}

// NoOp discards every event. Used when error tracking is disabled.
type NoOp struct{}

func (NoOp) CaptureError(context.Context, error, Severity, map[string]interface{}) {}
func (NoOp) CaptureMessage(context.Context, string, Severity, map[string]interface{}) {
}
func (NoOp) CapturePanic(context.Context, interface{}, []byte, map[string]interface{}) {}
func (NoOp) Flush(time.Duration) bool                                                  { return true }
func (NoOp) Close() error                                                              { return nil }

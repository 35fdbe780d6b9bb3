// Package reasoning prints an agent's structured output for humans when
// show_reasoning is set.
package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"macro-picks/internal/interfaces"
	"macro-picks/internal/trace"
)

const bannerWidth = 48

// Sink writes reasoning through a zap logger.
type Sink struct {
	log *zap.Logger
}

var _ interfaces.ReasoningSink = (*Sink)(nil)

// NewSink wraps an existing logger. Tests pass an observer-backed one.
func NewSink(log *zap.Logger) *Sink {
	return &Sink{log: log}
}

// NewConsoleSink logs to w with a bare console encoder so the banner and JSON
// stay readable. The CLI passes stderr; stdout carries the state.
func NewConsoleSink(w io.Writer) *Sink {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zapcore.InfoLevel)
	return NewSink(zap.New(core))
}

// Emit prints a banner naming the agent followed by payload as indented JSON.
func (s *Sink) Emit(ctx context.Context, agentName string, payload any) error {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reasoning for %s: %w", agentName, err)
	}

	trace.AddEvent(ctx, "agent_reasoning",
		attribute.String("agent", agentName),
		attribute.Int("bytes", len(body)),
	)

	rule := strings.Repeat("=", bannerWidth)
	s.log.Info(rule)
	s.log.Info(banner(agentName), zap.String("agent", agentName))
	s.log.Info(rule)
	s.log.Info(string(body))
	s.log.Info(rule)
	return nil
}

// Close flushes the underlying logger. Syncing a terminal stderr can fail
// harmlessly on some platforms, so callers usually ignore the error.
func (s *Sink) Close() error {
	return s.log.Sync()
}

func banner(name string) string {
	pad := (bannerWidth - len(name)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + name
}

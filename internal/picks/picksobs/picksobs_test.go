package picksobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"macro-picks/internal/trace"
	"macro-picks/internal/types"
)

type stubSynth struct {
	patch *types.Patch
	err   error
	calls int
}

func (s *stubSynth) Run(ctx context.Context, state types.State) (*types.Patch, error) {
	s.calls++
	return s.patch, s.err
}

func TestWrapPassesThrough(t *testing.T) {
	want := &types.Patch{Data: map[string]any{
		types.KeyMacroNewsPicks: types.PicksOutput{Picks: []types.Pick{{Company: "A"}}},
	}}
	inner := &stubSynth{patch: want}

	got, err := Wrap(inner).Run(context.Background(), types.State{})
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, 1, inner.calls)
}

func TestWrapReturnsError(t *testing.T) {
	boom := errors.New("boom")
	inner := &stubSynth{err: boom}

	got, err := Wrap(inner).Run(context.Background(), types.State{})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
}

func TestWrapRecordsRunSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	trace.InitWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	defer func() { _ = trace.Shutdown(context.Background()) }()

	inner := &stubSynth{patch: &types.Patch{Data: map[string]any{
		types.KeyMacroNewsPicks: types.PicksOutput{Picks: []types.Pick{{Company: "A"}, {Company: "B"}}},
	}}}
	_, err := Wrap(inner).Run(context.Background(), types.State{})
	require.NoError(t, err)

	_, err = Wrap(&stubSynth{err: errors.New("boom")}).Run(context.Background(), types.State{})
	require.Error(t, err)

	ended := sr.Ended()
	require.Len(t, ended, 2)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "picks.Run", ended[0].Name())
	assert.Equal(t, int64(2), attrs["pick_count"].AsInt64())
	assert.NotEmpty(t, attrs["run_id"].AsString())
	assert.Contains(t, attrs, attribute.Key("duration_ms"))
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "boom", ended[1].Status().Description)
}

package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentcore/event"
)

func TestTickerSource_EmitsDefaultEnvelopes(t *testing.T) {
	src := NewTickerSource("clock", 5*time.Millisecond, nil)
	assert.Equal(t, "clock", src.Name())

	ctx, cancel := context.WithCancel(context.Background())
	var got []event.Envelope
	emit := func(env event.Envelope) error {
		got = append(got, env)
		if len(got) == 3 {
			cancel()
		}
		return nil
	}

	require.NoError(t, src.Run(ctx, emit))
	require.Len(t, got, 3)
	assert.Equal(t, "tick", got[0].Name)
	assert.Equal(t, "clock", got[0].Source)
}

func TestTickerSource_CustomGenerator(t *testing.T) {
	src := NewTickerSource("heartbeat", 5*time.Millisecond, func(ts time.Time) event.Envelope {
		return event.NewEnvelope("pulse", "heartbeat", ts.Unix())
	})

	ctx, cancel := context.WithCancel(context.Background())
	var first event.Envelope
	emit := func(env event.Envelope) error {
		first = env
		cancel()
		return nil
	}

	require.NoError(t, src.Run(ctx, emit))
	assert.Equal(t, "pulse", first.Name)
}

func TestTickerSource_MaxTicks(t *testing.T) {
	src := NewTickerSource("clock", time.Millisecond, nil).WithMaxTicks(2)

	var count int
	require.NoError(t, src.Run(context.Background(), func(event.Envelope) error {
		count++
		return nil
	}))
	assert.Equal(t, 2, count)
}

func TestTickerSource_StopsWhenEmitRejects(t *testing.T) {
	src := NewTickerSource("clock", time.Millisecond, nil)

	emit := func(env event.Envelope) error { return ErrNotRunning }

	done := make(chan error, 1)
	go func() { done <- src.Run(context.Background(), emit) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("source did not stop after emit rejection")
	}
}

func TestChannelSource_FinishesOnClose(t *testing.T) {
	ch := make(chan event.Envelope, 2)
	ch <- event.NewEnvelope("a", "s", nil)
	ch <- event.NewEnvelope("b", "s", nil)
	close(ch)

	src := NewChannelSource("feed", ch)
	assert.Equal(t, "feed", src.Name())

	var names []string
	emit := func(env event.Envelope) error {
		names = append(names, env.Name)
		return nil
	}

	require.NoError(t, src.Run(context.Background(), emit))
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestChannelSource_StopsOnContextCancel(t *testing.T) {
	ch := make(chan event.Envelope)
	src := NewChannelSource("feed", ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, src.Run(ctx, func(event.Envelope) error { return nil }))
}

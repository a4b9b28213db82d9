package event

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tempReading struct {
	Celsius float64
}

type motionDetected struct {
	Zone string
}

// -------------------- Broadcast Tests --------------------

func TestSend_RegistrationOrder(t *testing.T) {
	b := NewBus()

	for i := 0; i < 3; i++ {
		idx := i
		err := Register(b, func(ev tempReading) (int, error) { return idx, nil })
		require.NoError(t, err)
	}

	agg, err := Send[tempReading, int](context.Background(), b, tempReading{Celsius: 21.5})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, agg.Responses)
}

func TestSend_NoHandlersIsVacuousSuccess(t *testing.T) {
	b := NewBus()

	agg, err := Send[tempReading, int](context.Background(), b, tempReading{})
	require.NoError(t, err)
	assert.True(t, agg.Empty())
}

func TestSend_PartialFailure(t *testing.T) {
	b := NewBus()

	require.NoError(t, Register(b, func(ev tempReading) (string, error) { return "first", nil }))
	require.NoError(t, Register(b, func(ev tempReading) (string, error) { return "", errors.New("sensor offline") }))
	require.NoError(t, Register(b, func(ev tempReading) (string, error) { return "third", nil }))

	agg, err := Send[tempReading, string](context.Background(), b, tempReading{Celsius: 30})

	// Siblings still ran in order despite the failure in the middle.
	assert.Equal(t, []string{"first", "third"}, agg.Responses)

	var pf *PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, 2, pf.Succeeded)
	require.Len(t, pf.Failures, 1)
	assert.Equal(t, 1, pf.Failures[0].Index)
	assert.ErrorContains(t, pf.Failures[0], "sensor offline")
}

func TestSend_ResponseTypeMismatch(t *testing.T) {
	b := NewBus()

	require.NoError(t, Register(b, func(ev tempReading) (int, error) { return 0, nil }))

	// Second registration with a different response type is rejected.
	err := Register(b, func(ev tempReading) (string, error) { return "", nil })
	assert.ErrorIs(t, err, ErrResponseMismatch)

	// Sending with the wrong declared response type is rejected too.
	_, err = Send[tempReading, string](context.Background(), b, tempReading{})
	assert.ErrorIs(t, err, ErrResponseMismatch)
}

func TestRegisterSuspending_ReceivesContext(t *testing.T) {
	b := NewBus()

	type ctxKey struct{}
	require.NoError(t, RegisterSuspending(b, func(ctx context.Context, ev motionDetected) (string, error) {
		v, _ := ctx.Value(ctxKey{}).(string)
		return v + ":" + ev.Zone, nil
	}))

	ctx := context.WithValue(context.Background(), ctxKey{}, "camera")
	agg, err := Send[motionDetected, string](ctx, b, motionDetected{Zone: "garage"})
	require.NoError(t, err)
	assert.Equal(t, []string{"camera:garage"}, agg.Responses)
}

// -------------------- Targeted Tests --------------------

func TestSendTo_RoutesToSingleEntity(t *testing.T) {
	b := NewBus()

	alpha := b.NewEntity()
	beta := b.NewEntity()

	require.NoError(t, RegisterTargeted(b, alpha, func(ev motionDetected) (string, error) { return "alpha:" + ev.Zone, nil }))
	require.NoError(t, RegisterTargeted(b, beta, func(ev motionDetected) (string, error) { return "beta:" + ev.Zone, nil }))

	out, err := SendTo[motionDetected, string](context.Background(), b, alpha, motionDetected{Zone: "porch"})
	require.NoError(t, err)
	assert.Equal(t, "alpha:porch", out)

	out, err = SendTo[motionDetected, string](context.Background(), b, beta, motionDetected{Zone: "porch"})
	require.NoError(t, err)
	assert.Equal(t, "beta:porch", out)
}

func TestSendTo_NoHandler(t *testing.T) {
	b := NewBus()

	target := b.NewEntity()
	_, err := SendTo[motionDetected, string](context.Background(), b, target, motionDetected{})
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestRegisterTargeted_DuplicateBinding(t *testing.T) {
	b := NewBus()

	target := b.NewEntity()
	require.NoError(t, RegisterTargeted(b, target, func(ev motionDetected) (string, error) { return "", nil }))

	err := RegisterTargeted(b, target, func(ev motionDetected) (string, error) { return "", nil })
	assert.ErrorIs(t, err, ErrDuplicateBinding)

	// Same type for a different entity is fine.
	other := b.NewEntity()
	assert.NoError(t, RegisterTargeted(b, other, func(ev motionDetected) (string, error) { return "", nil }))
}

func TestSendTo_HandlerFailure(t *testing.T) {
	b := NewBus()

	target := b.NewEntity()
	require.NoError(t, RegisterTargeted(b, target, func(ev motionDetected) (string, error) {
		return "", fmt.Errorf("camera unreachable")
	}))

	_, err := SendTo[motionDetected, string](context.Background(), b, target, motionDetected{Zone: "garage"})

	var he *HandlerError
	require.ErrorAs(t, err, &he)
	require.NotNil(t, he.Target)
	assert.Equal(t, target, *he.Target)
	assert.ErrorContains(t, he, "camera unreachable")
}

func TestNewEntity_Monotonic(t *testing.T) {
	b := NewBus()

	first := b.NewEntity()
	second := b.NewEntity()
	third := b.NewEntity()

	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

// -------------------- Dynamic Dispatch Tests --------------------

func TestDispatch_UsesTypedBindings(t *testing.T) {
	b := NewBus()

	var seen []string
	require.NoError(t, Register(b, func(ev motionDetected) (struct{}, error) {
		seen = append(seen, ev.Zone)
		return struct{}{}, nil
	}))

	err := b.Dispatch(context.Background(), motionDetected{Zone: "yard"})
	require.NoError(t, err)
	assert.Equal(t, []string{"yard"}, seen)
}

func TestDispatch_AggregatesFailures(t *testing.T) {
	b := NewBus()

	require.NoError(t, Register(b, func(ev tempReading) (struct{}, error) { return struct{}{}, nil }))
	require.NoError(t, Register(b, func(ev tempReading) (struct{}, error) {
		return struct{}{}, errors.New("boom")
	}))

	err := b.Dispatch(context.Background(), tempReading{})

	var pf *PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, 1, pf.Succeeded)
	assert.Len(t, pf.Failures, 1)
}

func TestDispatchTo_NoHandler(t *testing.T) {
	b := NewBus()

	err := b.DispatchTo(context.Background(), b.NewEntity(), motionDetected{})
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestHandlerCount(t *testing.T) {
	b := NewBus()

	assert.Equal(t, 0, b.HandlerCount(tempReading{}))
	require.NoError(t, Register(b, func(ev tempReading) (int, error) { return 0, nil }))
	require.NoError(t, Register(b, func(ev tempReading) (int, error) { return 0, nil }))
	assert.Equal(t, 2, b.HandlerCount(tempReading{}))
}

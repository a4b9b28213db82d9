package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_Defaults(t *testing.T) {
	env := NewEnvelope("temperature", "sensor", 21.5)

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "temperature", env.Name)
	assert.Equal(t, "sensor", env.Source)
	assert.Equal(t, 21.5, env.Content)
	assert.Equal(t, InstructionNone, env.Instruction)
	assert.False(t, env.IsInstruction())
	assert.Nil(t, env.ExpiresAt)
	assert.False(t, env.Timestamp.IsZero())
}

func TestNewEnvelope_UniqueIDs(t *testing.T) {
	a := NewEnvelope("x", "s", nil)
	b := NewEnvelope("x", "s", nil)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewTerminateEnvelope(t *testing.T) {
	env := NewTerminateEnvelope("controller")

	assert.Equal(t, InstructionTerminate, env.Instruction)
	assert.True(t, env.IsInstruction())
	assert.Equal(t, "controller", env.Source)
}

func TestEnvelope_Expiry(t *testing.T) {
	env := NewEnvelope("tick", "clock", nil).WithLifetime(time.Minute)
	require.NotNil(t, env.ExpiresAt)

	assert.False(t, env.Expired(env.Timestamp))
	assert.False(t, env.Expired(env.Timestamp.Add(59*time.Second)))
	assert.True(t, env.Expired(env.Timestamp.Add(61*time.Second)))
}

func TestEnvelope_NoLifetimeNeverExpires(t *testing.T) {
	env := NewEnvelope("tick", "clock", nil)
	assert.False(t, env.Expired(env.Timestamp.Add(24*time.Hour)))
}

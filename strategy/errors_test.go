package strategy

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	base := errors.New("boom")

	assert.Nil(t, Recoverable(nil))
	assert.Nil(t, Fatal(nil))

	rec := Recoverable(base)
	assert.False(t, IsFatal(rec))
	assert.ErrorIs(t, rec, base)

	fatal := Fatal(base)
	assert.True(t, IsFatal(fatal))
	assert.ErrorIs(t, fatal, base)

	// Unclassified errors are recoverable by default.
	assert.False(t, IsFatal(base))

	// Classification survives wrapping.
	wrapped := fmt.Errorf("while deciding: %w", fatal)
	assert.True(t, IsFatal(wrapped))
}

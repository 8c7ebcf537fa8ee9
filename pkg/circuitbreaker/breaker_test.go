package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestExecute_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(NotificationConfig("test-sink"))
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		_, err := Execute(cb, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}

	_, err := Execute(cb, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "test-sink")
}

func TestExecute_ReturnsTypedResult(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig("typed"))

	got, err := Execute(cb, func() (string, error) { return "ok", nil })
	assert.NoError(t, err)
	assert.Equal(t, "ok", got)
}

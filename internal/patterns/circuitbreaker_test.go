package patterns

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	cb := NewCircuitBreaker("UpstreamTest", "patterns-test")
	require.Equal(t, 0, cb.Status().Value)

	boom := errors.New("boom")
	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
	}

	status := cb.Status()
	require.Equal(t, "open", status.State)
	require.Equal(t, 1, status.Value)

	_, err := cb.Execute(func() (interface{}, error) { return "unreachable", nil })
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Contains(t, err.Error(), "circuit breaker UpstreamTest is open")
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	cb := NewCircuitBreaker("UpstreamOK", "patterns-test")
	result, err := cb.Execute(func() (interface{}, error) { return 42, nil })
	require.NoError(t, err)
	require.Equal(t, 42, result)
	require.Equal(t, "closed", cb.Status().State)
}

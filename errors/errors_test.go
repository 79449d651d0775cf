package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrParse, "line 3: token \"2g\" is not two hex digits")

	assert.Contains(t, err.Error(), "line 3")
	assert.True(t, Is(err, ErrParse))
	assert.False(t, Is(err, ErrProcess))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(ErrDiscovery))
	assert.True(t, IsFatal(Wrap(ErrConfig, "duplicate implementation name")))
	assert.False(t, IsFatal(ErrProcess))
	assert.False(t, IsFatal(ErrTimeout))
	assert.False(t, IsFatal(nil))
}

func TestIsInvocationError(t *testing.T) {
	assert.True(t, IsInvocationError(ErrProcess))
	assert.True(t, IsInvocationError(Wrap(ErrTimeout, "exceeded 60s")))
	assert.True(t, IsInvocationError(ErrParse))
	assert.False(t, IsInvocationError(ErrDiscovery))
	assert.False(t, IsInvocationError(nil))
}

func TestNewDiscoveryError(t *testing.T) {
	err := NewDiscoveryError("root %s contains no test files", "/tmp/empty")

	require.Error(t, err)
	assert.True(t, Is(err, ErrDiscovery))
	assert.Contains(t, err.Error(), "/tmp/empty")
}

func TestWithHint(t *testing.T) {
	err := WithHint(ErrConfig, "check the [registry] dir setting")
	assert.True(t, Is(err, ErrConfig))
}

package toolerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsMessageWhenEmpty(t *testing.T) {
	require.Equal(t, "tool error", New("").Message)
	require.Equal(t, "boom", New("boom").Message)
}

func TestNewWithCause_WrapsPlainError(t *testing.T) {
	te := NewWithCause("invoke failed", errors.New("connection refused"))
	require.Equal(t, "invoke failed", te.Message)
	require.NotNil(t, te.Cause)
	require.Equal(t, "connection refused", te.Cause.Message)
}

func TestNewWithCause_DefaultsMessageToCauseError(t *testing.T) {
	te := NewWithCause("", errors.New("underlying"))
	require.Equal(t, "underlying", te.Message)
}

func TestFromError_PreservesExistingToolErrorChain(t *testing.T) {
	original := New("already structured")
	require.Same(t, original, FromError(original))
}

func TestFromError_NilReturnsNil(t *testing.T) {
	require.Nil(t, FromError(nil))
}

func TestFromError_UnwrapsStdlibChain(t *testing.T) {
	inner := errors.New("io timeout")
	wrapped := fmt.Errorf("request failed: %w", inner)

	te := FromError(wrapped)
	require.Equal(t, "request failed: io timeout", te.Message)
	require.NotNil(t, te.Cause)
	require.Equal(t, "io timeout", te.Cause.Message)
}

func TestErrorsIs_WorksAcrossChain(t *testing.T) {
	sentinel := New("not found")
	wrapped := NewWithCause("lookup failed", sentinel)
	require.True(t, errors.Is(wrapped, sentinel))
}

func TestError_NilReceiverSafe(t *testing.T) {
	var te *ToolError
	require.Equal(t, "", te.Error())
	require.Nil(t, te.Unwrap())
}

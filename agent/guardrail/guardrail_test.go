package guardrail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func noSwearing(_ context.Context, text string) *Violation {
	if strings.Contains(text, "damn") {
		return &Violation{Name: "no_swearing", Reason: "contains profanity"}
	}
	return nil
}

func neverFails(_ context.Context, _ string) *Violation { return nil }

func TestRunInput_ReturnsFirstViolation(t *testing.T) {
	v := RunInput(context.Background(), []InputGuardrail{neverFails, noSwearing}, "well damn")
	require.NotNil(t, v)
	require.Equal(t, "no_swearing", v.Name)
}

func TestRunInput_NilWhenAllPass(t *testing.T) {
	v := RunInput(context.Background(), []InputGuardrail{neverFails, neverFails}, "hello")
	require.Nil(t, v)
}

func TestRunInput_SkipsNilGuardrails(t *testing.T) {
	v := RunInput(context.Background(), []InputGuardrail{nil, neverFails}, "hello")
	require.Nil(t, v)
}

func TestRunOutput_ReturnsFirstViolation(t *testing.T) {
	outputGuard := func(_ context.Context, text string) *Violation {
		if strings.Contains(text, "secret") {
			return &Violation{Name: "no_leak", Reason: "leaked a secret"}
		}
		return nil
	}
	v := RunOutput(context.Background(), []OutputGuardrail{outputGuard}, "the secret is out")
	require.NotNil(t, v)
	require.Equal(t, "no_leak", v.Name)
}

func TestRunOutput_NilWhenNoGuardrails(t *testing.T) {
	v := RunOutput(context.Background(), nil, "anything")
	require.Nil(t, v)
}

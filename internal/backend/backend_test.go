package backend

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// #region fake-transport

type fakeTransport struct {
	text   string
	err    error
	models []string
	block  bool

	calls []Completion
}

func (f *fakeTransport) Complete(ctx context.Context, req Completion) (string, error) {
	f.calls = append(f.calls, req)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func (f *fakeTransport) Models(context.Context) ([]string, error) {
	return f.models, f.err
}

// #endregion fake-transport

// #region classifier-tests

func TestDefaultClassifier(t *testing.T) {
	c := DefaultClassifier()
	tests := []struct {
		msg       string
		retryable bool
	}{
		{"RuntimeError: Cannot copy out of meta tensor; no data!", true},
		{"NotImplementedError: use module.to_empty() instead", true},
		{"404: Model not found", true},
		{"Invalid model name passed in model=foo", true},
		{"unknown model 'bar'", true},
		{"401 Unauthorized: invalid api key", false},
		{"400 Bad Request: messages must not be empty", false},
		{"dial tcp 127.0.0.1:4000: connect: connection refused", false},
	}
	for _, tt := range tests {
		got := c.Classify(errors.New(tt.msg))
		require.NotNil(t, got, tt.msg)
		assert.Equal(t, tt.retryable, got.Retryable, tt.msg)
		assert.Equal(t, tt.msg, got.Message)
	}
	assert.Nil(t, c.Classify(nil))
}

func TestStrictClassifier_UnknownModelIsFatal(t *testing.T) {
	c := StrictClassifier()
	assert.False(t, c.Classify(errors.New("model not found")).Retryable)
	assert.True(t, c.Classify(errors.New("meta tensor")).Retryable)
}

func TestClassifiedError_Unwrap(t *testing.T) {
	base := errors.New("meta tensor")
	ce := DefaultClassifier().Classify(fmt.Errorf("chat completion x: %w", base))
	assert.ErrorIs(t, ce, base)
	assert.Equal(t, "retryable", ce.Kind())
	assert.Contains(t, ce.Error(), "retryable: ")
}

// #endregion classifier-tests

// #region invoker-tests

func TestInvoke_CleansMarkup(t *testing.T) {
	ft := &fakeTransport{text: "  <s>I'm thinking about joining a club.</s><|eot_id|>  "}
	inv := NewInvoker(ft, nil, 0)

	msgs := []Message{{Role: RoleUser, Content: "hi"}}
	text, cerr := inv.Invoke(context.Background(), msgs, "gemma-3-27b-it", 250, 0.8)
	require.Nil(t, cerr)
	assert.Equal(t, "I'm thinking about joining a club.", text)

	require.Len(t, ft.calls, 1)
	assert.Equal(t, "gemma-3-27b-it", ft.calls[0].Model)
	assert.Equal(t, 250, ft.calls[0].MaxTokens)
	assert.InDelta(t, 0.8, ft.calls[0].Temperature, 1e-9)
	assert.InDelta(t, DefaultTopP, ft.calls[0].TopP, 1e-9)
	assert.Equal(t, msgs, ft.calls[0].Messages)
}

func TestInvoke_MarkupOnlyIsEmpty(t *testing.T) {
	inv := NewInvoker(&fakeTransport{text: "<s></s>"}, nil, 0)
	text, cerr := inv.Invoke(context.Background(), nil, "a", 10, 0.5)
	assert.Nil(t, cerr)
	assert.Empty(t, text)
}

func TestInvoke_ClassifiesFailure(t *testing.T) {
	inv := NewInvoker(&fakeTransport{err: errors.New("unknown model")}, nil, 0)
	_, cerr := inv.Invoke(context.Background(), nil, "a", 10, 0.5)
	require.NotNil(t, cerr)
	assert.True(t, cerr.Retryable)

	inv = NewInvoker(&fakeTransport{err: errors.New("unknown model")}, StrictClassifier(), 0)
	_, cerr = inv.Invoke(context.Background(), nil, "a", 10, 0.5)
	require.NotNil(t, cerr)
	assert.False(t, cerr.Retryable)
}

func TestInvoke_TimeoutIsFatal(t *testing.T) {
	inv := NewInvoker(&fakeTransport{block: true}, nil, 20*time.Millisecond)
	_, cerr := inv.Invoke(context.Background(), nil, "a", 10, 0.5)
	require.NotNil(t, cerr)
	assert.False(t, cerr.Retryable)
	assert.ErrorIs(t, cerr, context.DeadlineExceeded)
}

func TestInvoke_CancelPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inv := NewInvoker(&fakeTransport{block: true}, nil, time.Minute)
	_, cerr := inv.Invoke(ctx, nil, "a", 10, 0.5)
	require.NotNil(t, cerr)
	assert.ErrorIs(t, cerr, context.Canceled)
}

// #endregion invoker-tests

// #region probe-tests

func TestProbe(t *testing.T) {
	ft := &fakeTransport{models: []string{"Gemma-3-27b-it", "mistral-small-3.1"}}
	report, err := Probe(context.Background(), ft, []string{"gemma-3-27b-it", "llama-9-1t", "mistral-small-3.1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gemma-3-27b-it", "mistral-small-3.1"}, report.Available)
	assert.Equal(t, []string{"llama-9-1t"}, report.Unknown)
	assert.Len(t, report.Models, 2)
}

func TestProbe_Error(t *testing.T) {
	_, err := Probe(context.Background(), &fakeTransport{err: errors.New("connection refused")}, []string{"a"})
	assert.Error(t, err)
}

// #endregion probe-tests

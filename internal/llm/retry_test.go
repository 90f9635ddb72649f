package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	okReply     = MockResponse{Content: json.RawMessage(`{"status":"Accepted","score":100,"feedback":"ok"}`)}
	downReply   = MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection reset")}}
	badReply    = MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`{"status":1}`), Err: errors.New("status: want string")}}
	cutReply    = MockResponse{Err: &ErrMaxTokensExceeded{Content: json.RawMessage(`{"sta`)}}
	limitedOnce = MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		replies   []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{okReply}, false, 1},
		{"transient then ok", []MockResponse{downReply, okReply}, false, 2},
		{"rate limit honoured", []MockResponse{limitedOnce, okReply}, false, 2},
		{"gives up after max attempts", []MockResponse{downReply, downReply, downReply, okReply}, true, 3},
		{"truncation not retried", []MockResponse{cutReply, okReply}, true, 1},
		{"schema violation retried once", []MockResponse{badReply, okReply}, false, 2},
		{"second schema violation stops", []MockResponse{badReply, badReply, okReply}, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.replies...)
			p := WithRetry(mock, fastRetry(3))

			resp, err := p.Generate(context.Background(), Request{})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, string(okReply.Content), string(resp.Content))
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetry_CanceledContextStopsBetweenAttempts(t *testing.T) {
	mock := NewMockProvider(downReply, okReply)
	p := WithRetry(mock, fastRetry(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_DelayIsCapped(t *testing.T) {
	r := &RetryProvider{cfg: RetryConfig{InitialWait: 10 * time.Millisecond, MaxWait: 40 * time.Millisecond, Multiplier: 3}}
	for n := range 6 {
		d := r.delay(n, errors.New("boom"))
		assert.LessOrEqual(t, d, 48*time.Millisecond, "retry %d", n)
		assert.GreaterOrEqual(t, d, 8*time.Millisecond, "retry %d", n)
	}
	assert.Equal(t, 2*time.Second, r.delay(0, &ErrRateLimit{RetryAfter: 2 * time.Second}))
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), fastRetry(2))
	assert.Equal(t, "mock", p.ModelID())
}

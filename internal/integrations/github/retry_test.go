package github

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v60/github"
)

func respErr(code int) *github.ErrorResponse {
	req, _ := http.NewRequest("GET", "https://api.github.com/repos/acme/widgets", nil)
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: code, Request: req},
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &github.RateLimitError{}, true},
		{"abuse rate limit", &github.AbuseRateLimitError{}, true},
		{"server error", respErr(http.StatusBadGateway), true},
		{"internal error", respErr(http.StatusInternalServerError), true},
		{"not found", respErr(http.StatusNotFound), false},
		{"unprocessable", respErr(http.StatusUnprocessableEntity), false},
		{"plain error", errors.New("dial tcp: refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(respErr(http.StatusNotFound)) {
		t.Errorf("404 not detected")
	}
	if isNotFound(respErr(http.StatusForbidden)) {
		t.Errorf("403 reported as not found")
	}
	if isNotFound(errors.New("nope")) {
		t.Errorf("plain error reported as not found")
	}
}

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		JitterRatio: 0,
	}
}

func TestWithRetrySucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	got, err := withRetry(context.Background(), fastRetry(), "test op", func() (string, error) {
		calls++
		if calls < 3 {
			return "", respErr(http.StatusBadGateway)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("withRetry error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Errorf("got %q after %d calls", got, calls)
	}
}

func TestWithRetryGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastRetry(), "test op", func() (int, error) {
		calls++
		return 0, respErr(http.StatusServiceUnavailable)
	})
	if err == nil {
		t.Fatalf("expected failure after exhausting retries")
	}
	if calls != 4 {
		t.Errorf("got %d calls, want initial attempt plus 3 retries", calls)
	}
}

func TestWithRetryDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastRetry(), "test op", func() (int, error) {
		calls++
		return 0, respErr(http.StatusNotFound)
	})
	if err == nil {
		t.Fatalf("expected the 404 to propagate")
	}
	if calls != 1 {
		t.Errorf("client errors must not be retried, got %d calls", calls)
	}
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetry()
	cfg.BaseDelay = time.Second

	_, err := withRetry(ctx, cfg, "test op", func() (int, error) {
		return 0, respErr(http.StatusBadGateway)
	})
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across the registry
// client.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient failures (timeouts, connection errors, HTTP 5xx). Tests
// override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// RateLimitBaseDelay controls the base backoff for HTTP 429 responses,
// which warrant a longer wait than ordinary server errors. Tests
// override this too.
var RateLimitBaseDelay = 5 * time.Second

const defaultMaxRetries = 3

// Retryable reports whether an HTTP status warrants another attempt:
// 429 and all 5xx. Other 4xx statuses are client mistakes and retrying
// cannot fix them.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request and retries on transport errors
// and retryable statuses with exponential backoff. The delay doubles
// each attempt and carries up to 25% random jitter so concurrent
// callers do not retry in lockstep. 429 responses back off from
// RateLimitBaseDelay, everything else from RetryBaseDelay.
//
// When maxRetries is 0 the default (3) is used. Each retry is reported
// to progress with the attempt number and elapsed time; a nil progress
// discards the reports. On each retried response the body is drained
// and closed before sleeping. If the context is cancelled during a
// backoff wait the function returns ctx.Err(). After exhausting
// retries the last response (or transport error) is returned so the
// caller can classify it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, progress io.Writer) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if progress == nil {
		progress = io.Discard
	}

	start := time.Now()
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt >= maxRetries {
				return nil, err
			}
			delay := backoff(RetryBaseDelay, attempt)
			fmt.Fprintf(progress, "request to %s failed (%v), retrying in %v (attempt %d/%d, elapsed %v)\n",
				req.URL.Path, err, delay, attempt+1, maxRetries, time.Since(start).Round(time.Millisecond))
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		base := RetryBaseDelay
		if resp.StatusCode == http.StatusTooManyRequests {
			base = RateLimitBaseDelay
		}
		delay := backoff(base, attempt)
		fmt.Fprintf(progress, "HTTP %d from %s, retrying in %v (attempt %d/%d, elapsed %v)\n",
			resp.StatusCode, req.URL.Path, delay, attempt+1, maxRetries, time.Since(start).Round(time.Millisecond))
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// backoff computes base * 2^attempt plus up to 25% jitter.
func backoff(base time.Duration, attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * base
	if j := int64(d / 4); j > 0 {
		d += time.Duration(rand.Int63n(j))
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

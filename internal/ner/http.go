package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dgallion1/boardkin/internal/document"
)

// HTTPOptions configures an HTTPRecognizer.
type HTTPOptions struct {
	URL         string
	APIKey      string
	Timeout     time.Duration
	BatchSize   int
	Concurrency int
	RateLimit   float64 // requests per second, 0 = unlimited
	Stats       *Stats
	Log         *slog.Logger

	// Backoff overrides the retry delay; nil uses Backoff.
	Backoff func(attempt int) time.Duration
}

// HTTPRecognizer calls a remote NER service over JSON.
type HTTPRecognizer struct {
	endpoint    string
	apiKey      string
	batchSize   int
	concurrency int
	limiter     *rate.Limiter
	stats       *Stats
	log         *slog.Logger
	backoff     func(int) time.Duration
	httpClient  *http.Client
}

func NewHTTPRecognizer(opts HTTPOptions) *HTTPRecognizer {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Stats == nil {
		opts.Stats = NewStats(time.Hour)
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Backoff == nil {
		opts.Backoff = Backoff
	}

	r := &HTTPRecognizer{
		endpoint:    strings.TrimRight(opts.URL, "/") + "/ner",
		apiKey:      opts.APIKey,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		stats:       opts.Stats,
		log:         opts.Log,
		backoff:     opts.Backoff,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
	if opts.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return r
}

type nerRequest struct {
	Texts []string `json:"texts"`
}

type nerResponse struct {
	Results [][]Entity `json:"results"`
	Error   string     `json:"error,omitempty"`
}

// Stats returns the latency tracker shared by all calls.
func (r *HTTPRecognizer) Stats() *Stats {
	return r.stats
}

// Recognize splits texts into sub-batches, runs them concurrently and
// reassembles the results in input order.
func (r *HTTPRecognizer) Recognize(ctx context.Context, texts []string) ([][]Entity, error) {
	results := make([][]Entity, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for start := 0; start < len(texts); start += r.batchSize {
		end := min(start+r.batchSize, len(texts))
		g.Go(func() error {
			ents, err := r.recognizeWithRetry(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("ner batch %d-%d: %w", start, end, err)
			}
			if len(ents) != end-start {
				return fmt.Errorf("ner batch %d-%d: %d results for %d texts: %w",
					start, end, len(ents), end-start, document.ErrAlignment)
			}
			copy(results[start:end], ents)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *HTTPRecognizer) recognizeWithRetry(ctx context.Context, batch []string) ([][]Entity, error) {
	var lastErr error
	for attempt := range MaxRetries {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		ents, err := r.call(ctx, batch)
		if err == nil {
			r.stats.Record(time.Since(start).Milliseconds())
			return ents, nil
		}
		r.stats.RecordFailure()
		lastErr = err

		if !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		wait := r.backoff(attempt)
		r.log.Warn("ner call failed, retrying", "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (r *HTTPRecognizer) call(ctx context.Context, batch []string) ([][]Entity, error) {
	body, err := json.Marshal(nerRequest{Texts: batch})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ner service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ner service status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var nerResp nerResponse
	if err := json.Unmarshal(respBody, &nerResp); err != nil {
		return nil, fmt.Errorf("decode response: %w (raw: %s)", err, truncate(string(respBody), 200))
	}
	if nerResp.Error != "" {
		return nil, fmt.Errorf("ner error: %s", nerResp.Error)
	}
	return nerResp.Results, nil
}

// Close releases resources.
func (r *HTTPRecognizer) Close() {
	r.httpClient.CloseIdleConnections()
}

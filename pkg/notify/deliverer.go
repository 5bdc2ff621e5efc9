package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pitabwire/frame/workerpool"

	"github.com/dictaflow/dictaflow/pkg/events"
)

const maxBreakers = 1000

// DelivererConfig holds delivery-related settings.
type DelivererConfig struct {
	MaxRetries        int
	TimeoutSec        int
	BackoffInitialSec int
	BackoffMaxSec     int
	CBFailThreshold   int
	CBResetTimeoutSec int
}

// Deliverer posts event envelopes to registered endpoints with bounded
// exponential-backoff retries and a per-endpoint circuit breaker.
type Deliverer struct {
	repo       *Repository
	httpClient *http.Client
	config     DelivererConfig
	pool       workerpool.WorkerPool
	checkOpts  []URLCheckOption

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewDeliverer creates a notification deliverer.
func NewDeliverer(repo *Repository, cfg DelivererConfig, pool workerpool.WorkerPool, checkOpts ...URLCheckOption) *Deliverer {
	return &Deliverer{
		repo: repo,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config:    cfg,
		pool:      pool,
		checkOpts: checkOpts,
		breakers:  make(map[string]*Breaker),
	}
}

func (d *Deliverer) breakerFor(endpointID string) *Breaker {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.breakers[endpointID]
	if ok {
		return b
	}

	if len(d.breakers) >= maxBreakers {
		for k := range d.breakers {
			delete(d.breakers, k)
			break
		}
	}

	b = NewBreaker(BreakerConfig{
		FailureThreshold: d.config.CBFailThreshold,
		ResetTimeout:     time.Duration(d.config.CBResetTimeoutSec) * time.Second,
	})
	d.breakers[endpointID] = b
	return b
}

// Deliver attempts to POST an event envelope to an endpoint.
func (d *Deliverer) Deliver(ctx context.Context, ep Endpoint, env events.Envelope) {
	d.attempt(ctx, ep, env, 1)
}

func (d *Deliverer) attempt(ctx context.Context, ep Endpoint, env events.Envelope, n int) {
	if err := ValidateEndpointURL(ep.URL, d.checkOpts...); err != nil {
		slog.ErrorContext(ctx, "endpoint URL rejected",
			slog.String("endpoint_id", ep.ID),
			slog.String("error", err.Error()))
		return
	}

	b := d.breakerFor(ep.ID)
	if !b.Allow() {
		d.fail(ctx, ep, env, n, "circuit open")
		return
	}

	body, err := json.Marshal(env)
	if err != nil {
		d.fail(ctx, ep, env, n, fmt.Sprintf("marshal: %v", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		d.fail(ctx, ep, env, n, fmt.Sprintf("create request: %v", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(ep.Secret, body))
	req.Header.Set("X-Dictaflow-Event", string(env.Type))
	req.Header.Set("X-Dictaflow-Delivery", env.ID)

	start := time.Now()
	resp, err := d.httpClient.Do(req)

	rec := &DeliveryRecord{
		EndpointID:    ep.ID,
		EventID:       env.ID,
		EventType:     string(env.Type),
		AttemptNumber: n,
		DurationMs:    time.Since(start).Milliseconds(),
	}

	if err != nil {
		b.RecordFailure()
		rec.Status = "failed"
		rec.Error = err.Error()
		d.record(ctx, rec)
		d.fail(ctx, ep, env, n, rec.Error)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	rec.ResponseCode = resp.StatusCode

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		b.RecordSuccess()
		rec.Status = "success"
		d.record(ctx, rec)
		return
	}

	b.RecordFailure()
	rec.Status = "failed"
	rec.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
	d.record(ctx, rec)
	d.fail(ctx, ep, env, n, rec.Error)
}

func (d *Deliverer) record(ctx context.Context, rec *DeliveryRecord) {
	if d.repo == nil {
		return
	}
	if err := d.repo.RecordDelivery(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "record delivery failed", slog.String("error", err.Error()))
	}
}

func (d *Deliverer) fail(ctx context.Context, ep Endpoint, env events.Envelope, n int, errMsg string) {
	if n >= d.config.MaxRetries {
		payload, _ := json.Marshal(env)
		if d.repo != nil {
			if err := d.repo.CreateDeadEvent(ctx, &DeadEvent{
				EndpointID: ep.ID,
				EventID:    env.ID,
				EventType:  string(env.Type),
				Payload:    string(payload),
				LastError:  errMsg,
				Attempts:   n,
			}); err != nil {
				slog.ErrorContext(ctx, "create dead event failed", slog.String("error", err.Error()))
			}
		}
		return
	}

	backoff := d.config.BackoffInitialSec * (1 << (n - 1))
	if backoff > d.config.BackoffMaxSec {
		backoff = d.config.BackoffMaxSec
	}

	retry := func() {
		timer := time.NewTimer(time.Duration(backoff) * time.Second)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			d.attempt(ctx, ep, env, n+1)
		}
	}

	if d.pool != nil {
		if err := d.pool.Submit(ctx, retry); err != nil {
			slog.WarnContext(ctx, "retry pool full, dropping retry",
				slog.String("endpoint_id", ep.ID),
				slog.Int("attempt", n))
		}
	} else {
		time.AfterFunc(time.Duration(backoff)*time.Second, func() {
			d.attempt(ctx, ep, env, n+1)
		})
	}
}

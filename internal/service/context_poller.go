package service

import (
	"context"
	"time"

	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/pkg/signal"
)

const (
	DefaultPollInterval   = 2 * time.Second
	DefaultPollMaxBackoff = 30 * time.Second
)

// ContextPoller watches one session's refresh signal and calls back when it fires.
type ContextPoller struct {
	source     signal.Source
	notifier   signal.Notifier
	interval   time.Duration
	maxBackoff time.Duration
	logger     logger.ILogger
}

// NewContextPoller builds a poller. notifier may be nil; the poller then
// relies on its interval alone.
func NewContextPoller(source signal.Source, notifier signal.Notifier, interval, maxBackoff time.Duration, log logger.ILogger) *ContextPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxBackoff < interval {
		maxBackoff = DefaultPollMaxBackoff
		if maxBackoff < interval {
			maxBackoff = interval
		}
	}
	return &ContextPoller{
		source:     source,
		notifier:   notifier,
		interval:   interval,
		maxBackoff: maxBackoff,
		logger:     log,
	}
}

// nextBackoff doubles the wait after a failed check, capped at max.
func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max || next <= 0 {
		return max
	}
	return next
}

// Run polls until ctx is cancelled. Signal-source errors are retried forever
// with doubling backoff; onSignal errors are logged and polling continues.
func (p *ContextPoller) Run(ctx context.Context, sessionID string, onSignal func(ctx context.Context) error) {
	var wake <-chan struct{}
	if p.notifier != nil {
		ch, stop := p.notifier.Watch(sessionID)
		defer stop()
		wake = ch
	}

	wait := p.interval
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		pending, err := p.source.Pending(ctx, sessionID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait = nextBackoff(wait, p.maxBackoff)
			p.logger.Warn("ContextPoller", "Signal check failed, backing off", map[string]interface{}{
				"session_id": sessionID,
				"retry_in":   wait.String(),
				"error":      err.Error(),
			})
			timer.Reset(wait)
			continue
		}
		wait = p.interval

		if pending {
			p.logger.Info("ContextPoller", "Document update signal received", map[string]interface{}{"session_id": sessionID})
			if err := onSignal(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("ContextPoller", "Document refresh failed", map[string]interface{}{
					"session_id": sessionID,
					"error":      err,
				})
			}
		}

		timer.Reset(wait)
	}
}

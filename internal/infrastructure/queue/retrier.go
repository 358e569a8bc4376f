package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
)

const (
	defaultInterval = 5 * time.Minute
	defaultBatch    = 20
)

// EmailRetrier periodically replays FAILED email sends in the background.
type EmailRetrier struct {
	service  ports.EmailService
	interval time.Duration
	batch    int
	log      zerolog.Logger
}

// NewEmailRetrier creates a retrier that processes up to batch failed sends
// every interval. Non-positive values fall back to defaults.
func NewEmailRetrier(service ports.EmailService, interval time.Duration, batch int, log zerolog.Logger) *EmailRetrier {
	if interval <= 0 {
		interval = defaultInterval
	}
	if batch <= 0 {
		batch = defaultBatch
	}
	return &EmailRetrier{service: service, interval: interval, batch: batch, log: log}
}

// Start launches the worker goroutine. It stops when ctx is cancelled.
func (r *EmailRetrier) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *EmailRetrier) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sent, err := r.service.RetryFailed(ctx, r.batch)
			if err != nil {
				r.log.Error().Err(err).Msg("email retry pass failed")
				continue
			}
			if sent > 0 {
				r.log.Info().Int("sent", sent).Msg("retried failed emails")
			}
		}
	}
}

package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Updater is the part of the Bot API the poller needs.
type Updater interface {
	GetUpdates(ctx context.Context, offset, timeoutSec int) ([]Update, error)
}

// Handler processes one update.
type Handler interface {
	Handle(ctx context.Context, u Update)
}

// Poller long-polls getUpdates and hands each update to the handler with at
// most workers updates in flight.
type Poller struct {
	api      Updater
	h        Handler
	interval time.Duration
	timeout  int
	workers  int64
	sem      *semaphore.Weighted
	offset   int
}

func NewPoller(api Updater, h Handler, interval time.Duration, timeoutSec, workers int) *Poller {
	if workers <= 0 {
		workers = 1
	}
	if timeoutSec < 0 {
		timeoutSec = 0
	}
	return &Poller{
		api:      api,
		h:        h,
		interval: interval,
		timeout:  timeoutSec,
		workers:  int64(workers),
		sem:      semaphore.NewWeighted(int64(workers)),
	}
}

// Offset is the next update_id the poller will ask for.
func (p *Poller) Offset() int { return p.offset }

// Run polls until ctx is done or the token is rejected, then waits for
// in-flight handlers to finish.
func (p *Poller) Run(ctx context.Context) error {
	log.Info().
		Dur("interval", p.interval).
		Int("timeout", p.timeout).
		Int64("workers", p.workers).
		Msg("long polling started")
	defer p.drain()

	for {
		if err := p.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrUnauthorized) {
				return err
			}
			log.Warn().Err(err).Int("offset", p.offset).Msg("poll updates failed")
		}
		if !sleepCtx(ctx, p.interval) {
			return nil
		}
	}
}

// poll fetches one batch and dispatches it. The offset advances past every
// update received, handled or not, so nothing is redelivered.
func (p *Poller) poll(ctx context.Context) error {
	updates, err := p.api.GetUpdates(ctx, p.offset, p.timeout)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if u.UpdateID >= p.offset {
			p.offset = u.UpdateID + 1
		}
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		go func(u Update) {
			defer p.sem.Release(1)
			// handlers finish their reply even while shutting down
			p.h.Handle(context.WithoutCancel(ctx), u)
		}(u)
	}
	return nil
}

func (p *Poller) drain() {
	// acquiring the full weight waits for every running handler
	_ = p.sem.Acquire(context.Background(), p.workers)
	p.sem.Release(p.workers)
	log.Info().Int("offset", p.offset).Msg("long polling stopped")
}

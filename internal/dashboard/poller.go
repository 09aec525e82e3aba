package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Poller calls fn on a fixed interval until stopped.
type Poller struct {
	interval time.Duration
	fn       func(ctx context.Context)
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

func NewPoller(interval time.Duration, fn func(ctx context.Context), log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		interval: interval,
		fn:       fn,
		log:      log.With().Str("component", "poller").Logger(),
	}
}

func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		p.log.Debug().Msg("already running")
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stopCh, p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-stop:
				cancel()
			case <-ctx.Done():
			}
		}()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				p.fn(ctx)
			}
		}
	}()

	p.log.Info().Dur("interval", p.interval).Msg("started")
}

// Stop halts the ticker, cancels a refresh in progress and waits for it.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	done := p.done
	p.mu.Unlock()

	<-done
	p.log.Info().Msg("stopped")
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

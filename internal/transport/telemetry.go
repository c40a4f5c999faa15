// SPDX-License-Identifier: MIT
package transport

import (
	"sync"
	"time"

	"crossover/internal/audio"
	"crossover/internal/config"
	"crossover/internal/dsp"
	applog "crossover/internal/log"
)

// StatusSource provides pipeline status snapshots. The engine
// satisfies it.
type StatusSource interface {
	Status() audio.DriverStatus
}

// StatusUpdate is the JSON telemetry payload broadcast to clients.
type StatusUpdate struct {
	State           string    `json:"state"`
	LevelsDB        []float64 `json:"levels_db"`
	LoadPercent     float64   `json:"load_percent"`
	Underflows      uint64    `json:"underflows"`
	Overruns        uint64    `json:"overruns"`
	TransportErrors uint64    `json:"transport_errors"`
	Recoveries      uint64    `json:"recoveries"`
}

// StatusPublisher periodically snapshots the pipeline and sends a
// StatusUpdate over a Transport. Runs in its own goroutine between
// Start and Stop.
type StatusPublisher struct {
	source    StatusSource
	transport Transport
	interval  time.Duration

	mu       sync.Mutex
	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStatusPublisher creates a publisher. An invalid interval falls
// back to 100ms.
func NewStatusPublisher(interval time.Duration, source StatusSource, transport Transport) *StatusPublisher {
	if interval <= 0 {
		interval = 100 * time.Millisecond
		applog.Warnf("telemetry: invalid status interval, defaulting to %s", interval)
	}
	return &StatusPublisher{
		source:    source,
		transport: transport,
		interval:  interval,
	}
}

// Start begins periodic publishing. Safe to call when already running.
func (p *StatusPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-doneChan:
				return
			}
		}
	}()
}

func (p *StatusPublisher) publish() {
	st := p.source.Status()

	levels := make([]float64, config.OutputChannels)
	for ch, l := range st.Levels {
		levels[ch] = dsp.LinearToDb(l)
	}

	_ = p.transport.Send(StatusUpdate{
		State:           st.State.String(),
		LevelsDB:        levels,
		LoadPercent:     st.Load * 100,
		Underflows:      st.Underflows,
		Overruns:        st.Overruns,
		TransportErrors: st.TransportErrors,
		Recoveries:      st.Recoveries,
	})
}

// Stop terminates the publisher goroutine and waits for it.
// Idempotent.
func (p *StatusPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Close implements io.Closer.
func (p *StatusPublisher) Close() error {
	return p.Stop()
}

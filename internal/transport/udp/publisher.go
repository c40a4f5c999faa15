// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"crossover/internal/config"
	applog "crossover/internal/log"
)

// LevelSource provides the current output meter levels. The engine
// satisfies it.
type LevelSource interface {
	Levels() [config.OutputChannels]float64
}

/*
Meter packet layout (BigEndian):

	| Field           | Type      | Size |
	|-----------------|-----------|------|
	| Sequence number | uint32    | 4    |
	| Timestamp       | int64     | 8    | nanoseconds since epoch
	| Channel count   | uint16    | 2    |
	| Levels          | []float32 | N*4  | linear RMS per output
*/

// Publisher periodically packs the output levels into a binary packet
// and sends it over a Sender. Runs in its own goroutine between Start
// and Stop, reusing pre-allocated buffers for packing.
type Publisher struct {
	sender   *Sender
	source   LevelSource
	interval time.Duration

	mu       sync.Mutex
	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	sequenceNum  uint32
	f32Buffer    [config.OutputChannels]float32
	packetBuffer *bytes.Buffer
}

// NewPublisher creates a meter publisher. An invalid interval falls
// back to 50ms.
func NewPublisher(interval time.Duration, sender *Sender, source LevelSource) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp publisher: sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("udp publisher: level source cannot be nil")
	}
	if interval <= 0 {
		interval = 50 * time.Millisecond
		applog.Warnf("telemetry: invalid meter interval, defaulting to %s", interval)
	}

	return &Publisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start begins periodic publishing. Safe to call when already running.
func (p *Publisher) Start() {
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
		applog.Debugf("telemetry: meter publisher started (interval %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				return
			}
		}
	}()
}

func (p *Publisher) buildAndSendPacket() {
	levels := p.source.Levels()
	for i, v := range levels {
		p.f32Buffer[i] = float32(v)
	}

	p.sequenceNum++
	p.packetBuffer.Reset()

	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, time.Now().UnixNano())
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(config.OutputChannels))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.f32Buffer[:])
	}
	if err != nil {
		applog.Errorf("telemetry: failed to pack meter packet: %v", err)
		return
	}

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		applog.Debugf("telemetry: meter packet %d dropped: %v", p.sequenceNum, err)
	}
}

// Stop terminates the publisher goroutine and waits for it.
// Idempotent.
func (p *Publisher) Stop() error {
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
func (p *Publisher) Close() error {
	return p.Stop()
}

// SPDX-License-Identifier: MIT
package transport

import (
	"testing"
	"time"

	"crossover/internal/audio"
	"crossover/internal/config"
	"crossover/pkg/utils"
)

type stubSource struct {
	status audio.DriverStatus
}

func (s *stubSource) Status() audio.DriverStatus {
	return s.status
}

func TestStatusPublisherSendsUpdates(t *testing.T) {
	src := &stubSource{}
	src.status.State = audio.StateRunning
	src.status.Levels[0] = 0.5
	src.status.Underflows = 3
	src.status.Load = 0.25

	mock := &utils.MockTransport{}
	p := NewStatusPublisher(5*time.Millisecond, src, mock)
	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mock.Last() != nil {
			break
		}
		time.Sleep(time.Millisecond)
	}

	last, ok := mock.Last().(StatusUpdate)
	if !ok {
		t.Fatalf("payload type %T, want StatusUpdate", mock.Last())
	}
	if last.State != "RUNNING" {
		t.Errorf("state = %q, want RUNNING", last.State)
	}
	if len(last.LevelsDB) != config.OutputChannels {
		t.Fatalf("levels length = %d, want %d", len(last.LevelsDB), config.OutputChannels)
	}
	// 0.5 linear is about -6 dB.
	if last.LevelsDB[0] > -5.9 || last.LevelsDB[0] < -6.1 {
		t.Errorf("level[0] = %v dB, want ~-6", last.LevelsDB[0])
	}
	if last.LevelsDB[1] != config.MinGainDB {
		t.Errorf("silent level = %v dB, want floor", last.LevelsDB[1])
	}
	if last.Underflows != 3 {
		t.Errorf("underflows = %d, want 3", last.Underflows)
	}
	if last.LoadPercent != 25 {
		t.Errorf("load = %v%%, want 25", last.LoadPercent)
	}
}

func TestStatusPublisherStopIsIdempotent(t *testing.T) {
	p := NewStatusPublisher(time.Millisecond, &stubSource{}, NewLoggingTransport())
	p.Start()
	if err := p.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close after stop: %v", err)
	}
}

func TestStatusPublisherRestart(t *testing.T) {
	mock := &utils.MockTransport{}
	p := NewStatusPublisher(time.Millisecond, &stubSource{}, mock)

	p.Start()
	p.Stop()
	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mock.Last() != nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no payload after restart")
}

func TestLoggingTransportNeverFails(t *testing.T) {
	lt := NewLoggingTransport()
	if err := lt.Send(struct{}{}); err != nil {
		t.Errorf("send: %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

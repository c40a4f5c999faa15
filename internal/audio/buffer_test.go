// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"testing"

	"crossover/internal/config"
)

func TestTransferManagerTakeBeforeCommit(t *testing.T) {
	m := NewTransferManager(64)

	if _, err := m.TakeStableHalf(Capture); !errors.Is(err, ErrNotReady) {
		t.Errorf("take before commit = %v, want ErrNotReady", err)
	}
	if _, _, err := m.PeekCommitted(Playback); !errors.Is(err, ErrNotReady) {
		t.Errorf("peek before commit = %v, want ErrNotReady", err)
	}
}

func TestTransferManagerTakeConsumesExactlyOnce(t *testing.T) {
	m := NewTransferManager(64)

	m.MarkHalfReady(Capture, SecondHalf)
	off, err := m.TakeStableHalf(Capture)
	if err != nil {
		t.Fatalf("take after commit: %v", err)
	}
	if want := 64 * config.InputChannels; off != want {
		t.Errorf("offset = %d, want %d", off, want)
	}
	if _, err := m.TakeStableHalf(Capture); !errors.Is(err, ErrNotReady) {
		t.Errorf("second take = %v, want ErrNotReady", err)
	}
}

func TestTransferManagerLatestCommitWins(t *testing.T) {
	m := NewTransferManager(64)

	m.MarkHalfReady(Capture, FirstHalf)
	m.MarkHalfReady(Capture, SecondHalf)
	off, err := m.TakeStableHalf(Capture)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if want := 64 * config.InputChannels; off != want {
		t.Errorf("offset = %d, want second half at %d", off, want)
	}
}

func TestTransferManagerPeekDetectsStaleReplay(t *testing.T) {
	m := NewTransferManager(64)

	m.MarkHalfReady(Playback, FirstHalf)
	_, seq1, err := m.PeekCommitted(Playback)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	_, seq2, _ := m.PeekCommitted(Playback)
	if seq1 != seq2 {
		t.Errorf("replayed peek changed sequence: %d -> %d", seq1, seq2)
	}

	m.MarkHalfReady(Playback, SecondHalf)
	off, seq3, _ := m.PeekCommitted(Playback)
	if seq3 == seq2 {
		t.Error("fresh commit did not advance the sequence")
	}
	if want := 64 * config.OutputChannels; off != want {
		t.Errorf("offset = %d, want %d", off, want)
	}
}

func TestTransferManagerHalfWords(t *testing.T) {
	m := NewTransferManager(32)
	if got := m.HalfWords(Capture); got != 32*config.InputChannels {
		t.Errorf("capture half words = %d", got)
	}
	if got := m.HalfWords(Playback); got != 32*config.OutputChannels {
		t.Errorf("playback half words = %d", got)
	}
}

func TestTransferManagerReset(t *testing.T) {
	m := NewTransferManager(64)
	m.MarkHalfReady(Capture, FirstHalf)
	m.MarkHalfReady(Playback, FirstHalf)
	m.Reset()

	if _, err := m.TakeStableHalf(Capture); !errors.Is(err, ErrNotReady) {
		t.Errorf("capture survived reset: %v", err)
	}
	if _, _, err := m.PeekCommitted(Playback); !errors.Is(err, ErrNotReady) {
		t.Errorf("playback survived reset: %v", err)
	}
}

func TestHalfOther(t *testing.T) {
	if FirstHalf.Other() != SecondHalf || SecondHalf.Other() != FirstHalf {
		t.Error("Other() does not flip halves")
	}
}

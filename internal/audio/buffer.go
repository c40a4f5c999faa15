// SPDX-License-Identifier: MIT
package audio

import (
	"sync/atomic"

	"crossover/internal/config"
)

// Direction selects one side of the duplex transfer storage.
type Direction int

const (
	Capture  Direction = iota // codec -> engine
	Playback                  // engine -> codec
)

// Half selects one half of a ping-pong buffer.
type Half int

const (
	FirstHalf Half = iota
	SecondHalf
)

// Other returns the opposite half.
func (h Half) Other() Half {
	return h ^ 1
}

// TransferManager does the ping-pong bookkeeping over the fixed int32
// transfer storage. It never touches sample data; producers and
// consumers index the storage with the word offsets it hands out.
//
// Each direction has a single producer and a single consumer. The
// committed half is published through one atomic word packing a
// sequence number with the half index, so the consumer can both take
// a half exactly once (capture) and detect a stale replay (playback).
type TransferManager struct {
	captureWords  int // words per capture half (frame x input channels)
	playbackWords int // words per playback half (frame x output channels)

	// Packed committed state per direction: seq<<1 | half, -1 = none.
	committed [2]atomic.Int64
}

// NewTransferManager creates the bookkeeping for the given frame size.
func NewTransferManager(frameSize int) *TransferManager {
	m := &TransferManager{
		captureWords:  frameSize * config.InputChannels,
		playbackWords: frameSize * config.OutputChannels,
	}
	m.Reset()
	return m
}

// HalfWords returns the number of int32 words in one half for the
// direction.
func (m *TransferManager) HalfWords(dir Direction) int {
	if dir == Capture {
		return m.captureWords
	}
	return m.playbackWords
}

// offset converts a half index to a word offset for the direction.
func (m *TransferManager) offset(dir Direction, half Half) int {
	return int(half) * m.HalfWords(dir)
}

// MarkHalfReady commits a filled half for the direction. Called by the
// producer only: the codec callback for capture, the engine for
// playback.
func (m *TransferManager) MarkHalfReady(dir Direction, half Half) {
	prev := m.committed[dir].Load()
	seq := int64(1)
	if prev >= 0 {
		seq = prev>>1 + 1
	}
	m.committed[dir].Store(seq<<1 | int64(half))
}

// TakeStableHalf consumes the committed half for the direction and
// returns its word offset, or ErrNotReady when nothing has been
// committed since the last take.
func (m *TransferManager) TakeStableHalf(dir Direction) (int, error) {
	v := m.committed[dir].Swap(-1)
	if v < 0 {
		return 0, ErrNotReady
	}
	return m.offset(dir, Half(v&1)), nil
}

// PeekCommitted returns the word offset and sequence number of the
// committed half without consuming it, or ErrNotReady when nothing has
// ever been committed. The playback consumer uses the sequence number
// to detect that it is replaying a stale half.
func (m *TransferManager) PeekCommitted(dir Direction) (offset int, seq int64, err error) {
	v := m.committed[dir].Load()
	if v < 0 {
		return 0, 0, ErrNotReady
	}
	return m.offset(dir, Half(v&1)), v >> 1, nil
}

// Reset discards all committed state. Only safe while the codec is
// stopped.
func (m *TransferManager) Reset() {
	m.committed[Capture].Store(-1)
	m.committed[Playback].Store(-1)
}

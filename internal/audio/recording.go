// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"crossover/internal/config"
)

// Recorder captures the processed output channels to a multichannel
// 24-bit WAV file. WriteFrame runs on the processing goroutine with a
// pre-allocated interleave buffer; Close may be called from any
// goroutine and the active flag keeps the two from colliding.
type Recorder struct {
	active atomic.Int32

	file    *os.File
	encoder *wav.Encoder
	buf     *goaudio.IntBuffer

	frameSize int
	failures  int
}

// NewRecorder creates the WAV file and prepares the encoder.
func NewRecorder(path string, sampleRate, frameSize int) (*Recorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording %s: %w", path, err)
	}

	r := &Recorder{
		file:      file,
		encoder:   wav.NewEncoder(file, sampleRate, config.BitDepth, config.OutputChannels, 1),
		frameSize: frameSize,
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: config.OutputChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: config.BitDepth,
			Data:           make([]int, frameSize*config.OutputChannels),
		},
	}
	r.active.Store(1)
	return r, nil
}

// WriteFrame interleaves and appends one processed frame. After too
// many consecutive write failures the recorder deactivates itself and
// returns ErrRecorderStopped.
func (r *Recorder) WriteFrame(outputs *[config.OutputChannels][]float64) error {
	if r.active.Load() == 0 {
		return ErrRecorderStopped
	}

	for ch := 0; ch < config.OutputChannels; ch++ {
		src := outputs[ch]
		for i := 0; i < r.frameSize; i++ {
			x := src[i]
			if x > 1 {
				x = 1
			} else if x < -1 {
				x = -1
			}
			r.buf.Data[i*config.OutputChannels+ch] = int(x * fullScale)
		}
	}

	if err := r.encoder.Write(r.buf); err != nil {
		r.failures++
		if r.failures >= config.MaxConsecutiveWriteFailures {
			r.active.Store(0)
			return fmt.Errorf("%w: %v", ErrRecorderStopped, err)
		}
		return fmt.Errorf("wav write: %w", err)
	}
	r.failures = 0
	return nil
}

// Active reports whether the recorder is still accepting frames.
func (r *Recorder) Active() bool {
	return r.active.Load() == 1
}

// Close finalizes the WAV header and closes the file. Idempotent.
func (r *Recorder) Close() error {
	if !r.active.CompareAndSwap(1, 0) && r.encoder == nil {
		return nil
	}

	var firstErr error
	if r.encoder != nil {
		if err := r.encoder.Close(); err != nil {
			firstErr = err
		}
		r.encoder = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.file = nil
	}
	return firstErr
}

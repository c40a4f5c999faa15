// SPDX-License-Identifier: MIT
package audio

import (
	"crossover/internal/config"
)

// InputChannel indexes one of the analog inputs. Validate at the
// boundary; internal code may index slices directly after that.
type InputChannel int

// Valid reports whether the index is inside the fixed input topology.
func (c InputChannel) Valid() bool {
	return c >= 0 && int(c) < config.InputChannels
}

// OutputChannel indexes one of the amplifier outputs.
type OutputChannel int

// Valid reports whether the index is inside the fixed output topology.
func (c OutputChannel) Valid() bool {
	return c >= 0 && int(c) < config.OutputChannels
}

// Pair returns the stereo-link pair index of the output (0 for outputs
// 0/1, 1 for outputs 2/3).
func (c OutputChannel) Pair() int {
	return int(c) / 2
}

// Partner returns the other output of the stereo-link pair.
func (c OutputChannel) Partner() OutputChannel {
	return c ^ 1
}

// Frame is the pre-allocated working arena for one processing pass:
// de-interleaved normalized samples for every input and output channel.
// The engine owns it for the duration of a pass; nothing is retained
// between frames.
type Frame struct {
	Inputs  [config.InputChannels][]float64
	Outputs [config.OutputChannels][]float64

	size    int
	backing []float64
}

// NewFrame allocates a frame arena for the given frame size. All
// channel slices share one backing array.
func NewFrame(frameSize int) *Frame {
	f := &Frame{
		size:    frameSize,
		backing: make([]float64, frameSize*(config.InputChannels+config.OutputChannels)),
	}
	off := 0
	for ch := range f.Inputs {
		f.Inputs[ch] = f.backing[off : off+frameSize]
		off += frameSize
	}
	for ch := range f.Outputs {
		f.Outputs[ch] = f.backing[off : off+frameSize]
		off += frameSize
	}
	return f
}

// Size returns the samples per channel held by the arena.
func (f *Frame) Size() int {
	return f.size
}

// Clear zeroes every channel.
func (f *Frame) Clear() {
	for i := range f.backing {
		f.backing[i] = 0
	}
}

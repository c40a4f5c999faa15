// SPDX-License-Identifier: MIT
package audio

import (
	"crossover/internal/config"
)

// Converter translates between the codec's interleaved 24-bit-in-int32
// transport words and the de-interleaved normalized float64 frame
// arena, applying the per-channel trim (gain, mute, phase) on the way
// through. Both directions are pure and allocation-free.
type Converter struct {
	frameSize int
}

// NewConverter creates a converter for the given frame size.
func NewConverter(frameSize int) *Converter {
	return &Converter{frameSize: frameSize}
}

const fullScale = float64(config.FullScale)

// Decode converts one capture half (interleaved int32 words, frame x
// input channels) into the frame arena. Muted channels decode to
// silence; gain and phase apply per input channel.
func (c *Converter) Decode(src []int32, states []ChannelState, f *Frame) {
	for ch := 0; ch < config.InputChannels; ch++ {
		st := &states[ch]
		dst := f.Inputs[ch]
		if st.Mute {
			for i := range dst {
				dst[i] = 0
			}
			continue
		}
		g := st.gain / fullScale
		if st.Phase {
			g = -g
		}
		for i := 0; i < c.frameSize; i++ {
			dst[i] = float64(src[i*config.InputChannels+ch]) * g
		}
	}
}

// Encode converts the frame arena's output channels into one playback
// half (interleaved int32 words, frame x output channels). Samples are
// hard-clipped to [-1, 1] and quantized by truncation toward zero,
// matching the transport word format.
func (c *Converter) Encode(f *Frame, states []ChannelState, dst []int32) {
	for ch := 0; ch < config.OutputChannels; ch++ {
		st := &states[ch]
		src := f.Outputs[ch]
		if st.Mute {
			for i := 0; i < c.frameSize; i++ {
				dst[i*config.OutputChannels+ch] = 0
			}
			continue
		}
		g := st.gain
		if st.Phase {
			g = -g
		}
		for i := 0; i < c.frameSize; i++ {
			x := src[i] * g
			if x > 1 {
				x = 1
			} else if x < -1 {
				x = -1
			}
			dst[i*config.OutputChannels+ch] = int32(x * fullScale)
		}
	}
}

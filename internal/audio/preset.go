// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"crossover/internal/config"
	"crossover/internal/dsp"
)

// Preset is the serializable aggregate of the whole processing
// configuration. The on-disk format is YAML; the store treats the
// medium as opaque and validates everything on the way back in.
type Preset struct {
	Name string `yaml:"name,omitempty"`

	Inputs  [config.InputChannels]ChannelState       `yaml:"inputs"`
	Outputs [config.OutputChannels]ChannelState      `yaml:"outputs"`
	Routing RoutingConfig                            `yaml:"routing"`
	Stages  [config.OutputChannels]dsp.ChannelConfig `yaml:"stages"`

	StereoLink [config.OutputChannels / 2]bool `yaml:"stereo_link"`
}

// ExportPreset captures the current configuration as a preset.
func (s *Store) ExportPreset(name string) Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Preset{
		Name:       name,
		Inputs:     s.inputs,
		Outputs:    s.outputs,
		Routing:    s.routing,
		Stages:     s.stages,
		StereoLink: s.stereoLink,
	}
}

// ImportPreset applies a preset through the validating setters, so a
// hand-edited or corrupt file can degrade values but never put the
// store into an out-of-range state.
func (s *Store) ImportPreset(p Preset) error {
	for ch := InputChannel(0); int(ch) < config.InputChannels; ch++ {
		in := p.Inputs[ch]
		if err := s.SetInputGain(ch, in.GainDB); err != nil {
			return err
		}
		s.SetInputMute(ch, in.Mute)
		s.SetInputPhase(ch, in.Phase)
		s.SetInputName(ch, in.Name)
	}

	// Unlink while loading so per-channel values land verbatim; links
	// are restored afterwards.
	for pair := 0; pair < config.OutputChannels/2; pair++ {
		s.SetStereoLink(OutputChannel(pair*2), false)
	}

	for ch := OutputChannel(0); int(ch) < config.OutputChannels; ch++ {
		out := p.Outputs[ch]
		if err := s.SetOutputGain(ch, out.GainDB); err != nil {
			return err
		}
		s.SetOutputMute(ch, out.Mute)
		s.SetOutputPhase(ch, out.Phase)
		s.SetOutputName(ch, out.Name)

		s.SetRoutingSource(ch, p.Routing.Outputs[ch].Source)
		s.SetMixRatio(ch, p.Routing.Outputs[ch].MixRatio)

		st := p.Stages[ch]
		s.SetCrossover(ch, st.Crossover)
		s.SetEQEnabled(ch, st.EQ.Enabled)
		for band := 0; band < config.EQBands; band++ {
			s.SetEQBand(ch, band, st.EQ.Bands[band])
		}
		s.SetCompressor(ch, st.Compressor)
		s.SetLimiter(ch, st.Limiter)
		s.SetDelay(ch, st.Delay)
		s.SetGain(ch, st.Gain)
	}

	s.SetMonoSum(p.Routing.MonoSum)

	for pair := 0; pair < config.OutputChannels/2; pair++ {
		if p.StereoLink[pair] {
			s.SetStereoLink(OutputChannel(pair*2), true)
		}
	}

	return nil
}

// SavePreset writes the current configuration to a YAML preset file.
func (s *Store) SavePreset(path, name string) error {
	data, err := yaml.Marshal(s.ExportPreset(name))
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preset %s: %w", path, err)
	}
	return nil
}

// LoadPreset reads a YAML preset file and applies it.
func (s *Store) LoadPreset(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read preset %s: %w", path, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse preset %s: %w", path, err)
	}
	return s.ImportPreset(p)
}

// SPDX-License-Identifier: MIT
package audio

import (
	"github.com/gordonklaus/portaudio"
)

// Device describes an audio device visible to the CLI.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	LowLatencyMs      float64
	HighLatencyMs     float64
}

func newDevice(id int, info *portaudio.DeviceInfo) Device {
	return Device{
		ID:                id,
		Name:              info.Name,
		MaxInputChannels:  info.MaxInputChannels,
		MaxOutputChannels: info.MaxOutputChannels,
		DefaultSampleRate: info.DefaultSampleRate,
		LowLatencyMs:      info.DefaultLowInputLatency.Seconds() * 1000,
		HighLatencyMs:     info.DefaultHighInputLatency.Seconds() * 1000,
	}
}

// Type classifies the device by its channel capabilities.
func (d Device) Type() string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	default:
		return "None"
	}
}

// GetDevices returns all available audio devices. The PortAudio
// subsystem must already be initialized.
func GetDevices() ([]Device, error) {
	infos, err := paDevices()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = newDevice(i, info)
	}
	return devices, nil
}

// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"crossover/internal/config"
)

// Initialize sets up the PortAudio subsystem. Must be called before
// any stream operations and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts the PortAudio subsystem down. Defer it right after
// a successful Initialize.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// InputDevice resolves a capture device by ID. MinDeviceID (-1)
// selects the system default input device.
func InputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == config.MinDeviceID {
		return portaudio.DefaultInputDevice()
	}
	devices, err := paDevices()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid input device ID: %d", deviceID)
	}
	return devices[deviceID], nil
}

// OutputDevice resolves a playback device by ID. MinDeviceID (-1)
// selects the system default output device.
func OutputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == config.MinDeviceID {
		return portaudio.DefaultOutputDevice()
	}
	devices, err := paDevices()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid output device ID: %d", deviceID)
	}
	return devices[deviceID], nil
}

// ListDevices prints every available device with its capabilities.
func ListDevices() error {
	devices, err := GetDevices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")

	for _, device := range devices {
		fmt.Printf("[%d] %s (%s)\n", device.ID, device.Name, device.Type())
		fmt.Printf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Printf("    Latency: Low=%.2fms, High=%.2fms\n",
			device.LowLatencyMs, device.HighLatencyMs)
		fmt.Println()
	}

	return nil
}

func paDevices() ([]*portaudio.DeviceInfo, error) {
	return portaudio.Devices()
}

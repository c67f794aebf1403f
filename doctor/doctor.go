// Package doctor runs one-shot environment checks: key event access, the
// microphone, clipboard access, the paste mechanism and the provider
// credential. It prints a PASS/FAIL line per check.
package doctor

import (
	"fmt"
	"time"

	cb "github.com/atotto/clipboard"

	"murmur/audio"
	"murmur/config"
	"murmur/gesture"
	"murmur/output"
	"murmur/secret"
)

// Run executes all checks and returns an exit code (0=all pass, 1=any fail).
func Run(cfg config.Config, secrets secret.Store) int {
	fmt.Println("murmur doctor - system diagnostics")
	fmt.Println("==================================")

	allPass := true
	for _, check := range []struct {
		name string
		fn   func(config.Config, secret.Store) (string, error)
	}{
		{"key events", checkGesture},
		{"microphone", checkMicrophone},
		{"clipboard", checkClipboard},
		{"paste", checkPaste},
		{"credential", checkCredential},
	} {
		detail, err := check.fn(cfg, secrets)
		if err != nil {
			fmt.Printf("  FAIL  %-10s %v\n", check.name, err)
			allPass = false
			continue
		}
		fmt.Printf("  PASS  %-10s %s\n", check.name, detail)
	}

	if allPass {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nSome checks failed. See details above.")
	return 1
}

func checkGesture(config.Config, secret.Store) (string, error) {
	return gesture.Diagnose()
}

// checkMicrophone opens the configured device and samples levels for half a
// second. A level of exactly zero usually means the wrong device or a muted
// capture source, but still passes: silence is valid input.
func checkMicrophone(cfg config.Config, _ secret.Store) (string, error) {
	ctx, err := audio.NewContext()
	if err != nil {
		return "", fmt.Errorf("audio context: %w", err)
	}
	defer ctx.Close()

	device, err := audio.FindDevice(ctx, cfg.InputDevice)
	if err != nil {
		return "", err
	}
	dev, err := ctx.NewCapture(device, audio.CaptureConfig{SampleRate: 16000, Channels: 1})
	if err != nil {
		return "", fmt.Errorf("capture device: %w", err)
	}
	defer dev.Close()

	var peak float64
	dev.SetCallback(func(data []byte, _ uint32) {
		if l := peakLevel(data); l > peak {
			peak = l
		}
	})
	if err := dev.Start(); err != nil {
		return "", fmt.Errorf("start capture: %w", err)
	}
	time.Sleep(500 * time.Millisecond)
	dev.Stop()
	dev.ClearCallback()

	return fmt.Sprintf("%s (peak %.0f%%)", dev.DeviceName(), peak*100), nil
}

func peakLevel(data []byte) float64 {
	var peak float64
	for i := 0; i+1 < len(data); i += 2 {
		s := int16(uint16(data[i]) | uint16(data[i+1])<<8)
		v := float64(s) / 32768.0
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

func checkClipboard(config.Config, secret.Store) (string, error) {
	saved, savedErr := cb.ReadAll()
	if err := cb.WriteAll("murmur-doctor"); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	got, err := cb.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read back: %w", err)
	}
	if savedErr == nil {
		cb.WriteAll(saved)
	}
	if got != "murmur-doctor" {
		return "", fmt.Errorf("read back %q", got)
	}
	return "write/read OK", nil
}

func checkPaste(config.Config, secret.Store) (string, error) {
	return output.VerifyPaste()
}

func checkCredential(cfg config.Config, secrets secret.Store) (string, error) {
	if _, err := secrets.Get(cfg.Provider); err != nil {
		return "", fmt.Errorf("%s: %w", cfg.Provider, err)
	}
	return cfg.Provider + " key present", nil
}

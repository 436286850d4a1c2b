package frame

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

// DeviceSource grabs single frames from a camera by shelling out to ffmpeg.
type DeviceSource struct {
	Device  string
	Command string
	Options Options
	Timeout time.Duration

	mu       sync.Mutex
	bin      string
	open     bool
	inflight context.CancelFunc
}

// NewDeviceSource returns an unopened source. An empty command means ffmpeg.
func NewDeviceSource(device, command string, opts Options) *DeviceSource {
	if command == "" {
		command = "ffmpeg"
	}
	return &DeviceSource{Device: device, Command: command, Options: opts, Timeout: 10 * time.Second}
}

// Open checks that the capture command and the device exist.
func (s *DeviceSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bin, err := exec.LookPath(s.Command)
	if err != nil {
		return fmt.Errorf("%w: %s not found", ErrDeviceUnavailable, s.Command)
	}
	if strings.HasPrefix(s.Device, "/dev/") {
		if _, err := os.Stat(s.Device); err != nil {
			return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}
	}
	s.bin = bin
	s.open = true
	return nil
}

// Capture grabs one frame. Close cancels a grab in flight.
func (s *DeviceSource) Capture(ctx context.Context) (*Frame, error) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: source not open", ErrDeviceUnavailable)
	}
	if s.inflight != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: capture already in progress", ErrDeviceUnavailable)
	}
	if s.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, s.Timeout)
		defer cancelTimeout()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.inflight = cancel
	bin := s.bin
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight = nil
		s.mu.Unlock()
		cancel()
	}()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, captureArgs(s.Device)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v: %s", ErrDeviceUnavailable, err, lastLine(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: no frame data", ErrDeviceUnavailable)
	}

	f, err := Normalize(stdout.Bytes(), KindCamera, s.Options)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Close releases the device. It is safe to call more than once.
func (s *DeviceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	if s.inflight != nil {
		s.inflight()
	}
	return nil
}

func captureArgs(device string) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	switch runtime.GOOS {
	case "darwin":
		if device == "" || strings.HasPrefix(device, "/dev/") {
			device = "0"
		}
		args = append(args, "-f", "avfoundation", "-framerate", "30", "-i", device)
	default:
		args = append(args, "-f", "v4l2", "-i", device)
	}
	return append(args, "-frames:v", "1", "-f", "image2pipe", "-vcodec", "mjpeg", "-")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "no output"
	}
	return s
}

// IsUnavailable reports whether err means the camera path cannot be used.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable)
}

package camera

import (
	"bufio"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"filament-station/config"
)

// FrameSource produces one decode attempt per poll: the payload of a QR code
// seen since the last call, or ok=false when nothing was decoded. A non-nil
// error means the camera is gone and polling must stop.
type FrameSource interface {
	Next() (payload string, ok bool, err error)
	Close() error
}

// ZbarcamSource decodes QR codes by running an external decoder process
// (zbarcam by default) and reading raw payload lines from its stdout. This
// keeps the station free of cgo camera bindings.
type ZbarcamSource struct {
	cmd   *exec.Cmd
	lines chan string
	done  chan struct{}
	err   error
}

// NewZbarcamSource starts the decoder process for the configured device.
func NewZbarcamSource(cfg *config.CameraConfig) (*ZbarcamSource, error) {
	args := cfg.Command
	if len(args) == 0 {
		args = []string{"zbarcam", "--raw"}
	}
	if cfg.Device != "" {
		args = append(append([]string{}, args...), cfg.Device)
	}

	cmd := exec.Command(args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open decoder stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start camera decoder %q: %w", args[0], err)
	}

	src := &ZbarcamSource{
		cmd:   cmd,
		lines: make(chan string, 8),
		done:  make(chan struct{}),
	}

	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case src.lines <- line:
			default:
				// Consumer is behind; drop rather than block the pipe.
			}
		}
		if err := cmd.Wait(); err != nil {
			src.err = fmt.Errorf("camera decoder exited: %w", err)
		} else {
			src.err = errors.New("camera decoder exited")
		}
		close(src.done)
	}()

	return src, nil
}

// Next returns the oldest undelivered decode, if any. Once the decoder
// process has exited and its output is drained, Next reports the exit error.
func (s *ZbarcamSource) Next() (string, bool, error) {
	select {
	case line := <-s.lines:
		return line, true, nil
	default:
	}

	select {
	case <-s.done:
		return "", false, s.err
	default:
		return "", false, nil
	}
}

// Close stops the decoder process, releasing the camera.
func (s *ZbarcamSource) Close() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	return nil
}

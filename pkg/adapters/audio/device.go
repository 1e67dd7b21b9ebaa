// Package audio provides capture devices for the recorder: a prerecorded
// file and an external recorder process such as ffmpeg.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/audio"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

// DefaultRecordCommand captures the default PulseAudio source as webm/opus
// on stdout.
const DefaultRecordCommand = "ffmpeg -hide_banner -loglevel error -f pulse -i default -c:a libopus -f webm -"

// FileDevice serves a prerecorded clip. The file is read whole on Open, so
// stopping right away still yields the complete clip.
type FileDevice struct {
	Path string
}

func (d FileDevice) Open(ctx context.Context) (io.ReadCloser, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			return nil, domain.Permission(audio.MsgDenied, err)
		}
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// CommandDevice runs an external recorder and streams its stdout. Closing
// the stream stops the process.
type CommandDevice struct {
	Command string
}

// ParseCommand splits a shell-style command line.
func ParseCommand(command string) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultRecordCommand
	}
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse record command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty record command")
	}
	return args, nil
}

func (d CommandDevice) Open(ctx context.Context) (io.ReadCloser, error) {
	args, err := ParseCommand(d.Command)
	if err != nil {
		return nil, err
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		return nil, domain.Permission(audio.MsgDenied, err)
	}

	cmd := exec.Command(path, args[1:]...) //nolint:gosec // command comes from local config
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, domain.Permission(audio.MsgDenied, err)
	}
	return &processStream{cmd: cmd, stdout: stdout, drained: make(chan struct{})}, nil
}

// drainTimeout bounds how long Close waits for the recorder to flush after
// the interrupt before killing it.
const drainTimeout = 5 * time.Second

type processStream struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	drained   chan struct{}
	eofOnce   sync.Once
	closeOnce sync.Once
	err       error
}

func (p *processStream) Read(b []byte) (int, error) {
	n, err := p.stdout.Read(b)
	if err != nil {
		p.eofOnce.Do(func() { close(p.drained) })
	}
	return n, err
}

// Close interrupts the recorder so it can flush its container, waits for the
// reader to drain stdout, then reaps the process. Wait closes the pipe, so
// it must come after the drain.
func (p *processStream) Close() error {
	p.closeOnce.Do(func() {
		_ = p.cmd.Process.Signal(os.Interrupt)
		select {
		case <-p.drained:
		case <-time.After(drainTimeout):
			_ = p.cmd.Process.Kill()
		}

		err := p.cmd.Wait()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			p.err = err
		}
	})
	return p.err
}

var (
	_ ports.AudioDevice = FileDevice{}
	_ ports.AudioDevice = CommandDevice{}
)

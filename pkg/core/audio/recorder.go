// Package audio records voice notes from a capture device into a single
// clip. A Recorder holds the device only while recording.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

// State of a Recorder.
type State int

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

var (
	ErrAlreadyRecording = errors.New("audio: already recording")
	ErrNotRecording     = errors.New("audio: not recording")
)

// MsgDenied is shown when the device cannot be acquired.
const MsgDenied = "Microphone access denied or not supported."

// Recorder captures one clip at a time from a device. Starting a new
// recording discards the previous clip.
type Recorder struct {
	device   ports.AudioDevice
	mimeType string

	mu     sync.Mutex
	state  State
	stream io.ReadCloser
	buf    *bytes.Buffer
	done   chan error
	clip   *Clip
}

func NewRecorder(device ports.AudioDevice, mimeType string) *Recorder {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return &Recorder{device: device, mimeType: mimeType}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Clip returns the last finished clip, if any.
func (r *Recorder) Clip() (Clip, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clip == nil {
		return Clip{}, false
	}
	return *r.clip, true
}

// Start acquires the device and begins buffering. A device that refuses is
// reported as a permission error and the recorder stays idle.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Recording {
		return ErrAlreadyRecording
	}
	r.clip = nil

	stream, err := r.device.Open(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrPermission) {
			return err
		}
		return domain.Permission(MsgDenied, err)
	}

	buf := &bytes.Buffer{}
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(buf, stream)
		done <- err
	}()

	r.state = Recording
	r.stream = stream
	r.buf = buf
	r.done = done
	return nil
}

// Stop releases the device and assembles everything captured into a clip.
func (r *Recorder) Stop() (Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Recording {
		return Clip{}, ErrNotRecording
	}

	data, err := r.finish()
	if err != nil {
		return Clip{}, err
	}
	clip := Clip{MIMEType: r.mimeType, Data: data}
	r.clip = &clip
	return clip, nil
}

// Release drops any recording in progress and frees the device. Safe to
// call in any state, any number of times.
func (r *Recorder) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Recording {
		return nil
	}
	_, err := r.finish()
	return err
}

// finish closes the stream, waits for the copier and resets to Idle.
// Read errors after the close are expected and ignored. Callers hold mu.
func (r *Recorder) finish() ([]byte, error) {
	closeErr := r.stream.Close()
	copyErr := <-r.done
	data := r.buf.Bytes()

	r.state = Idle
	r.stream = nil
	r.buf = nil
	r.done = nil

	if closeErr != nil {
		return nil, fmt.Errorf("release audio device: %w", closeErr)
	}
	if copyErr != nil && !isClosedErr(copyErr) {
		return nil, fmt.Errorf("read audio device: %w", copyErr)
	}
	return data, nil
}

func isClosedErr(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.EOF) || errors.Is(err, fs.ErrClosed)
}

// Record runs body between Start and Stop. The device is released on every
// path, including when body fails or panics.
func Record(ctx context.Context, r *Recorder, body func(ctx context.Context) error) (Clip, error) {
	if err := r.Start(ctx); err != nil {
		return Clip{}, err
	}
	defer r.Release()

	if err := body(ctx); err != nil {
		return Clip{}, err
	}
	return r.Stop()
}

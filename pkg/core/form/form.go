// Package form holds the add/edit link form: its fields, whether it is
// creating or editing, local validation, submission and the voice note
// recorder.
package form

import (
	"context"
	"errors"
	"sync"

	"github.com/wadjakorntonsri/linkshelf/pkg/core/audio"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/validation"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

// ErrSubmitInFlight is returned when Submit is called while a previous
// submission has not finished.
var ErrSubmitInFlight = errors.New("form: submission already in progress")

// ErrNoRecorder is returned by the recording methods when the form has no
// capture device.
var ErrNoRecorder = errors.New("form: no audio device configured")

// Mode is either Creating or Editing.
type Mode interface {
	isMode()
}

// Creating submits a new link.
type Creating struct{}

// Editing replaces the link with ID.
type Editing struct {
	ID int64
}

func (Creating) isMode() {}
func (Editing) isMode()  {}

// Outcome says what a successful Submit did.
type Outcome int

const (
	Created Outcome = iota + 1
	Updated
)

type Form struct {
	api       ports.LinkAPI
	validator *validation.Validator
	recorder  *audio.Recorder

	mu      sync.Mutex
	fields  domain.LinkFields
	mode    Mode
	loading bool
}

// New creates an empty form in Creating mode. recorder may be nil.
func New(api ports.LinkAPI, recorder *audio.Recorder) *Form {
	return &Form{
		api:       api,
		validator: validation.New(),
		recorder:  recorder,
		mode:      Creating{},
	}
}

func (f *Form) Fields() domain.LinkFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// SetFields replaces the pending values, keeping the mode.
func (f *Form) SetFields(fields domain.LinkFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = fields
}

func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// EditingID returns the id being edited, if any.
func (f *Form) EditingID() (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.mode.(Editing); ok {
		return e.ID, true
	}
	return 0, false
}

// BeginEdit loads link into the form and switches to Editing.
func (f *Form) BeginEdit(link domain.Link) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = link.Fields()
	f.mode = Editing{ID: link.ID}
}

// CancelEdit clears the form and returns to Creating.
func (f *Form) CancelEdit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Form) reset() {
	f.fields = domain.LinkFields{}
	f.mode = Creating{}
}

// Validate checks the pending fields without touching the network.
func (f *Form) Validate() error {
	return f.validator.ValidateLink(f.Fields())
}

// Submit validates locally, then creates or updates through the API. On
// success the form is cleared and back in Creating, unless its fields or mode
// changed while the request was in flight; on failure it keeps its fields and
// mode.
func (f *Form) Submit(ctx context.Context) (*domain.Link, Outcome, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil, 0, ErrSubmitInFlight
	}
	pending := f.fields
	fields := pending.Normalize()
	mode := f.mode
	if err := f.validator.ValidateLink(fields); err != nil {
		f.mu.Unlock()
		return nil, 0, err
	}
	f.loading = true
	f.mu.Unlock()

	var (
		link    *domain.Link
		outcome Outcome
		err     error
	)
	switch m := mode.(type) {
	case Editing:
		link, err = f.api.UpdateLink(ctx, m.ID, fields)
		outcome = Updated
	default:
		link, err = f.api.CreateLink(ctx, fields)
		outcome = Created
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		return nil, 0, err
	}
	// Leave the form alone if it was edited while the request was out.
	if f.mode == mode && f.fields == pending {
		f.reset()
	}
	return link, outcome, nil
}

// StartRecording begins a voice note. The pending audioNote is dropped once
// the device is acquired, so an abandoned recording leaves none.
func (f *Form) StartRecording(ctx context.Context) error {
	if f.recorder == nil {
		return ErrNoRecorder
	}
	if err := f.recorder.Start(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields.AudioNote = ""
	return nil
}

// StopRecording finishes the voice note and stores it as the pending
// audioNote.
func (f *Form) StopRecording() error {
	if f.recorder == nil {
		return ErrNoRecorder
	}
	clip, err := f.recorder.Stop()
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields.AudioNote = clip.DataURI()
	return nil
}

// SetAudioClip stores an already captured clip as the pending audioNote.
func (f *Form) SetAudioClip(clip audio.Clip) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields.AudioNote = clip.DataURI()
}

// Recording reports whether a voice note is being captured.
func (f *Form) Recording() bool {
	return f.recorder != nil && f.recorder.State() == audio.Recording
}

// Close releases the capture device if a recording is still open.
func (f *Form) Close() error {
	if f.recorder == nil {
		return nil
	}
	return f.recorder.Release()
}

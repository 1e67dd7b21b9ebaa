package form

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/audio"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/validation"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

type call struct {
	method string
	id     int64
	fields domain.LinkFields
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []call
	err   error
	gate  chan struct{} // when set, mutations wait on it
}

func (f *fakeAPI) record(c call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	gate, err := f.gate, f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAPI) ListLinks(ctx context.Context) ([]domain.Link, error) {
	return nil, f.record(call{method: "GET"})
}

func (f *fakeAPI) CreateLink(ctx context.Context, fields domain.LinkFields) (*domain.Link, error) {
	if err := f.record(call{method: "POST", fields: fields}); err != nil {
		return nil, err
	}
	l := &domain.Link{ID: 1}
	l.Apply(fields)
	return l, nil
}

func (f *fakeAPI) UpdateLink(ctx context.Context, id int64, fields domain.LinkFields) (*domain.Link, error) {
	if err := f.record(call{method: "PUT", id: id, fields: fields}); err != nil {
		return nil, err
	}
	l := &domain.Link{ID: id}
	l.Apply(fields)
	return l, nil
}

func (f *fakeAPI) DeleteLink(ctx context.Context, id int64) error {
	return f.record(call{method: "DELETE", id: id})
}

func (f *fakeAPI) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func TestSubmitRejectsLocally(t *testing.T) {
	tests := []struct {
		name    string
		fields  domain.LinkFields
		wantMsg string
	}{
		{name: "empty title", fields: domain.LinkFields{URL: "https://x.io"}, wantMsg: validation.MsgRequired},
		{name: "blank title", fields: domain.LinkFields{Title: "  ", URL: "https://x.io"}, wantMsg: validation.MsgRequired},
		{name: "bad url", fields: domain.LinkFields{Title: "X", URL: "not-a-url"}, wantMsg: validation.MsgInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			f := New(api, nil)
			f.SetFields(tt.fields)

			_, _, err := f.Submit(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Empty(t, api.Calls())
			assert.Equal(t, tt.fields, f.Fields())
		})
	}
}

func TestSubmitCreate(t *testing.T) {
	api := &fakeAPI{}
	f := New(api, nil)
	f.SetFields(domain.LinkFields{Title: "Rust Book", URL: "https://doc.rust-lang.org/book/", Tags: "rust,books"})

	link, outcome, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
	assert.Equal(t, "Rust Book", link.Title)

	calls := api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "POST", calls[0].method)
	assert.Equal(t, domain.LinkFields{}, f.Fields())
	assert.Equal(t, Creating{}, f.Mode())
}

func TestSubmitEdit(t *testing.T) {
	api := &fakeAPI{}
	f := New(api, nil)

	f.BeginEdit(domain.Link{ID: 9, Title: "Old", URL: "https://old.io", Tags: "x"})
	id, ok := f.EditingID()
	require.True(t, ok)
	assert.Equal(t, int64(9), id)
	assert.Equal(t, "Old", f.Fields().Title)

	fields := f.Fields()
	fields.Title = "New"
	f.SetFields(fields)

	_, outcome, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)

	calls := api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "PUT", calls[0].method)
	assert.Equal(t, int64(9), calls[0].id)
	assert.Equal(t, "New", calls[0].fields.Title)

	_, ok = f.EditingID()
	assert.False(t, ok)
	assert.Equal(t, Creating{}, f.Mode())
}

func TestSubmitFailureKeepsState(t *testing.T) {
	api := &fakeAPI{err: domain.Transport(errors.New("connection refused"))}
	f := New(api, nil)
	f.BeginEdit(domain.Link{ID: 3, Title: "T", URL: "https://t.io"})

	_, _, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, Editing{ID: 3}, f.Mode())
	assert.Equal(t, "T", f.Fields().Title)
	assert.False(t, f.Loading())
}

func TestSubmitInFlight(t *testing.T) {
	api := &fakeAPI{gate: make(chan struct{})}
	f := New(api, nil)
	f.SetFields(domain.LinkFields{Title: "A", URL: "https://a.io"})

	done := make(chan error, 1)
	go func() {
		_, _, err := f.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, f.Loading, timeout, tick)
	_, _, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(api.gate)
	require.NoError(t, <-done)
	assert.Len(t, api.Calls(), 1)
}

func TestCancelEdit(t *testing.T) {
	f := New(&fakeAPI{}, nil)
	f.BeginEdit(domain.Link{ID: 4, Title: "T", URL: "https://t.io"})
	f.CancelEdit()

	assert.Equal(t, Creating{}, f.Mode())
	assert.Equal(t, domain.LinkFields{}, f.Fields())
}

type bytesDevice struct{ data string }

func (d bytesDevice) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewBufferString(d.data)), nil
}

type deniedDevice struct{}

func (deniedDevice) Open(ctx context.Context) (io.ReadCloser, error) {
	return nil, errors.New("NotAllowedError")
}

func TestRecordingAttachesAudioNote(t *testing.T) {
	f := New(&fakeAPI{}, audio.NewRecorder(bytesDevice{data: "opus"}, ""))
	defer f.Close()

	require.NoError(t, f.StartRecording(context.Background()))
	assert.True(t, f.Recording())
	require.NoError(t, f.StopRecording())
	assert.False(t, f.Recording())

	assert.Equal(t, "data:audio/webm;base64,b3B1cw==", f.Fields().AudioNote)
}

func TestRecordingDenied(t *testing.T) {
	f := New(&fakeAPI{}, audio.NewRecorder(deniedDevice{}, ""))
	f.SetFields(domain.LinkFields{Title: "Keep me"})

	err := f.StartRecording(context.Background())
	assert.ErrorIs(t, err, domain.ErrPermission)
	assert.False(t, f.Recording())
	assert.Equal(t, "Keep me", f.Fields().Title)
	assert.NoError(t, f.Close())
}

func TestNoRecorder(t *testing.T) {
	f := New(&fakeAPI{}, nil)
	assert.ErrorIs(t, f.StartRecording(context.Background()), ErrNoRecorder)
	assert.ErrorIs(t, f.StopRecording(), ErrNoRecorder)
	assert.NoError(t, f.Close())
}

func TestRestartRecordingDropsPreviousClip(t *testing.T) {
	api := &fakeAPI{}
	f := New(api, audio.NewRecorder(bytesDevice{data: "first"}, ""))
	f.SetFields(domain.LinkFields{Title: "Talk", URL: "https://talk.io"})

	require.NoError(t, f.StartRecording(context.Background()))
	require.NoError(t, f.StopRecording())
	assert.Equal(t, "data:audio/webm;base64,Zmlyc3Q=", f.Fields().AudioNote)

	require.NoError(t, f.StartRecording(context.Background()))
	assert.Empty(t, f.Fields().AudioNote)
	require.NoError(t, f.Close())
	assert.Empty(t, f.Fields().AudioNote)
	assert.Equal(t, "Talk", f.Fields().Title)

	_, _, err := f.Submit(context.Background())
	require.NoError(t, err)
	calls := api.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].fields.AudioNote)
}

func TestDeniedRestartKeepsClip(t *testing.T) {
	f := New(&fakeAPI{}, audio.NewRecorder(deniedDevice{}, ""))
	f.SetAudioClip(audio.Clip{MIMEType: "audio/webm", Data: []byte("first")})

	assert.ErrorIs(t, f.StartRecording(context.Background()), domain.ErrPermission)
	assert.Equal(t, "data:audio/webm;base64,Zmlyc3Q=", f.Fields().AudioNote)
}

func TestSubmitKeepsChangesMadeInFlight(t *testing.T) {
	tests := []struct {
		name      string
		change    func(f *Form)
		wantMode  Mode
		wantTitle string
	}{
		{
			name:      "begin edit",
			change:    func(f *Form) { f.BeginEdit(domain.Link{ID: 5, Title: "Other", URL: "https://other.io"}) },
			wantMode:  Editing{ID: 5},
			wantTitle: "Other",
		},
		{
			name:      "set fields",
			change:    func(f *Form) { f.SetFields(domain.LinkFields{Title: "Next", URL: "https://next.io"}) },
			wantMode:  Creating{},
			wantTitle: "Next",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{gate: make(chan struct{})}
			f := New(api, nil)
			f.SetFields(domain.LinkFields{Title: "A", URL: "https://a.io"})

			done := make(chan error, 1)
			go func() {
				_, _, err := f.Submit(context.Background())
				done <- err
			}()

			require.Eventually(t, f.Loading, timeout, tick)
			tt.change(f)
			close(api.gate)
			require.NoError(t, <-done)

			assert.Equal(t, tt.wantMode, f.Mode())
			assert.Equal(t, tt.wantTitle, f.Fields().Title)
		})
	}
}

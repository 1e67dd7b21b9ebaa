// Package shell owns the client-side link list and everything derived from
// it. Mutations never patch the list locally; each one is followed by a full
// Refresh.
package shell

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/form"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/query"
	"github.com/wadjakorntonsri/linkshelf/pkg/logger"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

const (
	MsgFetchFailed  = "Failed to fetch links"
	MsgLinkAdded    = "Link added"
	MsgLinkUpdated  = "Link updated"
	MsgLinkDeleted  = "Link deleted"
	MsgSaveFailed   = "Error saving link"
	MsgDeleteFailed = "Error deleting link"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient message for the user.
type Notification struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

type Option func(*Shell)

func WithLogger(log *slog.Logger) Option {
	return func(s *Shell) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Shell) { s.now = now }
}

// WithPerPage overrides query.ItemsPerPage.
func WithPerPage(n int) Option {
	return func(s *Shell) {
		if n > 0 {
			s.perPage = n
		}
	}
}

type Shell struct {
	api  ports.LinkAPI
	form *form.Form
	log  *slog.Logger
	now  func() time.Time

	mu       sync.Mutex
	links    []domain.Link
	search   string
	tag      string
	page     int
	perPage  int
	seq      uint64 // last issued fetch
	applied  uint64 // last fetch whose result was applied
	inflight int
	notes    []Notification
}

// New creates a shell on page 1 with no filters. f may be nil, in which case
// one without a recorder is created.
func New(api ports.LinkAPI, f *form.Form, opts ...Option) *Shell {
	if f == nil {
		f = form.New(api, nil)
	}
	s := &Shell{
		api:     api,
		form:    f,
		log:     logger.Discard().Logger,
		now:     time.Now,
		page:    1,
		perPage: query.ItemsPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Shell) Form() *form.Form { return s.form }

// Refresh replaces the list with the server's. A response that arrives after
// a newer one has been applied is dropped.
func (s *Shell) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	mine := s.seq
	s.inflight++
	s.mu.Unlock()

	links, err := s.api.ListLinks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if mine <= s.applied {
		s.log.Debug("dropping stale link list", "seq", mine, "applied", s.applied)
		return nil
	}
	s.applied = mine

	if err != nil {
		s.log.Error("failed to fetch links", "error", err)
		s.notify(LevelError, MsgFetchFailed)
		return err
	}
	if links == nil {
		links = []domain.Link{}
	}
	s.links = links
	s.clampPage()
	return nil
}

// Links returns the full unfiltered list.
func (s *Shell) Links() []domain.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Link(nil), s.links...)
}

// Find looks a link up in the current list.
func (s *Shell) Find(id int64) (domain.Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Link{}, false
}

// View is the current page under the active search and tag.
func (s *Shell) View() query.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Run(s.links, s.params())
}

// Facet lists the distinct tags of the full list.
func (s *Shell) Facet() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Facet(s.links)
}

func (s *Shell) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

func (s *Shell) Tag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tag
}

func (s *Shell) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Shell) SetSearch(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = q
	s.page = 1
}

func (s *Shell) SetTagFilter(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tag = tag
	s.page = 1
}

// ToggleTag selects tag, or clears the filter when tag is already selected.
func (s *Shell) ToggleTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tag == tag {
		s.tag = ""
	} else {
		s.tag = tag
	}
	s.page = 1
}

// SetPage moves to page, clamped to the pages of the filtered list.
func (s *Shell) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
	s.clampPage()
}

// Loading reports whether a fetch or a form submission is in flight.
func (s *Shell) Loading() bool {
	s.mu.Lock()
	fetching := s.inflight > 0
	s.mu.Unlock()
	return fetching || s.form.Loading()
}

// Edit loads a link from the current list into the form.
func (s *Shell) Edit(id int64) error {
	link, ok := s.Find(id)
	if !ok {
		return domain.NotFoundf("link %d not found", id)
	}
	s.form.BeginEdit(link)
	return nil
}

// Submit sends the form and refreshes the list on success.
func (s *Shell) Submit(ctx context.Context) (*domain.Link, error) {
	link, outcome, err := s.form.Submit(ctx)
	if err != nil {
		if !errors.Is(err, form.ErrSubmitInFlight) {
			s.fail(err, MsgSaveFailed)
		}
		return nil, err
	}

	msg := MsgLinkAdded
	if outcome == form.Updated {
		msg = MsgLinkUpdated
	}
	s.mu.Lock()
	s.notify(LevelSuccess, msg)
	s.mu.Unlock()

	return link, s.Refresh(ctx)
}

// Delete removes a link and refreshes. Deleting the link under edit cancels
// the edit.
func (s *Shell) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteLink(ctx, id); err != nil {
		s.fail(err, MsgDeleteFailed)
		return err
	}
	if editing, ok := s.form.EditingID(); ok && editing == id {
		s.form.CancelEdit()
	}

	s.mu.Lock()
	s.notify(LevelSuccess, MsgLinkDeleted)
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Notifications returns pending notifications without clearing them.
func (s *Shell) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notes...)
}

// Drain returns pending notifications and clears them.
func (s *Shell) Drain() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.notes
	s.notes = nil
	return notes
}

// Dismiss drops one notification.
func (s *Shell) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return
		}
	}
}

func (s *Shell) fail(err error, fallback string) {
	s.log.Warn("link mutation failed", "error", err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify(LevelError, Message(err, fallback))
}

// Message picks the text to show for err: the error's own message for
// client-side kinds, fallback for internal failures.
func Message(err error, fallback string) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Code != domain.CodeInternal && de.Message != "" {
		return de.Message
	}
	return fallback
}

// notify appends a notification. Callers hold s.mu.
func (s *Shell) notify(level Level, msg string) {
	s.notes = append(s.notes, Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: msg,
		At:      s.now(),
	})
}

func (s *Shell) params() query.Params {
	return query.Params{Search: s.search, Tag: s.tag, Page: s.page, PerPage: s.perPage}
}

// clampPage keeps page within the filtered list. Callers hold s.mu.
func (s *Shell) clampPage() {
	n := len(query.Filter(s.links, s.search, s.tag))
	s.page = query.ClampPage(s.page, query.TotalPages(n, s.perPage))
}

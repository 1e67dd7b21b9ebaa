package domain

import (
	"strings"
	"time"
)

// Link represents a saved bookmark
type Link struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Tags        string    `json:"tags"` // Comma-separated, stored as one string
	Description string    `json:"description"`
	AudioNote   string    `json:"audioNote"` // data:audio/webm;base64,...
	CreatedAt   time.Time `json:"createdAt"`
}

// LinkFields is the editable part of a Link, used for create and full-replace update
type LinkFields struct {
	Title       string `json:"title" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Tags        string `json:"tags,omitempty"`
	Description string `json:"description,omitempty"`
	AudioNote   string `json:"audioNote,omitempty"`
}

// Normalize trims surrounding whitespace from title and url
func (f LinkFields) Normalize() LinkFields {
	f.Title = strings.TrimSpace(f.Title)
	f.URL = strings.TrimSpace(f.URL)
	return f
}

// Fields returns the editable part of the link
func (l Link) Fields() LinkFields {
	return LinkFields{
		Title:       l.Title,
		URL:         l.URL,
		Tags:        l.Tags,
		Description: l.Description,
		AudioNote:   l.AudioNote,
	}
}

// Apply replaces every editable field. ID and CreatedAt are left alone.
func (l *Link) Apply(f LinkFields) {
	l.Title = f.Title
	l.URL = f.URL
	l.Tags = f.Tags
	l.Description = f.Description
	l.AudioNote = f.AudioNote
}

// TagList splits the tags string, see SplitTags
func (l Link) TagList() []string {
	return SplitTags(l.Tags)
}

// SplitTags splits a comma-separated tag string and trims every segment.
// Empty segments are kept; an empty input yields nil.
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
)

func TestValidateLink(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		fields  domain.LinkFields
		wantMsg string
	}{
		{
			name:   "valid",
			fields: domain.LinkFields{Title: "Rust Book", URL: "https://doc.rust-lang.org/book/"},
		},
		{
			name:    "empty title",
			fields:  domain.LinkFields{Title: "", URL: "https://x.io"},
			wantMsg: MsgRequired,
		},
		{
			name:    "whitespace title",
			fields:  domain.LinkFields{Title: "   ", URL: "https://x.io"},
			wantMsg: MsgRequired,
		},
		{
			name:    "missing url",
			fields:  domain.LinkFields{Title: "X"},
			wantMsg: MsgRequired,
		},
		{
			name:    "relative url",
			fields:  domain.LinkFields{Title: "X", URL: "not-a-url"},
			wantMsg: MsgInvalidURL,
		},
		{
			name:    "required wins over malformed url",
			fields:  domain.LinkFields{Title: "", URL: "not-a-url"},
			wantMsg: MsgRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateLink(tt.fields)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidateUsesJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(domain.LinkFields{URL: "https://x.io"})
	require.Error(t, err)

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	details, ok := derr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["title"])
}

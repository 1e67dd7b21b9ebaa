package audio

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultMIMEType is the container browsers record voice notes in.
const DefaultMIMEType = "audio/webm"

// Clip is one finished recording.
type Clip struct {
	MIMEType string
	Data     []byte
}

// DataURI encodes the clip as data:<mime>;base64,<payload>.
func (c Clip) DataURI() string {
	mime := c.MIMEType
	if mime == "" {
		mime = DefaultMIMEType
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(c.Data)
}

// ParseDataURI decodes a base64 data-URI produced by DataURI.
func ParseDataURI(uri string) (Clip, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Clip{}, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Clip{}, fmt.Errorf("data URI has no payload")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Clip{}, fmt.Errorf("data URI is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Clip{}, fmt.Errorf("decode data URI: %w", err)
	}
	return Clip{MIMEType: mime, Data: data}, nil
}

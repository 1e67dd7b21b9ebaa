package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/apiclient"
	audiodev "github.com/wadjakorntonsri/linkshelf/pkg/adapters/audio"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/audio"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/form"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/shell"
)

func (c *cli) newClient() *apiclient.Client {
	return apiclient.New(c.v.GetString(cfgKeyAPIURL))
}

// newShell builds a shell over the configured server. rec may be nil.
func (c *cli) newShell(rec *audio.Recorder) *shell.Shell {
	api := c.newClient()
	return shell.New(api, form.New(api, rec),
		shell.WithLogger(c.log.Logger),
		shell.WithPerPage(c.v.GetInt(cfgKeyPerPage)),
	)
}

// recorder returns the capture device for --audio-file or --record, or nil
// when neither is set.
func (c *cli) recorder(audioFile string, record time.Duration) *audio.Recorder {
	switch {
	case audioFile != "":
		return audio.NewRecorder(audiodev.FileDevice{Path: audioFile}, mimeFor(audioFile))
	case record > 0:
		return audio.NewRecorder(audiodev.CommandDevice{Command: c.v.GetString(cfgKeyRecordCommand)}, "")
	}
	return nil
}

var audioTypes = map[string]string{
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
}

func mimeFor(path string) string {
	if t, ok := audioTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return audio.DefaultMIMEType
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.Validation(fmt.Sprintf("invalid link id %q", arg))
	}
	return id, nil
}

// flushNotes prints and clears the shell's notifications on stderr.
func flushNotes(cmd *cobra.Command, sh *shell.Shell) {
	for _, n := range sh.Drain() {
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", n.Level, n.Message)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLinks(w io.Writer, links []domain.Link) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tURL\tTAGS\tAUDIO\tCREATED")
	for _, l := range links {
		voice := ""
		if l.AudioNote != "" {
			voice = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Title, l.URL, strings.Join(nonEmpty(l.TagList()), ", "), voice, l.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func printLink(w io.Writer, l domain.Link) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", l.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", l.Title)
	fmt.Fprintf(tw, "URL:\t%s\n", l.URL)
	if tags := nonEmpty(l.TagList()); len(tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", strings.Join(tags, ", "))
	}
	if l.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", l.Description)
	}
	if l.AudioNote != "" {
		if clip, err := audio.ParseDataURI(l.AudioNote); err == nil {
			fmt.Fprintf(tw, "Voice note:\t%s, %d bytes\n", clip.MIMEType, len(clip.Data))
		} else {
			fmt.Fprintf(tw, "Voice note:\tunreadable (%v)\n", err)
		}
	}
	fmt.Fprintf(tw, "Created:\t%s\n", l.CreatedAt.Local().Format(time.DateTime))
	return tw.Flush()
}

func nonEmpty(tags []string) []string {
	out := tags[:0:0]
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

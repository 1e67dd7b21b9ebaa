package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/linkshelf/pkg/core/audio"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/form"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/shell"
)

func newShowCmd(c *cli) *cobra.Command {
	var saveAudio string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			link, err := c.newClient().GetLink(cmd.Context(), id)
			if err != nil {
				return err
			}

			if saveAudio != "" {
				if link.AudioNote == "" {
					return domain.Validation("link has no voice note")
				}
				clip, err := audio.ParseDataURI(link.AudioNote)
				if err != nil {
					return err
				}
				if err := os.WriteFile(saveAudio, clip.Data, 0o644); err != nil {
					return fmt.Errorf("save voice note: %w", err)
				}
			}

			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), link)
			}
			return printLink(cmd.OutOrStdout(), *link)
		},
	}

	cmd.Flags().StringVar(&saveAudio, "save-audio", "", "write the voice note to this file")
	return cmd
}

// linkFlags are shared by add and edit.
type linkFlags struct {
	fields     domain.LinkFields
	audioFile  string
	record     time.Duration
	clearAudio bool
}

func (f *linkFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.fields.Title, "title", "", "link title")
	fl.StringVar(&f.fields.URL, "url", "", "link URL")
	fl.StringVar(&f.fields.Tags, "tags", "", "comma-separated tags")
	fl.StringVar(&f.fields.Description, "description", "", "free text")
	fl.StringVar(&f.audioFile, "audio-file", "", "attach a prerecorded voice note")
	fl.DurationVar(&f.record, "record", 0, "record a voice note for up to this long (Ctrl+C stops early)")
	cmd.MarkFlagsMutuallyExclusive("audio-file", "record")
}

// overlay copies the flags the user actually set onto fields.
func (f *linkFlags) overlay(cmd *cobra.Command, fields domain.LinkFields) domain.LinkFields {
	fl := cmd.Flags()
	if fl.Changed("title") {
		fields.Title = f.fields.Title
	}
	if fl.Changed("url") {
		fields.URL = f.fields.URL
	}
	if fl.Changed("tags") {
		fields.Tags = f.fields.Tags
	}
	if fl.Changed("description") {
		fields.Description = f.fields.Description
	}
	if f.clearAudio {
		fields.AudioNote = ""
	}
	return fields
}

// capture fills the form's audio note from the configured device. The device
// is released on every path.
func (f *linkFlags) capture(cmd *cobra.Command, fm *form.Form) error {
	if f.audioFile == "" && f.record <= 0 {
		return nil
	}
	defer fm.Close()

	ctx := cmd.Context()
	if err := fm.StartRecording(ctx); err != nil {
		return err
	}
	if f.record > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Recording for up to %s, press Ctrl+C to stop...\n", f.record)
		waitRecording(ctx, f.record)
	}
	return fm.StopRecording()
}

func waitRecording(ctx context.Context, d time.Duration) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// submit sends the form, reports notifications and prints the saved link.
func (c *cli) submit(cmd *cobra.Command, sh *shell.Shell) error {
	link, err := sh.Submit(cmd.Context())
	flushNotes(cmd, sh)
	if err != nil {
		return err
	}
	if c.jsonOut {
		return printJSON(cmd.OutOrStdout(), link)
	}
	return printLink(cmd.OutOrStdout(), *link)
}

func newAddCmd(c *cli) *cobra.Command {
	flags := &linkFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new link",
		Long: `Add saves a link. Title and URL are required; the URL must be absolute.

Example:
  linkshelf add --title "Rust Book" --url https://doc.rust-lang.org/book/ --tags rust,books
  linkshelf add --title Talk --url https://example.com/talk --record 30s
  linkshelf add --title Talk --url https://example.com/talk --audio-file note.webm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := c.newShell(c.recorder(flags.audioFile, flags.record))
			fm := sh.Form()
			fm.SetFields(flags.fields)

			if err := fm.Validate(); err != nil {
				return err
			}
			if err := flags.capture(cmd, fm); err != nil {
				return err
			}
			return c.submit(cmd, sh)
		},
	}

	flags.register(cmd)
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	flags := &linkFlags{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a saved link",
		Long: `Edit replaces the fields you pass and keeps the rest as they are.

Example:
  linkshelf edit 3 --tags rust,books,favorite
  linkshelf edit 3 --clear-audio`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			sh := c.newShell(c.recorder(flags.audioFile, flags.record))
			if err := sh.Refresh(cmd.Context()); err != nil {
				flushNotes(cmd, sh)
				return err
			}
			if err := sh.Edit(id); err != nil {
				return err
			}

			fm := sh.Form()
			fm.SetFields(flags.overlay(cmd, fm.Fields()))
			if err := fm.Validate(); err != nil {
				return err
			}
			if err := flags.capture(cmd, fm); err != nil {
				return err
			}
			return c.submit(cmd, sh)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.clearAudio, "clear-audio", false, "remove the voice note")
	cmd.MarkFlagsMutuallyExclusive("clear-audio", "audio-file", "record")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sh := c.newShell(nil)
			err = sh.Delete(cmd.Context(), id)
			flushNotes(cmd, sh)
			return err
		},
	}
}

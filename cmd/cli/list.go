package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
)

type listOutput struct {
	Links      []domain.Link `json:"links"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Total      int           `json:"total"`
}

func newListCmd(c *cli) *cobra.Command {
	var (
		search string
		tag    string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List links, newest first",
		Long: `List fetches every link from the server and shows one page of them.

Search matches the title or the tags, ignoring case. A tag filter matches any link
whose tags contain the text, so --tag java also matches javascript.

Example:
  linkshelf list
  linkshelf list --search rust
  linkshelf list --tag books --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := c.newShell(nil)
			if err := sh.Refresh(cmd.Context()); err != nil {
				flushNotes(cmd, sh)
				return err
			}
			sh.SetSearch(search)
			sh.SetTagFilter(tag)
			sh.SetPage(page)
			view := sh.View()

			out := cmd.OutOrStdout()
			if c.jsonOut {
				return printJSON(out, listOutput{
					Links:      view.Links,
					Page:       view.Page,
					TotalPages: view.TotalPages,
					Total:      view.Total,
				})
			}

			if view.Total == 0 {
				fmt.Fprintln(out, "No links found.")
				return nil
			}
			if err := printLinks(out, view.Links); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nShowing %d-%d of %d links (page %d of %d)\n",
				view.From, view.To, view.Total, view.Page, view.TotalPages)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "match title or tags")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only links whose tags contain this text")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to show")
	return cmd
}

func newTagsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every tag in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := c.newShell(nil)
			if err := sh.Refresh(cmd.Context()); err != nil {
				flushNotes(cmd, sh)
				return err
			}

			tags := sh.Facet()
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), tags)
			}
			for _, t := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

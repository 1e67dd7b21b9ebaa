package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/repository"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/domain"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/validation"
	"github.com/wadjakorntonsri/linkshelf/pkg/ports"
)

// openRepository connects straight to the database, bypassing the server.
func (c *cli) openRepository() (ports.LinkRepository, error) {
	dbURL := c.v.GetString(cfgKeyDatabaseURL)
	c.log.Debug("opening database", "backend", repository.Backend(dbURL))
	repo, err := repository.Open(dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return repo, nil
}

func newExportCmd(c *cli) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump every link as JSON",
		Long: `Export reads the database named by database_url and writes every link,
oldest first, as a JSON array. Use it with import to move between SQLite,
Turso and PostgreSQL.

Example:
  linkshelf export > links.json
  linkshelf export --database-url postgres://localhost/linkshelf --file links.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			links, err := repo.Dump(cmd.Context())
			if err != nil {
				return fmt.Errorf("dump links: %w", err)
			}

			var out io.Writer = cmd.OutOrStdout()
			if file != "" {
				f, err := os.Create(file)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := printJSON(out, links); err != nil {
				return err
			}
			if file != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d links to %s\n", len(links), file)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "write to this file instead of stdout")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load links from an export file",
		Long: `Import inserts every link of a JSON export into the database named by
database_url. Ids are reassigned; creation times are kept. Every link is
checked like a new one first; one bad link rejects the whole file and
nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var links []domain.Link
			if err := json.Unmarshal(data, &links); err != nil {
				return domain.Validation(fmt.Sprintf("%s is not a link export: %v", file, err))
			}
			if err := normalizeImport(links); err != nil {
				return err
			}

			repo, err := c.openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := repo.Import(cmd.Context(), links)
			if err != nil {
				return fmt.Errorf("import links: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d links\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file to import (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// normalizeImport trims and validates every link in place. The first failure
// is reported with its index.
func normalizeImport(links []domain.Link) error {
	v := validation.New()
	for i := range links {
		fields := links[i].Fields().Normalize()
		if err := v.ValidateLink(fields); err != nil {
			return domain.Validation(fmt.Sprintf("link %d: %s", i, err.Error()))
		}
		links[i].Apply(fields)
	}
	return nil
}

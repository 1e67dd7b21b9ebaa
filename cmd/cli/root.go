package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wadjakorntonsri/linkshelf/pkg/logger"
)

var version = "dev"

// cli holds global flags and what PersistentPreRunE derives from them.
type cli struct {
	configPath string
	jsonOut    bool
	verbose    bool

	v   *viper.Viper
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "linkshelf",
		Short: "LinkShelf keeps your links, tags and voice notes",
		Long: `LinkShelf is a personal link library. This CLI talks to a LinkShelf
server for everyday use and opens the database directly for export and
import.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default: $HOME/.linkshelf/config.yaml)")
	pf.String("api-url", "", "server URL (default: http://localhost:5000)")
	pf.String("database-url", "", "database for export and import (default: file:linkshelf.db)")
	pf.BoolVar(&c.jsonOut, "json", false, "output as JSON")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newListCmd(c),
		newTagsCmd(c),
		newShowCmd(c),
		newAddCmd(c),
		newEditCmd(c),
		newDeleteCmd(c),
		newExportCmd(c),
		newImportCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	v, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	pf := cmd.Root().PersistentFlags()
	if err := v.BindPFlag(cfgKeyAPIURL, pf.Lookup("api-url")); err != nil {
		return err
	}
	if err := v.BindPFlag(cfgKeyDatabaseURL, pf.Lookup("database-url")); err != nil {
		return err
	}
	c.v = v

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	c.log = logger.New(logger.Config{
		Writer:    cmd.ErrOrStderr(),
		Format:    logger.FormatPretty,
		Component: "cli",
		Level:     level,
	})
	c.log.Debug("config loaded", "file", v.ConfigFileUsed(), "api_url", v.GetString(cfgKeyAPIURL))
	return nil
}

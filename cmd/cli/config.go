package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/apiclient"
	"github.com/wadjakorntonsri/linkshelf/pkg/adapters/audio"
	"github.com/wadjakorntonsri/linkshelf/pkg/core/query"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configDirName  = ".linkshelf"
	envPrefix      = "LINKSHELF"

	cfgKeyAPIURL        = "api_url"
	cfgKeyDatabaseURL   = "database_url"
	cfgKeyRecordCommand = "record_command"
	cfgKeyPerPage       = "per_page"

	defaultDatabaseURL = "file:linkshelf.db"
)

// loadConfig reads settings from path, or from $HOME/.linkshelf/config.yaml
// when path is empty. A missing default file is not an error; a missing
// explicit one is. LINKSHELF_* variables override the file.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyAPIURL, apiclient.DefaultBaseURL)
	v.SetDefault(cfgKeyDatabaseURL, defaultDatabaseURL)
	v.SetDefault(cfgKeyRecordCommand, audio.DefaultRecordCommand)
	v.SetDefault(cfgKeyPerPage, query.ItemsPerPage)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	// The server's DATABASE_URL also works, so one .env can drive both.
	if err := v.BindEnv(cfgKeyDatabaseURL, envPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configDirName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

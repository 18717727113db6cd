package store

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/deadlines/pkg/timeutil"
)

type Config interface {
	BasePath() string
	UpcomingWindow() string
}

func LoadConfig() (Config, error) {
	// Walk the file tree from here backwards looking for a .deadlines file.
	viper.SetDefault("path", "~/.deadlines.db")
	viper.SetDefault("upcoming.window", timeutil.DefaultWindow)
	viper.SetConfigName(".deadlines") // .yaml is implicit
	viper.SetEnvPrefix("DEADLINES")
	viper.AutomaticEnv()

	if override := os.Getenv("DEADLINES_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	path, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	return &fileConfig{
		Path:   path,
		Window: viper.GetString("upcoming.window"),
	}, nil
}

type fileConfig struct {
	Path   string `json:"path"`
	Window string `json:"window"`
}

func (f *fileConfig) BasePath() string {
	return f.Path
}

func (f *fileConfig) UpcomingWindow() string {
	if f.Window == "" {
		return timeutil.DefaultWindow
	}
	return f.Window
}

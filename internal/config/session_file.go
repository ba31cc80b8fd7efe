// Optional YAML session/tuning file, layered under CLI flags. Grounded on
// niceyeti-tabular/tabular/reinforcement/learning.go's FromYaml, the only
// occurrence of spf13/viper in the retrieved pack.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// FileOverrides is what a session YAML file may override. Zero values
// mean "not set in the file" and are left alone by ApplyFileOverrides.
type FileOverrides struct {
	NetworkMode string `mapstructure:"network_mode"`
	ServerURL   string `mapstructure:"server_url"`
	Port        int    `mapstructure:"port"`
	LogPath     string `mapstructure:"log_path"`
	Autorecord  bool   `mapstructure:"autorecord"`
}

// LoadSessionFile reads a YAML session file at path. There was no strong
// reason to reach for viper over a plain yaml.Unmarshal here either — it's
// carried forward from the pack entry that introduced it, not because
// this file format needs viper's merging/watch features.
func LoadSessionFile(path string) (FileOverrides, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return FileOverrides{}, fmt.Errorf("config: read session file %s: %w", path, err)
	}

	var out FileOverrides
	if err := v.Unmarshal(&out); err != nil {
		return FileOverrides{}, fmt.Errorf("config: parse session file %s: %w", path, err)
	}
	return out, nil
}

// ApplyFileOverrides layers non-zero fields of f onto c, returning the
// result. Called before CLI flags are applied, so flags still win.
func ApplyFileOverrides(c SessionConfig, f FileOverrides) SessionConfig {
	if f.NetworkMode != "" {
		c.NetworkMode = NetworkMode(f.NetworkMode)
	}
	if f.ServerURL != "" {
		c.ServerURL = f.ServerURL
	}
	if f.Port != 0 {
		c.Port = f.Port
	}
	if f.LogPath != "" {
		c.LogPath = f.LogPath
	}
	if f.Autorecord {
		c.Autorecord = true
	}
	return c
}

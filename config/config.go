/*
Package config loads the application configuration from a file, the environment and flags
*/
package config

import (
	"github.com/spf13/viper"
	"go-ml.dev/pkg/ordinal/store"
	"go-ml.dev/pkg/ordinal/zlog"
	"golang.org/x/xerrors"
	"os"
	"strings"
)

/*
Config is the application configuration
*/
type Config struct {
	Log   zlog.Config  `mapstructure:"log"`
	Store store.Config `mapstructure:"store"`
}

/*
Defaults sets the default values of all known keys
*/
func Defaults(v *viper.Viper) {
	l := zlog.DefaultConfig(false)
	v.SetDefault("log.level", l.Level)
	v.SetDefault("log.path", l.Path)
	v.SetDefault("log.console", l.Console)
	v.SetDefault("log.rotation_hours", l.RotationHours)
	v.SetDefault("log.max_age_days", l.MaxAgeDays)
	v.SetDefault("log.rotation_size_mb", l.RotationSizeMB)
	v.SetDefault("store.kind", "sqlite")
	v.SetDefault("store.path", "models.db")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "ordinal")
}

/*
Load reads the configuration. The file is ordinal.yaml searched in $ORDINAL_CFG_PATH
or in the current directory unless specified explicitly, a missing default file is not an error.
Environment variables ORDINAL_<KEY> with dots replaced by underscores override the file
*/
func Load(v *viper.Viper, file string) (*Config, error) {
	Defaults(v)
	v.SetEnvPrefix("ordinal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		alt := os.Getenv("ORDINAL_CFG_PATH")
		if alt == "" {
			alt = "."
		}
		v.AddConfigPath(alt)
		v.SetConfigName("ordinal")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !xerrors.As(err, &notFound) {
			return nil, xerrors.Errorf("failed to read config: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, xerrors.Errorf("bad config: %w", err)
	}
	return c, nil
}

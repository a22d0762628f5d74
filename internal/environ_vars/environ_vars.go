package environ_vars

import (
	"errors"
	"log/slog"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"stack_calculator/internal/constants"
)

const db_default = "stack.db"
const log_default = "stack.log"

// New returns settings layered as defaults < config file < STACK_* variables.
// An empty configFile searches for config.{yaml,json,toml} in the working
// directory; only an explicit file has to exist.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(constants.DB, db_default)
	v.SetDefault(constants.LogFile, log_default)
	v.SetDefault(constants.LogLevel, "info")
	v.SetDefault(constants.CompPow, max(runtime.NumCPU()/2, 1))

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, pkgerrors.Wrap(err, "read config")
		}
	}
	return v, nil
}

// BindFlags lets explicitly set flags win over every other source.
// Flag names use dashes, keys use underscores.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return err
}

func GetValue(v *viper.Viper, name string) string {
	return v.GetString(name)
}

func GetValueInt(v *viper.Viper, name string) (int, bool) {
	if !v.IsSet(name) {
		return 0, false
	}
	r := v.GetInt(name)
	return r, r > 0
}

// LogLevel parses the configured log level.
func LogLevel(v *viper.Viper) (slog.Level, error) {
	switch strings.ToLower(v.GetString(constants.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, pkgerrors.Errorf("unknown log level %q (expected debug, info, warn, or error)", v.GetString(constants.LogLevel))
}

package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "QUIZHUB"

// Overlay fills flags the user did not set on the command line from the
// environment (QUIZHUB_DATABASE_DSN for --database-dsn) and then from the
// config file, if one is given.
func Overlay(fs *pflag.FlagSet, configFile string) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}

		raw := v.Get(f.Name)
		value := cast.ToString(raw)
		if list, ok := raw.([]any); ok {
			value = strings.Join(cast.ToStringSlice(list), ",")
		}

		if err = fs.Set(f.Name, value); err != nil {
			err = fmt.Errorf("invalid value for --%s: %w", f.Name, err)
		}
	})

	return err
}

package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const flagKeyAnnotation = "modelserver_config_key"

// KeyFlag ties the flag name to a config key. Several commands may tie their
// own flags to the same key; BindFlags applies only the running command's.
func KeyFlag(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, flagKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

// BindFlags binds every keyed flag in fs to viper.
func BindFlags(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		if keys := f.Annotations[flagKeyAnnotation]; len(keys) > 0 {
			err = viper.BindPFlag(keys[0], f)
		}
	})
	return err
}

package options

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/coursework/pkg/config"
)

// RootOptions are the persistent flags shared by every command.
type RootOptions struct {
	ConfigFile string
	EnvFile    string
}

// AddRootArgs registers the persistent flags and binds the ones backed by
// config keys to v, so flags take precedence over env and file values.
func AddRootArgs(cmd *cobra.Command, o *RootOptions, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.ConfigFile, "config", "",
		"Config file (default "+config.DefaultConfigPath()+").")
	flags.StringVar(&o.EnvFile, "env-file", ".env",
		"Optional dotenv file read before the environment.")
	flags.String("cache", "", "Cache file (default "+config.DefaultCachePath()+").")
	flags.String("log-level", "", "Log level. One of 'debug', 'info', 'warn' or 'error'.")
	flags.String("log-file", "", "Log file, or '-' for stderr (default "+config.DefaultLogPath()+").")
	flags.String("interval", "", "Background refresh interval for the ui, e.g. '15m' or 'off'.")

	_ = v.BindPFlag(config.KeyCachePath, flags.Lookup("cache"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogPath, flags.Lookup("log-file"))
	_ = v.BindPFlag(config.KeySyncInterval, flags.Lookup("interval"))
}

package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FILEDECK_BACKEND_TYPE.
const EnvPrefix = "FILEDECK"

// overrideKeys are the settings that may come from the environment or flags.
var overrideKeys = []string{
	"root",
	"backend.type",
	"backend.host",
	"backend.port",
	"backend.user",
	"backend.password",
	"backend.key_file",
	"backend.timeout",
	"classifier.case_sensitive",
	"classifier.legacy_substring",
	"settings.backend",
	"settings.path",
	"log.debug",
	"log.json",
	"log.file",
	"server.addr",
	"server.max_upload_size",
	"theme.name",
}

// NewOverlay returns a viper instance reading FILEDECK_* variables. Flags
// are bound to config keys with BindFlag.
func NewOverlay() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range overrideKeys {
		// AutomaticEnv only answers for keys viper knows about.
		_ = v.BindEnv(key)
	}
	return v
}

// BindFlag maps a command-line flag onto a config key. Only flags the user
// actually set override the file.
func BindFlag(v *viper.Viper, key string, flag *pflag.Flag) error {
	if flag == nil {
		return nil
	}
	return v.BindPFlag(key, flag)
}

// ApplyOverrides copies every key set in v over cfg and re-validates.
func ApplyOverrides(cfg *Config, v *viper.Viper) error {
	set := func(key string, apply func()) {
		if v.IsSet(key) {
			apply()
		}
	}

	set("root", func() { cfg.Root = v.GetString("root") })
	set("backend.type", func() { cfg.Backend.Type = v.GetString("backend.type") })
	set("backend.host", func() { cfg.Backend.Host = v.GetString("backend.host") })
	set("backend.port", func() { cfg.Backend.Port = v.GetInt("backend.port") })
	set("backend.user", func() { cfg.Backend.User = v.GetString("backend.user") })
	set("backend.password", func() { cfg.Backend.Password = v.GetString("backend.password") })
	set("backend.key_file", func() { cfg.Backend.KeyFile = v.GetString("backend.key_file") })
	set("backend.timeout", func() { cfg.Backend.Timeout = v.GetInt("backend.timeout") })
	set("classifier.case_sensitive", func() { cfg.Classifier.CaseSensitive = v.GetBool("classifier.case_sensitive") })
	set("classifier.legacy_substring", func() { cfg.Classifier.LegacySubstring = v.GetBool("classifier.legacy_substring") })
	set("settings.backend", func() { cfg.Settings.Backend = v.GetString("settings.backend") })
	set("settings.path", func() { cfg.Settings.Path = v.GetString("settings.path") })
	set("log.debug", func() { cfg.Log.Debug = v.GetBool("log.debug") })
	set("log.json", func() { cfg.Log.JSON = v.GetBool("log.json") })
	set("log.file", func() { cfg.Log.File = v.GetString("log.file") })
	set("server.addr", func() { cfg.Server.Addr = v.GetString("server.addr") })
	set("server.max_upload_size", func() { cfg.Server.MaxUploadSize = v.GetInt64("server.max_upload_size") })

	if v.IsSet("theme.name") {
		name := v.GetString("theme.name")
		cfg.ApplyTheme(name)
	}

	return cfg.Validate()
}

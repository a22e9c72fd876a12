package config

import (
	"os"
	"path/filepath"
	"strings"

	"filedeck/internal/browser"
	"filedeck/internal/errors"
	"filedeck/internal/fsys"
	"filedeck/internal/settings"

	"gopkg.in/yaml.v3"
)

// Backend selects where the browsed tree lives.
type Backend struct {
	Type     string `yaml:"type" mapstructure:"type"`         // local, sftp or ftp
	Host     string `yaml:"host" mapstructure:"host"`         // Remote host
	Port     int    `yaml:"port" mapstructure:"port"`         // Remote port, 0 for the protocol default
	User     string `yaml:"user" mapstructure:"user"`         // Remote user
	Password string `yaml:"password" mapstructure:"password"` // Remote password
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"` // SSH private key for sftp
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"`   // Dial timeout in seconds
}

// Classifier holds the image extension policy.
type Classifier struct {
	ImageExtensions []string `yaml:"image_extensions" mapstructure:"image_extensions"`
	CaseSensitive   bool     `yaml:"case_sensitive" mapstructure:"case_sensitive"`
	LegacySubstring bool     `yaml:"legacy_substring" mapstructure:"legacy_substring"`
}

// Settings selects the preference store.
type Settings struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // yaml, toml, bolt or memory
	Path    string `yaml:"path" mapstructure:"path"`       // Empty means next to the config file
}

// Log configures the logger.
type Log struct {
	Debug bool   `yaml:"debug" mapstructure:"debug"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
	File  string `yaml:"file" mapstructure:"file"`
}

// Server configures the HTTP API.
type Server struct {
	Addr          string `yaml:"addr" mapstructure:"addr"`
	MaxUploadSize int64  `yaml:"max_upload_size" mapstructure:"max_upload_size"` // Bytes
}

// Theme holds terminal colors.
type Theme struct {
	Name     string `yaml:"name" mapstructure:"name"`         // Theme name (default, dark, light, etc.)
	Primary  string `yaml:"primary" mapstructure:"primary"`   // Primary color for titles and the cursor
	Success  string `yaml:"success" mapstructure:"success"`   // Success message color
	Warning  string `yaml:"warning" mapstructure:"warning"`   // Warning message color
	Error    string `yaml:"error" mapstructure:"error"`       // Error message color
	Info     string `yaml:"info" mapstructure:"info"`         // Informational message color
	Emphasis string `yaml:"emphasis" mapstructure:"emphasis"` // Selected entries
	Border   string `yaml:"border" mapstructure:"border"`     // Border color for frames and grid cells
}

// Config represents the application configuration.
type Config struct {
	Root       string     `yaml:"root" mapstructure:"root"` // Directory opened at start
	Backend    Backend    `yaml:"backend" mapstructure:"backend"`
	Classifier Classifier `yaml:"classifier" mapstructure:"classifier"`
	Settings   Settings   `yaml:"settings" mapstructure:"settings"`
	Log        Log        `yaml:"log" mapstructure:"log"`
	Server     Server     `yaml:"server" mapstructure:"server"`
	Theme      Theme      `yaml:"theme" mapstructure:"theme"`
}

// Dir returns the configuration directory (~/.config/filedeck).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "filedeck"), nil
}

// DefaultPath returns ~/.config/filedeck/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "error reading config file")
	}

	// Fields missing from the file keep their defaults.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}
	// A named theme supplies the colors the file leaves out.
	if cfg.Theme.Name != "default" {
		cfg.ApplyTheme(cfg.Theme.Name)
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

// DefaultRoot returns ~/Documents when it exists and the home directory
// otherwise.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	docs := filepath.Join(home, "Documents")
	if info, err := os.Stat(docs); err == nil && info.IsDir() {
		return docs
	}
	return home
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Root = ""
	cfg.Backend.Type = fsys.BackendLocal
	cfg.Backend.Timeout = 30

	cfg.Classifier.ImageExtensions = []string{".jpeg", ".png", ".jpg"}

	cfg.Settings.Backend = settings.BackendYAML

	cfg.Server.Addr = "127.0.0.1:8080"
	cfg.Server.MaxUploadSize = 32 << 20

	cfg.ApplyTheme("default")

	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	switch c.Backend.Type {
	case fsys.BackendLocal:
	case fsys.BackendSFTP, fsys.BackendFTP:
		if strings.TrimSpace(c.Backend.Host) == "" {
			return errors.NewConfigError("remote backend requires a host", "backend.host", errors.InvalidConfig, nil)
		}
		if c.Backend.User == "" {
			return errors.NewConfigError("remote backend requires a user", "backend.user", errors.InvalidConfig, nil)
		}
	default:
		return errors.NewConfigError("invalid backend type: "+c.Backend.Type, "backend.type", errors.InvalidConfig, nil)
	}
	if c.Backend.Port < 0 || c.Backend.Port > 65535 {
		return errors.NewConfigError("backend port out of range", "backend.port", errors.InvalidConfig, nil)
	}
	if c.Backend.Timeout < 0 {
		return errors.NewConfigError("backend timeout must be >= 0 seconds", "backend.timeout", errors.InvalidConfig, nil)
	}

	if len(c.Classifier.ImageExtensions) == 0 {
		return errors.NewConfigError("at least one image extension is required", "classifier.image_extensions", errors.InvalidConfig, nil)
	}
	for i, ext := range c.Classifier.ImageExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.NewConfigError("image extension "+quote(ext)+" must start with a dot", indexed("classifier.image_extensions", i), errors.InvalidConfig, nil)
		}
	}

	switch c.Settings.Backend {
	case settings.BackendYAML, settings.BackendTOML, settings.BackendBolt, settings.BackendMemory:
	default:
		return errors.NewConfigError("invalid settings backend: "+c.Settings.Backend, "settings.backend", errors.InvalidConfig, nil)
	}

	if c.Server.MaxUploadSize < 0 {
		return errors.NewConfigError("max upload size must be >= 0", "server.max_upload_size", errors.InvalidConfig, nil)
	}

	return nil
}

// RootDir returns the configured root or DefaultRoot for the local backend.
// Remote backends default to their login directory.
func (c *Config) RootDir() string {
	if c.Root != "" {
		return c.Root
	}
	if c.Backend.Type == fsys.BackendLocal {
		return DefaultRoot()
	}
	return "."
}

// SettingsPath resolves the preference store path, defaulting to a file named
// after the backend in the configuration directory.
func (c *Config) SettingsPath() (string, error) {
	if c.Settings.Path != "" {
		return c.Settings.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	name := "settings.yaml"
	switch c.Settings.Backend {
	case settings.BackendTOML:
		name = "settings.toml"
	case settings.BackendBolt:
		name = "settings.db"
	}
	return filepath.Join(dir, name), nil
}

// Remote converts the backend section for fsys.Open.
func (c *Config) Remote() fsys.RemoteConfig {
	return fsys.RemoteConfig{
		Host:     c.Backend.Host,
		Port:     c.Backend.Port,
		User:     c.Backend.User,
		Password: c.Backend.Password,
		KeyFile:  c.Backend.KeyFile,
		Timeout:  secondsToDuration(c.Backend.Timeout),
	}
}

// ClassifierOptions converts the classifier section.
func (c *Config) ClassifierOptions() browser.ClassifierOptions {
	return browser.ClassifierOptions{
		Extensions:      c.Classifier.ImageExtensions,
		CaseSensitive:   c.Classifier.CaseSensitive,
		LegacySubstring: c.Classifier.LegacySubstring,
	}
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"primary":  "213", // Purple
			"success":  "114", // Green
			"warning":  "220", // Yellow
			"error":    "196", // Red
			"info":     "39",  // Blue
			"emphasis": "212", // Light Pink
			"border":   "213", // Purple
		},
		"dark": {
			"primary":  "105",
			"success":  "78",
			"warning":  "214",
			"error":    "160",
			"info":     "33",
			"emphasis": "147",
			"border":   "105",
		},
		"light": {
			"primary":  "135",
			"success":  "150",
			"warning":  "222",
			"error":    "210",
			"info":     "117",
			"emphasis": "219",
			"border":   "135",
		},
		"monochrome": {
			"primary":  "245",
			"success":  "252",
			"warning":  "241",
			"error":    "232",
			"info":     "248",
			"emphasis": "255",
			"border":   "245",
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}

	return themes["default"]
}

// ApplyTheme sets the theme colors from a predefined theme.
func (c *Config) ApplyTheme(name string) {
	if name == "" {
		name = "default"
	}
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Primary = theme["primary"]
	c.Theme.Success = theme["success"]
	c.Theme.Warning = theme["warning"]
	c.Theme.Error = theme["error"]
	c.Theme.Info = theme["info"]
	c.Theme.Emphasis = theme["emphasis"]
	c.Theme.Border = theme["border"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}

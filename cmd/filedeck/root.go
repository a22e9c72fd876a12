package main

import (
	"io"

	"filedeck/internal/browser"
	"filedeck/internal/config"
	"filedeck/internal/errors"
	"filedeck/internal/fsys"
	"filedeck/internal/log"
	"filedeck/internal/settings"
	"filedeck/internal/tui/styles"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"root":    "root",
	"backend": "backend.type",
	"debug":   "log.debug",
	"theme":   "theme.name",
	"addr":    "server.addr",
}

// app carries the loaded configuration and the opened backends for one
// command invocation.
type app struct {
	cfgFile string
	cfg     *config.Config

	fs    fsys.Filesystem
	store settings.Store
	deps  browser.Deps
}

// newRootCmd builds the command tree around a. The caller closes a once the
// command has run.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filedeck",
		Short: "Browse, import and prune image folders",
		Long: `Filedeck browses a directory tree of folders and images.

Open folders, preview images, create folders, import pictures and delete
a multi-selection, from the terminal or over a small HTTP API.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/filedeck/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "directory to open (default is ~/Documents)")
	rootCmd.PersistentFlags().String("backend", "", "storage backend: local, sftp or ftp")
	rootCmd.PersistentFlags().String("theme", "", "color theme")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newBrowseCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newMkdirCmd(a))
	rootCmd.AddCommand(newRemoveCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newDisplayCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newThemesCmd())

	return rootCmd
}

// load reads the config file, applies environment and flag overrides and
// configures logging and styles. Backends are opened lazily by open.
func (a *app) load(cmd *cobra.Command) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadConfigFile(a.cfgFile)
	} else {
		a.cfg, err = config.LoadConfig()
	}
	if err != nil {
		return err
	}

	v := config.NewOverlay()
	for flag, key := range flagKeys {
		if err := config.BindFlag(v, key, cmd.Flags().Lookup(flag)); err != nil {
			return errors.Wrapf(err, "bind flag %s", flag)
		}
	}
	if err := config.ApplyOverrides(a.cfg, v); err != nil {
		return err
	}

	a.configureLogging(cmd.ErrOrStderr())
	styles.SetTheme(a.cfg.Theme)
	return nil
}

// configureLogging writes to w only in debug mode; a configured log file
// always receives lines.
func (a *app) configureLogging(w io.Writer) {
	if !a.cfg.Log.Debug {
		w = io.Discard
	}
	opts := []log.Option{log.WithOutput(w)}
	if a.cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if a.cfg.Log.File != "" {
		opts = append(opts, log.WithFile(a.cfg.Log.File))
	}
	log.Configure(opts...)
	log.SetDebug(a.cfg.Log.Debug)
}

// open connects the file system and the preference store.
func (a *app) open() error {
	if a.fs != nil {
		return nil
	}

	fs, err := fsys.Open(a.cfg.Backend.Type, a.cfg.Remote())
	if err != nil {
		return err
	}

	path, err := a.cfg.SettingsPath()
	if err != nil {
		fs.Close()
		return errors.Wrap(err, "resolve settings path")
	}
	store, err := settings.Open(a.cfg.Settings.Backend, path)
	if err != nil {
		fs.Close()
		return err
	}

	classifier, err := browser.NewClassifier(a.cfg.ClassifierOptions())
	if err != nil {
		fs.Close()
		store.Close()
		return err
	}

	a.fs = fs
	a.store = store
	a.deps = browser.Deps{
		Filesystem:  fs,
		Classifier:  classifier,
		Preferences: browser.NewPreferences(store),
	}
	log.LogWithFields(
		log.F("backend", a.cfg.Backend.Type),
		log.F("settings", a.cfg.Settings.Backend),
	).Debug("backends opened")
	return nil
}

// resolve maps a command argument to a directory on the backend. Relative
// paths are taken from the configured root.
func (a *app) resolve(dir string) string {
	root := a.cfg.RootDir()
	switch {
	case dir == "":
		return root
	case isAbs(dir):
		return dir
	default:
		return a.fs.Join(root, dir)
	}
}

// controller opens dir and performs the initial listing. A listing failure
// is returned together with the controller.
func (a *app) controller(dir string) (*browser.Controller, error) {
	if err := a.open(); err != nil {
		return nil, err
	}
	ctrl := browser.NewController(a.resolve(dir), a.deps)
	return ctrl, ctrl.Load()
}

func (a *app) close() {
	var result *multierror.Error
	if a.store != nil {
		result = multierror.Append(result, a.store.Close())
	}
	if a.fs != nil {
		result = multierror.Append(result, a.fs.Close())
	}
	if err := result.ErrorOrNil(); err != nil {
		log.LogError(err, "closing backends")
	}
	a.fs, a.store = nil, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"filedeck/internal/api"
	"filedeck/internal/browser"
	"filedeck/internal/config"
	"filedeck/internal/errors"
	"filedeck/internal/importer"
	"filedeck/internal/preview"
	"filedeck/internal/tui"

	"github.com/spf13/cobra"
)

func isAbs(p string) bool {
	return strings.HasPrefix(p, "/") || filepath.IsAbs(p)
}

// newBrowseCmd opens the interactive browser.
func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [directory]",
		Short: "Browse a directory interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would tear the full-screen view.
			a.configureLogging(io.Discard)
			ctrl, err := a.controller(argOrEmpty(args))
			if ctrl == nil {
				return err
			}
			// An unlistable root is shown as such in the browser.
			return tui.Run(ctrl)
		},
	}
}

// newListCmd prints the children of a directory.
func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [directory]",
		Aliases: []string{"list"},
		Short:   "List folders and images in a directory",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(argOrEmpty(args))
			if err != nil {
				return errors.Wrap(err, "listing unavailable")
			}

			entries := ctrl.Entries()
			if len(entries) == 0 {
				printInfo(cmd.OutOrStdout(), "%s is empty", ctrl.Path())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), entryTable(entries))
			return nil
		},
	}
}

// newMkdirCmd creates a folder.
func newMkdirCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "mkdir NAME",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(dir)
			if ctrl == nil {
				return err
			}
			if err := ctrl.CreateDirectory(args[0]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Created %s", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "in", "C", "", "parent directory (default is the root)")
	return cmd
}

// newRemoveCmd selects the named entries and deletes them as one batch.
func newRemoveCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "rm NAME...",
		Short: "Delete folders and images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(dir)
			if err != nil {
				return errors.Wrap(err, "listing unavailable")
			}

			ctrl.EnterEditMode()
			for _, name := range args {
				e, ok := ctrl.Lookup(name)
				if !ok {
					ctrl.CancelEditMode()
					return errors.NewFileError("no such entry", name, errors.NotListed, nil)
				}
				if ctrl.Selection().IsSelected(e) {
					continue
				}
				if _, err := ctrl.Tap(e); err != nil {
					ctrl.CancelEditMode()
					return err
				}
			}

			report, err := ctrl.DeleteSelected()
			if report == nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range report.Deleted {
				printSuccess(out, "Deleted %s", e.Name())
			}
			for _, f := range report.Failures {
				printWarning(out, "Failed %s: %v", f.Entry.Name(), f.Err)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "in", "C", "", "directory holding the entries (default is the root)")
	return cmd
}

// newImportCmd copies a local image into a directory.
func newImportCmd(a *app) *cobra.Command {
	var (
		dir  string
		name string
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an image from the local disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(dir)
			if ctrl == nil {
				return err
			}

			var picker importer.Picker = importer.NewFilePicker(args[0])
			if name != "" {
				src := picker
				picker = importer.PickerFunc(func(ctx context.Context) (importer.Picked, error) {
					picked, err := src.Pick(ctx)
					picked.Name = name
					return picked, err
				})
			}

			imported, err := ctrl.Import(cmd.Context(), picker)
			if err != nil {
				return err
			}
			if !imported {
				printWarning(cmd.OutOrStdout(), "Nothing imported")
				return nil
			}
			printSuccess(cmd.OutOrStdout(), "Imported %s into %s", filepath.Base(args[0]), ctrl.Path())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "in", "C", "", "destination directory (default is the root)")
	cmd.Flags().StringVar(&name, "as", "", "store the image under this name")
	return cmd
}

// newDisplayCmd shows or changes the list/grid preference.
func newDisplayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "display [toggle|list|grid]",
		Short:     "Show or change the display mode",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toggle", string(browser.List), string(browser.Grid)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			prefs := a.deps.Preferences

			switch arg := argOrEmpty(args); arg {
			case "":
			case "toggle":
				if _, err := prefs.ToggleDisplayMode(); err != nil {
					return err
				}
			default:
				mode, _ := browser.ParseDisplayMode(arg)
				if err := prefs.SetDisplayMode(mode); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), prefs.DisplayMode())
			return nil
		},
	}
}

// newShowCmd prints image details and a half-block rendering.
func newShowCmd(a *app) *cobra.Command {
	var (
		dir      string
		width    int
		infoOnly bool
	)

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Preview an image in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(dir)
			if err != nil {
				return errors.Wrap(err, "listing unavailable")
			}

			e, ok := ctrl.Lookup(args[0])
			if !ok {
				return errors.NewFileError("no such entry", args[0], errors.NotListed, nil)
			}
			data, err := ctrl.ReadImage(e)
			if err != nil {
				return err
			}
			info, err := preview.Describe(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printInfo(out, "%s  %s", e.Name(), info)
			if infoOnly {
				return nil
			}
			img, err := preview.Render(data, width)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, img)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "in", "C", "", "directory holding the image (default is the root)")
	cmd.Flags().IntVarP(&width, "width", "w", 60, "preview width in columns")
	cmd.Flags().BoolVar(&infoOnly, "info", false, "print format and size only")
	return cmd
}

// newServeCmd runs the HTTP API until interrupted.
func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(a.cfg.RootDir(), a.deps, api.WithMaxUploadSize(a.cfg.Server.MaxUploadSize))
			printInfo(cmd.OutOrStdout(), "Serving %s on http://%s", a.cfg.RootDir(), a.cfg.Server.Addr)
			return srv.Run(ctx, a.cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	return cmd
}

// newInitCmd writes the effective configuration to disk.
func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfgFile
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.NewConfigError("config file already exists, use --force to replace it", path, errors.InvalidConfig, nil)
			}
			if err := config.SaveConfig(a.cfg, path); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// newThemesCmd lists the built-in color themes.
func newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List color themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListThemes() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

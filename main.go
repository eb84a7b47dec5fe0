package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/starlingterm/starling/config"
	"github.com/starlingterm/starling/keybindings"
	"github.com/starlingterm/starling/render"
	"github.com/starlingterm/starling/shell"
	"github.com/starlingterm/starling/term"
)

type appFlags struct {
	configPath string
	shellPath  string
	workDir    string
	theme      string
	rows       int
	cols       int
	logLevel   string
	logFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags appFlags
	cmd := &cobra.Command{
		Use:   "starling",
		Short: "A small terminal emulator for the terminal you already have",
		Long: `starling runs a shell behind a pseudo-terminal, keeps a screen model
of its output, and paints that model into the current terminal window.
Shift+PageUp/PageDown scroll through history, Ctrl+Q quits.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/starling/config.toml)")
	cmd.Flags().StringVar(&flags.shellPath, "shell", "", "shell binary to run, overrides the config")
	cmd.Flags().StringVar(&flags.workDir, "cwd", "", "working directory for the shell (default: current directory)")
	cmd.Flags().StringVar(&flags.theme, "theme", "", "color theme, overrides the config")
	cmd.Flags().IntVar(&flags.rows, "rows", 0, "initial rows before the window size is known")
	cmd.Flags().IntVar(&flags.cols, "cols", 0, "initial columns before the window size is known")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "append logs to this file (logs are discarded otherwise)")

	cmd.AddCommand(newThemesCmd(&flags.configPath), newShellsCmd(&flags.configPath))
	return cmd
}

func newThemesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the built-in color themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			for _, opt := range config.ThemeOptions() {
				marker := " "
				if opt.Name == cfg.Theme {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-18s %s\n", marker, opt.Name, opt.Label)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nactive: %s\n", config.ThemeLabel(cfg.Theme))
			return nil
		},
	}
}

func newShellsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "shells",
		Short: "List shells detected on this system",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			shells := config.GetAvailableShells()
			if len(shells) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no shells found")
				return nil
			}
			for _, path := range shells {
				marker := " "
				if path == cfg.Shell.Path {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, path)
			}
			return nil
		},
	}
}

func runApp(flags appFlags) error {
	log, closeLog, err := newLogger(flags.logLevel, flags.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, flags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	workDir := flags.workDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
	}

	sess := shell.NewSession(shell.Options{
		Shell:  cfg.Shell.Path,
		Term:   cfg.Shell.Term,
		Rows:   cfg.Terminal.Rows,
		Cols:   cfg.Terminal.Cols,
		Env:    cfg.EnvSlice(),
		Logger: log,
	})
	tm := term.New(sess, term.Options{
		Rows:          cfg.Terminal.Rows,
		Cols:          cfg.Terminal.Cols,
		MaxScrollback: cfg.Terminal.Scrollback,
		Logger:        log,
	})
	defer tm.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	// The real window size wins over configured dimensions, and must be
	// in place before the shell spawns so its line math starts correct.
	if cols, rows := screen.Size(); cols > 0 && rows > 0 {
		if err := tm.Resize(rows, cols); err != nil {
			log.Warn("initial resize failed", "rows", rows, "cols", cols, "error", err)
		}
	}

	if err := tm.Start(workDir); err != nil {
		return fmt.Errorf("starting shell: %w", err)
	}

	ui := render.NewUI(screen, tm, render.Options{
		Theme:  render.ThemeFromConfig(cfg),
		Keys:   keybindings.Options{Backspace: cfg.BackspaceByte()},
		Logger: log,
	})
	return ui.Run(context.Background())
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func applyOverrides(cfg *config.Config, flags appFlags) {
	if flags.shellPath != "" {
		cfg.Shell.Path = flags.shellPath
	}
	if flags.theme != "" {
		cfg.Theme = flags.theme
	}
	if flags.rows > 0 {
		cfg.Terminal.Rows = flags.rows
	}
	if flags.cols > 0 {
		cfg.Terminal.Cols = flags.cols
	}
}

func newLogger(level, path string) (*slog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	// Logging to stderr would scribble over the screen tcell owns, so
	// logs only go somewhere when a file is given.
	var out io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})), closeFn, nil
}

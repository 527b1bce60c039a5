package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/appengine-ltd/ghost-protocol/internal/challenge"
	"github.com/appengine-ltd/ghost-protocol/internal/config"
	"github.com/appengine-ltd/ghost-protocol/internal/save"
	"github.com/appengine-ltd/ghost-protocol/internal/ui"
)

const logFileName = "ghost-protocol.log"

// maxImportBytes bounds what import reads before the save package rejects it.
const maxImportBytes = 2 << 20

// env is the bootstrap state shared by every subcommand.
type env struct {
	cfg    *config.Config
	logger *logrus.Logger
	saves  *save.Manager
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var slot int

	rootCmd := &cobra.Command{
		Use:           "ghost-protocol",
		Short:         "An offline terminal trainer for security puzzles",
		Long:          "Ghost Protocol is a terminal game of encoding, cryptography and forensics puzzles.\nRun without a subcommand to play.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return e.setup(cmd.Name() == "play" || cmd == cmd.Root(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.closer != nil {
				return e.closer.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.play(slot)
		},
	}
	rootCmd.PersistentFlags().IntVar(&slot, "slot", 0, "save slot to use (1-N); 0 uses the primary save")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Start the terminal game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.play(slot)
		},
	}

	slotsCmd := &cobra.Command{
		Use:   "slots",
		Short: "List save slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			primary := "empty"
			if state, err := e.saves.Load(); err == nil {
				primary = fmt.Sprintf("%s L%d (%d xp)", state.PlayerName, state.CurrentLevel, state.Experience)
			} else if !errors.Is(err, save.ErrNotFound) {
				primary = "corrupt"
			}
			fmt.Fprintf(out, "primary  %s\n", primary)
			for _, s := range e.saves.ListSlots() {
				desc := "empty"
				if s.Exists {
					desc = s.Summary
					if !s.Corrupt {
						desc += "  " + s.ModifiedAt.Format("2006-01-02 15:04")
					}
				}
				fmt.Fprintf(out, "slot %-3d %s\n", s.Index+1, desc)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print a save as a portable document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := e.target(slot)
			if err != nil {
				return err
			}
			state, err := target.Load()
			if err != nil {
				return fmt.Errorf("export %s: %w", target.Path(), err)
			}
			text, err := e.saves.Export(state)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Write an exported document into a save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readImport(cmd, args[0])
			if err != nil {
				return err
			}
			state, err := e.saves.Import(text)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			target, err := e.target(slot)
			if err != nil {
				return err
			}
			if err := target.Save(state); err != nil {
				return err
			}
			e.logger.WithFields(logrus.Fields{"path": target.Path(), "player": state.PlayerName}).Info("save imported")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (level %d) into %s\n", state.PlayerName, state.CurrentLevel, target.Path())
			return nil
		},
	}

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, c := range challenge.Default().All() {
				kind := fmt.Sprintf("L%d", c.Level)
				if c.Practice() {
					kind = "practice"
				}
				variants := make([]string, 0, 4)
				for _, d := range c.AvailableDifficulties() {
					variants = append(variants, string(d))
				}
				fmt.Fprintf(out, "%-20s %-9s %-14s %s [%s]\n", c.ID, kind, c.Category, c.Title, strings.Join(variants, ","))
			}
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Ghost Protocol %s (%s) %s\n", version, commit, date)
		},
	}

	rootCmd.AddCommand(playCmd, slotsCmd, exportCmd, importCmd, catalogCmd, versionCmd)
	return rootCmd
}

// setup loads configuration and logging. The terminal UI owns the screen
// while playing, so interactive runs log to a file in the save directory.
func (e *env) setup(interactive bool, logOutput io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if interactive && cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.SaveDir, logFileName)
	}
	logger := logrus.StandardLogger()
	closer, err := cfg.ConfigureLogging(logger, logOutput)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = logger
	e.closer = closer
	e.saves = save.NewManager(cfg.SaveDir, save.Options{SlotCount: cfg.SlotCount, Logger: logger})
	logger.WithFields(logrus.Fields{"dir": cfg.SaveDir, "slots": cfg.SlotCount}).Debug("save manager ready")
	return nil
}

// target maps the 1-based --slot flag onto a save target.
func (e *env) target(slot int) (save.Target, error) {
	if slot < 0 || slot > e.saves.SlotCount() {
		return save.Target{}, fmt.Errorf("--slot must be 0-%d", e.saves.SlotCount())
	}
	return e.saves.Target(slot - 1)
}

func (e *env) play(slot int) error {
	if _, err := e.target(slot); err != nil {
		return err
	}
	app := ui.NewApp(ui.AppConfig{
		Version:    version,
		Commit:     commit,
		BuildDate:  date,
		Saves:      e.saves,
		Slot:       slot - 1,
		PlayerName: e.cfg.PlayerName,
		Seed:       e.cfg.Seed,
	})
	e.logger.WithField("slot", slot).Info("session started")
	return app.Run()
}

func readImport(cmd *cobra.Command, name string) (string, error) {
	var r io.Reader
	if name == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(name) // #nosec G304 -- operator supplied import path
		if err != nil {
			return "", err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, maxImportBytes))
	if err != nil {
		return "", fmt.Errorf("read import: %w", err)
	}
	return string(data), nil
}

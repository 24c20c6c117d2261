package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"decktimer/internal/bootstrap"
	renderdto "decktimer/internal/modules/render/dto"
	timerdto "decktimer/internal/modules/timer/dto"
	"decktimer/internal/platform/config"
	"decktimer/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	stateDir   string
	configPath string
	instance   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "decktimer",
		Short:         "Interval timer for a single stream deck key",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.stateDir, "state-dir", defaultStateDir(), "directory for settings, frames and logs")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (defaults to <state-dir>/config.yaml)")
	root.PersistentFlags().StringVar(&flags.instance, "instance", "", "key instance (overrides config)")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newPressCmd(flags))
	root.AddCommand(newStartCmd(flags))
	root.AddCommand(newPauseCmd(flags))
	root.AddCommand(newResetCmd(flags))
	root.AddCommand(newGoalCmd(flags))
	root.AddCommand(newSettingsCmd(flags))
	root.AddCommand(newRenderCmd(flags))
	root.AddCommand(newChimeCmd(flags))
	return root
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "decktimer")
	}
	return ".decktimer"
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = filepath.Join(flags.stateDir, "config.yaml")
	}
	cfg, err := config.Load(path, flags.stateDir)
	if err != nil {
		return config.Config{}, err
	}
	if flags.instance != "" {
		cfg.Instance = flags.instance
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func loadApp(flags *rootFlags, stderr io.Writer) (*bootstrap.App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, logging.New(cfg.LogLevel, stderr), bootstrap.ModeCLI)
}

// withApp runs fn against a freshly attached app and detaches afterwards.
func withApp(cmd *cobra.Command, flags *rootFlags, fn func(context.Context, *bootstrap.App) error) (err error) {
	app, err := loadApp(flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(cmd.Context(), app)
}

func printStatus(w io.Writer, s timerdto.StatusOutput) {
	_, _ = fmt.Fprintf(w, "instance=%s phase=%s round=%d remaining=%s elapsed=%ds goal=%ds", s.Instance, s.Phase, s.Round, s.RemainingText, s.ElapsedSec, s.GoalSec)
	if s.AlarmActive {
		_, _ = fmt.Fprint(w, " alarm=on")
	}
	_, _ = fmt.Fprintln(w)
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the simulated key in the terminal",
		RunE: func(_ *cobra.Command, _ []string) (err error) {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			log, logCloser, err := logging.NewFile(cfg.LogLevel, cfg.LogPath)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			app, err := bootstrap.New(cfg, log, bootstrap.ModeTUI)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := app.Close(); err == nil {
					err = closeErr
				}
			}()
			return bootstrap.RunTUI(app)
		},
	}
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current timer state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				status, err := app.TimerCLI.Status(ctx)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
}

func newPressCmd(flags *rootFlags) *cobra.Command {
	var long bool
	press := &cobra.Command{
		Use:   "press",
		Short: "Simulate a key press (toggle, silence, or reset with --long)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				status, err := app.TimerCLI.Press(ctx, long)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
	press.Flags().BoolVar(&long, "long", false, "hold the key instead of tapping it")
	return press
}

func newStartCmd(flags *rootFlags) *cobra.Command {
	return statusCommand(flags, "start", "Start or resume the timer", func(ctx context.Context, app *bootstrap.App) (timerdto.StatusOutput, error) {
		return app.TimerCLI.Start(ctx)
	})
}

func newPauseCmd(flags *rootFlags) *cobra.Command {
	return statusCommand(flags, "pause", "Pause the timer", func(ctx context.Context, app *bootstrap.App) (timerdto.StatusOutput, error) {
		return app.TimerCLI.Pause(ctx)
	})
}

func newResetCmd(flags *rootFlags) *cobra.Command {
	return statusCommand(flags, "reset", "Reset to round one", func(ctx context.Context, app *bootstrap.App) (timerdto.StatusOutput, error) {
		return app.TimerCLI.Reset(ctx)
	})
}

func statusCommand(flags *rootFlags, use, short string, fn func(context.Context, *bootstrap.App) (timerdto.StatusOutput, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				status, err := fn(ctx, app)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
}

func newGoalCmd(flags *rootFlags) *cobra.Command {
	var input timerdto.ConfigureInput
	goal := &cobra.Command{
		Use:   "goal",
		Short: "Set the round goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				status, err := app.TimerCLI.Goal(ctx, input)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
	goal.Flags().IntVar(&input.Hours, "hours", 0, "goal hours")
	goal.Flags().IntVar(&input.Minutes, "minutes", 0, "goal minutes")
	goal.Flags().IntVar(&input.Seconds, "seconds", 0, "goal seconds")
	return goal
}

func newSettingsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "settings <json>",
		Short: "Apply a host settings payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				status, err := app.TimerCLI.ApplySettingsJSON(ctx, args[0])
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	var outPath string
	var blank bool
	render := &cobra.Command{
		Use:   "render",
		Short: "Write the current key face as a PNG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				var (
					b   []byte
					err error
				)
				if blank {
					b, err = app.RenderCLI.RenderClearPNG(ctx)
				} else {
					status, statusErr := app.TimerCLI.Status(ctx)
					if statusErr != nil {
						return statusErr
					}
					if status.Phase == "reset" {
						return fmt.Errorf("timer is idle; nothing to render")
					}
					b, err = app.RenderCLI.RenderPNG(ctx, renderdto.TimerFrameInput{
						ElapsedSec: status.ElapsedSec,
						GoalSec:    status.GoalSec,
						Round:      status.Round,
						Running:    status.Phase == "running",
					})
				}
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, b, 0o644); err != nil {
					return fmt.Errorf("write png: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outPath, len(b))
				return nil
			})
		},
	}
	render.Flags().StringVar(&outPath, "out", "key.png", "output file")
	render.Flags().BoolVar(&blank, "clear", false, "render the blank key instead of the timer")
	return render
}

func newChimeCmd(flags *rootFlags) *cobra.Command {
	chime := &cobra.Command{Use: "chime", Short: "Alarm device commands"}
	chime.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check the configured chime device without playing it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				r, err := app.ChimeCLI.Doctor(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s driver=%s checksum=%t binary=%t lifecycle=%t", r.Name, r.Driver, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Version != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " version=%s", r.Version)
				}
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	})
	return chime
}

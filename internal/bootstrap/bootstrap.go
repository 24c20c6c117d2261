package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	chimeinadapter "decktimer/internal/modules/chime/adapter/in"
	chimeoutadapter "decktimer/internal/modules/chime/adapter/out"
	chimedomain "decktimer/internal/modules/chime/domain"
	chimeout "decktimer/internal/modules/chime/port/out"
	chimeservice "decktimer/internal/modules/chime/service"
	chimeusecase "decktimer/internal/modules/chime/usecase"
	renderinadapter "decktimer/internal/modules/render/adapter/in"
	renderoutadapter "decktimer/internal/modules/render/adapter/out"
	renderservice "decktimer/internal/modules/render/service"
	renderusecase "decktimer/internal/modules/render/usecase"
	timerinadapter "decktimer/internal/modules/timer/adapter/in"
	timeroutadapter "decktimer/internal/modules/timer/adapter/out"
	timerin "decktimer/internal/modules/timer/port/in"
	timerout "decktimer/internal/modules/timer/port/out"
	timerservice "decktimer/internal/modules/timer/service"
	timerusecase "decktimer/internal/modules/timer/usecase"
	"decktimer/internal/platform/clock"
	"decktimer/internal/platform/config"
	"decktimer/internal/platform/eventloop"
	uiapp "decktimer/internal/ui/app"
)

// Mode selects where key faces go.
type Mode int

const (
	// ModeCLI mirrors frames into the state directory.
	ModeCLI Mode = iota
	// ModeTUI forwards frames to the terminal UI.
	ModeTUI
)

type App struct {
	Config    config.Config
	Log       hclog.Logger
	Timer     timerin.Usecase
	TimerCLI  timerinadapter.CLIHandler
	RenderCLI renderinadapter.CLIHandler
	ChimeCLI  chimeinadapter.CLIHandler

	display *uiapp.ProgramDisplay
	cancel  context.CancelFunc
	closers []io.Closer
}

func New(cfg config.Config, log hclog.Logger, mode Mode) (*App, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	app := &App{Config: cfg, Log: log}
	clk := clock.SystemClock{}

	loop := eventloop.New()
	loopCtx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	go loop.Run(loopCtx)

	store, err := app.newSettingsStore(cfg)
	if err != nil {
		app.shutdown()
		return nil, err
	}

	faces, err := renderoutadapter.NewGoFontFaces()
	if err != nil {
		app.shutdown()
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	backgrounds, err := renderoutadapter.NewBackgrounds(cfg.Display.RunningBackground, cfg.Display.PausedBackground)
	if err != nil {
		app.shutdown()
		return nil, fmt.Errorf("load backgrounds: %w", err)
	}
	renderUC := renderusecase.NewInteractor(renderservice.NewFrameRenderer(faces, backgrounds))

	alarm, prober, err := app.newChimeDevice(cfg, mode)
	if err != nil {
		app.shutdown()
		return nil, err
	}

	var display timerout.Display
	switch mode {
	case ModeTUI:
		app.display = uiapp.NewProgramDisplay()
		display = app.display
	default:
		display = timeroutadapter.NewPNGFileDisplay(cfg.StateDir, cfg.Instance)
	}

	engine := timerservice.NewEngine(timerservice.Dependencies{
		Instance:  cfg.Instance,
		Clock:     clk,
		Store:     store,
		Renderer:  renderUC,
		Display:   display,
		Scheduler: timeroutadapter.NewLoopScheduler(loop),
		Alarm:     alarm,
		Logger:    log,
	})
	app.Timer = timerusecase.NewInteractor(engine, loop, clk, cfg.Instance)
	app.TimerCLI = timerinadapter.NewCLIHandler(app.Timer, clk.Now)
	app.RenderCLI = renderinadapter.NewCLIHandler(renderUC)

	manifest := chimedomain.Manifest{Name: cfg.Chime.Plugin.Name, Binary: cfg.Chime.Plugin.Binary, SHA256: cfg.Chime.Plugin.SHA256}
	doctor := chimeservice.NewDoctor(cfg.Chime.Driver, manifest, chimeoutadapter.NewGRPCHost(log.Named("chime")), prober)
	app.ChimeCLI = chimeinadapter.NewCLIHandler(chimeusecase.NewInteractor(doctor))
	return app, nil
}

func (a *App) newSettingsStore(cfg config.Config) (timerout.SettingsStore, error) {
	log := a.Log.Named("store")
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		store, err := timeroutadapter.NewSQLiteSettingsStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("new sqlite settings store: %w", err)
		}
		a.closers = append(a.closers, store)
		log.Debug("settings store ready", "driver", cfg.Store.Driver, "path", cfg.DBPath)
		return store, nil
	case config.StoreMySQL:
		store, err := timeroutadapter.NewMySQLSettingsStore(context.Background(), cfg.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("new mysql settings store: %w", err)
		}
		a.closers = append(a.closers, store)
		log.Debug("settings store ready", "driver", cfg.Store.Driver)
		return store, nil
	default:
		log.Debug("settings store ready", "driver", config.StoreFile, "dir", cfg.StateDir)
		return timeroutadapter.NewFileSettingsStore(cfg.StateDir), nil
	}
}

func (a *App) newChimeDevice(cfg config.Config, mode Mode) (timerout.AlarmDevice, chimeout.Prober, error) {
	log := a.Log.Named("chime")
	switch cfg.Chime.Driver {
	case config.ChimeNone:
		return nil, nil, nil
	case config.ChimeFFPlay:
		device := chimeoutadapter.NewFFPlayDevice(cfg.Chime.Sound, log)
		a.closers = append(a.closers, stopOnClose{device})
		return device, device, nil
	case config.ChimePlugin:
		manifest := chimedomain.Manifest{Name: cfg.Chime.Plugin.Name, Binary: cfg.Chime.Plugin.Binary, SHA256: cfg.Chime.Plugin.SHA256}
		device, err := chimeoutadapter.NewPluginDevice(manifest, cfg.Instance, log)
		if err != nil {
			return nil, nil, fmt.Errorf("new chime plugin: %w", err)
		}
		a.closers = append(a.closers, device)
		if mode == ModeTUI {
			if err := device.Connect(); err != nil {
				log.Warn("chime plugin not started", "error", err)
			}
		}
		return device, nil, nil
	default:
		// A one-shot CLI exits long before anyone hears a bell.
		if mode == ModeCLI {
			return nil, nil, nil
		}
		return chimeoutadapter.NewBellDevice(os.Stderr), nil, nil
	}
}

// Close detaches the timer, stops the event loop and releases adapters.
func (a *App) Close() error {
	var errs []error
	if a.Timer != nil {
		if err := a.Timer.Detach(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("detach timer: %w", err))
		}
	}
	errs = append(errs, a.shutdown())
	return errors.Join(errs...)
}

func (a *App) shutdown() error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	if app.display == nil {
		return fmt.Errorf("app was not built for the terminal UI")
	}
	program := tea.NewProgram(uiapp.NewModel(app.Timer, nil), tea.WithAltScreen())
	app.display.Bind(program)
	_, err := program.Run()
	return err
}

type stopOnClose struct {
	device *chimeoutadapter.FFPlayDevice
}

func (s stopOnClose) Close() error {
	return s.device.Stop(context.Background())
}

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"decktimer/internal/modules/timer/dto"
	"decktimer/internal/platform/config"
)

func newTestApp(t *testing.T, driver string) (*App, config.Config) {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	cfg.Store.Driver = driver
	cfg.Chime.Driver = config.ChimeNone
	app, err := New(cfg, nil, ModeCLI)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app, cfg
}

func TestCLIAppPersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{config.StoreFile, config.StoreSQLite} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			app, cfg := newTestApp(t, driver)
			ctx := context.Background()

			status, err := app.TimerCLI.Goal(ctx, dto.ConfigureInput{Minutes: 25})
			if err != nil {
				t.Fatalf("goal: %v", err)
			}
			if status.RemainingText != "25:00" {
				t.Fatalf("unexpected remaining %q", status.RemainingText)
			}
			if _, err := app.TimerCLI.Start(ctx); err != nil {
				t.Fatalf("start: %v", err)
			}
			if err := app.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			if _, err := os.Stat(filepath.Join(cfg.StateDir, "frames", cfg.Instance+".png")); err != nil {
				t.Fatalf("expected mirrored frame: %v", err)
			}

			reopened, err := New(cfg, nil, ModeCLI)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer reopened.Close()
			status, err = reopened.TimerCLI.Status(ctx)
			if err != nil {
				t.Fatalf("status: %v", err)
			}
			if status.Phase != "running" || status.GoalSec != 25*60 {
				t.Fatalf("state not restored: %+v", status)
			}
		})
	}
}

func TestRenderCLIProducesPNG(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, config.StoreFile)
	defer app.Close()

	b, err := app.RenderCLI.RenderClearPNG(context.Background())
	if err != nil {
		t.Fatalf("render clear: %v", err)
	}
	if len(b) < 8 || string(b[1:4]) != "PNG" {
		t.Fatalf("not a png")
	}
}

func TestChimeDoctorWithoutDevice(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, config.StoreFile)
	defer app.Close()

	res, err := app.ChimeCLI.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if res.Driver != config.ChimeNone || !res.LifecycleOK {
		t.Fatalf("unexpected doctor result %+v", res)
	}
}

func TestRunTUIRequiresTUIMode(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, config.StoreFile)
	defer app.Close()
	if err := RunTUI(app); err == nil {
		t.Fatalf("expected error for cli-mode app")
	}
}

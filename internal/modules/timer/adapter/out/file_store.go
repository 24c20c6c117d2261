package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"decktimer/internal/modules/timer/domain"
	timerout "decktimer/internal/modules/timer/port/out"
	apperrors "decktimer/internal/platform/errors"
)

// FileSettingsStore keeps one JSON document per instance under
// <state>/settings. Documents are decoded leniently so hand edits with
// numeric strings or missing fields still load.
type FileSettingsStore struct {
	dir string
}

func NewFileSettingsStore(stateDir string) timerout.SettingsStore {
	return &FileSettingsStore{dir: filepath.Join(stateDir, "settings")}
}

func (s *FileSettingsStore) Load(_ context.Context, instance string) (domain.Snapshot, error) {
	path, err := s.path(instance)
	if err != nil {
		return domain.Snapshot{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Snapshot{}, apperrors.ErrNotFound
		}
		return domain.Snapshot{}, fmt.Errorf("read settings: %w", err)
	}
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode settings %s: %w", path, err)
	}
	return domain.DecodeSettings(raw, domain.AttachDefaults), nil
}

func (s *FileSettingsStore) Save(_ context.Context, instance string, snapshot domain.Snapshot) error {
	path, err := s.path(instance)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	b, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func (s *FileSettingsStore) path(instance string) (string, error) {
	if err := checkInstance(instance); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, instance+".json"), nil
}

// checkInstance keeps instance names from escaping the directory they are
// joined into.
func checkInstance(instance string) error {
	if instance == "" || filepath.Base(instance) != instance || instance == "." || instance == ".." {
		return fmt.Errorf("%w: instance %q", apperrors.ErrInvalidInput, instance)
	}
	return nil
}

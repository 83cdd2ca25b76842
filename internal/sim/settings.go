package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/bondsim/internal/compute"
)

const (
	DefaultDt             = 2e-5
	DefaultStepsPerFrame  = 5
	DefaultLogInterval    = 0.05
	DefaultBackupInterval = 0.1
	DefaultAutoDtFactor   = 1.1
	MaxDt                 = 5e-5

	// CellSizeFactor scales the object repulsion distance into a grid cell
	// size when CellSize is left at zero.
	CellSizeFactor = 2.5
)

type Settings struct {
	Dt             float64        `yaml:"dt" json:"dt"`
	StepsPerFrame  int            `yaml:"steps_per_frame" json:"steps_per_frame"`
	Engine         compute.Engine `yaml:"engine" json:"engine"`
	UseGrid        bool           `yaml:"use_grid" json:"use_grid"`
	CellSize       float64        `yaml:"cell_size" json:"cell_size"`
	LogToCSV       bool           `yaml:"log_to_csv" json:"log_to_csv"`
	LogInterval    float64        `yaml:"log_interval" json:"log_interval"`
	UseBackup      bool           `yaml:"use_backup" json:"use_backup"`
	BackupInterval float64        `yaml:"backup_interval" json:"backup_interval"`
	UseAutoDt      bool           `yaml:"use_auto_dt" json:"use_auto_dt"`
	AutoDtFactor   float64        `yaml:"auto_dt_factor" json:"auto_dt_factor"`
	MaxDt          float64        `yaml:"max_dt" json:"max_dt"`
}

func DefaultSettings() Settings {
	return Settings{
		Dt:             DefaultDt,
		StepsPerFrame:  DefaultStepsPerFrame,
		Engine:         compute.EngineParallel,
		UseGrid:        true,
		LogToCSV:       true,
		LogInterval:    DefaultLogInterval,
		UseBackup:      true,
		BackupInterval: DefaultBackupInterval,
		AutoDtFactor:   DefaultAutoDtFactor,
		MaxDt:          MaxDt,
	}
}

func (s Settings) Validate() error {
	positive := func(name string, v float64) error {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidSettings, name, v)
		}
		return nil
	}

	if err := positive("dt", s.Dt); err != nil {
		return err
	}
	if err := positive("max_dt", s.MaxDt); err != nil {
		return err
	}
	if s.Dt > s.MaxDt {
		return fmt.Errorf("%w: dt %g exceeds max_dt %g", ErrInvalidSettings, s.Dt, s.MaxDt)
	}
	if s.StepsPerFrame < 0 {
		return fmt.Errorf("%w: steps_per_frame must not be negative, got %d", ErrInvalidSettings, s.StepsPerFrame)
	}
	if s.CellSize < 0 || math.IsNaN(s.CellSize) {
		return fmt.Errorf("%w: cell_size must be zero (auto) or positive, got %g", ErrInvalidSettings, s.CellSize)
	}
	if s.UseBackup {
		if err := positive("backup_interval", s.BackupInterval); err != nil {
			return err
		}
	}
	if s.UseAutoDt && !(s.AutoDtFactor >= 1) {
		return fmt.Errorf("%w: auto_dt_factor must be at least 1, got %g", ErrInvalidSettings, s.AutoDtFactor)
	}
	if s.LogToCSV {
		if err := positive("log_interval", s.LogInterval); err != nil {
			return err
		}
	}
	if _, err := compute.ParseEngine(string(s.Engine)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// FrameTime is the simulated time covered by one Update.
func (s Settings) FrameTime() float64 {
	return s.Dt * float64(s.StepsPerFrame)
}

package sim

import (
	"errors"
	"math"
	"testing"
)

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"zero dt", func(s *Settings) { s.Dt = 0 }, true},
		{"nan dt", func(s *Settings) { s.Dt = math.NaN() }, true},
		{"dt above max", func(s *Settings) { s.Dt = 2 * MaxDt }, true},
		{"negative steps", func(s *Settings) { s.StepsPerFrame = -1 }, true},
		{"zero steps", func(s *Settings) { s.StepsPerFrame = 0 }, false},
		{"negative cell", func(s *Settings) { s.CellSize = -0.1 }, true},
		{"auto cell", func(s *Settings) { s.CellSize = 0 }, false},
		{"backup without interval", func(s *Settings) { s.BackupInterval = 0 }, true},
		{"no backup no interval", func(s *Settings) { s.UseBackup = false; s.BackupInterval = 0 }, false},
		{"shrinking auto dt", func(s *Settings) { s.UseAutoDt = true; s.AutoDtFactor = 0.9 }, true},
		{"csv without interval", func(s *Settings) { s.LogToCSV = true; s.LogInterval = 0 }, true},
		{"unknown engine", func(s *Settings) { s.Engine = "abacus" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("error %v does not wrap ErrInvalidSettings", err)
			}
		})
	}
}

func TestFrameTime(t *testing.T) {
	s := Settings{Dt: 2e-5, StepsPerFrame: 5}
	if got := s.FrameTime(); math.Abs(got-1e-4) > 1e-18 {
		t.Errorf("FrameTime() = %v", got)
	}
}

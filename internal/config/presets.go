package config

import (
	"sort"

	"github.com/san-kum/bondsim/internal/compute"
	"github.com/san-kum/bondsim/internal/sim"
)

// Presets are named simulation settings, applied on top of the defaults.
var Presets = map[string]func(*sim.Settings){
	// Larger steps, no safety net.
	"fast": func(s *sim.Settings) {
		s.Dt = 4e-5
		s.StepsPerFrame = 10
		s.UseBackup = false
		s.UseAutoDt = false
	},
	"stable": func(s *sim.Settings) {
		s.Dt = 1e-5
		s.StepsPerFrame = 5
		s.UseBackup = true
		s.BackupInterval = 0.05
		s.UseAutoDt = true
		s.AutoDtFactor = 1.05
		s.MaxDt = 3e-5
	},
	// Fixed dt and no backups so timings compare across engines.
	"benchmark": func(s *sim.Settings) {
		s.Dt = 2e-5
		s.StepsPerFrame = 1
		s.Engine = compute.EngineParallel
		s.UseGrid = true
		s.UseBackup = false
		s.UseAutoDt = false
		s.LogToCSV = false
	},
}

// GetPreset returns the default settings with the named preset applied.
func GetPreset(name string) (sim.Settings, bool) {
	apply, ok := Presets[name]
	if !ok {
		return sim.Settings{}, false
	}
	s := sim.DefaultSettings()
	apply(&s)
	return s, true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

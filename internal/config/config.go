package config

import (
	"fmt"
	"os"

	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/sim"
	"github.com/san-kum/bondsim/internal/storage"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDuration = 2.0
	DefaultScene    = "two_squares"
	DefaultDataDir  = ".bondsim"
)

type Config struct {
	Scene      SceneConfig  `yaml:"scene"`
	Simulation sim.Settings `yaml:"simulation"`
	Duration   float64      `yaml:"duration"`
	DataDir    string       `yaml:"data_dir"`
}

// SceneConfig selects the starting scene. File, when set, wins over Preset.
type SceneConfig struct {
	Preset string `yaml:"preset"`
	Size   int    `yaml:"size"`
	File   string `yaml:"file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene: SceneConfig{
			Preset: DefaultScene,
			Size:   scene.DefaultSize,
		},
		Simulation: sim.DefaultSettings(),
		Duration:   DefaultDuration,
		DataDir:    DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildScene produces the scene the config describes.
func (c *Config) BuildScene() (*scene.Scene, error) {
	if c.Scene.File != "" {
		return storage.LoadSceneFile(c.Scene.File)
	}
	return scene.Generate(c.Scene.Preset, c.Scene.Size)
}

// SceneName labels runs: the preset name, or "file" for loaded scenes.
func (c *Config) SceneName() string {
	if c.Scene.File != "" {
		return "file"
	}
	return c.Scene.Preset
}

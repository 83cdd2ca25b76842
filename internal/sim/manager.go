package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/bondsim/internal/compute"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/topology"
	"go.uber.org/zap"
)

type dirtyFlags uint8

const (
	dirtyConnections dirtyFlags = 1 << iota
	dirtyCollisions
	dirtyGrid

	dirtyAll = dirtyConnections | dirtyCollisions | dirtyGrid
)

// Manager owns a scene together with its derived structures and drives it
// frame by frame, recovering from numerical blow-ups when backups are on.
type Manager struct {
	Scene               *scene.Scene
	Backup              *scene.Scene
	Settings            Settings
	TotalSimulationTime float64
	Frames              int
	Recoveries          int
	BrokenBonds         int

	Connections topology.Connections
	Collisions  topology.Collisions
	Grid        *topology.Grid

	backend     compute.Backend
	log         *zap.Logger
	observers   []Observer
	sinceBackup float64
	gridWasOn   bool
	dirty       dirtyFlags
	warnedNaN   bool
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observers = append(m.observers, o) }
}

// WithBackend injects a ready backend instead of constructing one from
// Settings.Engine. The manager takes ownership of it.
func WithBackend(b compute.Backend) Option {
	return func(m *Manager) { m.backend = b }
}

func New(sc *scene.Scene, settings Settings, opts ...Option) (*Manager, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		Scene:    sc,
		Settings: settings,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.backend == nil {
		m.backend = compute.AutoSelect(settings.Engine, func(e compute.Engine, err error) {
			m.log.Warn("engine unavailable, falling back", zap.String("engine", string(e)), zap.Error(err))
		})
	}
	m.Settings.Engine = m.backend.Engine()
	if m.Settings.CellSize == 0 {
		m.Settings.CellSize = sc.ObjectRepulsionDistance * CellSizeFactor
	}

	m.Backup = sc.Clone()
	m.Grid = topology.NewGrid(sc.Nodes, m.Settings.CellSize)
	m.gridWasOn = m.Settings.UseGrid
	m.invalidate(dirtyAll)
	if err := m.refresh(); err != nil {
		m.backend.Close()
		return nil, err
	}

	m.log.Info("simulation ready",
		zap.Int("nodes", len(sc.Nodes)),
		zap.Int("bonds", len(sc.Connections)),
		zap.String("backend", m.backend.Name()),
		zap.Float64("dt", m.Settings.Dt),
	)
	return m, nil
}

func (m *Manager) invalidate(f dirtyFlags) {
	m.dirty |= f
}

// refresh rebuilds every structure marked stale and pushes the result to
// backends that cache topology.
func (m *Manager) refresh() error {
	if m.dirty == 0 {
		return nil
	}
	if m.dirty&dirtyConnections != 0 {
		m.Connections = topology.BuildConnections(m.Scene)
	}
	if m.Settings.UseGrid && m.dirty&(dirtyGrid|dirtyCollisions) != 0 {
		m.Grid.SetCellSize(m.Settings.CellSize)
		m.Grid.Rebuild(m.Scene.Nodes)
	}
	if m.dirty&dirtyCollisions != 0 {
		if m.Settings.UseGrid {
			m.Collisions = topology.GridCollisions(m.Scene.Nodes, m.Grid)
		} else {
			m.Collisions = topology.BruteForceCollisions(m.Scene.Nodes)
		}
	}
	if s, ok := m.backend.(compute.TopologySyncer); ok && m.dirty&(dirtyConnections|dirtyCollisions) != 0 {
		if err := s.SyncTopology(m.Connections, m.Collisions); err != nil {
			return fmt.Errorf("sync topology: %w", err)
		}
	}
	m.dirty = 0
	return nil
}

// Update advances the simulation by one frame of StepsPerFrame steps.
// Numerical divergence is not an error; only backend failures are.
func (m *Manager) Update() error {
	start := time.Now()

	if m.gridWasOn && !m.Settings.UseGrid {
		m.invalidate(dirtyCollisions)
	}
	m.gridWasOn = m.Settings.UseGrid

	if broken := topology.BreakOverstretched(m.Scene); len(broken) > 0 {
		m.BrokenBonds += len(broken)
		m.invalidate(dirtyConnections)
		if !m.Settings.UseGrid {
			m.invalidate(dirtyCollisions)
		}
		m.log.Info("bonds broken", zap.Int("broken", len(broken)), zap.Int("remaining", len(m.Scene.Connections)))
		for _, o := range m.observers {
			o.OnBondsBroken(len(broken))
		}
	}

	if m.Settings.UseGrid {
		m.invalidate(dirtyGrid | dirtyCollisions)
	}
	if err := m.refresh(); err != nil {
		return err
	}

	frameTime := m.Settings.FrameTime()
	stepDt := m.Settings.Dt
	for i := 0; i < m.Settings.StepsPerFrame; i++ {
		if err := m.backend.Step(m.Scene, m.Connections, m.Collisions, stepDt); err != nil {
			return fmt.Errorf("%s step: %w", m.backend.Engine(), err)
		}
	}

	if m.Settings.UseBackup {
		m.sinceBackup += frameTime
		if m.sinceBackup > m.Settings.BackupInterval {
			m.sinceBackup = 0
			if _, err := m.RestoreIfBroken(); err != nil {
				return err
			}
		}
	} else if !m.warnedNaN && m.Scene.IsBroken() {
		m.warnedNaN = true
		m.log.Warn("scene diverged and backups are disabled", zap.Float64("time", m.TotalSimulationTime))
	}

	m.TotalSimulationTime += frameTime
	m.Frames++

	stats := FrameStats{
		Frame:          m.Frames,
		Time:           m.TotalSimulationTime,
		Dt:             m.Settings.Dt,
		Steps:          m.Settings.StepsPerFrame,
		Engine:         m.backend.Engine(),
		Nodes:          len(m.Scene.Nodes),
		Bonds:          len(m.Scene.Connections),
		CollisionPairs: m.Collisions.Pairs(),
		Elapsed:        time.Since(start),
	}
	for _, o := range m.observers {
		o.OnFrame(stats)
	}
	return nil
}

// RestoreIfBroken is the periodic backup check. A diverged scene is
// replaced by the last backup and dt is halved; a healthy one becomes the
// new backup and, with auto dt, dt grows by AutoDtFactor up to MaxDt.
func (m *Manager) RestoreIfBroken() (bool, error) {
	if m.Scene.IsBroken() {
		m.Scene = m.Backup.Clone()
		m.Settings.Dt *= 0.5
		m.Recoveries++
		m.invalidate(dirtyAll)
		m.log.Warn("scene diverged, restoring backup",
			zap.Float64("time", m.TotalSimulationTime),
			zap.Float64("new_dt", m.Settings.Dt),
			zap.Int("recoveries", m.Recoveries),
		)
		for _, o := range m.observers {
			o.OnRecovery(m.Settings.Dt)
		}
		return true, m.refresh()
	}

	m.Backup = m.Scene.Clone()
	if m.Settings.UseAutoDt {
		next := math.Min(m.Settings.Dt*m.Settings.AutoDtFactor, m.Settings.MaxDt)
		if next != m.Settings.Dt {
			m.log.Debug("growing dt", zap.Float64("dt", next))
		}
		m.Settings.Dt = next
	}
	return false, nil
}

// Reset swaps in a new scene and clears the run counters. Settings and the
// active engine carry over.
func (m *Manager) Reset(sc *scene.Scene) error {
	m.Scene = sc
	m.Backup = sc.Clone()
	m.TotalSimulationTime = 0
	m.Frames, m.Recoveries, m.BrokenBonds = 0, 0, 0
	m.sinceBackup = 0
	m.warnedNaN = false
	m.Grid = topology.NewGrid(sc.Nodes, m.Settings.CellSize)
	m.invalidate(dirtyAll)
	return m.refresh()
}

func (m *Manager) IsBroken() bool {
	return m.Scene.IsBroken()
}

// Run calls Update until duration of simulated time has elapsed, ctx is
// done, or fn returns false.
func (m *Manager) Run(ctx context.Context, duration float64, fn func(*Manager) bool) error {
	for m.TotalSimulationTime < duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if m.Settings.FrameTime() <= 0 {
			return ErrNoProgress
		}
		if err := m.Update(); err != nil {
			return err
		}
		if fn != nil && !fn(m) {
			return nil
		}
	}
	return nil
}

// SetEngine swaps the execution backend. The old backend is closed only
// once the new one is ready.
func (m *Manager) SetEngine(e compute.Engine) error {
	if e == m.backend.Engine() {
		return nil
	}
	b, err := compute.New(e)
	if err != nil {
		return err
	}
	if s, ok := b.(compute.TopologySyncer); ok {
		if err := s.SyncTopology(m.Connections, m.Collisions); err != nil {
			b.Close()
			return fmt.Errorf("sync topology: %w", err)
		}
	}
	m.backend.Close()
	m.backend = b
	m.Settings.Engine = e
	m.log.Info("engine switched", zap.String("backend", b.Name()))
	return nil
}

// Engines lists the engines that can run on this build and machine.
func (m *Manager) Engines() []compute.Engine {
	return compute.Available()
}

func (m *Manager) Backend() compute.Backend {
	return m.backend
}

func (m *Manager) Close() {
	if m.backend != nil {
		m.backend.Close()
	}
}

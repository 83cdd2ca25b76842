package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/bondsim/internal/compute"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/sim"
	"github.com/san-kum/bondsim/internal/topology"
)

type recorder struct {
	frames     []sim.FrameStats
	broken     int
	recoveries []float64
}

func (r *recorder) OnFrame(s sim.FrameStats) { r.frames = append(r.frames, s) }
func (r *recorder) OnBondsBroken(n int)      { r.broken += n }
func (r *recorder) OnRecovery(dt float64)    { r.recoveries = append(r.recoveries, dt) }

func testSettings() sim.Settings {
	s := sim.DefaultSettings()
	s.Engine = compute.EngineCPU
	s.Dt = 1e-5
	s.StepsPerFrame = 4
	s.BackupInterval = 1e-5
	return s
}

var _ = Describe("Manager", func() {
	var (
		sc       *scene.Scene
		settings sim.Settings
		rec      *recorder
		m        *sim.Manager
	)

	BeforeEach(func() {
		var err error
		sc, err = scene.Generate("two_squares", 6)
		Expect(err).NotTo(HaveOccurred())
		settings = testSettings()
		rec = &recorder{}
	})

	JustBeforeEach(func() {
		var err error
		m, err = sim.New(sc, settings, sim.WithObserver(rec))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		m.Close()
	})

	It("primes every derived structure", func() {
		Expect(m.Connections).To(HaveLen(len(sc.Nodes)))
		Expect(m.Collisions).To(HaveLen(len(sc.Nodes)))
		Expect(m.Connections.Edges()).To(Equal(2 * len(sc.Connections)))
		Expect(m.Backup.Equal(sc)).To(BeTrue())
		Expect(m.Backup).NotTo(BeIdenticalTo(sc))
		Expect(m.Settings.CellSize).To(BeNumerically("~", sc.ObjectRepulsionDistance*sim.CellSizeFactor))
	})

	It("advances simulated time by dt times steps per frame", func() {
		for i := 0; i < 3; i++ {
			Expect(m.Update()).To(Succeed())
		}
		Expect(m.TotalSimulationTime).To(BeNumerically("~", 3*4*1e-5, 1e-15))
		Expect(rec.frames).To(HaveLen(3))
		Expect(rec.frames[2].Frame).To(Equal(3))
		Expect(rec.frames[2].Engine).To(Equal(compute.EngineCPU))
	})

	It("moves nodes under gravity", func() {
		y0 := sc.Nodes[len(sc.Nodes)-1].Position[1]
		Expect(m.Update()).To(Succeed())
		Expect(m.Scene.Nodes[len(sc.Nodes)-1].Position[1]).To(BeNumerically("<", y0))
	})

	Context("when the scene diverges", func() {
		It("restores the backup and halves dt", func() {
			pristine := sc.Clone()
			m.Scene.Nodes[3].Position[0] = math.NaN()

			Expect(m.Update()).To(Succeed())

			Expect(m.IsBroken()).To(BeFalse())
			Expect(m.Scene.Equal(pristine)).To(BeTrue())
			Expect(m.Settings.Dt).To(Equal(0.5e-5))
			Expect(m.Recoveries).To(Equal(1))
			Expect(rec.recoveries).To(Equal([]float64{0.5e-5}))
			Expect(m.Connections.Edges()).To(Equal(2 * len(pristine.Connections)))
		})

		It("keeps the backup intact across repeated failures", func() {
			m.Scene.Nodes[0].Position[1] = math.Inf(1)
			Expect(m.Update()).To(Succeed())
			m.Scene.Nodes[0].Position[1] = math.Inf(1)
			Expect(m.Update()).To(Succeed())

			Expect(m.IsBroken()).To(BeFalse())
			Expect(m.Settings.Dt).To(Equal(0.25e-5))
		})
	})

	Context("with backups disabled", func() {
		BeforeEach(func() {
			settings.UseBackup = false
		})

		It("keeps running on a diverged scene", func() {
			m.Scene.Nodes[3].Position[0] = math.NaN()
			Expect(m.Update()).To(Succeed())
			Expect(m.IsBroken()).To(BeTrue())
			Expect(m.Recoveries).To(BeZero())
		})
	})

	Context("with auto dt", func() {
		BeforeEach(func() {
			settings.UseAutoDt = true
			settings.Dt = 4.8e-5
		})

		It("grows dt on a healthy check without passing the cap", func() {
			Expect(m.Update()).To(Succeed())
			Expect(m.Settings.Dt).To(Equal(sim.MaxDt))
			Expect(m.Update()).To(Succeed())
			Expect(m.Settings.Dt).To(Equal(sim.MaxDt))
		})

		It("refreshes the backup on a healthy check", func() {
			Expect(m.Update()).To(Succeed())
			Expect(m.Backup.Equal(m.Scene)).To(BeTrue())
		})
	})

	Context("when the grid is switched off", func() {
		BeforeEach(func() {
			settings.UseGrid = true
			settings.CellSize = 0.01
		})

		It("rebuilds brute-force collisions on the next update", func() {
			Expect(m.Update()).To(Succeed())
			gridPairs := m.Collisions.Pairs()

			m.Settings.UseGrid = false
			Expect(m.Update()).To(Succeed())

			Expect(m.Collisions.Pairs()).To(Equal(topology.BruteForceCollisions(m.Scene.Nodes).Pairs()))
			Expect(m.Collisions.Pairs()).To(BeNumerically(">", gridPairs))
		})
	})

	Context("when a bond is overstretched", func() {
		It("breaks it and rebuilds the connections", func() {
			m.Scene.Nodes[0].Position = m.Scene.Nodes[0].Position.Add(mgl64.Vec2{-0.3, 0})
			before := len(m.Scene.Connections)

			Expect(m.Update()).To(Succeed())

			Expect(len(m.Scene.Connections)).To(BeNumerically("<", before))
			Expect(m.Connections[0]).To(BeEmpty())
			Expect(m.BrokenBonds).To(Equal(before - len(m.Scene.Connections)))
			Expect(rec.broken).To(Equal(m.BrokenBonds))
			Expect(m.Connections.Edges()).To(Equal(2 * len(m.Scene.Connections)))
		})
	})

	Describe("Run", func() {
		It("stops once the duration is reached", func() {
			Expect(m.Run(context.Background(), 1.8e-4, nil)).To(Succeed())
			Expect(m.TotalSimulationTime).To(BeNumerically(">=", 1.8e-4))
			Expect(m.Frames).To(Equal(5))
		})

		It("stops when the callback declines", func() {
			calls := 0
			Expect(m.Run(context.Background(), 1, func(*sim.Manager) bool {
				calls++
				return calls < 2
			})).To(Succeed())
			Expect(m.Frames).To(Equal(2))
		})

		It("honours cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(m.Run(ctx, 1, nil)).To(MatchError(context.Canceled))
		})

		It("refuses frames that advance no time", func() {
			m.Settings.StepsPerFrame = 0
			Expect(m.Run(context.Background(), 1, nil)).To(MatchError(sim.ErrNoProgress))
		})
	})

	Describe("Reset", func() {
		It("starts over on the new scene", func() {
			Expect(m.Update()).To(Succeed())
			fresh, err := scene.Generate("tower", 4)
			Expect(err).NotTo(HaveOccurred())

			Expect(m.Reset(fresh)).To(Succeed())
			Expect(m.Scene).To(BeIdenticalTo(fresh))
			Expect(m.TotalSimulationTime).To(BeZero())
			Expect(m.Frames).To(BeZero())
			Expect(m.Connections).To(HaveLen(len(fresh.Nodes)))
			Expect(m.Backup.Equal(fresh)).To(BeTrue())
			Expect(m.Update()).To(Succeed())
		})
	})

	Describe("SetEngine", func() {
		It("switches between CPU engines", func() {
			Expect(m.SetEngine(compute.EngineParallel)).To(Succeed())
			Expect(m.Backend().Engine()).To(Equal(compute.EngineParallel))
			Expect(m.Settings.Engine).To(Equal(compute.EngineParallel))
			Expect(m.Update()).To(Succeed())
		})

		It("rejects unknown engines and keeps the current one", func() {
			Expect(m.SetEngine("cuda")).To(MatchError(compute.ErrUnknownEngine))
			Expect(m.Backend().Engine()).To(Equal(compute.EngineCPU))
		})

		It("lists the CPU engines as available", func() {
			Expect(m.Engines()).To(ContainElements(compute.EngineCPU, compute.EngineParallel))
		})
	})
})

var _ = Describe("New", func() {
	It("rejects invalid settings", func() {
		sc, _ := scene.Generate("two_squares", 4)
		s := sim.DefaultSettings()
		s.Dt = -1
		_, err := sim.New(sc, s)
		Expect(err).To(MatchError(sim.ErrInvalidSettings))
	})

	It("falls back when the preferred engine is missing", func() {
		sc, _ := scene.Generate("two_squares", 4)
		s := sim.DefaultSettings()
		s.Engine = compute.EngineOpenCL
		m, err := sim.New(sc, s)
		Expect(err).NotTo(HaveOccurred())
		defer m.Close()
		Expect(m.Settings.Engine).To(Equal(m.Backend().Engine()))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs every variant", func() {
		sc, _ := scene.Generate("two_squares", 4)
		a, b := testSettings(), testSettings()
		b.Dt = 2e-5
		b.Engine = compute.EngineParallel

		results, err := sim.NewEnsemble(sc, []sim.Settings{a, b}, nil).Run(context.Background(), 3.8e-4)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Frames).To(Equal(10))
		Expect(results[1].Frames).To(Equal(5))
		Expect(results[1].Settings.Dt).To(Equal(2e-5))
		Expect(sc.Nodes[0].Velocity).To(Equal(mgl64.Vec2{}))
	})
})

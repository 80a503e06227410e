package sim_test

import (
	"math"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/maglev/internal/control"
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/noise"
	"github.com/san-kum/maglev/internal/physics"
	"github.com/san-kum/maglev/internal/sensor"
	"github.com/san-kum/maglev/internal/sim"
)

// proportionalParams is a P-only loop against a weak, wide attractor with
// enough drag that the closed loop is overdamped.
func proportionalParams() sim.Params {
	return sim.Params{
		PID:    control.Params{Kp: 1},
		Sensor: sensor.Config{Noise: 0},
		Physics: physics.Config{
			Gravity:     9.81,
			Mass:        1,
			Drag:        25,
			Attractor:   physics.Attractor{Position: 10, Gain: 100, Softening: 100},
			MaxStep:     0.02,
			MaxSubsteps: 10000,
		},
		Setpoint: 2.0,
		Initial:  physics.BallState{Position: 5.0},
	}
}

func stepN(s *sim.Simulation, n int, dt float64) []dynamo.Sample {
	GinkgoHelper()
	for i := 0; i < n; i++ {
		_, err := s.Step(dt)
		Expect(err).NotTo(HaveOccurred())
	}
	return s.History()
}

var _ = Describe("Simulation", func() {
	var s *sim.Simulation

	Context("with proportional control from above the setpoint", func() {
		var samples []dynamo.Sample

		BeforeEach(func() {
			var err error
			s, err = sim.New(proportionalParams(), noise.NewGaussian(1, 1))
			Expect(err).NotTo(HaveOccurred())
			samples = stepN(s, 1000, 0.01)
		})

		It("moves monotonically toward the setpoint", func() {
			for i := 1; i < len(samples); i++ {
				Expect(samples[i].Position).To(BeNumerically("<=", samples[i-1].Position+1e-9),
					"position rose at t=%.2f", samples[i].Time)
			}
		})

		It("stays bounded", func() {
			for _, sample := range samples {
				Expect(sample.Position).To(BeNumerically(">=", 1.8))
				Expect(sample.Position).To(BeNumerically("<=", 5.0))
			}
		})

		It("settles at a steady offset just below the setpoint", func() {
			final := s.Snapshot().Ball.Position
			Expect(final).To(BeNumerically("<", 2.0))
			Expect(final).To(BeNumerically("~", 2.0, 0.15))

			tail := samples[len(samples)-100:]
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, sample := range tail {
				lo = math.Min(lo, sample.Position)
				hi = math.Max(hi, sample.Position)
			}
			Expect(hi - lo).To(BeNumerically("<", 1e-6))
		})
	})

	Context("with a seeded noisy sensor", func() {
		BeforeEach(func() {
			p := sim.DefaultParams()
			p.Sensor.Noise = 0.01
			var err error
			s, err = sim.New(p, noise.NewGaussian(1, 2024))
			Expect(err).NotTo(HaveOccurred())
		})

		It("replays identical samples after a reset", func() {
			first := stepN(s, 2, 0.01)
			Expect(s.Reset(sim.DefaultInitialPosition, 0)).To(Succeed())
			second := stepN(s, 2, 0.01)
			Expect(cmp.Diff(first, second)).To(BeEmpty())
		})

		It("reports measurements that differ from the truth", func() {
			samples := stepN(s, 20, 0.01)
			differ := 0
			for _, sample := range samples {
				if sample.Measured != sample.Position {
					differ++
				}
			}
			Expect(differ).To(Equal(len(samples)))
		})
	})

	Context("when frames stall", func() {
		It("matches the result of regular frames", func() {
			p := sim.DefaultParams()
			p.Sensor.Noise = 0
			p.PID = control.Params{}

			stalled, err := sim.New(p, nil)
			Expect(err).NotTo(HaveOccurred())
			regular, err := sim.New(p, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = stalled.Step(2 * p.Physics.MaxStep)
			Expect(err).NotTo(HaveOccurred())
			stepN(regular, 2, p.Physics.MaxStep)

			a, b := stalled.Snapshot().Ball, regular.Snapshot().Ball
			Expect(a.Position).To(BeNumerically("~", b.Position, 1e-12))
			Expect(a.Velocity).To(BeNumerically("~", b.Velocity, 1e-12))
		})
	})

	Context("when a step is rejected", func() {
		It("leaves ball and controller unchanged", func() {
			var err error
			s, err = sim.New(sim.DefaultParams(), noise.NewGaussian(1, 5))
			Expect(err).NotTo(HaveOccurred())
			stepN(s, 5, 0.01)
			before := s.Snapshot()

			for _, dt := range []float64{0, -0.5} {
				_, err := s.Step(dt)
				Expect(err).To(MatchError(dynamo.ErrInvalidInput))
			}
			Expect(s.Snapshot()).To(Equal(before))
			Expect(s.History()).To(HaveLen(5))
		})
	})
})

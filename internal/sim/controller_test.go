package sim_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/params"
	"github.com/san-kum/freefall/internal/sim"
)

const dt = 1.0 / 64

var _ = Describe("Controller", func() {
	var c *sim.Controller

	BeforeEach(func() {
		var err error
		c, err = sim.NewController(dynamo.DefaultParams(), dt)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("starts idle at the release height with no history", func() {
			s := c.Snapshot()
			Expect(s.Phase).To(Equal(sim.Idle))
			Expect(s.IsRunning).To(BeFalse())
			Expect(s.Time).To(BeZero())
			Expect(s.Position).To(Equal(dynamo.DefaultSimulationHeight))
			Expect(s.History).To(BeEmpty())
		})

		It("rejects invalid initial parameters", func() {
			p := dynamo.DefaultParams()
			p.Mass = 0
			_, err := sim.NewController(p, dt)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("rejects a non-positive step", func() {
			_, err := sim.NewController(dynamo.DefaultParams(), 0)
			Expect(err).To(MatchError(dynamo.ErrInvalidStep))
		})
	})

	Describe("Toggle", func() {
		It("does not step while idle", func() {
			Expect(c.TickSeconds(1.0 / 32)).To(BeZero())
			Expect(c.Snapshot().History).To(BeEmpty())
		})

		It("runs, pauses and resumes", func() {
			c.Toggle()
			Expect(c.Phase()).To(Equal(sim.Running))
			Expect(c.Snapshot().IsRunning).To(BeTrue())

			c.Toggle()
			Expect(c.Phase()).To(Equal(sim.Paused))
			Expect(c.TickSeconds(1.0 / 32)).To(BeZero())

			c.Toggle()
			Expect(c.Phase()).To(Equal(sim.Running))
		})

		It("is symmetric: two toggles leave the state untouched", func() {
			c.Toggle()
			c.TickSeconds(1.0 / 32)
			before := c.Snapshot()

			c.Toggle()
			c.Toggle()
			after := c.Snapshot()

			Expect(after.Phase).To(Equal(before.Phase))
			Expect(after.Kinematics).To(Equal(before.Kinematics))
			Expect(after.History).To(HaveLen(len(before.History)))
		})
	})

	Describe("Tick", func() {
		BeforeEach(func() {
			c.Toggle()
		})

		It("performs whole fixed steps", func() {
			Expect(c.TickSeconds(1.0 / 32)).To(Equal(2))
			h := c.Snapshot().History
			Expect(h).To(HaveLen(2))
			Expect(h[0].Time).To(Equal(dt))
			Expect(h[1].Time).To(Equal(2 * dt))
		})

		It("produces the same trajectory for any tick cadence", func() {
			other, err := sim.NewController(dynamo.DefaultParams(), dt)
			Expect(err).NotTo(HaveOccurred())
			other.Toggle()

			for i := 0; i < 64; i++ {
				c.TickSeconds(1.0 / 32)
			}
			for i := 0; i < 256; i++ {
				other.TickSeconds(1.0 / 128)
			}

			Expect(other.Snapshot().History).To(Equal(c.Snapshot().History))
		})

		It("keeps history time strictly increasing", func() {
			for i := 0; i < 50; i++ {
				c.TickSeconds(0.03)
			}
			h := c.Snapshot().History
			Expect(len(h)).To(BeNumerically(">", 1))
			for i := 1; i < len(h); i++ {
				Expect(h[i].Time).To(BeNumerically(">", h[i-1].Time))
			}
		})
	})

	Describe("termination", func() {
		BeforeEach(func() {
			Expect(c.SetParams(params.Patch{SimulationHeight: params.F(1)})).To(Succeed())
			c.Reset()
			c.Toggle()
			for i := 0; i < 100 && c.Phase() == sim.Running; i++ {
				c.TickSeconds(0.1)
			}
		})

		It("clamps to the ground and stops", func() {
			s := c.Snapshot()
			Expect(s.Phase).To(Equal(sim.Terminated))
			Expect(s.IsRunning).To(BeFalse())
			Expect(s.Position).To(BeZero())
			Expect(s.Velocity).To(BeNumerically(">", 0))
			Expect(s.History[len(s.History)-1].Position).To(BeZero())
		})

		It("ignores toggles and ticks until reset", func() {
			n := len(c.Snapshot().History)
			c.Toggle()
			Expect(c.Phase()).To(Equal(sim.Terminated))
			Expect(c.TickSeconds(1)).To(BeZero())
			Expect(c.Snapshot().History).To(HaveLen(n))

			c.Reset()
			Expect(c.Phase()).To(Equal(sim.Idle))
			Expect(c.Snapshot().Position).To(Equal(1.0))
		})
	})

	Describe("Reset", func() {
		It("is idempotent", func() {
			c.Toggle()
			c.TickSeconds(0.2)

			c.Reset()
			first := c.Snapshot()
			c.Reset()
			second := c.Snapshot()

			Expect(second).To(Equal(first))
			Expect(first.Phase).To(Equal(sim.Idle))
			Expect(first.IsRunning).To(BeFalse())
			Expect(first.History).To(BeEmpty())
			Expect(first.Time).To(BeZero())
			Expect(first.Position).To(Equal(first.Params.SimulationHeight))
			Expect(first.Velocity).To(Equal(first.Params.InitialVelocity))
		})
	})

	Describe("SetParams", func() {
		It("rejects out-of-domain values and keeps the previous ones", func() {
			err := c.SetParams(params.Patch{Mass: params.F(-1)})
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(c.Params().Mass).To(Equal(dynamo.DefaultMass))
		})

		It("applies valid fields alongside rejected ones", func() {
			err := c.SetParams(params.Patch{Mass: params.F(-1), Gravity: params.F(3.7)})
			Expect(err).To(HaveOccurred())
			Expect(c.Params().Gravity).To(Equal(3.7))
			Expect(c.Params().Mass).To(Equal(dynamo.DefaultMass))
		})

		It("does not move the trajectory origin until reset", func() {
			c.Toggle()
			c.TickSeconds(0.25)
			before := c.Snapshot()

			Expect(c.SetParams(params.Patch{SimulationHeight: params.F(10)})).To(Succeed())
			after := c.Snapshot()
			Expect(after.Kinematics).To(Equal(before.Kinematics))
			Expect(after.History).To(HaveLen(len(before.History)))
			Expect(after.Params.SimulationHeight).To(Equal(10.0))

			c.Reset()
			Expect(c.Snapshot().Position).To(Equal(10.0))
		})

		It("uses new force parameters from the next step", func() {
			c.Toggle()
			Expect(c.SetParams(params.Patch{FrictionModel: params.Model(dynamo.Linear)})).To(Succeed())
			c.TickSeconds(dt)
			Expect(c.Snapshot().History[0].FrictionForce).To(BeZero())

			Expect(c.SetParams(params.Patch{FrictionCoefficient: params.F(2)})).To(Succeed())
			c.TickSeconds(dt)
			last := c.Snapshot().History[1]
			Expect(last.FrictionForce).To(Equal(-2 * c.Snapshot().History[0].Velocity))
		})
	})

	Describe("snapshots", func() {
		It("are never mutated by later ticks or reset", func() {
			c.Toggle()
			c.TickSeconds(0.1)
			snap := c.Snapshot()
			n := len(snap.History)
			first := snap.History[0]

			c.TickSeconds(0.1)
			c.Reset()
			c.Toggle()
			c.TickSeconds(0.2)

			Expect(snap.History).To(HaveLen(n))
			Expect(snap.History[0]).To(Equal(first))
		})

		It("hand out baselines independent of the live history", func() {
			c.Toggle()
			c.TickSeconds(0.1)
			baseline := c.Baseline()
			n := len(baseline)

			c.TickSeconds(0.1)
			Expect(baseline).To(HaveLen(n))

			baseline[0].Position = -42
			Expect(c.Snapshot().History[0].Position).NotTo(Equal(-42.0))
		})

		It("can be read while ticks are running", func() {
			c.Toggle()
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					c.TickSeconds(0.01)
				}
			}()
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < 200; i++ {
					s := c.Snapshot()
					Expect(s.TotalEnergy).To(Equal(s.KineticEnergy + s.PotentialEnergy))
				}
			}()
			wg.Wait()
		})
	})
})

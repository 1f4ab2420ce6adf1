package trainer

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pedaltrainer/internal/input"
	"github.com/san-kum/pedaltrainer/internal/metrics"
	"github.com/san-kum/pedaltrainer/internal/pedal"
)

// rawAt returns the raw value that normalizes to p.
func rawAt(p float64) int {
	return int((1 - p) * 65536)
}

var _ = Describe("Session", func() {
	var (
		s   *Session
		rng *seqSource
	)

	BeforeEach(func() {
		rng = &seqSource{vals: []float64{0.5, 0.25}}
		s = NewSession(NewDifficulty(10, 20), pedal.Brake, rng)
	})

	It("starts running with released pedals", func() {
		Expect(s.Running()).To(BeTrue())
		Expect(s.Raw()).To(Equal(pedal.Released))
		Expect(s.Machine.Target()).To(Equal(0.5))
	})

	Describe("commands", func() {
		It("stops on quit without debounce", func() {
			res := s.Step(pedal.Released, true, input.Keys(input.KeyEscape), frame)
			Expect(res.Command).To(Equal(CmdQuit))
			Expect(res.Debounce).To(BeFalse())
			Expect(s.Running()).To(BeFalse())
		})

		It("ignores frames after quitting", func() {
			s.Apply(CmdQuit)
			res := s.Step(pedal.Raw{Brake: rawAt(0.5)}, true, input.Keys(input.KeyTab), frame)
			Expect(res).To(Equal(StepResult{}))
			Expect(s.Active).To(Equal(pedal.Brake))
		})

		It("toggles the active pedal and debounces", func() {
			res := s.Step(pedal.Released, true, input.Keys(input.KeyTab), frame)
			Expect(res.Debounce).To(BeTrue())
			Expect(s.Active).To(Equal(pedal.Throttle))

			s.Step(pedal.Released, true, input.Keys(input.KeyTab), frame)
			Expect(s.Active).To(Equal(pedal.Brake))
		})

		It("fires once per frame while a key stays held", func() {
			for i := 0; i < 5; i++ {
				s.Step(pedal.Released, true, input.Keys(input.KeyLeft), frame)
			}
			Expect(s.Difficulty.TolerancePercent()).To(Equal(15))
		})

		It("applies tuning commands within bounds", func() {
			Expect(s.Apply(CmdDecreaseHoldTime)).To(BeTrue())
			Expect(s.Difficulty.HoldTime()).To(Equal(19))
			for i := 0; i < 20; i++ {
				s.Apply(CmdDecreaseHoldTime)
			}
			Expect(s.Difficulty.HoldTime()).To(Equal(MinHoldTime))
			Expect(s.Apply(CmdNone)).To(BeFalse())
		})
	})

	Describe("practice", func() {
		onTarget := pedal.Raw{Throttle: pedal.RawMax, Brake: rawAt(0.5)}

		It("accumulates dwell only for the active pedal", func() {
			s.Step(pedal.Raw{Throttle: rawAt(0.5), Brake: pedal.RawMax}, true, 0, frame)
			Expect(s.Machine.Dwell()).To(BeZero())

			res := s.Step(onTarget, true, 0, frame)
			Expect(res.InBand).To(BeTrue())
			Expect(s.Machine.Dwell()).To(Equal(frame))
		})

		It("draws a new target once the hold is exceeded", func() {
			var hits int
			for i := 0; i < 4; i++ {
				if s.Step(onTarget, true, 0, frame).Retargeted {
					hits++
				}
			}
			Expect(hits).To(Equal(1))
			Expect(s.Machine.Target()).To(Equal(0.25))
			Expect(s.Machine.Dwell()).To(Equal(frame))

			v, ok := s.Metrics.Value(metrics.NameTargetsHit)
			Expect(ok).To(BeTrue())
			Expect(v).To(BeNumerically("==", 1))
		})

		It("keeps the previous sample when a poll fails", func() {
			s.Step(onTarget, true, 0, frame)
			s.Step(pedal.Released, false, 0, frame)
			Expect(s.Raw()).To(Equal(onTarget))
			Expect(s.Machine.Dwell()).To(Equal(2 * frame))
		})

		It("pauses dwell while the pedal is outside the band", func() {
			s.Step(onTarget, true, 0, frame)
			for i := 0; i < 5; i++ {
				s.Step(pedal.Released, true, 0, 3*time.Second)
			}
			Expect(s.Machine.Dwell()).To(Equal(frame))
			Expect(s.Machine.Target()).To(Equal(0.5))
		})
	})

	Describe("snapshot", func() {
		It("reports the values the display needs", func() {
			s.Step(pedal.Raw{Throttle: 0, Brake: rawAt(0.5)}, true, 0, frame)
			snap := s.Snapshot()
			Expect(snap.TolerancePercent).To(Equal(10))
			Expect(snap.HoldSeconds).To(BeNumerically("~", 0.2, 1e-9))
			Expect(snap.Active).To(Equal(pedal.Brake))
			Expect(snap.Target).To(Equal(0.5))
			Expect(snap.Throttle).To(Equal(1.0))
			Expect(snap.Brake).To(BeNumerically("~", 0.5, 1e-4))
			Expect(snap.InBand).To(BeTrue())
			Expect(snap.Progress).To(BeNumerically("~", 0.5, 1e-9))
		})
	})
})

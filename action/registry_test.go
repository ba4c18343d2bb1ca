package action

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cosimlab/tandem/mapping"
)

func recordingAction(
	timing *Timing,
	meshID int,
	requirement mapping.MeshRequirement,
	trace *[]string,
	name string,
) Action {
	return NewFuncAction(timing, meshID, requirement,
		func(time, dt, computedPartFullDt, fullDt float64) error {
			*trace = append(*trace, name)
			return nil
		})
}

var _ = Describe("Registry", func() {
	var (
		r     *Registry
		trace []string
	)

	BeforeEach(func() {
		r = NewRegistry()
		trace = nil
	})

	It("should run actions in registration order", func() {
		r.Register(recordingAction(
			TimingAlwaysPost, 1, mapping.RequirementUndefined, &trace, "one"))
		r.Register(recordingAction(
			TimingAlwaysPost, 1, mapping.RequirementUndefined, &trace, "two"))

		Expect(r.Run(TimingAlwaysPost, 0, 0, 0, 0)).To(Succeed())
		Expect(trace).To(Equal([]string{"one", "two"}))
	})

	It("should run only the requested timing", func() {
		r.Register(recordingAction(
			TimingAlwaysPrior, 1, mapping.RequirementUndefined, &trace, "prior"))
		r.Register(recordingAction(
			TimingAlwaysPost, 1, mapping.RequirementUndefined, &trace, "post"))

		Expect(r.Run(TimingAlwaysPrior, 0, 0, 0, 0)).To(Succeed())
		Expect(trace).To(Equal([]string{"prior"}))
	})

	It("should stop at the first failing action", func() {
		boom := errors.New("boom")

		r.Register(NewFuncAction(
			TimingAlwaysPost, 1, mapping.RequirementUndefined,
			func(time, dt, computedPartFullDt, fullDt float64) error {
				return boom
			}))
		r.Register(recordingAction(
			TimingAlwaysPost, 1, mapping.RequirementUndefined, &trace, "later"))

		err := r.Run(TimingAlwaysPost, 0, 0, 0, 0)
		Expect(err).To(MatchError(boom))
		Expect(trace).To(BeEmpty())
	})

	It("should run a sequence of timings in order", func() {
		r.Register(recordingAction(
			TimingOnExchangePost, 1, mapping.RequirementUndefined,
			&trace, "exchange"))
		r.Register(recordingAction(
			TimingAlwaysPost, 1, mapping.RequirementUndefined,
			&trace, "always"))

		err := r.RunAll(
			[]*Timing{TimingAlwaysPost, TimingOnExchangePost}, 0, 0, 0, 0)

		Expect(err).ToNot(HaveOccurred())
		Expect(trace).To(Equal([]string{"always", "exchange"}))
	})

	It("should pass the timing arguments through", func() {
		var got [4]float64

		r.Register(NewFuncAction(
			TimingAlwaysPost, 1, mapping.RequirementUndefined,
			func(time, dt, computedPartFullDt, fullDt float64) error {
				got = [4]float64{time, dt, computedPartFullDt, fullDt}
				return nil
			}))

		Expect(r.Run(TimingAlwaysPost, 0.3, 0.05, 0.05, 0.1)).To(Succeed())
		Expect(got).To(Equal([4]float64{0.3, 0.05, 0.05, 0.1}))
	})

	It("should report the strongest mesh requirement", func() {
		r.Register(recordingAction(TimingAlwaysPost, 1,
			mapping.RequirementBoundingBox, &trace, "box"))
		r.Register(recordingAction(TimingOnExchangePost, 1,
			mapping.RequirementFullyDefined, &trace, "full"))
		r.Register(recordingAction(TimingAlwaysPost, 2,
			mapping.RequirementBoundingBox, &trace, "other"))

		Expect(r.MeshRequirement(1)).To(
			Equal(mapping.RequirementFullyDefined))
		Expect(r.MeshRequirement(2)).To(
			Equal(mapping.RequirementBoundingBox))
		Expect(r.MeshRequirement(3)).To(
			Equal(mapping.RequirementUndefined))
	})

	It("should list the actions of one timing", func() {
		a := recordingAction(
			TimingAlwaysPost, 1, mapping.RequirementUndefined, &trace, "one")
		r.Register(a)

		Expect(r.ActionsAt(TimingAlwaysPost)).To(Equal([]Action{a}))
		Expect(r.ActionsAt(TimingAlwaysPrior)).To(BeEmpty())
	})
})

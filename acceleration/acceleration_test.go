package acceleration

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cosimlab/tandem/cplscheme"
	"github.com/cosimlab/tandem/mesh"
)

// makeMergedData builds a one-entry merged map holding a single scalar
// vertex, the smallest fixed-point vector there is.
func makeMergedData() (cplscheme.MergedDataMap, *cplscheme.CouplingData) {
	reg := mesh.NewRegistry()
	iface := reg.CreateMesh("Interface", 1)
	data := reg.CreateData(iface, "Displacement", 1)

	d := cplscheme.NewCouplingData(data, iface, false)
	merged := cplscheme.MergedDataMap{
		{DataID: data.ID(), Role: cplscheme.RoleSend}: d,
	}

	return merged, d
}

var _ = Describe("ConstantRelaxation", func() {
	It("should reject a factor outside (0, 1]", func() {
		Expect(func() { NewConstantRelaxation(0) }).To(Panic())
		Expect(func() { NewConstantRelaxation(1.5) }).To(Panic())
		Expect(func() { NewConstantRelaxation(1.0) }).ToNot(Panic())
	})

	It("should blend the iterate with the previous one", func() {
		merged, d := makeMergedData()
		c := NewConstantRelaxation(0.25)
		c.Initialize(merged)

		d.Values[0] = 0.0
		d.StorePreviousIteration()
		d.Values[0] = 4.0

		c.Accelerate(merged)

		Expect(d.Values[0]).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("should leave a stationary iterate unchanged", func() {
		merged, d := makeMergedData()
		c := NewConstantRelaxation(0.5)

		d.Values[0] = 2.0
		d.StorePreviousIteration()

		c.Accelerate(merged)

		Expect(d.Values[0]).To(Equal(2.0))
	})
})

var _ = Describe("AitkenRelaxation", func() {
	It("should reject a factor outside (0, 1]", func() {
		Expect(func() { NewAitkenRelaxation(0) }).To(Panic())
		Expect(func() { NewAitkenRelaxation(1.1) }).To(Panic())
	})

	It("should start from the initial factor", func() {
		merged, d := makeMergedData()
		a := NewAitkenRelaxation(0.5)
		a.Initialize(merged)

		d.Values[0] = 0.0
		d.StorePreviousIteration()
		d.Values[0] = 1.0

		a.Accelerate(merged)

		Expect(d.Values[0]).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("should adapt the factor from successive residuals", func() {
		merged, d := makeMergedData()
		a := NewAitkenRelaxation(0.5)
		a.Initialize(merged)

		// First sub-iteration: residual 1, relaxed to 0.5.
		d.Values[0] = 0.0
		d.StorePreviousIteration()
		d.Values[0] = 1.0
		a.Accelerate(merged)
		Expect(d.Values[0]).To(BeNumerically("~", 0.5, 1e-12))

		// Second sub-iteration: residual 0.3 against the stored residual 1
		// gives omega = -0.5 * (1 * -0.7) / 0.49.
		d.StorePreviousIteration()
		d.Values[0] = 0.8
		a.Accelerate(merged)

		omega := 0.35 / 0.49
		Expect(d.Values[0]).To(BeNumerically("~", 0.5+omega*0.3, 1e-12))
	})

	It("should restart the adaptation each window", func() {
		merged, d := makeMergedData()
		a := NewAitkenRelaxation(0.5)
		a.Initialize(merged)

		d.Values[0] = 0.0
		d.StorePreviousIteration()
		d.Values[0] = 1.0
		a.Accelerate(merged)

		a.NextWindow()

		d.Values[0] = 0.0
		d.StorePreviousIteration()
		d.Values[0] = 1.0
		a.Accelerate(merged)

		Expect(d.Values[0]).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("should keep the factor when the residual stalls", func() {
		merged, d := makeMergedData()
		a := NewAitkenRelaxation(0.5)
		a.Initialize(merged)

		d.Values[0] = 0.0
		d.StorePreviousIteration()
		d.Values[0] = 1.0
		a.Accelerate(merged)

		// Same residual again: the denominator vanishes and the factor
		// stays.
		d.Values[0] = 0.0
		d.StorePreviousIteration()
		d.Values[0] = 1.0
		a.Accelerate(merged)

		Expect(d.Values[0]).To(BeNumerically("~", 0.5, 1e-12))
	})
})

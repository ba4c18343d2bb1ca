package cplscheme

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/cosimlab/tandem/action"
	"github.com/cosimlab/tandem/m2n"
)

// newIdleScheme builds a one-sided explicit scheme without any registered
// data. With nothing to exchange, Advance never touches the transport, which
// lets the state machine run without a peer.
func newIdleScheme() *SerialScheme {
	commA, _ := m2n.NewInProcessPair("Alpha", "Beta")

	return MakeSerialSchemeBuilder().
		WithFirstParticipant("Alpha").
		WithSecondParticipant("Beta").
		WithLocalParticipant("Alpha").
		WithM2N(commA).
		WithTimeWindowSize(0.1).
		Build()
}

var _ = Describe("Scheme state machine", func() {
	var s *SerialScheme

	BeforeEach(func() {
		s = newIdleScheme()
	})

	It("should start uninitialized", func() {
		Expect(s.IsInitialized()).To(BeFalse())
		Expect(s.IsCouplingOngoing()).To(BeFalse())
		Expect(s.Time()).To(Equal(0.0))
		Expect(s.Timesteps()).To(Equal(0))
	})

	It("should refuse to finalize before initialization", func() {
		err := s.Finalize()

		Expect(err).To(HaveOccurred())
		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
		Expect(s.IsInitialized()).To(BeFalse())

		Expect(s.Initialize(0, 0)).To(Succeed())
		Expect(s.IsInitialized()).To(BeTrue())
	})

	It("should refuse to finalize twice", func() {
		Expect(s.Initialize(0, 0)).To(Succeed())
		Expect(s.Finalize()).To(Succeed())

		err := s.Finalize()
		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
	})

	It("should refuse negative start time", func() {
		err := s.Initialize(-0.5, 0)
		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
		Expect(s.IsInitialized()).To(BeFalse())
	})

	It("should refuse negative start time window", func() {
		err := s.Initialize(0, -1)
		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
	})

	It("should refuse double initialization", func() {
		Expect(s.Initialize(0, 0)).To(Succeed())

		err := s.Initialize(0, 0)
		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
	})

	It("should resume from a restart point", func() {
		Expect(s.Initialize(0.4, 4)).To(Succeed())

		Expect(s.Time()).To(Equal(0.4))
		Expect(s.Timesteps()).To(Equal(4))
	})

	It("should refuse computed time before initialization", func() {
		err := s.AddComputedTime(0.1)
		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
	})

	It("should refuse non-positive computed time", func() {
		Expect(s.Initialize(0, 0)).To(Succeed())

		Expect(IsKind(s.AddComputedTime(0), KindPrecondition)).To(BeTrue())
		Expect(IsKind(s.AddComputedTime(-0.1), KindPrecondition)).To(BeTrue())
	})

	It("should truncate computed time to the window remainder", func() {
		Expect(s.Initialize(0, 0)).To(Succeed())

		Expect(s.AddComputedTime(0.3)).To(Succeed())

		Expect(s.LastDt()).To(BeNumerically("~", 0.1, 1e-12))
		Expect(s.Time()).To(BeNumerically("~", 0.1, 1e-12))
		Expect(s.ThisTimestepRemainder()).To(Equal(0.0))
	})

	It("should not move time backwards when the window overshot", func() {
		Expect(s.Initialize(0, 0)).To(Succeed())

		// A window filled one ulp past its size, as rounding during
		// truncation can produce.
		overshoot := math.Nextafter(0.1, 1)
		s.computedTimeWindowPart = overshoot
		s.time = overshoot

		Expect(s.AddComputedTime(0.05)).To(Succeed())

		Expect(s.LastDt()).To(Equal(0.0))
		Expect(s.Time()).To(Equal(overshoot))
	})

	It("should complete a window from two half steps", func() {
		Expect(s.Initialize(0, 0)).To(Succeed())

		Expect(s.AddComputedTime(0.05)).To(Succeed())
		Expect(s.ThisTimestepRemainder()).To(BeNumerically("~", 0.05, 1e-12))
		Expect(s.WillDataBeExchanged(0)).To(BeFalse())

		next, err := s.Advance()
		Expect(err).ToNot(HaveOccurred())
		Expect(next).To(BeNumerically("~", 0.05, 1e-12))
		Expect(s.IsCouplingTimestepComplete()).To(BeFalse())
		Expect(s.HasDataBeenExchanged()).To(BeFalse())
		Expect(s.Timesteps()).To(Equal(0))

		Expect(s.AddComputedTime(0.05)).To(Succeed())
		Expect(s.WillDataBeExchanged(0)).To(BeTrue())

		_, err = s.Advance()
		Expect(err).ToNot(HaveOccurred())
		Expect(s.IsCouplingTimestepComplete()).To(BeTrue())
		Expect(s.Timesteps()).To(Equal(1))
		Expect(s.Time()).To(BeNumerically("~", 0.1, 1e-12))
	})

	It("should report upcoming exchanges within the lookahead", func() {
		Expect(s.Initialize(0, 0)).To(Succeed())

		Expect(s.WillDataBeExchanged(0.1)).To(BeTrue())
		Expect(s.WillDataBeExchanged(0.05)).To(BeFalse())
	})

	It("should expose the applied timings of the last advance", func() {
		Expect(s.Initialize(0, 0)).To(Succeed())
		Expect(s.AppliedTimings()).To(Equal(
			[]*action.Timing{action.TimingAlwaysPost}))

		Expect(s.AddComputedTime(0.1)).To(Succeed())
		_, err := s.Advance()
		Expect(err).ToNot(HaveOccurred())

		Expect(s.AppliedTimings()).To(Equal([]*action.Timing{
			action.TimingAlwaysPost,
			action.TimingOnExchangePost,
			action.TimingOnTimestepCompletePost,
		}))
	})

	It("should have converged by default", func() {
		Expect(s.HasConverged()).To(BeTrue())
	})
})

var _ = Describe("Scheme horizon", func() {
	It("should end after the configured simulated time", func() {
		commA, _ := m2n.NewInProcessPair("Alpha", "Beta")
		s := MakeSerialSchemeBuilder().
			WithFirstParticipant("Alpha").
			WithSecondParticipant("Beta").
			WithLocalParticipant("Alpha").
			WithM2N(commA).
			WithTimeWindowSize(0.1).
			WithMaxTime(0.3).
			Build()

		Expect(s.Initialize(0, 0)).To(Succeed())

		windows := 0
		for s.IsCouplingOngoing() {
			Expect(s.AddComputedTime(s.NextTimestepMaxLength())).To(Succeed())
			_, err := s.Advance()
			Expect(err).ToNot(HaveOccurred())
			windows++
		}

		Expect(windows).To(Equal(3))
		Expect(s.Timesteps()).To(Equal(3))
		Expect(s.Time()).To(BeNumerically("~", 0.3, 1e-9))

		_, err := s.Advance()
		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
	})

	It("should end after the configured window count", func() {
		commA, _ := m2n.NewInProcessPair("Alpha", "Beta")
		s := MakeSerialSchemeBuilder().
			WithFirstParticipant("Alpha").
			WithSecondParticipant("Beta").
			WithLocalParticipant("Alpha").
			WithM2N(commA).
			WithTimeWindowSize(0.1).
			WithMaxTimeWindows(2).
			Build()

		Expect(s.Initialize(0, 0)).To(Succeed())

		windows := 0
		for s.IsCouplingOngoing() {
			Expect(s.AddComputedTime(0.1)).To(Succeed())
			_, err := s.Advance()
			Expect(err).ToNot(HaveOccurred())
			windows++
		}

		Expect(windows).To(Equal(2))
	})

	It("should clamp the first step of a window to the time horizon", func() {
		commA, _ := m2n.NewInProcessPair("Alpha", "Beta")
		s := MakeSerialSchemeBuilder().
			WithFirstParticipant("Alpha").
			WithSecondParticipant("Beta").
			WithLocalParticipant("Alpha").
			WithM2N(commA).
			WithTimeWindowSize(0.1).
			WithMaxTime(0.25).
			Build()

		Expect(s.Initialize(0, 0)).To(Succeed())

		for i := 0; i < 2; i++ {
			Expect(s.AddComputedTime(0.1)).To(Succeed())
			_, err := s.Advance()
			Expect(err).ToNot(HaveOccurred())
		}

		Expect(s.NextTimestepMaxLength()).To(BeNumerically("~", 0.05, 1e-12))
	})
})

var _ = Describe("Scheme transport use", func() {
	var (
		mockCtrl *gomock.Controller
		comm     *MockCommunicator
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		comm = NewMockCommunicator(mockCtrl)
	})

	newSchemeOn := func(mode CouplingMode) *SerialScheme {
		b := MakeSerialSchemeBuilder().
			WithFirstParticipant("Alpha").
			WithSecondParticipant("Beta").
			WithLocalParticipant("Alpha").
			WithM2N(comm).
			WithTimeWindowSize(0.1).
			WithCouplingMode(mode)
		if mode == Implicit {
			b = b.WithMaxIterations(3)
		}

		return b.Build()
	}

	It("should not touch the transport when nothing is exchanged", func() {
		s := newSchemeOn(Explicit)

		Expect(s.Initialize(0, 0)).To(Succeed())
		Expect(s.AddComputedTime(0.1)).To(Succeed())

		_, err := s.Advance()
		Expect(err).ToNot(HaveOccurred())
		Expect(s.Timesteps()).To(Equal(1))
	})

	It("should surface transport failures as communication errors", func() {
		s := newSchemeOn(Implicit)

		Expect(s.Initialize(0, 0)).To(Succeed())
		s.PerformedAction(WriteIterationCheckpoint)
		Expect(s.AddComputedTime(0.1)).To(Succeed())

		comm.EXPECT().ReceiveBool().
			Return(false, errors.New("peer closed the connection"))

		_, err := s.Advance()
		Expect(IsKind(err, KindCommunication)).To(BeTrue())
	})
})

var _ = Describe("Scheme action ledger", func() {
	var s *SerialScheme

	BeforeEach(func() {
		s = newIdleScheme()
	})

	It("should track required actions", func() {
		Expect(s.IsActionRequired(WriteIterationCheckpoint)).To(BeFalse())

		s.RequireAction(WriteIterationCheckpoint)
		Expect(s.IsActionRequired(WriteIterationCheckpoint)).To(BeTrue())

		s.PerformedAction(WriteIterationCheckpoint)
		Expect(s.IsActionRequired(WriteIterationCheckpoint)).To(BeFalse())
	})

	It("should tolerate fulfilling a non-required action", func() {
		s.PerformedAction(ReadIterationCheckpoint)
		Expect(s.IsActionRequired(ReadIterationCheckpoint)).To(BeFalse())
	})

	It("should block Advance while actions are unfulfilled", func() {
		commA, _ := m2n.NewInProcessPair("Alpha", "Beta")
		s := MakeSerialSchemeBuilder().
			WithFirstParticipant("Alpha").
			WithSecondParticipant("Beta").
			WithLocalParticipant("Alpha").
			WithM2N(commA).
			WithTimeWindowSize(0.1).
			WithCouplingMode(Implicit).
			WithMaxIterations(3).
			Build()

		Expect(s.Initialize(0, 0)).To(Succeed())
		Expect(s.IsActionRequired(WriteIterationCheckpoint)).To(BeTrue())

		Expect(s.AddComputedTime(0.1)).To(Succeed())

		_, err := s.Advance()
		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(WriteIterationCheckpoint))
	})
})

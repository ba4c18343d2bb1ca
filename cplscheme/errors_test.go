package cplscheme

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Error", func() {
	It("should name the operation and the kind", func() {
		err := preconditionErr("Advance", "scheme is not initialized")

		Expect(err.Error()).To(ContainSubstring("Advance"))
		Expect(err.Error()).To(ContainSubstring("Precondition"))
		Expect(err.Error()).To(ContainSubstring("scheme is not initialized"))
	})

	It("should wrap transport errors", func() {
		cause := errors.New("peer closed the connection")
		err := communicationErr("Advance", cause)

		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("peer closed the connection"))
	})

	It("should classify by kind", func() {
		err := preconditionErr("Initialize", "already initialized")

		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
		Expect(IsKind(err, KindCommunication)).To(BeFalse())
	})

	It("should see through wrapping", func() {
		err := fmt.Errorf("driver: %w",
			preconditionErr("Advance", "coupling has reached its horizon"))

		Expect(IsKind(err, KindPrecondition)).To(BeTrue())
	})

	It("should not classify foreign errors", func() {
		Expect(IsKind(errors.New("boom"), KindPrecondition)).To(BeFalse())
		Expect(IsKind(nil, KindPrecondition)).To(BeFalse())
	})
})

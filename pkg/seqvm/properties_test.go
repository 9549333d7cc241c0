package seqvm_test

import (
	"fmt"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tokenseq/seqvm/pkg/seqvm"
	"github.com/tokenseq/seqvm/pkg/types"
)

var (
	tokA = types.Symbol("A")
	tokB = types.Symbol("B")
	tokC = types.Symbol("C")
)

// A B
func concat() *seqvm.CompiledSequence {
	return seqvm.NewSequence().Match(tokA).Match(tokB).Accept().MustCompile()
}

// A | B
func alternation() *seqvm.CompiledSequence {
	a, b, end := seqvm.NewLabel("a"), seqvm.NewLabel("b"), seqvm.NewLabel("end")
	return seqvm.NewSequence().
		Split(a, b).
		MatchAt(a, tokA).
		Jump(end).
		MatchAt(b, tokB).
		AcceptAt(end).
		MustCompile()
}

// A? B
func optional() *seqvm.CompiledSequence {
	a, b := seqvm.NewLabel("a"), seqvm.NewLabel("b")
	return seqvm.NewSequence().
		Split(a, b).
		MatchAt(a, tokA).
		MatchAt(b, tokB).
		Accept().
		MustCompile()
}

// (A | B)* C
func nested() *seqvm.CompiledSequence {
	loop, alt, a, b, next, done := seqvm.NewLabel("loop"), seqvm.NewLabel("alt"),
		seqvm.NewLabel("a"), seqvm.NewLabel("b"), seqvm.NewLabel("next"), seqvm.NewLabel("done")
	return seqvm.NewSequence().
		SplitAt(loop, alt, done).
		SplitAt(alt, a, b).
		MatchAt(a, tokA).
		Jump(next).
		MatchAt(b, tokB).
		JumpAt(next, loop).
		MatchAt(done, tokC).
		Accept().
		MustCompile()
}

func feed(vm *seqvm.ThompsonsVM, ctx *seqvm.ExecutionContext, toks ...types.Token) seqvm.MatchResult {
	for _, tok := range toks {
		_, err := vm.Execute(ctx, tok)
		Expect(err).NotTo(HaveOccurred())
	}
	return ctx.Result()
}

var _ = Describe("ThompsonsVM", func() {
	var vm *seqvm.ThompsonsVM

	BeforeEach(func() {
		vm = seqvm.New()
	})

	DescribeTable("sequence operators",
		func(prog func() *seqvm.CompiledSequence, toks []types.Token, want seqvm.MatchResult) {
			ctx := vm.CreateContext(prog())
			Expect(feed(vm, ctx, toks...)).To(Equal(want))
		},
		Entry("A B accepts A B", concat, []types.Token{tokA, tokB}, seqvm.Accept),
		Entry("A B rejects A A", concat, []types.Token{tokA, tokA}, seqvm.Reject),
		Entry("A B is undecided after A", concat, []types.Token{tokA}, seqvm.Undefined),
		Entry("A | B accepts A", alternation, []types.Token{tokA}, seqvm.Accept),
		Entry("A | B accepts B", alternation, []types.Token{tokB}, seqvm.Accept),
		Entry("A | B rejects C", alternation, []types.Token{tokC}, seqvm.Reject),
		Entry("A? B accepts A B", optional, []types.Token{tokA, tokB}, seqvm.Accept),
		Entry("A? B accepts B", optional, []types.Token{tokB}, seqvm.Accept),
		Entry("A? B rejects C", optional, []types.Token{tokC}, seqvm.Reject),
		Entry("(A | B)* C accepts C", nested, []types.Token{tokC}, seqvm.Accept),
		Entry("(A | B)* C accepts A B B A C", nested, []types.Token{tokA, tokB, tokB, tokA, tokC}, seqvm.Accept),
		Entry("(A | B)* C waits after A B", nested, []types.Token{tokA, tokB}, seqvm.Undefined),
	)

	It("should not share state between contexts of one program", func() {
		prog := concat()
		disasm := prog.String()
		first := vm.CreateContext(prog)
		second := vm.CreateContext(prog)

		Expect(feed(vm, first, tokA)).To(Equal(seqvm.Undefined))
		Expect(feed(vm, second, tokB)).To(Equal(seqvm.Reject))
		Expect(feed(vm, first, tokB)).To(Equal(seqvm.Accept))
		Expect(first.Steps()).To(Equal(2))
		Expect(second.Steps()).To(Equal(1))
		Expect(prog.String()).To(Equal(disasm))
	})

	It("should leave no threads once rejected", func() {
		r := rand.New(rand.NewSource(7))
		alphabet := []types.Token{tokA, tokB, tokC, types.Symbol("D")}
		for run := 0; run < 200; run++ {
			ctx := vm.CreateContext(nested())
			for !ctx.Terminated() && ctx.Steps() < 20 {
				feed(vm, ctx, alphabet[r.Intn(len(alphabet))])
			}
			if ctx.Result() == seqvm.Reject {
				Expect(ctx.Threads()).To(BeEmpty())
			}
		}
	})

	It("should keep at most one blocked thread per MATCH", func() {
		r := rand.New(rand.NewSource(11))
		alphabet := []types.Token{tokA, tokB, tokC}
		prog := nested()
		for run := 0; run < 100; run++ {
			ctx := vm.CreateContext(prog)
			for !ctx.Terminated() && ctx.Steps() < 30 {
				feed(vm, ctx, alphabet[r.Intn(2)])
				if ctx.Terminated() {
					break
				}
				seen := make(map[int]bool)
				for _, th := range ctx.Threads() {
					Expect(seen).NotTo(HaveKey(th.IC))
					seen[th.IC] = true
					Expect(th.Status).To(Equal(seqvm.Blocked))
					Expect(prog.Inst(th.IC).Op).To(Equal(seqvm.OpMatch))
				}
			}
			Expect(feed(vm, ctx, alphabet[2])).To(Equal(seqvm.Accept))
		}
	})

	It("should refuse to run a terminated context", func() {
		ctx := vm.CreateContext(alternation())
		Expect(feed(vm, ctx, tokA)).To(Equal(seqvm.Accept))
		threads := ctx.Threads()

		_, err := vm.Execute(ctx, tokB)
		Expect(err).To(MatchError(seqvm.ErrTerminated))
		Expect(ctx.Result()).To(Equal(seqvm.Accept))
		Expect(ctx.Threads()).To(Equal(threads))
	})
})

var _ = Describe("Compiler", func() {
	// Builds a random program where every instruction defines a label and
	// every target is given either as a label or as a plain index, then
	// checks each operand landed on the intended instruction.
	It("should resolve every target regardless of definition order", func() {
		r := rand.New(rand.NewSource(3))
		for run := 0; run < 300; run++ {
			n := 2 + r.Intn(12)
			labels := make([]*seqvm.Label, n)
			for i := range labels {
				labels[i] = seqvm.NewLabel(fmt.Sprintf("L%d", i))
			}
			target := func(idx int) seqvm.Target {
				if r.Intn(2) == 0 {
					return seqvm.Index(idx)
				}
				return labels[idx]
			}

			want := make([][2]int, n)
			c := seqvm.NewSequence()
			for pc := 0; pc < n-1; pc++ {
				x, y := r.Intn(n), r.Intn(n)
				want[pc] = [2]int{x, y}
				switch r.Intn(3) {
				case 0:
					c.MatchAt(labels[pc], types.Int(pc))
				case 1:
					c.SplitAt(labels[pc], target(x), target(y))
				case 2:
					c.JumpAt(labels[pc], target(x))
				}
			}
			c.AcceptAt(labels[n-1])

			prog, err := c.Compile()
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Len()).To(Equal(n))

			for pc := 0; pc < n; pc++ {
				in := prog.Inst(pc)
				Expect(in.Label).To(Equal(labels[pc].Name()))
				idx, ok := labels[pc].Index()
				Expect(ok).To(BeTrue())
				Expect(idx).To(Equal(pc))

				switch in.Op {
				case seqvm.OpSplit:
					Expect([2]int{in.X, in.Y}).To(Equal(want[pc]))
				case seqvm.OpJump:
					Expect(in.X).To(Equal(want[pc][0]))
				}
				if in.Op == seqvm.OpSplit || in.Op == seqvm.OpJump {
					Expect(in.X).To(BeNumerically(">=", 0))
					Expect(in.X).To(BeNumerically("<", n))
					Expect(in.Y).To(BeNumerically("<", n))
				}
			}
		}
	})

	It("should report a dangling reference", func() {
		_, err := seqvm.NewSequence().
			Split(seqvm.NewLabel("yes"), seqvm.NewLabel("no")).
			Accept().
			Compile()
		Expect(err).To(MatchError(seqvm.ErrUndefinedLabel))
	})
})

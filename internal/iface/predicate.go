package iface

import (
	"fmt"

	"github.com/provedb/provedb/internal/table"
)

var printRelOps = map[string]string{
	"eq": "=",
	"ne": "!=",
	"lt": "<",
	"gt": ">",
	"ge": ">=",
	"le": "<=",
}

func printRelOp(op string) string {
	if p, ok := printRelOps[op]; ok {
		return p
	}
	return op
}

// XPredicate is an external predicate over symbolic terms: a
// postcondition, side effect, or precondition of a function api.
type XPredicate interface {
	Index() int
	Record() table.Record
	fmt.Stringer
	xPredicate()
}

// unaryPredicate covers variants whose single child term sits in
// args[0].
type unaryPredicate struct{ dictRecord }

func (p *unaryPredicate) xPredicate() {}

func (p *unaryPredicate) Term() (STerm, error) { return p.term(0) }

func (p *unaryPredicate) describe(what string) string {
	t, err := p.Term()
	if err != nil {
		return what + "(?)"
	}
	return what + "(" + t.String() + ")"
}

// pairPredicate covers variants over a base term and a length term.
//
// args[0]: index of the base (buffer) term
// args[1]: index of the length term
type pairPredicate struct{ dictRecord }

func (p *pairPredicate) xPredicate() {}

func (p *pairPredicate) BaseTerm() (STerm, error) { return p.term(0) }

func (p *pairPredicate) LengthTerm() (STerm, error) { return p.term(1) }

func (p *pairPredicate) describe(what string) string {
	base, err1 := p.BaseTerm()
	length, err2 := p.LengthTerm()
	if err1 != nil || err2 != nil {
		return what + "(?)"
	}
	return what + "(" + base.String() + ", " + length.String() + ")"
}

type AllocationBase struct{ unaryPredicate }

func (p *AllocationBase) String() string { return p.describe("allocation-base") }

type BlockWrite struct{ pairPredicate }

func (p *BlockWrite) String() string { return p.describe("block-write") }

type Buffer struct{ pairPredicate }

func (p *Buffer) String() string { return p.describe("buffer") }

type RevBuffer struct{ pairPredicate }

func (p *RevBuffer) String() string { return p.describe("rev-buffer") }

type InitializedRange struct{ pairPredicate }

func (p *InitializedRange) String() string { return p.describe("initialized-range") }

// ControlledResource bounds a resource of the named kind by a size term.
//
// tags[1]: resource name
// args[0]: index of the size term
type ControlledResource struct{ unaryPredicate }

func (p *ControlledResource) Resource() string { return p.tag(1) }

func (p *ControlledResource) String() string {
	return p.describe("controlled-resource:" + p.Resource())
}

type False struct{ dictRecord }

func (p *False) xPredicate() {}

func (p *False) String() string { return "FALSE" }

type Freed struct{ unaryPredicate }

func (p *Freed) String() string { return p.describe("freed") }

type GlobalAddress struct{ unaryPredicate }

func (p *GlobalAddress) String() string { return p.describe("global-address") }

type HeapAddress struct{ unaryPredicate }

func (p *HeapAddress) String() string { return p.describe("heap-address") }

type StackAddress struct{ unaryPredicate }

func (p *StackAddress) String() string { return p.describe("stack-address") }

type Initialized struct{ unaryPredicate }

func (p *Initialized) String() string { return p.describe("initialized") }

type NewMemory struct{ unaryPredicate }

func (p *NewMemory) String() string { return p.describe("new-memory") }

type NotNull struct{ unaryPredicate }

func (p *NotNull) String() string { return p.describe("not-null") }

type Null struct{ unaryPredicate }

func (p *Null) String() string { return p.describe("null") }

type NotZero struct{ unaryPredicate }

func (p *NotZero) String() string { return p.describe("not-zero") }

type NonNegative struct{ unaryPredicate }

func (p *NonNegative) String() string { return p.describe("non-negative") }

type NullTerminated struct{ unaryPredicate }

func (p *NullTerminated) String() string { return p.describe("null-terminated") }

type PreservesAllMemory struct{ dictRecord }

func (p *PreservesAllMemory) xPredicate() {}

func (p *PreservesAllMemory) String() string { return "preserves-all-memory" }

type ValidMem struct{ unaryPredicate }

func (p *ValidMem) String() string { return p.describe("valid-mem") }

// RelationalExpr relates two terms with a comparison operator.
//
// tags[1]: operator name (eq, ne, lt, gt, ge, le)
// args[0]: index of the first term
// args[1]: index of the second term
type RelationalExpr struct{ dictRecord }

func (p *RelationalExpr) xPredicate() {}

func (p *RelationalExpr) Op() string { return p.tag(1) }

func (p *RelationalExpr) Term1() (STerm, error) { return p.term(0) }

func (p *RelationalExpr) Term2() (STerm, error) { return p.term(1) }

func (p *RelationalExpr) String() string {
	t1, err1 := p.Term1()
	t2, err2 := p.Term2()
	if err1 != nil || err2 != nil {
		return "expr(?)"
	}
	return t1.String() + " " + printRelOp(p.Op()) + " " + t2.String()
}

// Tainted marks a term's value as externally controlled, optionally
// bounded.
//
// args[0]: index of the subject term
// args[1]: index of the lower bound term, or -1 for no bound
// args[2]: index of the upper bound term, or -1 for no bound
type Tainted struct{ dictRecord }

func (p *Tainted) xPredicate() {}

func (p *Tainted) Term() (STerm, error) { return p.term(0) }

func (p *Tainted) LowerBound() (STerm, error) { return p.optTerm(1) }

func (p *Tainted) UpperBound() (STerm, error) { return p.optTerm(2) }

func (p *Tainted) String() string {
	t, err := p.Term()
	if err != nil {
		return "tainted(?)"
	}
	s := "tainted(" + t.String() + ")"
	if lb, err := p.LowerBound(); err == nil && lb != nil {
		s += " LB:" + lb.String()
	}
	if ub, err := p.UpperBound(); err == nil && ub != nil {
		s += " UB:" + ub.String()
	}
	return s
}

func init() {
	reg := func(tag string, ctor func(dictRecord) any) {
		registry.Register(FamilyXPredicate, tag, func(d *Dictionary, rec table.Record) any {
			return ctor(dictRecord{d, rec})
		})
	}
	unary := func(r dictRecord) unaryPredicate { return unaryPredicate{r} }
	pair := func(r dictRecord) pairPredicate { return pairPredicate{r} }

	reg("ab", func(r dictRecord) any { return &AllocationBase{unary(r)} })
	reg("bw", func(r dictRecord) any { return &BlockWrite{pair(r)} })
	reg("b", func(r dictRecord) any { return &Buffer{pair(r)} })
	reg("rb", func(r dictRecord) any { return &RevBuffer{pair(r)} })
	reg("ir", func(r dictRecord) any { return &InitializedRange{pair(r)} })
	reg("cr", func(r dictRecord) any { return &ControlledResource{unary(r)} })
	reg("f", func(r dictRecord) any { return &False{r} })
	reg("fr", func(r dictRecord) any { return &Freed{unary(r)} })
	reg("ga", func(r dictRecord) any { return &GlobalAddress{unary(r)} })
	reg("ha", func(r dictRecord) any { return &HeapAddress{unary(r)} })
	reg("sa", func(r dictRecord) any { return &StackAddress{unary(r)} })
	reg("i", func(r dictRecord) any { return &Initialized{unary(r)} })
	reg("nm", func(r dictRecord) any { return &NewMemory{unary(r)} })
	reg("nn", func(r dictRecord) any { return &NotNull{unary(r)} })
	reg("null", func(r dictRecord) any { return &Null{unary(r)} })
	reg("nz", func(r dictRecord) any { return &NotZero{unary(r)} })
	reg("nng", func(r dictRecord) any { return &NonNegative{unary(r)} })
	reg("nt", func(r dictRecord) any { return &NullTerminated{unary(r)} })
	reg("prm", func(r dictRecord) any { return &PreservesAllMemory{r} })
	reg("vm", func(r dictRecord) any { return &ValidMem{unary(r)} })
	reg("x", func(r dictRecord) any { return &RelationalExpr{r} })
	reg("tt", func(r dictRecord) any { return &Tainted{r} })
}

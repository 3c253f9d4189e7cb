package iface

import (
	"fmt"
	"strconv"

	"github.com/provedb/provedb/internal/table"
)

var printOps = map[string]string{
	"plus":   "+",
	"plusa":  "+",
	"minusa": "-",
	"times":  "*",
	"mult":   "*",
	"divide": "/",
	"div":    "/",
}

func printOp(op string) string {
	if p, ok := printOps[op]; ok {
		return p
	}
	return op
}

// STerm is a symbolic term over the api parameters of a function.
type STerm interface {
	Index() int
	Record() table.Record
	fmt.Stringer
	sTerm()
}

// ArgValue is the value of an api parameter at an offset.
//
// args[0]: index of the api parameter
// args[1]: index of the offset
type ArgValue struct{ dictRecord }

func (t *ArgValue) sTerm() {}

func (t *ArgValue) Parameter() (ApiParameter, error) {
	return t.ifd.GetApiParameter(t.arg(0))
}

func (t *ArgValue) Offset() (SOffset, error) { return t.offset(1) }

func (t *ArgValue) String() string {
	p, err := t.Parameter()
	if err != nil {
		return "arg-val(?)"
	}
	return "arg-val(" + p.String() + ")"
}

type ReturnValue struct{ dictRecord }

func (t *ReturnValue) sTerm() {}

func (t *ReturnValue) String() string { return "returnval" }

// NamedConstant is a symbolic constant.
//
// tags[1]: name of the constant
type NamedConstant struct{ dictRecord }

func (t *NamedConstant) sTerm() {}

func (t *NamedConstant) Name() string { return t.tag(1) }

func (t *NamedConstant) String() string {
	return "named-constant(" + t.Name() + ")"
}

// NumConstant is a numeric literal.
//
// tags[1]: decimal text of the value
type NumConstant struct{ dictRecord }

func (t *NumConstant) sTerm() {}

func (t *NumConstant) Value() (int, error) { return strconv.Atoi(t.tag(1)) }

func (t *NumConstant) String() string {
	return "num-constant(" + t.tag(1) + ")"
}

// unaryTerm covers the variants that wrap exactly one child term in
// args[0].
type unaryTerm struct{ dictRecord }

func (t *unaryTerm) sTerm() {}

func (t *unaryTerm) Term() (STerm, error) { return t.term(0) }

func (t *unaryTerm) describe(what string) string {
	sub, err := t.Term()
	if err != nil {
		return what + "(?)"
	}
	return what + "(" + sub.String() + ")"
}

// IndexSize of the value of a term, in elements.
type IndexSize struct{ unaryTerm }

func (t *IndexSize) String() string { return t.describe("index-size") }

// ByteSize of the value of a term, in bytes.
type ByteSize struct{ unaryTerm }

func (t *ByteSize) String() string { return t.describe("byte-size") }

// NullTerminatorPos is the position of the null terminator in a
// string argument.
type NullTerminatorPos struct{ unaryTerm }

func (t *NullTerminatorPos) String() string { return t.describe("null-terminator-pos") }

// SizeOfType is the size of the pointed-to type of a term.
type SizeOfType struct{ unaryTerm }

func (t *SizeOfType) String() string { return t.describe("size-of-type") }

// FormattedOutputSize is the output size implied by a format-string
// argument.
type FormattedOutputSize struct{ unaryTerm }

func (t *FormattedOutputSize) String() string { return t.describe("formatted-output-size") }

// FieldOffsetTerm names a struct field as a term.
//
// tags[1]: field name
type FieldOffsetTerm struct{ dictRecord }

func (t *FieldOffsetTerm) sTerm() {}

func (t *FieldOffsetTerm) Field() string { return t.tag(1) }

func (t *FieldOffsetTerm) String() string {
	return "field-offset(" + t.Field() + ")"
}

// ArgAddressedValue is the value addressed by a term at an offset.
//
// args[0]: index of the base term
// args[1]: index of the offset
type ArgAddressedValue struct{ dictRecord }

func (t *ArgAddressedValue) sTerm() {}

func (t *ArgAddressedValue) BaseTerm() (STerm, error) { return t.term(0) }

func (t *ArgAddressedValue) Offset() (SOffset, error) { return t.offset(1) }

func (t *ArgAddressedValue) String() string {
	base, err := t.BaseTerm()
	if err != nil {
		return "addressed-value(?)"
	}
	off, err := t.Offset()
	if err != nil {
		return "addressed-value(" + base.String() + ")?"
	}
	return "addressed-value(" + base.String() + ")" + off.String()
}

// ArithmeticExpr combines two terms with an arithmetic operator.
//
// tags[1]: operator name
// args[0]: index of the first term
// args[1]: index of the second term
type ArithmeticExpr struct{ dictRecord }

func (t *ArithmeticExpr) sTerm() {}

func (t *ArithmeticExpr) Op() string { return t.tag(1) }

func (t *ArithmeticExpr) Term1() (STerm, error) { return t.term(0) }

func (t *ArithmeticExpr) Term2() (STerm, error) { return t.term(1) }

func (t *ArithmeticExpr) String() string {
	t1, err1 := t.Term1()
	t2, err2 := t.Term2()
	if err1 != nil || err2 != nil {
		return "xpr(?)"
	}
	return "(" + t1.String() + " " + printOp(t.Op()) + " " + t2.String() + ")"
}

// RuntimeValue is a value only known at runtime.
type RuntimeValue struct{ dictRecord }

func (t *RuntimeValue) sTerm() {}

func (t *RuntimeValue) String() string { return "runtime-value" }

func init() {
	reg := func(tag string, ctor func(dictRecord) any) {
		registry.Register(FamilySTerm, tag, func(d *Dictionary, rec table.Record) any {
			return ctor(dictRecord{d, rec})
		})
	}
	reg("av", func(r dictRecord) any { return &ArgValue{r} })
	reg("rv", func(r dictRecord) any { return &ReturnValue{r} })
	reg("nc", func(r dictRecord) any { return &NamedConstant{r} })
	reg("ic", func(r dictRecord) any { return &NumConstant{r} })
	reg("is", func(r dictRecord) any { return &IndexSize{unaryTerm{r}} })
	reg("bs", func(r dictRecord) any { return &ByteSize{unaryTerm{r}} })
	reg("fo", func(r dictRecord) any { return &FieldOffsetTerm{r} })
	reg("aa", func(r dictRecord) any { return &ArgAddressedValue{r} })
	reg("at", func(r dictRecord) any { return &NullTerminatorPos{unaryTerm{r}} })
	reg("st", func(r dictRecord) any { return &SizeOfType{unaryTerm{r}} })
	reg("ax", func(r dictRecord) any { return &ArithmeticExpr{r} })
	reg("fs", func(r dictRecord) any { return &FormattedOutputSize{unaryTerm{r}} })
	reg("rt", func(r dictRecord) any { return &RuntimeValue{r} })
}

package iface

import (
	"fmt"
	"strconv"

	"github.com/provedb/provedb/internal/xmlutil"
	"github.com/provedb/provedb/pkg"
)

// The MathML front end turns the small math-markup vocabulary used in
// function contracts into term and predicate indices. It is a pure
// producer of Mk calls on the dictionary.

// macroConstants maps contract macro names to their integer text.
var macroConstants = map[string]string{
	"MININT8":   "-128",
	"MAXINT8":   "127",
	"MAXUINT8":  "255",
	"MININT16":  "-32768",
	"MAXINT16":  "32767",
	"MAXUINT16": "65535",
	"MININT32":  "-2147483648",
	"MAXINT32":  "2147483647",
	"MAXUINT32": "4294967295",
	"MININT64":  "-9223372036854775808",
	"MAXINT64":  "9223372036854775807",
	"MAXUINT64": "18446744073709551615",
}

var relationTags = map[string]string{
	"eq":  "eq",
	"neq": "ne",
	"gt":  "gt",
	"lt":  "lt",
	"geq": "ge",
	"leq": "le",
}

// ParseMathMLApiParameter interns the parameter named in a contract:
// a formal if the name is a known parameter, a global if listed in
// gvars.
func (d *Dictionary) ParseMathMLApiParameter(
	name string, pars map[string]int, gvars []string) (int, error) {
	if n, ok := pars[name]; ok {
		return d.MkApiParameter([]string{"pf"}, []int{n}), nil
	}
	if pkg.Contains(gvars, name) {
		return d.MkApiParameter([]string{"pg", name}, []int{}), nil
	}
	return 0, fmt.Errorf(
		"api parameter %q not found in parameters or global variables", name)
}

// ParseMathMLOffset interns a field/index offset chain. A nil node is
// the no-offset terminator.
func (d *Dictionary) ParseMathMLOffset(node *xmlutil.Node) (int, error) {
	if node == nil {
		return d.MkSOffset([]string{"no"}, []int{}), nil
	}

	var sub *xmlutil.Node
	if len(node.Children) > 0 {
		sub = node.Children[0]
	}

	switch node.Name {
	case "field":
		name, ok := node.Get("name")
		if !ok {
			return 0, fmt.Errorf("field offset is missing attribute %q", "name")
		}
		subix, err := d.ParseMathMLOffset(sub)
		if err != nil {
			return 0, err
		}
		return d.MkSOffset([]string{"fo", name}, []int{subix}), nil
	case "index":
		i, ok := node.Get("i")
		if !ok {
			return 0, fmt.Errorf("index offset is missing attribute %q", "i")
		}
		subix, err := d.ParseMathMLOffset(sub)
		if err != nil {
			return 0, err
		}
		return d.MkSOffset([]string{"io", i}, []int{subix}), nil
	}
	return 0, fmt.Errorf("unexpected offset element %q", node.Name)
}

// ParseMathMLTerm interns a term from contract markup: return markers,
// identifiers (formals, globals, macro constants), numerals, field
// terms, and arithmetic applies.
func (d *Dictionary) ParseMathMLTerm(
	node *xmlutil.Node, pars map[string]int, gvars []string) (int, error) {
	text := func() (string, error) {
		if node.Text == "" {
			return "", fmt.Errorf("element %q is missing its text", node.Name)
		}
		return node.Text, nil
	}

	switch node.Name {
	case "return", "return-value":
		return d.MkSTerm([]string{"rv"}, []int{}), nil

	case "ci":
		name, err := text()
		if err != nil {
			return 0, err
		}
		if numeral, ok := macroConstants[name]; ok {
			return d.MkSTerm([]string{"ic", numeral}, []int{}), nil
		}
		parix, err := d.ParseMathMLApiParameter(name, pars, gvars)
		if err != nil {
			return 0, err
		}
		offix, err := d.ParseMathMLOffset(nil)
		if err != nil {
			return 0, err
		}
		return d.MkSTerm([]string{"av"}, []int{parix, offix}), nil

	case "cn":
		numeral, err := text()
		if err != nil {
			return 0, err
		}
		return d.MkSTerm([]string{"ic", numeral}, []int{}), nil

	case "field":
		fname, ok := node.Get("fname")
		if !ok {
			return 0, fmt.Errorf("field term is missing attribute %q", "fname")
		}
		return d.MkSTerm([]string{"fo", fname}, []int{}), nil

	case "apply":
		return d.parseMathMLApply(node, pars, gvars)
	}
	return 0, fmt.Errorf("no term parse for element %q", node.Name)
}

var arithmeticTags = map[string]string{
	"divide": "div",
	"times":  "mult",
	"plus":   "plusa",
	"minus":  "minusa",
}

func (d *Dictionary) parseMathMLApply(
	node *xmlutil.Node, pars map[string]int, gvars []string) (int, error) {
	if len(node.Children) == 0 {
		return 0, fmt.Errorf("empty apply element")
	}
	op := node.Children[0]
	terms := node.Children[1:]

	if op.Name == "addressed-value" {
		if len(terms) < 1 {
			return 0, fmt.Errorf("addressed-value needs a base term")
		}
		baseix, err := d.ParseMathMLTerm(terms[0], pars, gvars)
		if err != nil {
			return 0, err
		}
		var offnode *xmlutil.Node
		if len(op.Children) > 0 {
			offnode = op.Children[0]
		}
		offix, err := d.ParseMathMLOffset(offnode)
		if err != nil {
			return 0, err
		}
		return d.MkSTerm([]string{"aa"}, []int{baseix, offix}), nil
	}

	optag, ok := arithmeticTags[op.Name]
	if !ok {
		return 0, fmt.Errorf("no term parse for apply operator %q", op.Name)
	}
	if len(terms) < 2 {
		return 0, fmt.Errorf("operator %q needs two terms", op.Name)
	}
	ix1, err := d.ParseMathMLTerm(terms[0], pars, gvars)
	if err != nil {
		return 0, err
	}
	ix2, err := d.ParseMathMLTerm(terms[1], pars, gvars)
	if err != nil {
		return 0, err
	}
	return d.MkSTerm([]string{"ax", optag}, []int{ix1, ix2}), nil
}

// ParseMathMLXPredicate interns a predicate from a math/apply contract
// element. Taint bounds come from lb/ub attributes on the operator and
// default to the -1 sentinel.
func (d *Dictionary) ParseMathMLXPredicate(
	pcnode *xmlutil.Node, pars map[string]int, gvars []string) (int, error) {
	mnode := pcnode.Find("math")
	if mnode == nil {
		return 0, fmt.Errorf("expected a %q child element", "math")
	}
	anode := mnode.Find("apply")
	if anode == nil {
		return 0, fmt.Errorf("expected an %q child element", "apply")
	}
	if len(anode.Children) == 0 {
		return 0, fmt.Errorf("empty apply element")
	}
	op := anode.Children[0]
	terms := anode.Children[1:]

	pt := func(i int) (int, error) {
		if i >= len(terms) {
			return 0, fmt.Errorf("operator %q needs %d terms", op.Name, i+1)
		}
		return d.ParseMathMLTerm(terms[i], pars, gvars)
	}
	bound := func(attr string) (int, error) {
		val, ok := op.Get(attr)
		if !ok {
			return -1, nil
		}
		if numeral, found := macroConstants[val]; found {
			val = numeral
		} else if _, err := strconv.Atoi(val); err != nil {
			return 0, fmt.Errorf("bad taint bound %q", val)
		}
		return d.MkSTerm([]string{"ic", val}, []int{}), nil
	}

	if reltag, ok := relationTags[op.Name]; ok {
		ix1, err := pt(0)
		if err != nil {
			return 0, err
		}
		ix2, err := pt(1)
		if err != nil {
			return 0, err
		}
		return d.MkXPredicate([]string{"x", reltag}, []int{ix1, ix2}), nil
	}

	unaryOps := map[string]string{
		"global-address":  "ga",
		"heap-address":    "ha",
		"not-null":        "nn",
		"not-zero":        "nz",
		"non-negative":    "nng",
		"initialized":     "i",
		"allocation-base": "ab",
		"valid-mem":       "vm",
		"new-memory":      "nm",
		"freed":           "fr",
	}
	pairOps := map[string]string{
		"block-write":       "bw",
		"buffer":            "b",
		"rev-buffer":        "rb",
		"initializes-range": "ir",
		"initialized-range": "ir",
	}

	switch {
	case op.Name == "false":
		return d.MkXPredicate([]string{"f"}, []int{}), nil

	case op.Name == "preserves-all-memory":
		return d.MkXPredicate([]string{"prm"}, []int{}), nil

	case op.Name == "tainted":
		tix, err := pt(0)
		if err != nil {
			return 0, err
		}
		lb, err := bound("lb")
		if err != nil {
			return 0, err
		}
		ub, err := bound("ub")
		if err != nil {
			return 0, err
		}
		return d.MkXPredicate([]string{"tt"}, []int{tix, lb, ub}), nil
	}

	if tag, ok := unaryOps[op.Name]; ok {
		ix, err := pt(0)
		if err != nil {
			return 0, err
		}
		return d.MkXPredicate([]string{tag}, []int{ix}), nil
	}
	if tag, ok := pairOps[op.Name]; ok {
		ix1, err := pt(0)
		if err != nil {
			return 0, err
		}
		ix2, err := pt(1)
		if err != nil {
			return 0, err
		}
		return d.MkXPredicate([]string{tag}, []int{ix1, ix2}), nil
	}

	return 0, fmt.Errorf("no predicate parse for operator %q", op.Name)
}

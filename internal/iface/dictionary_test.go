package iface_test

import (
	"testing"

	"github.com/provedb/provedb/internal/iface"
	"github.com/provedb/provedb/internal/table"
	"github.com/provedb/provedb/internal/xmlutil"
	"gotest.tools/assert"
)

func TestApiParameterScenario(t *testing.T) {
	d := iface.NewDictionary()

	assert.Equal(t, d.MkFormalApiParameter(1), 1)
	assert.Equal(t, d.MkFormalApiParameter(1), 1)
	assert.Equal(t, d.MkGlobalApiParameter("errno"), 2)

	p, err := d.GetApiParameter(1)
	assert.NilError(t, err)
	formal, ok := p.(*iface.FormalParameter)
	assert.Assert(t, ok)
	assert.Equal(t, formal.Number(), 1)

	g, err := d.GetApiParameter(2)
	assert.NilError(t, err)
	global, ok := g.(*iface.GlobalParameter)
	assert.Assert(t, ok)
	assert.Equal(t, global.Name(), "errno")
}

func TestArgValueSharing(t *testing.T) {
	d := iface.NewDictionary()

	parix := d.MkFormalApiParameter(1)
	offix := d.MkArgNoOffset()
	assert.Equal(t, offix, 1)

	termix := d.MkSTerm([]string{"av"}, []int{parix, offix})
	assert.Equal(t, termix, 1)

	// an identical second build returns the same indices throughout
	assert.Equal(t, d.MkArgNoOffset(), offix)
	assert.Equal(t, d.MkSTerm([]string{"av"}, []int{parix, offix}), termix)
}

func TestStructuralSharing(t *testing.T) {
	d := iface.NewDictionary()

	five1 := d.MkNumConstant(5)
	five2 := d.MkNumConstant(5)
	assert.Equal(t, five1, five2)

	sum := d.MkSTerm([]string{"ax", "plusa"}, []int{five1, five2})
	term, err := d.GetSTerm(sum)
	assert.NilError(t, err)

	expr, ok := term.(*iface.ArithmeticExpr)
	assert.Assert(t, ok)
	assert.Equal(t, expr.Record().Args[0], five1)
	assert.Equal(t, expr.Record().Args[1], five1)
}

func TestDecodeFidelity(t *testing.T) {
	d := iface.NewDictionary()

	// ((par-1 + 5) at .next[2]) not-null, built bottom-up
	parix := d.MkFormalApiParameter(1)
	noff := d.MkArgNoOffset()
	argval := d.MkSTerm([]string{"av"}, []int{parix, noff})
	five := d.MkNumConstant(5)
	sum := d.MkSTerm([]string{"ax", "plusa"}, []int{argval, five})
	idxoff := d.MkSOffset([]string{"io", "2"}, []int{noff})
	fldoff := d.MkSOffset([]string{"fo", "next"}, []int{idxoff})
	addressed := d.MkSTerm([]string{"aa"}, []int{sum, fldoff})
	pred := d.MkXPredicate([]string{"nn"}, []int{addressed})

	decoded, err := d.GetXPredicate(pred)
	assert.NilError(t, err)

	reencoded, err := d.IndexXPredicate(decoded)
	assert.NilError(t, err)
	assert.Equal(t, reencoded, pred)

	// no table grew during the re-encode
	total := 0
	for _, tbl := range d.Tables() {
		total += tbl.Size()
	}
	assert.Equal(t, total, 9)
}

func TestTaintedOptionalBounds(t *testing.T) {
	d := iface.NewDictionary()

	subject := d.MkSTerm([]string{"rt"}, []int{})
	lower := d.MkNumConstant(0)
	pred := d.MkXPredicate([]string{"tt"}, []int{subject, lower, -1})

	decoded, err := d.GetXPredicate(pred)
	assert.NilError(t, err)
	tainted, ok := decoded.(*iface.Tainted)
	assert.Assert(t, ok)

	lb, err := tainted.LowerBound()
	assert.NilError(t, err)
	assert.Assert(t, lb != nil)

	ub, err := tainted.UpperBound()
	assert.NilError(t, err)
	assert.Assert(t, ub == nil)

	reencoded, err := d.IndexXPredicate(decoded)
	assert.NilError(t, err)
	assert.Equal(t, reencoded, pred)
}

func TestUnknownVariantTag(t *testing.T) {
	d := iface.NewDictionary()
	ix := d.MkSTerm([]string{"zz"}, []int{})
	_, err := d.GetSTerm(ix)
	assert.ErrorContains(t, err, `unknown s-term variant: "zz"`)
	if _, ok := err.(*table.UnknownVariantError); !ok {
		t.Fatalf("expected UnknownVariantError, got %T", err)
	}
}

func TestPostconditionRecords(t *testing.T) {
	d := iface.NewDictionary()

	termix := d.MkReturnValue()
	notnull := d.MkXPredicate([]string{"nn"}, []int{termix})
	nonneg := d.MkXPredicate([]string{"nng"}, []int{termix})

	reqix := d.MkPostRequest([]string{"p"}, []int{notnull})
	req, err := d.GetPostRequest(reqix)
	assert.NilError(t, err)
	p, err := req.Predicate()
	assert.NilError(t, err)
	assert.Equal(t, p.String(), "not-null(returnval)")

	assix := d.MkPostAssume([]string{}, []int{42, notnull})
	assume, err := d.GetPostAssume(assix)
	assert.NilError(t, err)
	assert.Equal(t, assume.CalleeID(), 42)

	dsix := d.MkDsCondition([]int{notnull, nonneg})
	ds, err := d.GetDsCondition(dsix)
	assert.NilError(t, err)
	preds, err := ds.Disjuncts()
	assert.NilError(t, err)
	assert.Equal(t, len(preds), 2)
}

func TestDictionaryXMLRoundTrip(t *testing.T) {
	d := iface.NewDictionary()

	parix := d.MkFormalApiParameter(2)
	noff := d.MkArgNoOffset()
	argval := d.MkSTerm([]string{"av"}, []int{parix, noff})
	length := d.MkNumConstant(10)
	d.MkXPredicate([]string{"b"}, []int{argval, length})

	node := xmlutil.NewNode("interface-dictionary")
	d.WriteXML(node)

	loaded := iface.NewDictionary()
	assert.NilError(t, loaded.Initialize(node))

	for i, tbl := range loaded.Tables() {
		src := d.Tables()[i]
		assert.Equal(t, tbl.Size(), src.Size())
		assert.DeepEqual(t, tbl.Items(), src.Items())
	}

	// loaded identities stay stable and further interning continues
	// past them
	assert.Equal(t, loaded.MkFormalApiParameter(2), parix)
	assert.Equal(t, loaded.MkNumConstant(11), length+1)
}

func TestInitializeMissingSection(t *testing.T) {
	d := iface.NewDictionary()
	node := xmlutil.NewNode("interface-dictionary")
	d.WriteXML(node)

	// drop one required section
	stripped := xmlutil.NewNode("interface-dictionary")
	for _, c := range node.Children {
		if c.Name != iface.XPredicateTableName {
			stripped.Append(c)
		}
	}

	err := iface.NewDictionary().Initialize(stripped)
	assert.ErrorContains(t, err, `section "xpredicate-table" not found`)
	if _, ok := err.(*table.SchemaError); !ok {
		t.Fatalf("expected SchemaError, got %T", err)
	}
}

func TestPredicateForeignKeyAttrs(t *testing.T) {
	d := iface.NewDictionary()
	termix := d.MkReturnValue()
	pred, err := d.GetXPredicate(d.MkXPredicate([]string{"nn"}, []int{termix}))
	assert.NilError(t, err)

	node := xmlutil.NewNode("api-condition")
	assert.NilError(t, d.WriteXMLPredicate(node, "ipr", pred))

	back, err := d.ReadXMLPredicate(node, "ipr")
	assert.NilError(t, err)
	assert.Equal(t, back.Index(), pred.Index())

	_, err = d.ReadXMLPredicate(node, "nope")
	assert.Assert(t, err != nil)
}

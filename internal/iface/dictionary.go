package iface

import (
	"strconv"

	"github.com/provedb/provedb/internal/table"
	"github.com/provedb/provedb/internal/xmlutil"
)

// Table names double as the section names of the persisted form, in
// declared order.
const (
	ApiParameterTableName = "api-parameter-table"
	SOffsetTableName      = "s-offset-table"
	STermTableName        = "s-term-table"
	XPredicateTableName   = "xpredicate-table"
	PostRequestTableName  = "postrequest-table"
	PostAssumeTableName   = "postassume-table"
	DsConditionTableName  = "ds-condition-table"
)

// Dictionary holds all non-local symbolic values of one translation
// unit. Indices are meaningful only within their owning table; nothing
// here is shared across dictionaries.
type Dictionary struct {
	apiParameterTable *table.Table
	sOffsetTable      *table.Table
	sTermTable        *table.Table
	xpredicateTable   *table.Table
	postrequestTable  *table.Table
	postassumeTable   *table.Table
	dsConditionTable  *table.Table

	tables []*table.Table
}

func NewDictionary() *Dictionary {
	d := &Dictionary{
		apiParameterTable: table.New(ApiParameterTableName),
		sOffsetTable:      table.New(SOffsetTableName),
		sTermTable:        table.New(STermTableName),
		xpredicateTable:   table.New(XPredicateTableName),
		postrequestTable:  table.New(PostRequestTableName),
		postassumeTable:   table.New(PostAssumeTableName),
		dsConditionTable:  table.New(DsConditionTableName),
	}
	d.tables = []*table.Table{
		d.apiParameterTable,
		d.sOffsetTable,
		d.sTermTable,
		d.xpredicateTable,
		d.postrequestTable,
		d.postassumeTable,
		d.dsConditionTable,
	}
	return d
}

// Tables returns the owned tables in declared order.
func (d *Dictionary) Tables() []*table.Table { return d.tables }

// ----------------- retrieve items from dictionary tables -----------------

func (d *Dictionary) GetApiParameter(ix int) (ApiParameter, error) {
	v, err := d.construct(d.apiParameterTable, ix, FamilyApiParameter)
	if err != nil {
		return nil, err
	}
	return v.(ApiParameter), nil
}

func (d *Dictionary) GetSOffset(ix int) (SOffset, error) {
	v, err := d.construct(d.sOffsetTable, ix, FamilySOffset)
	if err != nil {
		return nil, err
	}
	return v.(SOffset), nil
}

func (d *Dictionary) GetSTerm(ix int) (STerm, error) {
	v, err := d.construct(d.sTermTable, ix, FamilySTerm)
	if err != nil {
		return nil, err
	}
	return v.(STerm), nil
}

// GetOptSTerm resolves an optional term reference, where a non-positive
// index means "no term".
func (d *Dictionary) GetOptSTerm(ix int) (STerm, error) {
	if ix <= 0 {
		return nil, nil
	}
	return d.GetSTerm(ix)
}

func (d *Dictionary) GetXPredicate(ix int) (XPredicate, error) {
	v, err := d.construct(d.xpredicateTable, ix, FamilyXPredicate)
	if err != nil {
		return nil, err
	}
	return v.(XPredicate), nil
}

func (d *Dictionary) GetPostRequest(ix int) (*PostRequest, error) {
	rec, err := d.postrequestTable.Retrieve(ix)
	if err != nil {
		return nil, err
	}
	return &PostRequest{dictRecord{d, rec}}, nil
}

func (d *Dictionary) GetPostAssume(ix int) (*PostAssume, error) {
	rec, err := d.postassumeTable.Retrieve(ix)
	if err != nil {
		return nil, err
	}
	return &PostAssume{dictRecord{d, rec}}, nil
}

func (d *Dictionary) GetDsCondition(ix int) (*DsCondition, error) {
	rec, err := d.dsConditionTable.Retrieve(ix)
	if err != nil {
		return nil, err
	}
	return &DsCondition{dictRecord{d, rec}}, nil
}

func (d *Dictionary) construct(t *table.Table, ix int, family table.Family) (any, error) {
	rec, err := t.Retrieve(ix)
	if err != nil {
		return nil, err
	}
	return registry.Construct(d, rec, family)
}

// --------------------- index items by category ---------------------------

// The Mk methods are the low-level interning entry points: tags and
// args are taken as given. The Index methods re-encode a typed wrapper
// recursively, children before parent, so that equal subtrees collapse
// to equal indices.

func (d *Dictionary) MkApiParameter(tags []string, args []int) int {
	return d.apiParameterTable.Add(tags, args)
}

func (d *Dictionary) MkFormalApiParameter(n int) int {
	return d.MkApiParameter([]string{"pf"}, []int{n})
}

func (d *Dictionary) MkGlobalApiParameter(name string) int {
	return d.MkApiParameter([]string{"pg", name}, []int{})
}

func (d *Dictionary) MkSOffset(tags []string, args []int) int {
	return d.sOffsetTable.Add(tags, args)
}

func (d *Dictionary) MkArgNoOffset() int {
	return d.MkSOffset([]string{"no"}, []int{})
}

func (d *Dictionary) MkSTerm(tags []string, args []int) int {
	return d.sTermTable.Add(tags, args)
}

func (d *Dictionary) MkFieldSTerm(fieldname string) int {
	return d.MkSTerm([]string{"fo", fieldname}, []int{})
}

func (d *Dictionary) MkNumConstant(value int) int {
	return d.MkSTerm([]string{"ic", strconv.Itoa(value)}, []int{})
}

func (d *Dictionary) MkReturnValue() int {
	return d.MkSTerm([]string{"rv"}, []int{})
}

func (d *Dictionary) MkXPredicate(tags []string, args []int) int {
	return d.xpredicateTable.Add(tags, args)
}

func (d *Dictionary) MkInitializedXPredicate(termix int) int {
	return d.MkXPredicate([]string{"i"}, []int{termix})
}

func (d *Dictionary) MkPostRequest(tags []string, args []int) int {
	return d.postrequestTable.Add(tags, args)
}

func (d *Dictionary) MkPostAssume(tags []string, args []int) int {
	return d.postassumeTable.Add(tags, args)
}

func (d *Dictionary) MkDsCondition(predixs []int) int {
	return d.dsConditionTable.Add([]string{}, predixs)
}

func (d *Dictionary) IndexApiParameter(p ApiParameter) int {
	rec := p.Record()
	return d.MkApiParameter(rec.Tags, rec.Args)
}

func (d *Dictionary) IndexSOffset(o SOffset) (int, error) {
	rec := o.Record()
	args := rec.Args

	switch o := o.(type) {
	case *FieldOffset:
		sub, err := o.Offset()
		if err != nil {
			return 0, err
		}
		subix, err := d.IndexSOffset(sub)
		if err != nil {
			return 0, err
		}
		args = []int{subix}
	case *IndexOffset:
		sub, err := o.Offset()
		if err != nil {
			return 0, err
		}
		subix, err := d.IndexSOffset(sub)
		if err != nil {
			return 0, err
		}
		args = []int{subix}
	}

	return d.MkSOffset(rec.Tags, args), nil
}

func (d *Dictionary) IndexSTerm(t STerm) (int, error) {
	rec := t.Record()
	args := rec.Args

	switch t := t.(type) {
	case *ArgValue:
		p, err := t.Parameter()
		if err != nil {
			return 0, err
		}
		off, err := t.Offset()
		if err != nil {
			return 0, err
		}
		offix, err := d.IndexSOffset(off)
		if err != nil {
			return 0, err
		}
		args = []int{d.IndexApiParameter(p), offix}
	case *ArgAddressedValue:
		base, err := t.BaseTerm()
		if err != nil {
			return 0, err
		}
		baseix, err := d.IndexSTerm(base)
		if err != nil {
			return 0, err
		}
		off, err := t.Offset()
		if err != nil {
			return 0, err
		}
		offix, err := d.IndexSOffset(off)
		if err != nil {
			return 0, err
		}
		args = []int{baseix, offix}
	case *ArithmeticExpr:
		t1, err := t.Term1()
		if err != nil {
			return 0, err
		}
		ix1, err := d.IndexSTerm(t1)
		if err != nil {
			return 0, err
		}
		t2, err := t.Term2()
		if err != nil {
			return 0, err
		}
		ix2, err := d.IndexSTerm(t2)
		if err != nil {
			return 0, err
		}
		args = []int{ix1, ix2}
	case interface{ Term() (STerm, error) }:
		// the single-child variants: index-size, byte-size,
		// null-terminator-pos, size-of-type, formatted-output-size
		sub, err := t.Term()
		if err != nil {
			return 0, err
		}
		subix, err := d.IndexSTerm(sub)
		if err != nil {
			return 0, err
		}
		args = []int{subix}
	}

	return d.MkSTerm(rec.Tags, args), nil
}

// IndexOptSTerm encodes an optional term, mapping nil to the -1
// sentinel.
func (d *Dictionary) IndexOptSTerm(t STerm) (int, error) {
	if t == nil {
		return -1, nil
	}
	return d.IndexSTerm(t)
}

func (d *Dictionary) IndexXPredicate(p XPredicate) (int, error) {
	rec := p.Record()
	args := rec.Args

	switch p := p.(type) {
	case *RelationalExpr:
		t1, err := p.Term1()
		if err != nil {
			return 0, err
		}
		ix1, err := d.IndexSTerm(t1)
		if err != nil {
			return 0, err
		}
		t2, err := p.Term2()
		if err != nil {
			return 0, err
		}
		ix2, err := d.IndexSTerm(t2)
		if err != nil {
			return 0, err
		}
		args = []int{ix1, ix2}
	case *Tainted:
		t, err := p.Term()
		if err != nil {
			return 0, err
		}
		tix, err := d.IndexSTerm(t)
		if err != nil {
			return 0, err
		}
		lb, err := p.LowerBound()
		if err != nil {
			return 0, err
		}
		lbix, err := d.IndexOptSTerm(lb)
		if err != nil {
			return 0, err
		}
		ub, err := p.UpperBound()
		if err != nil {
			return 0, err
		}
		ubix, err := d.IndexOptSTerm(ub)
		if err != nil {
			return 0, err
		}
		args = []int{tix, lbix, ubix}
	case interface {
		BaseTerm() (STerm, error)
		LengthTerm() (STerm, error)
	}:
		// block-write, buffer, rev-buffer, initialized-range
		base, err := p.BaseTerm()
		if err != nil {
			return 0, err
		}
		baseix, err := d.IndexSTerm(base)
		if err != nil {
			return 0, err
		}
		length, err := p.LengthTerm()
		if err != nil {
			return 0, err
		}
		lengthix, err := d.IndexSTerm(length)
		if err != nil {
			return 0, err
		}
		args = []int{baseix, lengthix}
	case interface{ Term() (STerm, error) }:
		sub, err := p.Term()
		if err != nil {
			return 0, err
		}
		subix, err := d.IndexSTerm(sub)
		if err != nil {
			return 0, err
		}
		args = []int{subix}
	}

	return d.MkXPredicate(rec.Tags, args), nil
}

// ------------------------ read/write xml services -------------------------

// ReadXMLPredicate resolves a foreign-key attribute holding an
// xpredicate index.
func (d *Dictionary) ReadXMLPredicate(node *xmlutil.Node, attr string) (XPredicate, error) {
	val, ok := node.Get(attr)
	if !ok {
		return nil, &table.SchemaError{Section: d.xpredicateTable.Name + "/@" + attr}
	}
	ix, err := strconv.Atoi(val)
	if err != nil {
		return nil, &table.SchemaError{Section: d.xpredicateTable.Name + "/@" + attr}
	}
	return d.GetXPredicate(ix)
}

// WriteXMLPredicate stores a predicate as a single foreign-key
// attribute.
func (d *Dictionary) WriteXMLPredicate(node *xmlutil.Node, attr string, p XPredicate) error {
	ix, err := d.IndexXPredicate(p)
	if err != nil {
		return err
	}
	node.Set(attr, strconv.Itoa(ix))
	return nil
}

// Initialize reads every owned table from its named section, in
// declared order. A missing section is a schema error naming it.
func (d *Dictionary) Initialize(node *xmlutil.Node) error {
	for _, t := range d.tables {
		section := node.Find(t.Name)
		if section == nil {
			return &table.SchemaError{Section: t.Name}
		}
		t.Reset()
		if err := t.ReadXML(section); err != nil {
			return err
		}
	}
	return nil
}

// WriteXML emits every owned table into its own named section, in
// declared order.
func (d *Dictionary) WriteXML(node *xmlutil.Node) {
	for _, t := range d.tables {
		section := xmlutil.NewNode(t.Name)
		t.WriteXML(section)
		node.Append(section)
	}
}

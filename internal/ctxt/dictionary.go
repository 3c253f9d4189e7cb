package ctxt

import (
	"strconv"

	"github.com/provedb/provedb/internal/table"
	"github.com/provedb/provedb/internal/xmlutil"
)

// Table and section names, in declared order.
const (
	NodeTableName       = "nodes"
	CfgContextTableName = "cfg-contexts"
	ExpContextTableName = "exp-contexts"
	ContextTableName    = "contexts"
)

// Dictionary holds the program-location contexts of one translation
// unit. It applies the same interning pattern as the interface
// dictionary; derived contexts are just further interning calls.
type Dictionary struct {
	nodeTable       *table.Table
	cfgContextTable *table.Table
	expContextTable *table.Table
	contextTable    *table.Table

	tables []*table.Table
}

func NewDictionary() *Dictionary {
	d := &Dictionary{
		nodeTable:       table.New(NodeTableName),
		cfgContextTable: table.New(CfgContextTableName),
		expContextTable: table.New(ExpContextTableName),
		contextTable:    table.New(ContextTableName),
	}
	d.tables = []*table.Table{
		d.nodeTable,
		d.cfgContextTable,
		d.expContextTable,
		d.contextTable,
	}
	return d
}

func (d *Dictionary) Tables() []*table.Table { return d.tables }

// ----------------- retrieve items from dictionary tables -----------------

func (d *Dictionary) GetNode(ix int) (*ContextNode, error) {
	rec, err := d.nodeTable.Retrieve(ix)
	if err != nil {
		return nil, err
	}
	return &ContextNode{ctxtRecord{d, rec}}, nil
}

func (d *Dictionary) GetCfgContext(ix int) (*CfgContext, error) {
	rec, err := d.cfgContextTable.Retrieve(ix)
	if err != nil {
		return nil, err
	}
	return &CfgContext{ctxtRecord{d, rec}}, nil
}

func (d *Dictionary) GetExpContext(ix int) (*ExpContext, error) {
	rec, err := d.expContextTable.Retrieve(ix)
	if err != nil {
		return nil, err
	}
	return &ExpContext{ctxtRecord{d, rec}}, nil
}

func (d *Dictionary) GetProgramContext(ix int) (*ProgramContext, error) {
	rec, err := d.contextTable.Retrieve(ix)
	if err != nil {
		return nil, err
	}
	return &ProgramContext{ctxtRecord{d, rec}}, nil
}

// ------------------- create new contexts ----------------------------------

func (d *Dictionary) MkNode(tags []string, args []int) int {
	return d.nodeTable.Add(tags, args)
}

// MkCfgContext interns a cfg context over already-interned nodes,
// inner node last.
func (d *Dictionary) MkCfgContext(nodeixs []int) int {
	return d.cfgContextTable.Add([]string{}, nodeixs)
}

func (d *Dictionary) MkExpContext(nodeixs []int) int {
	return d.expContextTable.Add([]string{}, nodeixs)
}

func (d *Dictionary) MkEmptyExpContext() int {
	return d.expContextTable.Add([]string{}, []int{})
}

func (d *Dictionary) MkProgramContext(cfgix, expix int) int {
	return d.contextTable.Add([]string{}, []int{cfgix, expix})
}

// IndexNode re-interns a node wrapper.
func (d *Dictionary) IndexNode(n *ContextNode) int {
	return d.MkNode(n.rec.Tags, n.rec.Args)
}

// IndexCfgContext re-interns a cfg context, nodes first.
func (d *Dictionary) IndexCfgContext(c *CfgContext) (int, error) {
	nodes, err := c.Nodes()
	if err != nil {
		return 0, err
	}
	args := make([]int, len(nodes))
	for i, n := range nodes {
		args[i] = d.IndexNode(n)
	}
	return d.MkCfgContext(args), nil
}

func (d *Dictionary) IndexExpContext(c *ExpContext) (int, error) {
	nodes, err := c.Nodes()
	if err != nil {
		return 0, err
	}
	args := make([]int, len(nodes))
	for i, n := range nodes {
		args[i] = d.IndexNode(n)
	}
	return d.MkExpContext(args), nil
}

func (d *Dictionary) IndexContext(c *ProgramContext) (int, error) {
	cfg, err := c.CfgContext()
	if err != nil {
		return 0, err
	}
	cfgix, err := d.IndexCfgContext(cfg)
	if err != nil {
		return 0, err
	}
	exp, err := c.ExpContext()
	if err != nil {
		return 0, err
	}
	expix, err := d.IndexExpContext(exp)
	if err != nil {
		return 0, err
	}
	return d.MkProgramContext(cfgix, expix), nil
}

// IndexCfgProjection interns the context that keeps the cfg context of
// the given one but substitutes an empty expression context.
func (d *Dictionary) IndexCfgProjection(c *ProgramContext) (int, error) {
	cfg, err := c.CfgContext()
	if err != nil {
		return 0, err
	}
	cfgix, err := d.IndexCfgContext(cfg)
	if err != nil {
		return 0, err
	}
	return d.MkProgramContext(cfgix, d.MkEmptyExpContext()), nil
}

// ------------------------ read/write xml services -------------------------

// ReadXMLContext resolves the ictxt foreign-key attribute.
func (d *Dictionary) ReadXMLContext(node *xmlutil.Node) (*ProgramContext, error) {
	val, ok := node.Get("ictxt")
	if !ok {
		return nil, &table.SchemaError{Section: d.contextTable.Name + "/@ictxt"}
	}
	ix, err := strconv.Atoi(val)
	if err != nil {
		return nil, &table.SchemaError{Section: d.contextTable.Name + "/@ictxt"}
	}
	return d.GetProgramContext(ix)
}

func (d *Dictionary) WriteXMLContext(node *xmlutil.Node, c *ProgramContext) {
	node.Set("ictxt", strconv.Itoa(c.Index()))
}

// Initialize reads every owned table from its named section, in
// declared order, failing on any missing section.
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

func (d *Dictionary) WriteXML(node *xmlutil.Node) {
	for _, t := range d.tables {
		section := xmlutil.NewNode(t.Name)
		t.WriteXML(section)
		node.Append(section)
	}
}

// Package ctxt implements the context dictionary: interned
// program-location contexts that place a proof obligation precisely
// within a function's control flow and expression nesting.
package ctxt

import (
	"fmt"
	"strings"

	"github.com/provedb/provedb/internal/table"
	"github.com/provedb/provedb/pkg"
)

// ctxtRecord is the base of every context wrapper.
type ctxtRecord struct {
	cxd *Dictionary
	rec table.Record
}

func (r ctxtRecord) Index() int           { return r.rec.Index }
func (r ctxtRecord) Record() table.Record { return r.rec }

// nodes resolves a list of node-reference args into wrappers.
func (r ctxtRecord) nodes() ([]*ContextNode, error) {
	nodes := make([]*ContextNode, len(r.rec.Args))
	for i, ix := range r.rec.Args {
		n, err := r.cxd.GetNode(ix)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

func nodeString(prefix string, nodes []*ContextNode, err error) string {
	if err != nil {
		return prefix + ":?"
	}
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return prefix + ":" + strings.Join(parts, "_")
}

// ContextNode is the innermost syntactic marker in a context.
//
// tags[0]: name of the node
// tags[1..]: additional info, e.g. the field name in a struct
// expression
// args[0]: statement id or instruction sequence number, if any
type ContextNode struct{ ctxtRecord }

func (n *ContextNode) Name() string { return n.rec.Tags[0] }

func (n *ContextNode) Info() []string { return n.rec.Tags[1:] }

// DataID is the statement or instruction number this node refers to.
func (n *ContextNode) DataID() (int, error) {
	if len(n.rec.Args) == 0 {
		return 0, fmt.Errorf("context node %s does not have a data-id", n.Name())
	}
	return n.rec.Args[0], nil
}

func (n *ContextNode) String() string {
	s := strings.Join(n.rec.Tags, "_")
	if len(n.rec.Args) > 0 {
		s += ":" + pkg.JoinInts(n.rec.Args)
	}
	return s
}

// CfgContext is a control-flow-graph context: an ordered sequence of
// node references, inner context last.
//
// args[0..]: node indices
type CfgContext struct{ ctxtRecord }

func (c *CfgContext) Nodes() ([]*ContextNode, error) { return c.nodes() }

func (c *CfgContext) String() string {
	nodes, err := c.Nodes()
	return nodeString("cfg", nodes, err)
}

// ExpContext is an expression nesting context: an ordered sequence of
// node references, inner context last.
//
// args[0..]: node indices
type ExpContext struct{ ctxtRecord }

func (c *ExpContext) Nodes() ([]*ContextNode, error) { return c.nodes() }

func (c *ExpContext) IsEmpty() bool { return len(c.rec.Args) == 0 }

func (c *ExpContext) String() string {
	nodes, err := c.Nodes()
	return nodeString("exp", nodes, err)
}

// ProgramContext pairs one cfg context with one expression context.
//
// args[0]: cfg context index
// args[1]: exp context index
type ProgramContext struct{ ctxtRecord }

func (c *ProgramContext) CfgContext() (*CfgContext, error) {
	return c.cxd.GetCfgContext(c.rec.Args[0])
}

func (c *ProgramContext) ExpContext() (*ExpContext, error) {
	return c.cxd.GetExpContext(c.rec.Args[1])
}

func (c *ProgramContext) String() string {
	cfg, err1 := c.CfgContext()
	exp, err2 := c.ExpContext()
	if err1 != nil || err2 != nil {
		return "(?, ?)"
	}
	return "(" + cfg.String() + ", " + exp.String() + ")"
}

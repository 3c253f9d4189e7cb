package iface

import (
	"strconv"
	"strings"
)

// The postcondition records are not variant families: each table holds
// a single record shape and is constructed directly, without registry
// dispatch.

// PostRequest is a postcondition requested from a callee.
//
// args[0]: index of the requested predicate
type PostRequest struct{ dictRecord }

func (r *PostRequest) Predicate() (XPredicate, error) {
	return r.ifd.GetXPredicate(r.arg(0))
}

func (r *PostRequest) String() string {
	p, err := r.Predicate()
	if err != nil {
		return "post-request(?)"
	}
	return "post-request(" + p.String() + ")"
}

// PostAssume is a callee postcondition assumed at a call site.
//
// args[0]: id of the callee in the declarations (external reference,
// not resolved here)
// args[1]: index of the assumed predicate
type PostAssume struct{ dictRecord }

func (a *PostAssume) CalleeID() int { return a.arg(0) }

func (a *PostAssume) Predicate() (XPredicate, error) {
	return a.ifd.GetXPredicate(a.arg(1))
}

func (a *PostAssume) String() string {
	p, err := a.Predicate()
	if err != nil {
		return "post-assume(?)"
	}
	return "post-assume(" + strconv.Itoa(a.CalleeID()) + ", " + p.String() + ")"
}

// DsCondition is a disjunction of predicates.
//
// args[0..]: indices of the disjunct predicates
type DsCondition struct{ dictRecord }

func (c *DsCondition) Disjuncts() ([]XPredicate, error) {
	preds := make([]XPredicate, len(c.rec.Args))
	for i, ix := range c.rec.Args {
		p, err := c.ifd.GetXPredicate(ix)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}

func (c *DsCondition) String() string {
	preds, err := c.Disjuncts()
	if err != nil {
		return "ds-condition(?)"
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.String()
	}
	return "ds-condition(" + strings.Join(parts, " | ") + ")"
}

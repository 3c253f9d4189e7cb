// Package iface implements the interface dictionary: interned API
// parameters, symbolic offsets and terms, external predicates, and the
// postcondition request/assumption records built from them.
package iface

import (
	"github.com/provedb/provedb/internal/table"
)

// Owner families for variant dispatch.
const (
	FamilyApiParameter table.Family = "api-parameter"
	FamilySOffset      table.Family = "s-offset"
	FamilySTerm        table.Family = "s-term"
	FamilyXPredicate   table.Family = "xpredicate"
)

// registry holds every variant constructor of the dictionary's four
// dispatched families. Variant files register themselves from init.
var registry = table.NewRegistry[*Dictionary]("interface-dictionary")

// dictRecord is the base of every typed wrapper: the raw record plus
// the dictionary to resolve child indices against. Wrappers are
// read-only views; child accessors re-decode on demand.
type dictRecord struct {
	ifd *Dictionary
	rec table.Record
}

func (r dictRecord) Index() int           { return r.rec.Index }
func (r dictRecord) Record() table.Record { return r.rec }

func (r dictRecord) tag(i int) string { return r.rec.Tags[i] }
func (r dictRecord) arg(i int) int    { return r.rec.Args[i] }

func (r dictRecord) term(argix int) (STerm, error) {
	return r.ifd.GetSTerm(r.arg(argix))
}

// optTerm resolves an optional term slot, where a non-positive index is
// the sentinel for an absent term.
func (r dictRecord) optTerm(argix int) (STerm, error) {
	if r.arg(argix) <= 0 {
		return nil, nil
	}
	return r.term(argix)
}

func (r dictRecord) offset(argix int) (SOffset, error) {
	return r.ifd.GetSOffset(r.arg(argix))
}

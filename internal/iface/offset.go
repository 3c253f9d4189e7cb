package iface

import (
	"fmt"

	"github.com/provedb/provedb/internal/table"
)

// SOffset is a symbolic offset applied to a term: nothing, a field
// selection, or an array index, each possibly wrapping a further
// offset.
type SOffset interface {
	Index() int
	Record() table.Record
	fmt.Stringer
	sOffset()
}

type NoOffset struct{ dictRecord }

func (o *NoOffset) sOffset() {}

func (o *NoOffset) String() string { return "" }

// FieldOffset selects a struct field.
//
// tags[1]: field name
// args[0]: index of the sub-offset
type FieldOffset struct{ dictRecord }

func (o *FieldOffset) sOffset() {}

func (o *FieldOffset) Field() string { return o.tag(1) }

func (o *FieldOffset) Offset() (SOffset, error) { return o.offset(0) }

func (o *FieldOffset) String() string {
	sub, err := o.Offset()
	if err != nil {
		return "." + o.Field() + "?"
	}
	return "." + o.Field() + sub.String()
}

// IndexOffset selects an array element.
//
// tags[1]: array index in string form
// args[0]: index of the sub-offset
type IndexOffset struct{ dictRecord }

func (o *IndexOffset) sOffset() {}

func (o *IndexOffset) IndexText() string { return o.tag(1) }

func (o *IndexOffset) Offset() (SOffset, error) { return o.offset(0) }

func (o *IndexOffset) String() string {
	sub, err := o.Offset()
	if err != nil {
		return "[" + o.IndexText() + "]?"
	}
	return "[" + o.IndexText() + "]" + sub.String()
}

func init() {
	registry.Register(FamilySOffset, "no", func(d *Dictionary, rec table.Record) any {
		return &NoOffset{dictRecord{d, rec}}
	})
	registry.Register(FamilySOffset, "fo", func(d *Dictionary, rec table.Record) any {
		return &FieldOffset{dictRecord{d, rec}}
	})
	registry.Register(FamilySOffset, "io", func(d *Dictionary, rec table.Record) any {
		return &IndexOffset{dictRecord{d, rec}}
	})
}

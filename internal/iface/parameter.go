package iface

import (
	"fmt"
	"strconv"

	"github.com/provedb/provedb/internal/table"
)

// ApiParameter is a formal parameter or referenced global of a function
// api.
type ApiParameter interface {
	Index() int
	Record() table.Record
	fmt.Stringer
	apiParameter()
}

// FormalParameter identifies a formal by position.
//
// args[0]: parameter number (1-based)
type FormalParameter struct{ dictRecord }

func (p *FormalParameter) apiParameter() {}

func (p *FormalParameter) Number() int { return p.arg(0) }

func (p *FormalParameter) String() string {
	return "par-" + strconv.Itoa(p.Number())
}

// GlobalParameter identifies a global variable by name.
//
// tags[1]: name of the global
type GlobalParameter struct{ dictRecord }

func (p *GlobalParameter) apiParameter() {}

func (p *GlobalParameter) Name() string { return p.tag(1) }

func (p *GlobalParameter) String() string {
	return "par-" + p.Name()
}

func init() {
	registry.Register(FamilyApiParameter, "pf", func(d *Dictionary, rec table.Record) any {
		return &FormalParameter{dictRecord{d, rec}}
	})
	registry.Register(FamilyApiParameter, "pg", func(d *Dictionary, rec table.Record) any {
		return &GlobalParameter{dictRecord{d, rec}}
	})
}

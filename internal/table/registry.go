package table

import "github.com/provedb/provedb/pkg"

// Family is the owner family a variant tag is scoped to, e.g. all
// symbolic-term variants share one family.
type Family string

// Constructor builds a typed wrapper from a raw record. D is the
// dictionary type the wrapper resolves child indices against.
type Constructor[D any] func(d D, rec Record) any

type registryKey struct {
	family Family
	tag    string
}

// Registry is open, tag-keyed dispatch from a raw record to a typed
// wrapper constructor. Variants register themselves at process setup;
// dispatch is an ordinary map lookup, no reflection involved.
type Registry[D any] struct {
	name  string
	ctors pkg.Map[registryKey, Constructor[D]]
}

func NewRegistry[D any](name string) *Registry[D] {
	return &Registry[D]{name: name, ctors: pkg.Map[registryKey, Constructor[D]]{}}
}

// Register binds (family, tag) to a constructor. Called once per variant
// type from package init.
func (r *Registry[D]) Register(family Family, tag string, ctor Constructor[D]) {
	r.ctors.Set(registryKey{family, tag}, ctor)
}

// Construct dispatches on the record's first tag within the given
// family.
func (r *Registry[D]) Construct(d D, rec Record, family Family) (any, error) {
	if len(rec.Tags) == 0 {
		return nil, &UnknownVariantError{Family: family, Tag: ""}
	}
	tag := rec.Tags[0]
	ctor, ok := r.ctors[registryKey{family, tag}]
	if !ok {
		return nil, &UnknownVariantError{Family: family, Tag: tag}
	}
	return ctor(d, rec), nil
}

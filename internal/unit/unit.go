// Package unit ties one translation unit's dictionaries to its
// persisted file: one interface dictionary and one context dictionary,
// loaded and saved as a single bulk pass.
package unit

import (
	"os"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/provedb/provedb/internal/ctxt"
	"github.com/provedb/provedb/internal/iface"
	"github.com/provedb/provedb/internal/table"
	"github.com/provedb/provedb/internal/xmlutil"
	"github.com/provedb/provedb/pkg"
)

const (
	rootElement     = "c-unit"
	ifaceSection    = "interface-dictionary"
	contextsSection = "c-contexts"
	unitFileSuffix  = ".xml"
	unitNameAttr    = "name"
)

// Unit is one source file's worth of analysis artifacts. Its
// dictionaries are exclusively owned: indices never cross units.
type Unit struct {
	// Locker serializes dictionary access for readers like the query
	// service; the dictionaries themselves are single-threaded.
	Locker sync.RWMutex

	Id   uuid.UUID
	Name string

	Interface *iface.Dictionary
	Contexts  *ctxt.Dictionary
}

func New(name string) *Unit {
	return &Unit{
		Id:        uuid.New(),
		Name:      name,
		Interface: iface.NewDictionary(),
		Contexts:  ctxt.NewDictionary(),
	}
}

// Load reads a unit file. Any failure is fatal for this unit; the
// caller decides whether to abandon the whole run or skip the file.
func Load(filepath string) (*Unit, error) {
	root, err := xmlutil.ParseFile(filepath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read unit file %s", filepath)
	}
	if root.Name != rootElement {
		return nil, errors.Wrapf(
			&table.SchemaError{Section: rootElement},
			"unit file %s", filepath)
	}

	name, ok := root.Get(unitNameAttr)
	if !ok {
		name = strings.TrimSuffix(path.Base(filepath), unitFileSuffix)
	}
	u := New(name)

	ifdNode := root.Find(ifaceSection)
	if ifdNode == nil {
		return nil, errors.Wrapf(
			&table.SchemaError{Section: ifaceSection},
			"unit file %s", filepath)
	}
	if err := u.Interface.Initialize(ifdNode); err != nil {
		return nil, errors.Wrapf(err, "unit file %s", filepath)
	}

	ctxNode := root.Find(contextsSection)
	if ctxNode == nil {
		return nil, errors.Wrapf(
			&table.SchemaError{Section: contextsSection},
			"unit file %s", filepath)
	}
	if err := u.Contexts.Initialize(ctxNode); err != nil {
		return nil, errors.Wrapf(err, "unit file %s", filepath)
	}

	pkg.DebugLog("loaded unit", u.Name, "from", filepath)
	return u, nil
}

// Save writes the unit file, every owned table in declared order.
func (u *Unit) Save(filepath string) error {
	u.Locker.RLock()
	defer u.Locker.RUnlock()

	root := xmlutil.NewNode(rootElement)
	root.Set(unitNameAttr, u.Name)

	ifdNode := xmlutil.NewNode(ifaceSection)
	u.Interface.WriteXML(ifdNode)
	root.Append(ifdNode)

	ctxNode := xmlutil.NewNode(contextsSection)
	u.Contexts.WriteXML(ctxNode)
	root.Append(ctxNode)

	if err := xmlutil.WriteFile(filepath, root); err != nil {
		return errors.Wrapf(err, "failed to write unit file %s", filepath)
	}
	return nil
}

// FindTable resolves a table by dictionary section and table name.
// Returns nil when either does not exist.
func (u *Unit) FindTable(section, name string) *table.Table {
	var tables []*table.Table
	switch section {
	case ifaceSection:
		tables = u.Interface.Tables()
	case contextsSection:
		tables = u.Contexts.Tables()
	default:
		return nil
	}
	for _, t := range tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TableStats maps each table of the unit, qualified by dictionary, to
// its size.
func (u *Unit) TableStats() map[string]int {
	u.Locker.RLock()
	defer u.Locker.RUnlock()

	stats := map[string]int{}
	for _, t := range u.Interface.Tables() {
		stats[ifaceSection+"/"+t.Name] = t.Size()
	}
	for _, t := range u.Contexts.Tables() {
		stats[contextsSection+"/"+t.Name] = t.Size()
	}
	return stats
}

// Store is the set of units loaded for one analysis run.
type Store struct {
	Locker sync.RWMutex
	Units  pkg.Map[string, *Unit]
}

func NewStore() *Store {
	return &Store{Units: pkg.Map[string, *Unit]{}}
}

func (s *Store) Get(name string) *Unit {
	s.Locker.RLock()
	defer s.Locker.RUnlock()
	return s.Units.Get(name)
}

func (s *Store) Put(u *Unit) {
	s.Locker.Lock()
	defer s.Locker.Unlock()
	s.Units.Set(u.Name, u)
}

func (s *Store) Names() []string {
	s.Locker.RLock()
	defer s.Locker.RUnlock()
	return pkg.SortedKeys(s.Units, func(a, b string) bool { return a < b })
}

// LoadDir loads every unit file in a directory. A corrupt file is
// logged and skipped; the rest of the run continues.
func (s *Store) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to read unit directory %s", dir)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), unitFileSuffix) {
			continue
		}
		u, err := Load(path.Join(dir, entry.Name()))
		if err != nil {
			pkg.ErrorLog("skipping unit:", err)
			continue
		}
		s.Put(u)
	}
	pkg.InfoLog("loaded", len(s.Units), "units from", dir)
	return nil
}

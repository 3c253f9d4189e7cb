// Package table implements the interning core: keyed stores that assign
// a stable integer identity to structurally-equal records, with
// checkpoint/rollback and bidirectional bulk XML serialization.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/provedb/provedb/internal/xmlutil"
	"github.com/provedb/provedb/pkg"
	sorted "github.com/tobshub/go-sortedmap"
)

// Record is one interned entry. Tags[0] is the variant tag; the
// remaining tags are literal leaf payload. Args are either literal
// integers or indices of child records in some table of the same
// dictionary; which slots mean what is fixed per variant tag.
type Record struct {
	Index int
	Tags  []string
	Args  []int
}

// Key is the structural key used to test equality for interning.
// The comma is the concatenation character and therefore cannot be
// used inside any tag.
type Key struct {
	Tags string
	Args string
}

func NewKey(tags []string, args []int) Key {
	return Key{strings.Join(tags, ","), pkg.JoinInts(args)}
}

func (r Record) Key() Key { return NewKey(r.Tags, r.Args) }

func (r Record) String() string {
	return fmt.Sprintf("(%d: t[%s] a[%s])",
		r.Index, strings.Join(r.Tags, ","), pkg.JoinInts(r.Args))
}

func recordOrder(a, b Record) bool { return a.Index < b.Index }

// Table assigns unique indices, starting at 1, to records keyed by their
// structural key. A table is exclusively owned by its dictionary and is
// not safe for concurrent use.
type Table struct {
	Name string

	keys    pkg.Map[Key, int]
	records *sorted.SortedMap[int, Record]

	next       int
	reserved   []int
	checkpoint int // 0 means no checkpoint outstanding
}

func New(name string) *Table {
	return &Table{
		Name:    name,
		keys:    pkg.Map[Key, int]{},
		records: sorted.New[int, Record](0, recordOrder),
		next:    1,
	}
}

// Reset wipes the table back to its freshly-created state.
func (t *Table) Reset() {
	t.keys = pkg.Map[Key, int]{}
	t.records = sorted.New[int, Record](0, recordOrder)
	t.next = 1
	t.reserved = nil
	t.checkpoint = 0
}

// Size is the allocation frontier: the highest index handed out so far.
func (t *Table) Size() int { return t.next - 1 }

// Add interns (tags, args). If the structural key is already present the
// existing index is returned and nothing is mutated; otherwise the next
// index is allocated and the record stored.
func (t *Table) Add(tags []string, args []int) int {
	key := NewKey(tags, args)
	if index, ok := t.keys[key]; ok {
		return index
	}
	index := t.next
	t.keys.Set(key, index)
	t.records.Insert(index, Record{Index: index, Tags: tags, Args: args})
	t.next++
	return index
}

// Reserve allocates the next index without storing a record, for staged
// construction where an identity must be handed out before the record's
// content is known.
func (t *Table) Reserve() int {
	index := t.next
	t.reserved = append(t.reserved, index)
	t.next++
	return index
}

// CommitReserved stores the record for a previously reserved index and
// registers its key.
func (t *Table) CommitReserved(index int, tags []string, args []int) error {
	if !pkg.Contains(t.reserved, index) {
		return &ProtocolError{
			Table:  t.Name,
			Reason: fmt.Sprintf("commit of nonreserved index %d", index),
		}
	}
	t.keys.Set(NewKey(tags, args), index)
	t.records.Replace(index, Record{Index: index, Tags: tags, Args: args})
	t.reserved = pkg.Filter(t.reserved, func(i int) bool { return i != index })
	return nil
}

func (t *Table) Retrieve(index int) (Record, error) {
	rec, ok := t.records.Get(index)
	if !ok {
		return Record{}, &LookupError{Table: t.Name, Index: index, Size: t.Size()}
	}
	return rec, nil
}

// SetCheckpoint records the current allocation frontier. At most one
// checkpoint may be outstanding.
func (t *Table) SetCheckpoint() (int, error) {
	if t.checkpoint != 0 {
		return 0, &ProtocolError{
			Table:  t.Name,
			Reason: fmt.Sprintf("checkpoint already set at %d", t.checkpoint),
		}
	}
	t.checkpoint = t.next
	return t.next, nil
}

// ResetToCheckpoint removes every record added since the checkpoint was
// set, except slots still held by an uncommitted reservation, and
// restores the allocation frontier. Freed indices may be reassigned by
// later Add calls.
func (t *Table) ResetToCheckpoint() (int, error) {
	cp := t.checkpoint
	if cp == 0 {
		return 0, &ProtocolError{Table: t.Name, Reason: "reset without checkpoint"}
	}
	for i := cp; i < t.next; i++ {
		if pkg.Contains(t.reserved, i) {
			continue
		}
		t.records.Delete(i)
	}
	for key, index := range t.keys {
		if index >= cp {
			t.keys.Delete(key)
		}
	}
	t.next = cp
	t.reserved = nil
	t.checkpoint = 0
	return cp, nil
}

// RemoveCheckpoint accepts the speculative state as permanent.
func (t *Table) RemoveCheckpoint() { t.checkpoint = 0 }

// Items returns all stored records in ascending index order.
func (t *Table) Items() []Record {
	items := []Record{}
	iter, err := t.records.IterCh()
	if err != nil {
		// empty map
		return items
	}
	defer iter.Close()
	for rec := range iter.Records() {
		items = append(items, rec.Val)
	}
	return items
}

const recordTag = "n"

// WriteXML emits one child element per stored record, ascending by
// index. Empty tag and arg lists are omitted rather than written as
// empty attributes.
func (t *Table) WriteXML(node *xmlutil.Node) {
	for _, rec := range t.Items() {
		rnode := xmlutil.NewNode(recordTag)
		rnode.Set("ix", strconv.Itoa(rec.Index))
		if len(rec.Tags) > 0 {
			rnode.Set("t", strings.Join(rec.Tags, ","))
		}
		if len(rec.Args) > 0 {
			rnode.Set("a", pkg.JoinInts(rec.Args))
		}
		node.Append(rnode)
	}
}

// ReadXML rebuilds the key and record maps from a table container
// element and advances the allocation frontier past the highest index
// seen, so further Add calls never collide with loaded identities.
func (t *Table) ReadXML(node *xmlutil.Node) error {
	if node == nil {
		return &SchemaError{Section: t.Name}
	}
	for _, rnode := range node.FindAll(recordTag) {
		rec, err := readRecord(rnode, t.Name)
		if err != nil {
			return err
		}
		t.keys.Set(rec.Key(), rec.Index)
		t.records.Replace(rec.Index, rec)
		if rec.Index >= t.next {
			t.next = rec.Index + 1
		}
	}
	return nil
}

func readRecord(node *xmlutil.Node, section string) (Record, error) {
	ixval, ok := node.Get("ix")
	if !ok {
		return Record{}, &SchemaError{Section: section + "/@ix"}
	}
	index, err := strconv.Atoi(ixval)
	if err != nil {
		return Record{}, &SchemaError{Section: section + "/@ix"}
	}

	tags := []string{}
	if tval, ok := node.Get("t"); ok && tval != "" {
		tags = strings.Split(tval, ",")
	}

	args := []int{}
	if aval, ok := node.Get("a"); ok && aval != "" {
		args, err = pkg.SplitInts(aval)
		if err != nil {
			return Record{}, &SchemaError{Section: section + "/@a"}
		}
	}

	return Record{Index: index, Tags: tags, Args: args}, nil
}

package table_test

import (
	"testing"

	"github.com/provedb/provedb/internal/table"
	"github.com/provedb/provedb/internal/xmlutil"
	"gotest.tools/assert"
)

func TestAddIsIdempotent(t *testing.T) {
	tbl := table.New("s-term-table")
	ix := tbl.Add([]string{"ic", "5"}, []int{})
	assert.Equal(t, ix, 1)
	assert.Equal(t, tbl.Add([]string{"ic", "5"}, []int{}), 1)
	assert.Equal(t, tbl.Size(), 1)
}

func TestIndicesAreMonotonic(t *testing.T) {
	tbl := table.New("s-term-table")
	assert.Equal(t, tbl.Add([]string{"ic", "1"}, []int{}), 1)
	assert.Equal(t, tbl.Add([]string{"ic", "2"}, []int{}), 2)
	assert.Equal(t, tbl.Add([]string{"rv"}, []int{}), 3)
	assert.Equal(t, tbl.Size(), 3)
}

func TestDistinctArgsDistinctIndex(t *testing.T) {
	tbl := table.New("s-term-table")
	a := tbl.Add([]string{"ax", "plusa"}, []int{1, 2})
	b := tbl.Add([]string{"ax", "plusa"}, []int{2, 1})
	assert.Assert(t, a != b)
}

func TestRetrieveMissing(t *testing.T) {
	tbl := table.New("s-offset-table")
	tbl.Add([]string{"no"}, []int{})
	_, err := tbl.Retrieve(4)
	assert.ErrorContains(t, err, "item 4 from table s-offset-table (size: 1)")
	if _, ok := err.(*table.LookupError); !ok {
		t.Fatalf("expected LookupError, got %T", err)
	}
}

func TestCheckpointRollbackReclaimsSpace(t *testing.T) {
	tbl := table.New("s-term-table")
	tbl.Add([]string{"ic", "1"}, []int{})
	tbl.Add([]string{"ic", "2"}, []int{})

	cp, err := tbl.SetCheckpoint()
	assert.NilError(t, err)
	assert.Equal(t, cp, 3)

	tbl.Add([]string{"ic", "3"}, []int{})
	tbl.Add([]string{"ic", "4"}, []int{})
	tbl.Add([]string{"ic", "5"}, []int{})
	assert.Equal(t, tbl.Size(), 5)

	back, err := tbl.ResetToCheckpoint()
	assert.NilError(t, err)
	assert.Equal(t, back, 3)
	assert.Equal(t, tbl.Size(), 2)

	// rolled-back entries are gone, and their keys with them
	_, err = tbl.Retrieve(3)
	assert.Assert(t, err != nil)
	assert.Equal(t, tbl.Add([]string{"ic", "99"}, []int{}), 3)
}

func TestDoubleCheckpointRejected(t *testing.T) {
	tbl := table.New("s-term-table")
	_, err := tbl.SetCheckpoint()
	assert.NilError(t, err)
	_, err = tbl.SetCheckpoint()
	assert.ErrorContains(t, err, "checkpoint already set at 1")
	if _, ok := err.(*table.ProtocolError); !ok {
		t.Fatalf("expected ProtocolError, got %T", err)
	}
}

func TestResetWithoutCheckpointRejected(t *testing.T) {
	tbl := table.New("s-term-table")
	_, err := tbl.ResetToCheckpoint()
	assert.ErrorContains(t, err, "reset without checkpoint")
}

func TestRemoveCheckpointKeepsEntries(t *testing.T) {
	tbl := table.New("s-term-table")
	tbl.Add([]string{"ic", "1"}, []int{})
	_, err := tbl.SetCheckpoint()
	assert.NilError(t, err)
	tbl.Add([]string{"ic", "2"}, []int{})
	tbl.RemoveCheckpoint()
	assert.Equal(t, tbl.Size(), 2)

	// a new checkpoint may now be set
	_, err = tbl.SetCheckpoint()
	assert.NilError(t, err)
}

func TestReservedSurvivesRollback(t *testing.T) {
	tbl := table.New("s-term-table")
	tbl.Add([]string{"ic", "1"}, []int{})
	_, err := tbl.SetCheckpoint()
	assert.NilError(t, err)

	reserved := tbl.Reserve()
	assert.Equal(t, reserved, 2)
	tbl.Add([]string{"ic", "2"}, []int{})

	_, err = tbl.ResetToCheckpoint()
	assert.NilError(t, err)
	assert.Equal(t, tbl.Size(), 1)
}

func TestCommitReserved(t *testing.T) {
	tbl := table.New("postrequest-table")
	ix := tbl.Reserve()
	assert.Equal(t, ix, 1)

	// not retrievable until committed
	_, err := tbl.Retrieve(ix)
	assert.Assert(t, err != nil)

	assert.NilError(t, tbl.CommitReserved(ix, []string{"p"}, []int{3}))
	rec, err := tbl.Retrieve(ix)
	assert.NilError(t, err)
	assert.Equal(t, rec.Tags[0], "p")

	// committing again is a protocol error
	err = tbl.CommitReserved(ix, []string{"p"}, []int{3})
	assert.ErrorContains(t, err, "commit of nonreserved index 1")
}

func TestCommitAfterRollbackRejected(t *testing.T) {
	tbl := table.New("postrequest-table")
	_, err := tbl.SetCheckpoint()
	assert.NilError(t, err)
	ix := tbl.Reserve()
	_, err = tbl.ResetToCheckpoint()
	assert.NilError(t, err)

	// the reservation died with the checkpoint
	err = tbl.CommitReserved(ix, []string{"p"}, []int{1})
	assert.Assert(t, err != nil)
}

func TestXMLRoundTrip(t *testing.T) {
	src := table.New("xpredicate-table")
	src.Add([]string{"nn"}, []int{1})
	src.Add([]string{"x", "eq"}, []int{1, 2})
	src.Add([]string{"tt"}, []int{1, -1, -1})

	node := xmlutil.NewNode(src.Name)
	src.WriteXML(node)

	dst := table.New("xpredicate-table")
	assert.NilError(t, dst.ReadXML(node))
	assert.Equal(t, dst.Size(), src.Size())
	assert.DeepEqual(t, dst.Items(), src.Items())

	// a loaded table keeps allocating past the loaded identities
	assert.Equal(t, dst.Add([]string{"f"}, []int{}), 4)
}

func TestReadXMLMissingSection(t *testing.T) {
	tbl := table.New("nodes")
	err := tbl.ReadXML(nil)
	assert.ErrorContains(t, err, `section "nodes" not found`)
	if _, ok := err.(*table.SchemaError); !ok {
		t.Fatalf("expected SchemaError, got %T", err)
	}
}

func TestReadXMLBadAttributes(t *testing.T) {
	tbl := table.New("nodes")

	node := xmlutil.NewNode("nodes")
	rec := xmlutil.NewNode("n")
	rec.Set("t", "stmt")
	node.Append(rec)
	assert.ErrorContains(t, tbl.ReadXML(node), "nodes/@ix")

	node = xmlutil.NewNode("nodes")
	rec = xmlutil.NewNode("n")
	rec.Set("ix", "1")
	rec.Set("a", "1,x")
	node.Append(rec)
	assert.ErrorContains(t, tbl.ReadXML(node), "nodes/@a")
}

func TestResetWipes(t *testing.T) {
	tbl := table.New("s-term-table")
	tbl.Add([]string{"ic", "1"}, []int{})
	tbl.Reset()
	assert.Equal(t, tbl.Size(), 0)
	assert.Equal(t, tbl.Add([]string{"rv"}, []int{}), 1)
}

type fakeDict struct{ name string }

func TestRegistryDispatch(t *testing.T) {
	reg := table.NewRegistry[*fakeDict]("test")
	reg.Register("s-term", "ic", func(d *fakeDict, rec table.Record) any {
		return rec.Tags[1]
	})

	v, err := reg.Construct(&fakeDict{}, table.Record{Index: 1, Tags: []string{"ic", "5"}}, "s-term")
	assert.NilError(t, err)
	assert.Equal(t, v.(string), "5")
}

func TestRegistryUnknownTag(t *testing.T) {
	reg := table.NewRegistry[*fakeDict]("test")
	reg.Register("s-term", "ic", func(d *fakeDict, rec table.Record) any { return nil })

	_, err := reg.Construct(&fakeDict{}, table.Record{Index: 1, Tags: []string{"zz"}}, "s-term")
	assert.ErrorContains(t, err, `unknown s-term variant: "zz"`)
	if _, ok := err.(*table.UnknownVariantError); !ok {
		t.Fatalf("expected UnknownVariantError, got %T", err)
	}

	// same tag, wrong family
	_, err = reg.Construct(&fakeDict{}, table.Record{Index: 1, Tags: []string{"ic"}}, "s-offset")
	assert.Assert(t, err != nil)
}

package unit_test

import (
	"os"
	"path"
	"testing"

	"github.com/provedb/provedb/internal/unit"
	"github.com/provedb/provedb/internal/xmlutil"
	"gotest.tools/assert"
)

func populate(u *unit.Unit) {
	d := u.Interface
	parix := d.MkFormalApiParameter(1)
	noff := d.MkArgNoOffset()
	argval := d.MkSTerm([]string{"av"}, []int{parix, noff})
	d.MkXPredicate([]string{"nn"}, []int{argval})

	c := u.Contexts
	stmt := c.MkNode([]string{"stmt"}, []int{1})
	c.MkProgramContext(c.MkCfgContext([]int{stmt}), c.MkEmptyExpContext())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := path.Join(dir, "main.xml")

	src := unit.New("main")
	populate(src)
	assert.NilError(t, src.Save(file))

	loaded, err := unit.Load(file)
	assert.NilError(t, err)
	assert.Equal(t, loaded.Name, "main")
	assert.Assert(t, loaded.Id != src.Id)

	assert.DeepEqual(t, loaded.TableStats(), src.TableStats())

	for i, tbl := range loaded.Interface.Tables() {
		assert.DeepEqual(t, tbl.Items(), src.Interface.Tables()[i].Items())
	}
	for i, tbl := range loaded.Contexts.Tables() {
		assert.DeepEqual(t, tbl.Items(), src.Contexts.Tables()[i].Items())
	}
}

func TestLoadMissingSection(t *testing.T) {
	dir := t.TempDir()
	file := path.Join(dir, "broken.xml")

	root := xmlutil.NewNode("c-unit")
	root.Set("name", "broken")
	ifd := xmlutil.NewNode("interface-dictionary")
	unit.New("broken").Interface.WriteXML(ifd)
	root.Append(ifd)
	// no c-contexts section
	assert.NilError(t, xmlutil.WriteFile(file, root))

	_, err := unit.Load(file)
	assert.ErrorContains(t, err, `section "c-contexts" not found`)
	assert.ErrorContains(t, err, "broken.xml")
}

func TestLoadWrongRoot(t *testing.T) {
	dir := t.TempDir()
	file := path.Join(dir, "other.xml")
	assert.NilError(t, os.WriteFile(file, []byte(`<?xml version="1.0"?><other/>`), 0644))

	_, err := unit.Load(file)
	assert.ErrorContains(t, err, `section "c-unit" not found`)
}

func TestStoreLoadDirSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()

	good := unit.New("good")
	populate(good)
	assert.NilError(t, good.Save(path.Join(dir, "good.xml")))

	assert.NilError(t, os.WriteFile(path.Join(dir, "bad.xml"), []byte("not xml"), 0644))
	assert.NilError(t, os.WriteFile(path.Join(dir, "ignored.txt"), []byte("x"), 0644))

	store := unit.NewStore()
	assert.NilError(t, store.LoadDir(dir))

	assert.DeepEqual(t, store.Names(), []string{"good"})
	assert.Assert(t, store.Get("good") != nil)
	assert.Assert(t, store.Get("bad") == nil)
}

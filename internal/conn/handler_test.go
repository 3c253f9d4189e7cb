package conn_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/provedb/provedb/internal/conn"
	"github.com/provedb/provedb/internal/unit"
	"gotest.tools/assert"
)

// testStore loads one unit with a not-null predicate over the first
// formal parameter, plus a minimal program context.
func testStore() *unit.Store {
	u := unit.New("main")

	d := u.Interface
	parix := d.MkFormalApiParameter(1)
	noff := d.MkArgNoOffset()
	argval := d.MkSTerm([]string{"av"}, []int{parix, noff})
	d.MkXPredicate([]string{"nn"}, []int{argval})

	c := u.Contexts
	stmt := c.MkNode([]string{"stmt"}, []int{1})
	c.MkProgramContext(c.MkCfgContext([]int{stmt}), c.MkEmptyExpContext())

	store := unit.NewStore()
	store.Put(u)
	return store
}

func TestListUnits(t *testing.T) {
	res := conn.ListUnitsReqHandler(testStore())
	assert.Equal(t, res.Status, http.StatusOK)
	assert.DeepEqual(t, res.Data, []string{"main"})
}

func TestUnitStat(t *testing.T) {
	res := conn.UnitStatReqHandler(testStore(), []byte(`{"unit": "main"}`))
	assert.Equal(t, res.Status, http.StatusOK)

	stats := res.Data.(map[string]int)
	assert.Equal(t, stats["interface-dictionary/s-term-table"], 1)
	assert.Equal(t, stats["c-contexts/nodes"], 1)
}

func TestUnitStatUnknownUnit(t *testing.T) {
	res := conn.UnitStatReqHandler(testStore(), []byte(`{"unit": "other"}`))
	assert.Equal(t, res.Status, http.StatusNotFound)
	assert.Equal(t, res.Message, "Unit not found")
}

func TestDumpTable(t *testing.T) {
	res := conn.DumpTableReqHandler(testStore(), []byte(`{
        "unit": "main",
        "section": "interface-dictionary",
        "table": "api-parameter-table"
        }`))
	assert.Equal(t, res.Status, http.StatusOK)
	assert.Equal(t, res.Message, "1 records in table api-parameter-table")

	buf, err := json.Marshal(res.Data)
	assert.NilError(t, err)
	assert.Equal(t, string(buf), `[{"ix":1,"tags":["pf"],"args":[1]}]`)
}

func TestDumpTableUnknownTable(t *testing.T) {
	res := conn.DumpTableReqHandler(testStore(), []byte(`{
        "unit": "main",
        "section": "interface-dictionary",
        "table": "no-such-table"
        }`))
	assert.Equal(t, res.Status, http.StatusNotFound)
	assert.Equal(t, res.Message, "Table not found")
}

func TestGetTerm(t *testing.T) {
	res := conn.GetTermReqHandler(testStore(), []byte(`{"unit": "main", "index": 1}`))
	assert.Equal(t, res.Status, http.StatusOK)

	buf, err := json.Marshal(res.Data)
	assert.NilError(t, err)
	assert.Equal(t, string(buf), `{"ix":1,"pretty":"arg-val(par-1)"}`)
}

func TestGetTermUnknownIndex(t *testing.T) {
	res := conn.GetTermReqHandler(testStore(), []byte(`{"unit": "main", "index": 99}`))
	assert.Equal(t, res.Status, http.StatusNotFound)
}

func TestGetPredicate(t *testing.T) {
	res := conn.GetPredicateReqHandler(testStore(), []byte(`{"unit": "main", "index": 1}`))
	assert.Equal(t, res.Status, http.StatusOK)

	buf, err := json.Marshal(res.Data)
	assert.NilError(t, err)
	assert.Equal(t, string(buf), `{"ix":1,"pretty":"not-null(arg-val(par-1))"}`)
}

func TestGetContext(t *testing.T) {
	res := conn.GetContextReqHandler(testStore(), []byte(`{"unit": "main", "index": 1}`))
	assert.Equal(t, res.Status, http.StatusOK)

	buf, err := json.Marshal(res.Data)
	assert.NilError(t, err)
	assert.Equal(t, string(buf), `{"ix":1,"pretty":"(cfg:stmt:1, exp:)"}`)
}

func TestActionHandlerUnknownAction(t *testing.T) {
	res := conn.ActionHandler(testStore(), "dropTable", []byte(`{"action": "dropTable"}`))
	assert.Equal(t, res.Status, http.StatusBadRequest)
	assert.Equal(t, res.Message, "unknown action: dropTable")
}

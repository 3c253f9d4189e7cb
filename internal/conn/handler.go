package conn

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/provedb/provedb/internal/table"
	"github.com/provedb/provedb/internal/unit"
	"github.com/provedb/provedb/pkg"
)

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__pdb_client_req_id__"`
}

func (r Response) Marshal() []byte {
	buf, err := json.Marshal(r)
	if err != nil {
		pkg.ErrorLog("marshaling response", err)
	}
	return buf
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

// itemError maps a retrieval failure to a response: unknown indices
// are 404, everything else is a malformed table.
func itemError(err error) Response {
	if _, ok := err.(*table.LookupError); ok {
		return NewErrorResponse(http.StatusNotFound, err.Error())
	}
	return NewErrorResponse(http.StatusUnprocessableEntity, err.Error())
}

func ListUnitsReqHandler(store *unit.Store) Response {
	names := store.Names()
	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("%d units loaded", len(names)),
		names,
	)
}

type UnitStatRequest struct {
	Unit string `json:"unit"`
}

func UnitStatReqHandler(store *unit.Store, raw []byte) Response {
	var req UnitStatRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	u := store.Get(req.Unit)
	if u == nil {
		return NewErrorResponse(http.StatusNotFound, "Unit not found")
	}

	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Stats for unit %s", u.Name),
		u.TableStats(),
	)
}

type DumpTableRequest struct {
	Unit    string `json:"unit"`
	Section string `json:"section"`
	Table   string `json:"table"`
}

type recordData struct {
	Ix   int      `json:"ix"`
	Tags []string `json:"tags,omitempty"`
	Args []int    `json:"args,omitempty"`
}

func DumpTableReqHandler(store *unit.Store, raw []byte) Response {
	var req DumpTableRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	u := store.Get(req.Unit)
	if u == nil {
		return NewErrorResponse(http.StatusNotFound, "Unit not found")
	}

	u.Locker.RLock()
	defer u.Locker.RUnlock()

	tbl := u.FindTable(req.Section, req.Table)
	if tbl == nil {
		return NewErrorResponse(http.StatusNotFound, "Table not found")
	}

	items := tbl.Items()
	records := make([]recordData, 0, len(items))
	for _, rec := range items {
		records = append(records, recordData{rec.Index, rec.Tags, rec.Args})
	}

	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("%d records in table %s", len(records), tbl.Name),
		records,
	)
}

type GetItemRequest struct {
	Unit  string `json:"unit"`
	Index int    `json:"index"`
}

type itemData struct {
	Ix     int    `json:"ix"`
	Pretty string `json:"pretty"`
}

func GetTermReqHandler(store *unit.Store, raw []byte) Response {
	var req GetItemRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	u := store.Get(req.Unit)
	if u == nil {
		return NewErrorResponse(http.StatusNotFound, "Unit not found")
	}

	u.Locker.RLock()
	defer u.Locker.RUnlock()

	term, err := u.Interface.GetSTerm(req.Index)
	if err != nil {
		return itemError(err)
	}

	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Term %d in unit %s", req.Index, u.Name),
		itemData{req.Index, term.String()},
	)
}

func GetPredicateReqHandler(store *unit.Store, raw []byte) Response {
	var req GetItemRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	u := store.Get(req.Unit)
	if u == nil {
		return NewErrorResponse(http.StatusNotFound, "Unit not found")
	}

	u.Locker.RLock()
	defer u.Locker.RUnlock()

	pred, err := u.Interface.GetXPredicate(req.Index)
	if err != nil {
		return itemError(err)
	}

	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Predicate %d in unit %s", req.Index, u.Name),
		itemData{req.Index, pred.String()},
	)
}

func GetContextReqHandler(store *unit.Store, raw []byte) Response {
	var req GetItemRequest
	err := json.Unmarshal(raw, &req)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	u := store.Get(req.Unit)
	if u == nil {
		return NewErrorResponse(http.StatusNotFound, "Unit not found")
	}

	u.Locker.RLock()
	defer u.Locker.RUnlock()

	pc, err := u.Contexts.GetProgramContext(req.Index)
	if err != nil {
		return itemError(err)
	}

	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Context %d in unit %s", req.Index, u.Name),
		itemData{req.Index, pc.String()},
	)
}

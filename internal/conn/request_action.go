package conn

import (
	"fmt"
	"net/http"

	"github.com/provedb/provedb/internal/unit"
)

type RequestAction string

const (
	// store actions
	RequestActionListUnits RequestAction = "listUnits"
	RequestActionUnitStat  RequestAction = "unitStats"

	// table actions
	RequestActionDumpTable RequestAction = "dumpTable"

	// item actions
	RequestActionGetTerm      RequestAction = "getTerm"
	RequestActionGetPredicate RequestAction = "getPredicate"
	RequestActionGetContext   RequestAction = "getContext"
)

// ActionHandler dispatches one client request. Every action is
// read-only; the dictionaries never change after loading.
func ActionHandler(store *unit.Store, action RequestAction, raw []byte) Response {
	switch action {
	case RequestActionListUnits:
		return ListUnitsReqHandler(store)
	case RequestActionUnitStat:
		return UnitStatReqHandler(store, raw)
	case RequestActionDumpTable:
		return DumpTableReqHandler(store, raw)
	case RequestActionGetTerm:
		return GetTermReqHandler(store, raw)
	case RequestActionGetPredicate:
		return GetPredicateReqHandler(store, raw)
	case RequestActionGetContext:
		return GetContextReqHandler(store, raw)
	default:
		return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unknown action: %s", action))
	}
}

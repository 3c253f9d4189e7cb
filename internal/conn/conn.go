// Package conn serves the loaded unit store over a websocket
// connection: clients send json-encoded actions, the server answers
// with json responses. All actions are read-only.
package conn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/provedb/provedb/internal/auth"
	"github.com/provedb/provedb/internal/unit"
	"github.com/provedb/provedb/pkg"
)

type WsRequest struct {
	Action RequestAction `json:"action"`
	ReqId  int           `json:"__pdb_client_req_id__"` // used in pdb clients
}

var Upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server exposes one unit store to query clients.
type Server struct {
	Store *unit.Store
	Users []*auth.User
}

func NewServer(store *unit.Store, users []*auth.User) *Server {
	return &Server{store, users}
}

type ConnRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func ConnValidate(users []*auth.User, r ConnRequest) *auth.User {
	if r.Username == "" {
		return nil
	}
	for _, u := range users {
		if u.Name == r.Username && u.ValidatePassword(r.Password) {
			return u
		}
	}
	return nil
}

func (s *Server) tryConnect(ctx *ConnCtx, buf []byte) error {
	var r ConnRequest
	if err := json.Unmarshal(buf, &r); err != nil {
		ctx.WriteResponse(NewErrorResponse(http.StatusBadRequest, err.Error()))
		return err
	}

	ctx.User = ConnValidate(s.Users, r)
	if ctx.User == nil {
		ctx.WriteResponse(NewErrorResponse(http.StatusUnauthorized, "Invalid auth"))
		return nil
	}

	ctx.SetAuthed()
	ctx.WriteString("connected")
	return nil
}

func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	c, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}
	pkg.InfoLog("New connection established")
	defer c.Close()
	defer pkg.InfoLog("Connection closed from", c.RemoteAddr())

	ctx := NewConnCtx(c)
	if len(s.Users) == 0 {
		// no users configured means open access
		ctx.SetAuthed()
	}

	for {
		buf, err := ctx.Read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("unexpected close", err)
			} else {
				pkg.DebugLog("connection closed", err)
			}
			return
		}

		if !ctx.isAuthed {
			if ctx.attempts == maxConnAttempts {
				pkg.ErrorLog("max connection attempts reached")
				return
			}

			err = s.tryConnect(ctx, buf)
			ctx.attempts += 1
			if err != nil {
				pkg.ErrorLog("conn attempt error", err)
				return
			}
			continue
		}

		var req WsRequest
		if err := json.Unmarshal(buf, &req); err != nil {
			pkg.ErrorLog("parsing request", err)
			continue
		}

		res := ActionHandler(s.Store, req.Action, buf)
		res.ReqId = req.ReqId

		if err := ctx.WriteResponse(res); err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}
	}
}

func (s *Server) Listen(port int) {
	exit := make(chan os.Signal, 2)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		ReadTimeout:  0,
		WriteTimeout: 0,
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	http.HandleFunc("/", s.HandleConnection)

	go func() {
		err := srv.ListenAndServe()
		if err != http.ErrServerClosed {
			pkg.FatalLog(err)
		}
	}()

	pkg.InfoLog("provedb listening on port", port)
	<-exit
	pkg.DebugLog("Shutting down...")
	srv.Shutdown(context.Background())
}

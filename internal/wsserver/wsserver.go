// Package wsserver exposes the notebook Engine over a websocket: one
// connection gets one dedicated *engine.Engine and its own session id,
// and exchanges a stream of cell texts for their evaluated results as
// JSON.
package wsserver

import (
	"net/http"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/semaphore"

	"quanta/internal/diag"
	"quanta/internal/engine"
)

// Request is one cell submitted by a client.
type Request struct {
	Text string `json:"text"`
}

// Response is the evaluated result of one cell, mirroring
// engine.Output as wire JSON.
type Response struct {
	Display     string            `json:"display"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

// Server accepts websocket connections and runs one notebook session
// per connection. Concurrently accepted connections are bounded by a
// semaphore rather than an unbounded goroutine-per-connection fan-out.
type Server struct {
	upgrader websocket.Upgrader
	sem      *semaphore.Weighted

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id   string
	eng  *engine.Engine
	ans  string
	conn *websocket.Conn
}

// New builds a Server that admits at most maxConns concurrent
// sessions. A maxConns of 0 or less means unbounded.
func New(maxConns int64) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
	}
	if maxConns > 0 {
		s.sem = semaphore.NewWeighted(maxConns)
	}
	return s
}

// ServeHTTP upgrades the connection and runs its session loop until
// the client disconnects or the upgrade/read fails.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.sem != nil {
		if !s.sem.TryAcquire(1) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}
		defer s.sem.Release(1)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("wsserver: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	sess := &session{id: id, eng: engine.New(), conn: conn}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}()

	glog.Infof("wsserver: session %s connected", id)
	sess.run()
	glog.Infof("wsserver: session %s closed", id)
}

// ActiveSessions reports the number of currently connected sessions.
func (s *Server) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (sess *session) run() {
	for {
		var req Request
		if err := sess.conn.ReadJSON(&req); err != nil {
			return
		}
		resp := sess.eval(req.Text)
		if err := sess.conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

// eval substitutes the previous result for the literal substring
// "Ans", then evaluates one cell. The substitution is the front-end's
// job; the engine never sees the name.
func (sess *session) eval(text string) Response {
	substituted := strings.ReplaceAll(text, "Ans", sess.ans)
	out := sess.eng.EvalCell(substituted)
	display := out.Value.Display()
	sess.ans = display
	return Response{Display: display, Diagnostics: out.Diagnostics}
}

// Package server exposes a sheet over a websocket: clients send cell edits
// as JSON messages and every connected client receives a full snapshot of
// the computed table after each round.
package server

import (
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"tally/cell"
	"tally/sheet"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool, any origin may connect
	},
}

// Request is a client message. Type is "set", "clear" or "snapshot".
type Request struct {
	Type   string `json:"type"`
	Addr   string `json:"addr,omitempty"`
	Source string `json:"source,omitempty"`
}

// Snapshot is the full computed table sent after every change.
type Snapshot struct {
	Type  string `json:"type"`
	Cells []Cell `json:"cells"`
}

type Cell struct {
	Addr    string `json:"addr"`
	Source  string `json:"source"`
	Display string `json:"display"`
	Kind    string `json:"kind"`
}

type Server struct {
	mu      sync.Mutex
	sheet   *sheet.Sheet
	clients map[*websocket.Conn]struct{}
}

// New wraps an already evaluated sheet.
func New(s *sheet.Sheet) *Server {
	return &Server{
		sheet:   s,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ListenAndServe mounts the websocket handler at /ws and blocks.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	log.Infof("sheet server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade failed: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	if err := conn.WriteJSON(snap); err != nil {
		return
	}

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		s.handle(req, conn)
	}
}

func (s *Server) handle(req Request, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Type {
	case "set", "clear":
		addr, err := cell.ParseAddress(req.Addr)
		if err != nil {
			log.Warnf("rejected edit: %v", err)
			return
		}
		if req.Type == "set" {
			s.sheet.SetSource(addr, req.Source)
		} else {
			s.sheet.ClearSource(addr)
		}
		s.sheet.Evaluate()
		s.broadcastLocked()
	case "snapshot":
		if err := conn.WriteJSON(s.snapshotLocked()); err != nil {
			log.Warnf("snapshot write failed: %v", err)
		}
	default:
		log.Warnf("unknown request type %q", req.Type)
	}
}

// snapshotLocked builds the full-table message. Caller holds s.mu.
func (s *Server) snapshotLocked() Snapshot {
	sources := s.sheet.Sources()
	cells := make([]Cell, 0, len(sources))
	for addr, src := range sources {
		v, ok := s.sheet.Value(addr)
		if !ok {
			continue
		}
		cells = append(cells, Cell{
			Addr:    addr.String(),
			Source:  src,
			Display: v.String(),
			Kind:    string(v.Kind()),
		})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Addr < cells[j].Addr })
	return Snapshot{Type: "snapshot", Cells: cells}
}

// broadcastLocked sends the current snapshot to every client, dropping the
// ones that fail. Caller holds s.mu.
func (s *Server) broadcastLocked() {
	snap := s.snapshotLocked()
	for conn := range s.clients {
		if err := conn.WriteJSON(snap); err != nil {
			log.Warnf("broadcast write failed: %v", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

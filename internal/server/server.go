// SPDX-License-Identifier: MIT
//
// Package server exposes the control surface: plain GET endpoints that
// switch the render mode, and a WebSocket feed that mirrors every
// committed frame to browser clients.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"glow/internal/led"
	"glow/internal/log"
	"glow/internal/mode"
	"glow/internal/render"
)

// framePayload is the JSON shape pushed to WebSocket clients once per
// committed frame.
type framePayload struct {
	Mode   int            `json:"mode"`
	Name   string         `json:"name"`
	Groups []groupPayload `json:"groups"`
}

type groupPayload struct {
	Name   string     `json:"name"`
	Pixels [][3]uint8 `json:"pixels"`
}

// Server is the HTTP control surface. It also implements led.Sink so the
// pipeline can hand it frames like any other output.
type Server struct {
	addr     string
	selector *mode.Selector

	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan framePayload

	httpServer *http.Server
	done       chan struct{}
}

// New builds a server bound to the given selector. Call Start to begin
// listening; handlers are usable without Start for testing.
func New(addr string, selector *mode.Selector) *Server {
	s := &Server{
		addr:     addr,
		selector: selector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The controller serves LAN dashboards; any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan framePayload, 64),
		done:      make(chan struct{}),
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	return s
}

// Handler returns the route table. Exposed separately so tests can drive
// it through httptest without opening a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for m := mode.Min; m <= mode.Max; m++ {
		mux.HandleFunc(fmt.Sprintf("/mode%d", m), s.handleSetMode(m))
	}
	mux.HandleFunc("/mode", s.handleCurrentMode)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start begins serving and broadcasting. It returns immediately; errors
// from the listener are logged, not returned, matching the fire-and-forget
// role of the control surface.
func (s *Server) Start() {
	go func() {
		log.Infof("server: listening on %s", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server: %v", err)
		}
	}()
	go s.broadcastLoop()
}

func (s *Server) handleSetMode(m int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.selector.Set(m)
		log.Infof("server: mode set to %d (%s)", m, render.ModeName(m))

		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		fmt.Fprint(w, "OK")
	}
}

func (s *Server) handleCurrentMode(w http.ResponseWriter, r *http.Request) {
	m := s.selector.Current()
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	fmt.Fprintf(w, "%d %s", m, render.ModeName(m))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("server: websocket upgrade: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	total := len(s.clients)
	s.clientsMu.Unlock()
	log.Debugf("server: client connected, total: %d", total)

	go func() {
		// Block until the peer closes; we never read client data.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.clientsMu.Lock()
		delete(s.clients, conn)
		total := len(s.clients)
		s.clientsMu.Unlock()
		conn.Close()
		log.Debugf("server: client disconnected, total: %d", total)
	}()
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		case p := <-s.broadcast:
			s.clientsMu.Lock()
			for client := range s.clients {
				if err := client.WriteJSON(p); err != nil {
					log.Debugf("server: dropping client: %v", err)
					client.Close()
					delete(s.clients, client)
				}
			}
			s.clientsMu.Unlock()
		}
	}
}

// Commit queues a frame snapshot for WebSocket broadcast. When no client
// is connected, or the queue is full because clients are slow, the frame
// is dropped: the pipeline never waits on the network.
func (s *Server) Commit(f *led.Frame) error {
	s.clientsMu.Lock()
	n := len(s.clients)
	s.clientsMu.Unlock()
	if n == 0 {
		return nil
	}

	m := s.selector.Current()
	p := framePayload{
		Mode:   m,
		Name:   render.ModeName(m),
		Groups: make([]groupPayload, len(f.Groups)),
	}
	topo := f.Topology()
	for i, g := range f.Groups {
		pixels := make([][3]uint8, len(g))
		for j, c := range g {
			pixels[j] = c
		}
		p.Groups[i] = groupPayload{Name: topo[i].Name, Pixels: pixels}
	}

	select {
	case s.broadcast <- p:
	default:
	}
	return nil
}

// Close stops broadcasting, disconnects clients and shuts the listener
// down.
func (s *Server) Close() error {
	close(s.done)

	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMu.Unlock()

	return s.httpServer.Close()
}

var _ led.Sink = (*Server)(nil)

// Package statsserver exposes a running simulation's live counters over a
// small read-only HTTP endpoint, for inspection during a long run without
// waiting for finalize.
package statsserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/syifan/goseth"
)

// Snapshotter is anything that can report its current counters as a
// name-to-value tree. dram.Stats implements it.
type Snapshotter interface {
	Snapshot() map[string]interface{}
}

// Server exposes one or more channels' counters as JSON, grounded on
// monitoring.Monitor's own mux-backed endpoint set, cut down to the single
// read-only view a live-inspection HTTP endpoint actually needs: no pause,
// continue, or profiling controls, since this expansion never drives the
// engine remotely.
type Server struct {
	mu       sync.RWMutex
	channels map[string]Snapshotter
	roots    map[string]interface{}

	port     int
	listener net.Listener
}

// New creates a Server that will listen on port once Start is called. A
// port of 0 picks a free port at Start time.
func New(port int) *Server {
	return &Server{
		channels: make(map[string]Snapshotter),
		roots:    make(map[string]interface{}),
		port:     port,
	}
}

// Register exposes stats under /stats/{channel}.
func (s *Server) Register(channel string, stats Snapshotter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channels[channel] = stats
}

// RegisterInspectable exposes the live object tree rooted at root under
// /inspect/{name}, field drill-down through /inspect/{name}/{path}, e.g. the
// running controller or the device's node tree. Unlike Register, which
// reports a pre-flattened counter map, this walks the object graph itself
// one level at a time via reflection, the same way monitoring.Monitor lets
// an operator poke at a live component's fields without a bespoke snapshot
// method for each one.
func (s *Server) RegisterInspectable(name string, root interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roots[name] = root
}

// Handler builds the router, exported so tests can exercise it directly
// with httptest without binding a real socket.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/stats", s.listChannels)
	r.HandleFunc("/stats/{channel}", s.channelStats)
	r.HandleFunc("/inspect/{name}", s.inspectRoot)
	r.HandleFunc("/inspect/{name}/{path}", s.inspectField)

	return r
}

// Start listens on the configured port and serves Handler in a background
// goroutine.
func (s *Server) Start() error {
	addr := ":0"
	if s.port > 0 {
		addr = fmt.Sprintf(":%d", s.port)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("starting stats server: %w", err)
	}
	s.listener = listener

	go func() {
		if err := http.Serve(listener, s.Handler()); err != nil {
			log.Println("stats server stopped:", err)
		}
	}()

	return nil
}

// Addr returns the address Start bound to.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Stop closes the listening socket.
func (s *Server) Stop() error {
	if s.listener == nil {
		return nil
	}

	return s.listener.Close()
}

func (s *Server) listChannels(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	names := make([]string, 0, len(s.channels))
	for name := range s.channels {
		names = append(names, name)
	}
	s.mu.RUnlock()

	writeJSON(w, names)
}

func (s *Server) channelStats(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["channel"]

	s.mu.RLock()
	stats, ok := s.channels[name]
	s.mu.RUnlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "channel %q not found", name)
		return
	}

	writeJSON(w, stats.Snapshot())
}

// inspectRoot serializes the one-level field view of a registered root,
// mirroring monitoring.Monitor's listComponentDetails.
func (s *Server) inspectRoot(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	root, ok := s.findRootOr404(w, name)
	if !ok {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(root)
	serializer.SetMaxDepth(1)

	if err := serializer.Serialize(w); err != nil {
		log.Println("inspecting", name, ":", err)
	}
}

// inspectField drills into a dotted field path under a registered root,
// e.g. /inspect/controller/stats.counters, mirroring
// monitoring.Monitor's listFieldValue.
func (s *Server) inspectField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	root, ok := s.findRootOr404(w, name)
	if !ok {
		return
	}

	fields := strings.Split(vars["path"], ".")

	serializer := goseth.NewSerializer()
	serializer.SetRoot(root)
	serializer.SetMaxDepth(1)

	if err := serializer.SetEntryPoint(fields); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "field %q not found on %q: %s", vars["path"], name, err)

		return
	}

	if err := serializer.Serialize(w); err != nil {
		log.Println("inspecting", name, vars["path"], ":", err)
	}
}

func (s *Server) findRootOr404(w http.ResponseWriter, name string) (interface{}, bool) {
	s.mu.RLock()
	root, ok := s.roots[name]
	s.mu.RUnlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "inspectable %q not found", name)

		return nil, false
	}

	return root, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Panic(err)
	}
}

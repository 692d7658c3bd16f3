// Package webservice serves completed run results over HTTP. It
// subscribes to the pipeline's Result topic and keeps the latest
// results in memory, keyed by run PID.
package webservice

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ohowland/cep_core/internal/pkg/msg"
	"github.com/ohowland/cep_core/internal/pkg/results"
)

// Server holds the in-memory run store and the HTTP router.
type Server struct {
	mux  sync.RWMutex
	pid  uuid.UUID
	runs map[uuid.UUID]*results.Results
}

// New returns a server subscribed to the pipeline's Result topic.
func New(pipeline msg.Publisher) (*Server, error) {
	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	s := &Server{
		pid:  pid,
		runs: make(map[uuid.UUID]*results.Results),
	}
	go s.consume(pipeline.Subscribe(pid, msg.Result))
	return s, nil
}

func (s *Server) consume(inbox <-chan msg.Msg) {
	for m := range inbox {
		r, ok := m.Payload().(*results.Results)
		if !ok {
			log.Println("[Webservice] dropped non-result payload")
			continue
		}
		s.Store(r)
	}
}

// Store adds a completed run to the in-memory store.
func (s *Server) Store(r *results.Results) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.runs[r.RunID] = r
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/runs", s.RunsHandler)
	router.HandleFunc("/runs/{pid}/summary", s.SummaryHandler)
	router.HandleFunc("/runs/{pid}/dispatch", s.DispatchHandler)
	return router
}

// ListenAndServe blocks serving the run store on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Println("[Webservice] listening on", addr)
	return http.ListenAndServe(addr, s.Router())
}

// RunsHandler lists the stored run PIDs.
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if r.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mux.RLock()
	ids := make([]string, 0, len(s.runs))
	for pid := range s.runs {
		ids = append(ids, pid.String())
	}
	s.mux.RUnlock()

	body, err := json.Marshal(ids)
	if err != nil {
		log.Println("malformed JSON:", err)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// SummaryHandler serves one run's results without the hourly schedule.
func (s *Server) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(w, r)
	if !ok {
		return
	}

	summary := *run
	summary.Dispatch = nil
	body, err := json.Marshal(&summary)
	if err != nil {
		log.Println("malformed JSON:", err)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// DispatchHandler serves one run's hourly schedule.
func (s *Server) DispatchHandler(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(w, r)
	if !ok {
		return
	}

	body, err := json.Marshal(run.Dispatch)
	if err != nil {
		log.Println("malformed JSON:", err)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*results.Results, bool) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if r.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}

	pid, err := uuid.Parse(mux.Vars(r)["pid"])
	if err != nil {
		log.Println("malformed UUID:", err)
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}

	s.mux.RLock()
	run, ok := s.runs[pid]
	s.mux.RUnlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	return run, true
}

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"
)

// MockArgoServer provides a mock implementation of the Argo Workflows REST
// API for end-to-end testing. Each submitted workflow walks through a
// scripted sequence of phases, advancing one step per status fetch.
type MockArgoServer struct {
	server     *httptest.Server
	workflows  map[string]*mockWorkflow
	wfCounter  int
	submitFail bool
	phaseplan  []string
	mu         sync.RWMutex
}

type mockWorkflow struct {
	Name      string
	Namespace string
	Template  string
	Params    []string
	Labels    string
	phases    []string
	fetches   int
}

// Submission is a recorded workflow submission.
type Submission struct {
	Namespace string
	Template  string
	Params    []string
	Labels    string
}

// NewMockArgoServer starts a mock server whose workflows immediately
// succeed. Use ScriptPhases to change the lifecycle of later submissions.
func NewMockArgoServer() *MockArgoServer {
	m := &MockArgoServer{
		workflows: make(map[string]*mockWorkflow),
		wfCounter: 1000,
		phaseplan: []string{"Succeeded"},
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/workflows/{namespace}/submit", m.handleSubmit).Methods("POST")
	router.HandleFunc("/api/v1/workflows/{namespace}/{name}", m.handleGet).Methods("GET")
	m.server = httptest.NewServer(router)
	return m
}

// URL returns the server's base URL.
func (m *MockArgoServer) URL() string {
	return m.server.URL
}

// Close shuts the server down.
func (m *MockArgoServer) Close() {
	m.server.Close()
}

// ScriptPhases sets the phase sequence that workflows submitted from now on
// walk through, one phase per status fetch. The final phase repeats.
func (m *MockArgoServer) ScriptPhases(phases ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseplan = phases
}

// FailSubmissions makes every subsequent submission return a server error.
func (m *MockArgoServer) FailSubmissions(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitFail = fail
}

// Submissions returns every submission recorded so far.
func (m *MockArgoServer) Submissions() []Submission {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var subs []Submission
	for _, wf := range m.workflows {
		subs = append(subs, Submission{
			Namespace: wf.Namespace,
			Template:  wf.Template,
			Params:    wf.Params,
			Labels:    wf.Labels,
		})
	}
	return subs
}

func (m *MockArgoServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	namespace := vars["namespace"]

	var req struct {
		ResourceKind  string `json:"resourceKind"`
		ResourceName  string `json:"resourceName"`
		SubmitOptions struct {
			Parameters []string `json:"parameters"`
			Labels     string   `json:"labels"`
		} `json:"submitOptions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitFail {
		http.Error(w, `{"message":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	m.wfCounter++
	name := fmt.Sprintf("%s-%d", req.ResourceName, m.wfCounter)
	wf := &mockWorkflow{
		Name:      name,
		Namespace: namespace,
		Template:  req.ResourceName,
		Params:    req.SubmitOptions.Parameters,
		Labels:    req.SubmitOptions.Labels,
		phases:    append([]string{}, m.phaseplan...),
	}
	m.workflows[namespace+"/"+name] = wf

	writeJSON(w, map[string]any{
		"metadata": map[string]string{"name": name, "namespace": namespace},
		"status":   map[string]string{},
	})
}

func (m *MockArgoServer) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key := vars["namespace"] + "/" + vars["name"]

	m.mu.Lock()
	defer m.mu.Unlock()

	wf, ok := m.workflows[key]
	if !ok {
		http.Error(w, `{"message":"workflow not found"}`, http.StatusNotFound)
		return
	}

	i := wf.fetches
	if i >= len(wf.phases) {
		i = len(wf.phases) - 1
	}
	wf.fetches++

	writeJSON(w, map[string]any{
		"metadata": map[string]string{"name": wf.Name, "namespace": wf.Namespace},
		"status":   map[string]string{"phase": wf.phases[i]},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

package argo

// Phase is the workflow status label reported by the Argo server.
type Phase string

const (
	PhasePending   Phase = "Pending"
	PhaseRunning   Phase = "Running"
	PhaseSucceeded Phase = "Succeeded"
	PhaseFailed    Phase = "Failed"
	PhaseError     Phase = "Error"
	PhaseUnknown   Phase = "Unknown"
)

// Terminal reports whether the phase is final. Unknown is non-terminal: the
// server may not have reconciled the workflow yet.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhaseFailed, PhaseError:
		return true
	}
	return false
}

// RunHandle identifies a submitted workflow run for the rest of its
// lifecycle. It is the polling key; the server holds all authoritative state.
type RunHandle struct {
	Name      string
	Namespace string
}

// RunStatus is the server-reported status of a run.
type RunStatus struct {
	Phase Phase
}

// SubmitRequest describes one submission of a workflow template. It is built
// once, sent once and not reused.
type SubmitRequest struct {
	TemplateName string
	Parameters   []string
	Labels       string
}

// Wire types for the Argo Workflows REST API.

type submitOptions struct {
	Parameters []string `json:"parameters,omitempty"`
	Labels     string   `json:"labels,omitempty"`
}

type workflowSubmitRequest struct {
	ResourceKind  string        `json:"resourceKind"`
	ResourceName  string        `json:"resourceName"`
	SubmitOptions submitOptions `json:"submitOptions"`
}

type workflowMetadata struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

type workflowStatus struct {
	Phase string `json:"phase"`
}

type workflowResponse struct {
	Metadata workflowMetadata `json:"metadata"`
	Status   workflowStatus   `json:"status"`
}

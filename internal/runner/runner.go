// Package runner drives one workflow run end to end: derive the workflow
// identity from the repository name, submit the templated run, poll until a
// terminal phase or the retry budget runs out, and map the outcome to a
// status code for the CI caller.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/deploykit/argorun/internal/argo"
	"github.com/deploykit/argorun/internal/config"
	"github.com/deploykit/argorun/internal/logging"
)

// DefaultCreatorLabel is attached to every submission so the Argo UI can
// attribute runs to the automation account.
const DefaultCreatorLabel = "workflows.argoproj.io/creator-email=automation@example.com"

// WorkflowService is the slice of the Argo API the runner needs.
type WorkflowService interface {
	Submit(ctx context.Context, namespace string, req argo.SubmitRequest) (*argo.RunHandle, error)
	GetStatus(ctx context.Context, namespace, name string) (*argo.RunStatus, error)
}

// Input carries the per-invocation inputs resolved by the command layer.
type Input struct {
	RepoName    string
	Environment string
	Settings    config.DeploySettings
}

// Result is the triple reported back to the CI caller. Code is 0 for a
// succeeded run and for a run still in progress when the poll budget runs
// out, 1 for everything else.
type Result struct {
	Code    int
	RunName string
	RunURL  string
}

// Runner submits and monitors workflow runs. It holds no state between
// invocations of Run.
type Runner struct {
	service      WorkflowService
	log          logging.Logger
	host         string
	schedule     Schedule
	creatorLabel string

	// OnSubmitted, when set, is called once after a successful submission
	// with the run handle and its dashboard URL.
	OnSubmitted func(handle argo.RunHandle, runURL string)
}

// Option configures a Runner.
type Option func(*Runner)

// WithSchedule overrides the default poll schedule.
func WithSchedule(s Schedule) Option {
	return func(r *Runner) { r.schedule = s }
}

// WithCreatorLabel overrides the creator label attached to submissions.
func WithCreatorLabel(label string) Option {
	return func(r *Runner) { r.creatorLabel = label }
}

// New builds a Runner. The host is the Argo server base URL, used only to
// render dashboard URLs; all API traffic goes through the service.
func New(service WorkflowService, host string, log logging.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	r := &Runner{
		service:      service,
		log:          log,
		host:         host,
		schedule:     DefaultSchedule(),
		creatorLabel: DefaultCreatorLabel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the full submit-and-wait operation. It never returns an
// error: every failure mode, including a panic anywhere in the operation,
// maps to a well-formed Result.
func (r *Runner) Run(ctx context.Context, in Input) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("unexpected error during workflow run", "error", rec)
			result = Result{Code: 1}
		}
	}()

	cfg := config.NewWorkflowConfig(r.host, in.RepoName)
	_, application := config.ParseRepoName(in.RepoName)
	// The template pins the application branch itself; settings are resolved
	// for their fallback semantics and logged for traceability only.
	r.log.Debug("resolved deploy settings", "app_branch", in.Settings.AppBranch)

	req := argo.SubmitRequest{
		TemplateName: cfg.TemplateName,
		Parameters: []string{
			fmt.Sprintf("environment=%s", in.Environment),
			fmt.Sprintf("application=%s", application),
			"log_level=info",
		},
		Labels: r.creatorLabel,
	}

	handle, err := r.service.Submit(ctx, cfg.Namespace, req)
	if err != nil {
		r.log.Error("workflow submission failed", "template", cfg.TemplateName, "namespace", cfg.Namespace, "error", err)
		return Result{Code: 1}
	}

	runURL := fmt.Sprintf("%s/%s", cfg.URLBase, handle.Name)
	r.log.Info("workflow submitted", "name", handle.Name, "namespace", handle.Namespace, "url", runURL)
	if r.OnSubmitted != nil {
		r.OnSubmitted(*handle, runURL)
	}

	status, ok := r.Poll(ctx, *handle)
	switch {
	case !ok:
		// The run outlived the poll budget. That is "still in progress",
		// not a failure; the caller can follow the URL.
		return Result{Code: 0, RunName: handle.Name, RunURL: runURL}
	case status.Phase == argo.PhaseSucceeded:
		r.log.Info("workflow completed successfully", "name", handle.Name)
		return Result{Code: 0, RunName: handle.Name, RunURL: runURL}
	case status.Phase == argo.PhaseRunning || status.Phase == argo.PhasePending:
		r.log.Warn("workflow is still in progress", "name", handle.Name, "phase", status.Phase)
		return Result{Code: 0, RunName: handle.Name, RunURL: runURL}
	default:
		r.log.Error("workflow failed", "name", handle.Name, "phase", status.Phase)
		return Result{Code: 1, RunName: handle.Name, RunURL: runURL}
	}
}

// Poll fetches the run's status until it reaches a terminal phase or the
// schedule's attempt budget is exhausted. A failed status fetch counts
// against the same budget as a healthy non-terminal poll; there is no
// separate error path. The second return value is false when no terminal
// status was observed.
func (r *Runner) Poll(ctx context.Context, handle argo.RunHandle) (*argo.RunStatus, bool) {
	r.log.Info("monitoring workflow progress", "name", handle.Name, "namespace", handle.Namespace)

	for attempt := 0; attempt < r.schedule.MaxAttempts; attempt++ {
		status, err := r.service.GetStatus(ctx, handle.Namespace, handle.Name)
		if err != nil {
			r.log.Debug("status fetch failed, retrying", "attempt", attempt, "error", err)
			if !r.wait(ctx, r.schedule.FastInterval) {
				return nil, false
			}
			continue
		}

		r.log.Info("workflow status", "phase", status.Phase)
		if status.Phase.Terminal() {
			return status, true
		}

		if !r.wait(ctx, r.schedule.Interval(attempt)) {
			return nil, false
		}
	}

	r.log.Warn("max polling attempts reached", "name", handle.Name, "attempts", r.schedule.MaxAttempts)
	return nil, false
}

// wait sleeps for the given duration, returning false if the context is
// cancelled first.
func (r *Runner) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		r.log.Warn("polling cancelled", "error", ctx.Err())
		return false
	case <-time.After(d):
		return true
	}
}

package github

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-github/v63/github"

	"github.com/deploykit/argorun/internal/logging"
	"github.com/deploykit/argorun/internal/runner"
)

type recordedStatus struct {
	owner, repo, ref string
	status           *github.RepoStatus
}

type fakeStatusService struct {
	recorded []recordedStatus
	err      error
}

func (f *fakeStatusService) CreateStatus(ctx context.Context, owner, repo, ref string, status *github.RepoStatus) (*github.RepoStatus, *github.Response, error) {
	f.recorded = append(f.recorded, recordedStatus{owner: owner, repo: repo, ref: ref, status: status})
	return status, nil, f.err
}

func newTestNotifier(service repoStatusService) *StatusNotifier {
	return &StatusNotifier{
		statuses: service,
		log:      logging.Discard(),
		owner:    "deploykit",
		repo:     "payments-billing-core",
		sha:      "abc123",
	}
}

func TestNewNotifierFromEnvDisabled(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_REPOSITORY", "deploykit/payments-billing-core")
	t.Setenv("GITHUB_SHA", "abc123")

	notifier, err := NewNotifierFromEnv(logging.Discard())
	if err != nil {
		t.Fatalf("expected missing env to disable the notifier, got: %v", err)
	}
	if notifier != nil {
		t.Errorf("expected a nil notifier without GITHUB_TOKEN")
	}
}

func TestNewNotifierFromEnvInvalidRepository(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "token")
	t.Setenv("GITHUB_REPOSITORY", "not-a-repository")
	t.Setenv("GITHUB_SHA", "abc123")

	if _, err := NewNotifierFromEnv(logging.Discard()); err == nil {
		t.Errorf("expected an error for a repository without owner")
	}
}

func TestNewNotifierFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "token")
	t.Setenv("GITHUB_REPOSITORY", "deploykit/payments-billing-core")
	t.Setenv("GITHUB_SHA", "abc123")

	notifier, err := NewNotifierFromEnv(logging.Discard())
	if err != nil {
		t.Fatalf("failed to build notifier: %v", err)
	}
	if notifier == nil {
		t.Fatalf("expected an enabled notifier")
	}
	if notifier.owner != "deploykit" || notifier.repo != "payments-billing-core" || notifier.sha != "abc123" {
		t.Errorf("unexpected notifier identity: %+v", notifier)
	}
}

func TestNotifyPending(t *testing.T) {
	service := &fakeStatusService{}
	n := newTestNotifier(service)

	n.NotifyPending(context.Background(), "wf-1", "https://argo.example.com/workflows/ns/wf-1")

	if len(service.recorded) != 1 {
		t.Fatalf("expected one status, got %d", len(service.recorded))
	}
	got := service.recorded[0]
	if got.owner != "deploykit" || got.repo != "payments-billing-core" || got.ref != "abc123" {
		t.Errorf("unexpected status target: %+v", got)
	}
	if got.status.GetState() != "pending" {
		t.Errorf("expected state 'pending', got %q", got.status.GetState())
	}
	if got.status.GetContext() != StatusContext {
		t.Errorf("expected context %q, got %q", StatusContext, got.status.GetContext())
	}
	if got.status.GetTargetURL() != "https://argo.example.com/workflows/ns/wf-1" {
		t.Errorf("unexpected target URL %q", got.status.GetTargetURL())
	}
}

func TestNotifyResult(t *testing.T) {
	testCases := []struct {
		name      string
		result    runner.Result
		state     string
		targetURL string
	}{
		{
			name:      "success",
			result:    runner.Result{Code: 0, RunName: "wf-1", RunURL: "https://argo/workflows/ns/wf-1"},
			state:     "success",
			targetURL: "https://argo/workflows/ns/wf-1",
		},
		{
			name:      "failure",
			result:    runner.Result{Code: 1, RunName: "wf-1", RunURL: "https://argo/workflows/ns/wf-1"},
			state:     "failure",
			targetURL: "https://argo/workflows/ns/wf-1",
		},
		{
			name:   "submission failure maps to error state",
			result: runner.Result{Code: 1},
			state:  "error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := &fakeStatusService{}
			n := newTestNotifier(service)

			n.NotifyResult(context.Background(), tc.result)

			if len(service.recorded) != 1 {
				t.Fatalf("expected one status, got %d", len(service.recorded))
			}
			got := service.recorded[0]
			if got.status.GetState() != tc.state {
				t.Errorf("expected state %q, got %q", tc.state, got.status.GetState())
			}
			if got.status.GetTargetURL() != tc.targetURL {
				t.Errorf("expected target URL %q, got %q", tc.targetURL, got.status.GetTargetURL())
			}
		})
	}
}

func TestNotifyFailureIsSwallowed(t *testing.T) {
	service := &fakeStatusService{err: errors.New("api rate limit exceeded")}
	n := newTestNotifier(service)

	// Must not panic or propagate; failures are logged only.
	n.NotifyResult(context.Background(), runner.Result{Code: 0, RunName: "wf-1", RunURL: "https://argo/wf-1"})
}

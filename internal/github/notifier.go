// Package github reports workflow outcomes back to GitHub as commit
// statuses, so the originating commit shows the deployment result next to
// its other checks.
package github

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v63/github"

	"github.com/deploykit/argorun/internal/errors"
	"github.com/deploykit/argorun/internal/logging"
	"github.com/deploykit/argorun/internal/runner"
)

// StatusContext is the commit status context label argorun reports under.
const StatusContext = "argorun/workflow"

type repoStatusService interface {
	CreateStatus(ctx context.Context, owner, repo, ref string, status *github.RepoStatus) (*github.RepoStatus, *github.Response, error)
}

// StatusNotifier posts commit statuses for a single commit. Notification
// failures are logged and swallowed; a workflow outcome must never be lost
// because GitHub was unreachable.
type StatusNotifier struct {
	statuses repoStatusService
	log      logging.Logger
	owner    string
	repo     string
	sha      string
}

// NewNotifierFromEnv builds a notifier from the standard GitHub Actions
// environment (GITHUB_TOKEN, GITHUB_REPOSITORY, GITHUB_SHA). When any of
// them is missing the notifier is disabled: the returned value is nil and so
// is the error.
func NewNotifierFromEnv(log logging.Logger) (*StatusNotifier, error) {
	token := os.Getenv("GITHUB_TOKEN")
	repository := os.Getenv("GITHUB_REPOSITORY")
	sha := os.Getenv("GITHUB_SHA")
	if token == "" || repository == "" || sha == "" {
		return nil, nil
	}

	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, errors.New(errors.CodeConfigInvalid, fmt.Sprintf("GITHUB_REPOSITORY must be owner/repo, got %q", repository))
	}

	client := github.NewClient(nil).WithAuthToken(token)
	return &StatusNotifier{
		statuses: client.Repositories,
		log:      log,
		owner:    owner,
		repo:     repo,
		sha:      sha,
	}, nil
}

// NotifyPending marks the commit as pending right after submission, with the
// run's dashboard URL as the status target.
func (n *StatusNotifier) NotifyPending(ctx context.Context, runName, runURL string) {
	desc := fmt.Sprintf("Workflow %s submitted", runName)
	n.post(ctx, "pending", desc, runURL)
}

// NotifyResult maps the final Result onto a commit status state.
func (n *StatusNotifier) NotifyResult(ctx context.Context, result runner.Result) {
	if result.RunName == "" {
		n.post(ctx, "error", "Workflow submission failed", "")
		return
	}

	state := "success"
	desc := fmt.Sprintf("Workflow %s succeeded", result.RunName)
	if result.Code != 0 {
		state = "failure"
		desc = fmt.Sprintf("Workflow %s failed", result.RunName)
	}
	n.post(ctx, state, desc, result.RunURL)
}

func (n *StatusNotifier) post(ctx context.Context, state, description, targetURL string) {
	status := &github.RepoStatus{
		State:       github.String(state),
		Description: github.String(description),
		Context:     github.String(StatusContext),
	}
	if targetURL != "" {
		status.TargetURL = github.String(targetURL)
	}

	_, _, err := n.statuses.CreateStatus(ctx, n.owner, n.repo, n.sha, status)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeNotifyFailed, "failed to post commit status")
		n.log.Warn("commit status notification failed", "state", state, "error", wrapped)
		return
	}
	n.log.Debug("commit status posted", "state", state, "sha", n.sha)
}

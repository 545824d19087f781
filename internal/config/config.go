package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deploykit/argorun/internal/logging"
)

// DefaultBranch is the branch deploy settings fall back to when the current
// branch has no entry of its own.
const DefaultBranch = "main"

// WorkflowConfig identifies the workflow template a repository deploys
// through. All fields are pure functions of the repository's capability
// segment and are never mutated after construction.
type WorkflowConfig struct {
	Namespace    string
	TemplateName string
	URLBase      string
}

// ParseRepoName splits a repository name into its capability and application
// segments. Names follow the `<capability>-<application>` convention, where
// the application part may itself contain a hyphen. A name without hyphens
// serves as both capability and application.
func ParseRepoName(repoName string) (capability, application string) {
	parts := strings.SplitN(repoName, "-", 3)
	if len(parts) < 2 {
		return repoName, repoName
	}
	capability = parts[0]
	application = parts[1]
	if len(parts) > 2 {
		application = parts[1] + "-" + parts[2]
	}
	return capability, application
}

// NewWorkflowConfig derives the namespace, template name and dashboard URL
// base for a repository. The host is the Argo server base URL without a
// trailing slash.
func NewWorkflowConfig(host, repoName string) WorkflowConfig {
	capability, _ := ParseRepoName(repoName)
	namespace := fmt.Sprintf("%s-deploy-wf", capability)
	return WorkflowConfig{
		Namespace:    namespace,
		TemplateName: fmt.Sprintf("%s-workload-staging", capability),
		URLBase:      fmt.Sprintf("%s/workflows/%s", strings.TrimSuffix(host, "/"), namespace),
	}
}

// DeploySettings holds the per-branch deployment settings resolved from the
// AUTO_DEPLOY_SETTINGS environment variable.
type DeploySettings struct {
	AppBranch string `json:"app_branch"`
}

// DefaultDeploySettings is what every fallback path resolves to.
func DefaultDeploySettings() DeploySettings {
	return DeploySettings{AppBranch: DefaultBranch}
}

// ResolveDeploySettings parses a JSON mapping of branch name to settings and
// returns the entry for the given branch, falling back to the "main" entry
// and finally to DefaultDeploySettings. Malformed input is logged and
// swallowed; this function never fails.
func ResolveDeploySettings(raw, branch string, log logging.Logger) DeploySettings {
	if log == nil {
		log = logging.Discard()
	}
	if raw == "" {
		return DefaultDeploySettings()
	}

	var settings map[string]DeploySettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		log.Error("failed to parse deploy settings, using defaults", "error", err)
		return DefaultDeploySettings()
	}

	if s, ok := settings[branch]; ok {
		return normalize(s)
	}
	if s, ok := settings[DefaultBranch]; ok {
		return normalize(s)
	}
	return DefaultDeploySettings()
}

func normalize(s DeploySettings) DeploySettings {
	if s.AppBranch == "" {
		s.AppBranch = DefaultBranch
	}
	return s
}

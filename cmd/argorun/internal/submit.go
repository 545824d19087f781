package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deploykit/argorun/internal/argo"
	"github.com/deploykit/argorun/internal/config"
	"github.com/deploykit/argorun/internal/github"
	"github.com/deploykit/argorun/internal/logging"
	"github.com/deploykit/argorun/internal/runner"
)

const defaultHost = "https://your-argo-server.com"

func NewSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a workflow run and wait for its outcome",
		Long: `Submits a templated workflow run derived from the repository name, polls it
until a terminal phase or the polling budget runs out, and prints three lines
for the CI pipeline to parse:

  Status Code: <int>
  Workflow Name: <string>
  Workflow URL: <string>

The printed status code is the authoritative outcome. The process exit code
stays 0 regardless of the run's outcome unless --propagate-exit-code is set;
pipelines that predate that flag parse the printed value instead.

Inputs come from the environment: ARGO_TOKEN, REPO_NAME, ENVIRONMENT and
AUTO_DEPLOY_SETTINGS (a JSON mapping of branch name to settings). Flags
override the environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			logJSON, _ := cmd.Flags().GetBool("log-json")
			log := logging.New(logging.Options{
				Level:  logging.Level(logLevel),
				Output: cmd.ErrOrStderr(),
				JSON:   logJSON,
			})

			configPath, _ := cmd.Flags().GetString("config")
			fileCfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}

			host, _ := cmd.Flags().GetString("host")
			if host == "" {
				host = fileCfg.Host
			}
			if host == "" {
				host = defaultHost
			}

			repoName, _ := cmd.Flags().GetString("repo-name")
			if repoName == "" {
				repoName = envOrDefault("REPO_NAME", "api-service")
			}
			environment, _ := cmd.Flags().GetString("environment")
			if environment == "" {
				environment = envOrDefault("ENVIRONMENT", "staging")
			}
			branch, _ := cmd.Flags().GetString("branch")

			settings := config.ResolveDeploySettings(os.Getenv("AUTO_DEPLOY_SETTINGS"), branch, log)

			insecure, _ := cmd.Flags().GetBool("insecure-skip-verify")
			var clientOpts []argo.ClientOption
			if insecure || fileCfg.TLSSkipVerify {
				log.Warn("TLS certificate verification is disabled")
				clientOpts = append(clientOpts, argo.WithInsecureSkipVerify())
			}

			client, err := argo.NewClient(host, os.Getenv("ARGO_TOKEN"), clientOpts...)
			if err != nil {
				return err
			}

			runnerOpts := []runner.Option{runner.WithSchedule(scheduleFrom(fileCfg.Poll))}
			if fileCfg.CreatorLabel != "" {
				runnerOpts = append(runnerOpts, runner.WithCreatorLabel(fileCfg.CreatorLabel))
			}
			r := runner.New(client, host, log, runnerOpts...)

			var notifier *github.StatusNotifier
			if notify, _ := cmd.Flags().GetBool("github-status"); notify {
				notifier, err = github.NewNotifierFromEnv(log)
				if err != nil {
					return err
				}
				if notifier == nil {
					log.Warn("github status reporting requested but GITHUB_TOKEN/GITHUB_REPOSITORY/GITHUB_SHA are not all set")
				} else {
					r.OnSubmitted = func(handle argo.RunHandle, runURL string) {
						notifier.NotifyPending(cmd.Context(), handle.Name, runURL)
					}
				}
			}

			result := r.Run(cmd.Context(), runner.Input{
				RepoName:    repoName,
				Environment: environment,
				Settings:    settings,
			})
			if notifier != nil {
				notifier.NotifyResult(cmd.Context(), result)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Status Code: %d\n", result.Code)
			fmt.Fprintf(cmd.OutOrStdout(), "Workflow Name: %s\n", result.RunName)
			fmt.Fprintf(cmd.OutOrStdout(), "Workflow URL: %s\n", result.RunURL)

			if propagate, _ := cmd.Flags().GetBool("propagate-exit-code"); propagate && result.Code != 0 {
				cmd.SilenceUsage = true
				return fmt.Errorf("workflow run finished with status code %d", result.Code)
			}
			return nil
		},
	}

	cmd.Flags().String("host", "", "Argo server base URL (overrides the config file)")
	cmd.Flags().String("repo-name", "", "Repository name (overrides REPO_NAME)")
	cmd.Flags().String("environment", "", "Target environment (overrides ENVIRONMENT)")
	cmd.Flags().String("branch", config.DefaultBranch, "Branch used to resolve deploy settings")
	cmd.Flags().String("config", "argorun.yml", "Path to the optional configuration file")
	cmd.Flags().Bool("insecure-skip-verify", false, "Disable TLS certificate verification")
	cmd.Flags().Bool("github-status", false, "Report the outcome as a GitHub commit status")
	cmd.Flags().Bool("propagate-exit-code", false, "Exit with the printed status code instead of always exiting 0")
	return cmd
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// scheduleFrom overlays any file-provided poll settings on the defaults.
func scheduleFrom(poll *config.PollConfig) runner.Schedule {
	s := runner.DefaultSchedule()
	if poll == nil {
		return s
	}
	if poll.MaxAttempts > 0 {
		s.MaxAttempts = poll.MaxAttempts
	}
	if poll.FastAttempts > 0 {
		s.FastAttempts = poll.FastAttempts
	}
	if poll.FastInterval > 0 {
		s.FastInterval = time.Duration(poll.FastInterval)
	}
	if poll.SlowInterval > 0 {
		s.SlowInterval = time.Duration(poll.SlowInterval)
	}
	return s
}

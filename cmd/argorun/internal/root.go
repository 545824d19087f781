package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "argorun",
		Short: "Argorun submits Argo Workflows runs and waits for their outcome.",
		Long: `Argorun is a CI helper that submits a templated workflow run to an Argo
Workflows server, polls it until it finishes or the polling budget runs out,
and reports a status code, run name and dashboard URL for the pipeline to use.`,
	}

	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error).")
	cmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON.")
	cmd.AddCommand(NewSubmitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

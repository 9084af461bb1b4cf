package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dkoh/mend/internal/config"
	"github.com/dkoh/mend/internal/llm"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Run: func(cmd *cobra.Command, args []string) {
		var provider string
		for _, info := range llm.KnownModels() {
			if info.Provider != provider {
				if provider != "" {
					fmt.Fprintln(os.Stdout)
				}
				provider = info.Provider
				fmt.Fprintf(os.Stdout, "%s (default: %s):\n", provider, llm.DefaultModel(provider))
			}
			fmt.Fprintf(os.Stdout, "  %-30s context %7d, max output %6d\n",
				info.Model, info.ContextWindow, info.MaxOutputTokens)
		}
	},
}

var modelsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify provider credentials and connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		client, err := llm.New(llm.Options{
			Provider:       cfg.Provider,
			Model:          cfg.Model,
			TimeoutSeconds: cfg.TimeoutSeconds,
			Logger:         newLogger(),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			if llm.IsCredentialMissing(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}
		info := client.ModelInfo()
		fmt.Fprintf(os.Stdout, "Checking %s (%s)...\n", info.Provider, info.Model)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := client.TestConnection(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stdout, "OK: %s is configured and responding\n", info.Provider)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsCheckCmd)
	modelsCheckCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsCheckCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}

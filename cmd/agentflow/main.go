// Command agentflow is the CLI for the AgentFlow control plane: deploy
// workflow definitions, inspect status and logs, and watch executions live.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Siddhant-K-code/agentflow-go"
	"github.com/Siddhant-K-code/agentflow-go/client"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if agentflow.IsNotFound(err) {
			fmt.Fprintln(os.Stderr, "hint: run `agentflow status` to list known workflows")
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "agentflow",
	Short:        "Deploy and orchestrate multi-agent AI workflows",
	Long:         "AgentFlow deploys and orchestrates multi-agent AI workflows described by simple YAML definitions.",
	Version:      fmt.Sprintf("%s (commit %s)", version, commit),
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "control plane base URL")
	rootCmd.PersistentFlags().String("api-key", "", "bearer token for the control plane")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "per-request timeout")
	rootCmd.PersistentFlags().Bool("verbose", false, "log requests to stderr")

	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetEnvPrefix("AGENTFLOW")
	viper.AutomaticEnv()

	viper.SetConfigName(".agentflow")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // config file is optional

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
}

// newClient builds the API client from the resolved configuration.
func newClient() (*client.Client, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	return client.New(viper.GetString("server"),
		client.WithAPIKey(viper.GetString("api_key")),
		client.WithTimeout(viper.GetDuration("timeout")),
		client.WithLogger(logger),
	)
}

func logLevel() slog.Level {
	if viper.GetBool("verbose") {
		return slog.LevelDebug
	}
	return slog.LevelError
}

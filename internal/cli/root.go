package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luiz-simples/redix/internal/client"
	"github.com/luiz-simples/redix/internal/config"
	"github.com/luiz-simples/redix/internal/logger"
)

const Version = "0.1.0"

const envLogLevel = "REDIX_LOG_LEVEL"

// NewRootCmd builds the command tree. Each call returns a fresh tree so
// tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "redix",
		Short: "Redis client for single nodes, clusters and replication setups",
		Long: fmt.Sprintf(`redix (v%s)

Sends commands to a Redis node, a Redis Cluster or a primary with replicas,
following cluster redirections and routing reads to healthy replicas.`, Version),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			config.Init()
			if err := config.BindFlags(cmd); err != nil {
				return err
			}

			if cmd.Flags().Changed(config.KeyLogLevel) {
				_ = os.Setenv(envLogLevel, config.Load().LogLevel)
			}

			logger.Reload()
			return nil
		},
	}

	config.SetupFlags(root)

	root.AddCommand(
		newDoCmd(),
		newTxCmd(),
		newSlotCmd(),
		newClassifyCmd(),
		newCommandsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// Execute runs the CLI with os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	return client.New(config.Load())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of redix",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "redix v%s\n", Version)
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective client configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luiz-simples/redix/internal/client"
	"github.com/luiz-simples/redix/internal/cluster"
	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/config"
	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/replication"
)

const commandSeparator = ";"

func newDoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "do COMMAND [ARG...]",
		Short: "Send one command and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			redix, err := newClient()
			if err != nil {
				return err
			}
			defer redix.Close()

			built, err := redix.Command(args[0], args[1:])
			if err != nil {
				return err
			}

			reply, err := redix.ExecuteCommand(cmd.Context(), built)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), reply.String())
			return nil
		},
	}
}

func newTxCmd() *cobra.Command {
	var (
		watch []string
		cas   bool
		retry int
	)

	txCmd := &cobra.Command{
		Use:   "tx [--watch KEY]... -- COMMAND [ARG...] [; COMMAND [ARG...]]...",
		Short: "Run commands inside MULTI/EXEC",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			redix, err := newClient()
			if err != nil {
				return err
			}
			defer redix.Close()

			batch, err := buildBatch(redix, args)
			if err != nil {
				return err
			}

			opts := []client.TxOption{client.WithWatch(watch...)}
			if cas {
				opts = append(opts, client.WithCAS())
			}
			if cmd.Flags().Changed("retry") {
				opts = append(opts, client.WithRetry(retry))
			}

			tx, err := redix.Transaction(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			defer tx.Close()

			if cas {
				if err := tx.Multi(cmd.Context()); err != nil {
					return err
				}
			}

			for _, queued := range batch {
				if _, err := tx.ExecuteCommand(cmd.Context(), queued); err != nil {
					_ = tx.Discard(cmd.Context())
					return err
				}
			}

			results, err := tx.Exec(cmd.Context())
			if err != nil {
				return err
			}

			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	txCmd.Flags().StringSliceVar(&watch, "watch", nil, "keys to WATCH before MULTI")
	txCmd.Flags().BoolVar(&cas, "cas", false, "open the transaction in check-and-set mode")
	txCmd.Flags().IntVar(&retry, "retry", 0, "override the transaction retry budget")

	return txCmd
}

func newSlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slot KEY...",
		Short: "Print the cluster hash slot of each key",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, key := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", key, cluster.Slot([]byte(key)))
			}
		},
	}
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify COMMAND [ARG...]",
		Short: "Tell whether replication would route a command to a replica",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			built, err := command.New(args[0], args[1:])
			if err != nil {
				return err
			}

			strategy := replication.NewStrategy()
			if strategy.IsDisallowed(built) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tdisallowed\n", built.ID())
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", built.ID(), strategy.Classify(built))
			return nil
		},
	}
}

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the commands known to the configured server version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := command.NewProfile(config.Load().ServerVersion)
			if err != nil {
				return err
			}

			for _, id := range profile.Commands() {
				spec, _ := profile.Spec(id)
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s since %s\t%s\n", id, spec.Since, spec.Keys)
			}
			return nil
		},
	}
}

// buildBatch splits args on ";" tokens into profile-checked commands.
func buildBatch(redix *client.Client, args []string) ([]domain.Command, error) {
	var (
		batch   []domain.Command
		current []string
	)

	flush := func() error {
		if len(current) == 0 {
			return nil
		}

		built, err := redix.Command(current[0], current[1:])
		if err != nil {
			return fmt.Errorf("%s: %w", strings.Join(current, " "), err)
		}

		batch = append(batch, built)
		current = nil
		return nil
	}

	for _, arg := range args {
		if arg == commandSeparator {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		current = append(current, arg)
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return batch, nil
}

func printResults(out io.Writer, results []any) {
	if results == nil {
		fmt.Fprintln(out, "(empty transaction)")
		return
	}

	for index, result := range results {
		fmt.Fprintf(out, "%d) %s\n", index+1, formatResult(result))
	}
}

func formatResult(result any) string {
	switch value := result.(type) {
	case nil:
		return "(nil)"
	case *domain.Reply:
		return value.String()
	case *domain.ServerError:
		return "(error) " + value.Error()
	case []byte:
		return string(value)
	}

	return fmt.Sprint(result)
}
